package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/gupta-labs/khata-sahayak/internal/application/dto"
	"github.com/gupta-labs/khata-sahayak/internal/application/ports"
	"github.com/gupta-labs/khata-sahayak/pkg/i18n"
	"github.com/gupta-labs/khata-sahayak/pkg/logger"
)

// InboundProcessor is the top of the message pipeline: it turns one webhook
// message into a reply, converting every known failure into localized text
// so nothing surfaces to the transport as a fault.
type InboundProcessor struct {
	reconciler *Reconciler
	extractor  ports.ExtractionService
	fetcher    ports.MediaFetcher
	notifier   ports.NotificationTransport
	log        *logger.Logger
}

func NewInboundProcessor(reconciler *Reconciler, extractor ports.ExtractionService, fetcher ports.MediaFetcher, notifier ports.NotificationTransport, log *logger.Logger) *InboundProcessor {
	return &InboundProcessor{
		reconciler: reconciler,
		extractor:  extractor,
		fetcher:    fetcher,
		notifier:   notifier,
		log:        log,
	}
}

// ProcessInbound routes a message by content type and returns the reply to
// send. It never returns an error; unexpected failures become the generic
// apology so the conversational channel stays alive.
func (p *InboundProcessor) ProcessInbound(ctx context.Context, msg dto.InboundMessage, now time.Time) *dto.Reply {
	switch {
	case msg.MediaURL != "" && strings.Contains(msg.MediaContentType, "audio"):
		return p.processVoiceNote(ctx, msg, now)
	case msg.MediaURL != "" && strings.Contains(msg.MediaContentType, "image"):
		return p.processBillImage(ctx, msg, now)
	case msg.MediaURL != "":
		return singleReply(i18n.T(i18n.LangEnglish, "unsupported_media", map[string]string{"media_type": msg.MediaContentType}))
	default:
		return p.processText(ctx, msg, now)
	}
}

func (p *InboundProcessor) processVoiceNote(ctx context.Context, msg dto.InboundMessage, now time.Time) *dto.Reply {
	lang := i18n.LangEnglish

	content, _, err := p.fetcher.Fetch(ctx, msg.MediaURL)
	if err != nil {
		p.log.Error().Err(err).Str("actor_id", msg.ActorID).Msg("voice note download failed")
		return singleReply(i18n.T(lang, "download_fail", map[string]string{"error_msg": err.Error()}))
	}

	tr, err := p.extractor.TranscribeAudio(ctx, content, "voice_note.ogg")
	if err != nil {
		p.log.Error().Err(err).Str("actor_id", msg.ActorID).Msg("transcription failed")
		return singleReply(i18n.T(lang, "file_error", map[string]string{"error_msg": err.Error()}))
	}
	if tr.OriginalText == "" && tr.EnglishTranslation == "" {
		return singleReply(i18n.T(lang, "transcribe_fail", nil))
	}

	lang = i18n.Normalize(tr.DetectedLanguage)
	return p.handleUnderstoodText(ctx, msg.ActorID, lang, tr.OriginalText, tr.EnglishTranslation, now)
}

func (p *InboundProcessor) processBillImage(ctx context.Context, msg dto.InboundMessage, now time.Time) *dto.Reply {
	lang := i18n.LangEnglish

	content, contentType, err := p.fetcher.Fetch(ctx, msg.MediaURL)
	if err != nil {
		p.log.Error().Err(err).Str("actor_id", msg.ActorID).Msg("bill image download failed")
		return singleReply(i18n.T(lang, "download_fail", map[string]string{"error_msg": err.Error()}))
	}

	// acknowledge before the slow vision call
	p.notify(ctx, msg.ActorID, i18n.T(lang, "image_received_stock_update", nil))

	bill, err := p.extractor.ParseBillImage(ctx, content, contentType)
	if err != nil {
		p.log.Error().Err(err).Str("actor_id", msg.ActorID).Msg("bill extraction failed")
		return singleReply(i18n.T(lang, "stock_update_fail", map[string]string{"error_msg": err.Error()}))
	}

	lang = i18n.Normalize(bill.DetectedLanguage)
	reply, err := p.reconciler.ProcessBill(ctx, msg.ActorID, bill, lang, now)
	if err != nil {
		p.log.Error().Err(err).Str("actor_id", msg.ActorID).Msg("bill processing failed")
		return singleReply(i18n.T(lang, "unexpected_error", nil))
	}
	return reply
}

func (p *InboundProcessor) processText(ctx context.Context, msg dto.InboundMessage, now time.Time) *dto.Reply {
	// for typed messages the text stands in for both transcript fields
	return p.handleUnderstoodText(ctx, msg.ActorID, i18n.LangEnglish, msg.Body, msg.Body, now)
}

// handleUnderstoodText runs the shared tail of the voice and text paths:
// khata questions are answered directly, everything else goes through
// extraction and reconciliation.
func (p *InboundProcessor) handleUnderstoodText(ctx context.Context, actorID, lang, originalText, englishText string, now time.Time) *dto.Reply {
	if inquiry, ok := DetectInquiry(cleanForKeywords(originalText), cleanForKeywords(englishText)); ok {
		var (
			reply *dto.Reply
			err   error
		)
		if inquiry == dto.DraftEarningsSummary {
			reply, err = p.reconciler.EarningsSummary(ctx, actorID, lang, now)
		} else {
			reply, err = p.reconciler.BalanceSummary(ctx, actorID, lang)
		}
		if err != nil {
			p.log.Error().Err(err).Str("actor_id", actorID).Msg("khata inquiry failed")
			return singleReply(i18n.T(lang, "unexpected_error", nil))
		}
		return reply
	}

	text := originalText
	if lang != i18n.LangEnglish && englishText != "" {
		// extraction works best on the English translation
		text = englishText
	}
	if text == "" {
		return singleReply(i18n.T(lang, "extract_fail", nil))
	}

	draft, err := p.extractor.ParseText(ctx, text, now)
	if err != nil || draft == nil {
		p.log.Warn().Err(err).Str("actor_id", actorID).Msg("draft extraction failed")
		return singleReply(i18n.T(lang, "extract_fail", nil))
	}
	if draft.Language != "" {
		lang = i18n.Normalize(draft.Language)
	}

	reply, err := p.reconciler.Process(ctx, actorID, draft, lang, originalText, englishText, now)
	if err != nil {
		p.log.Error().Err(err).Str("actor_id", actorID).Msg("draft processing failed")
		return singleReply(i18n.T(lang, "unexpected_error", nil))
	}
	return reply
}

func (p *InboundProcessor) notify(ctx context.Context, actorID, text string) {
	if err := p.notifier.Send(ctx, actorID, text); err != nil {
		p.log.Warn().Err(err).Str("actor_id", actorID).Msg("notification send failed")
	}
}

func singleReply(text string) *dto.Reply {
	reply := &dto.Reply{}
	reply.Add(text)
	return reply
}

// cleanForKeywords strips punctuation so keyword matching sees bare words.
func cleanForKeywords(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ', r > 127:
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
