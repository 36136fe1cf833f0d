package dto

// InboundMessage is the transport-agnostic shape of one incoming WhatsApp
// message after webhook decoding.
type InboundMessage struct {
	ActorID          string
	Body             string
	MediaURL         string
	MediaContentType string
}

// Transcription is what the speech service returns for a voice note.
type Transcription struct {
	DetectedLanguage   string
	OriginalText       string
	EnglishTranslation string
}

// BillExtraction is what the vision service returns for a bill photo.
type BillExtraction struct {
	BillType         string      `json:"bill_type"`
	Items            []DraftItem `json:"items"`
	DetectedLanguage string      `json:"detected_language"`
}

// Reply is the ordered list of localized fragments sent back to the actor,
// joined with blank lines at the transport boundary.
type Reply struct {
	Fragments []string
}

func (r *Reply) Add(fragment string) {
	if fragment != "" {
		r.Fragments = append(r.Fragments, fragment)
	}
}

func (r *Reply) Empty() bool { return len(r.Fragments) == 0 }
