package twilio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gupta-labs/khata-sahayak/internal/application/ports"
	"github.com/gupta-labs/khata-sahayak/internal/domain"
	"github.com/gupta-labs/khata-sahayak/pkg/logger"
)

var _ ports.MediaFetcher = (*MediaFetcher)(nil)

const (
	downloadAttempts = 3
	downloadBackoff  = 2 * time.Second
	maxMediaBytes    = 20 << 20 // Twilio caps WhatsApp media well below this
)

// MediaFetcher downloads webhook media (voice notes, bill photos) from
// Twilio's media URLs, which require basic auth. Transient failures and
// empty bodies are retried with a fixed backoff before giving up.
type MediaFetcher struct {
	accountSID string
	authToken  string
	httpClient *http.Client
	backoff    time.Duration
	log        *logger.Logger
}

func NewMediaFetcher(accountSID, authToken string, log *logger.Logger) *MediaFetcher {
	return &MediaFetcher{
		accountSID: accountSID,
		authToken:  authToken,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		backoff:    downloadBackoff,
		log:        log,
	}
}

func (f *MediaFetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	var lastErr error
	for attempt := 1; attempt <= downloadAttempts; attempt++ {
		content, contentType, err := f.fetchOnce(ctx, url)
		if err == nil {
			return content, contentType, nil
		}
		lastErr = err
		f.log.Warn().Err(err).Int("attempt", attempt).Str("url", url).Msg("media download failed")

		if attempt < downloadAttempts {
			select {
			case <-ctx.Done():
				return nil, "", fmt.Errorf("%w: %v", domain.ErrDownloadFailed, ctx.Err())
			case <-time.After(f.backoff):
			}
		}
	}
	return nil, "", fmt.Errorf("%w after %d attempts: %v", domain.ErrDownloadFailed, downloadAttempts, lastErr)
}

func (f *MediaFetcher) fetchOnce(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(f.accountSID, f.authToken)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download media HTTP %d", resp.StatusCode)
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read media body: %w", err)
	}
	if len(content) == 0 {
		return nil, "", fmt.Errorf("downloaded content is empty")
	}
	return content, resp.Header.Get("Content-Type"), nil
}
