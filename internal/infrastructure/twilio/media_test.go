package twilio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gupta-labs/khata-sahayak/internal/domain"
	"github.com/gupta-labs/khata-sahayak/pkg/logger"
)

func testFetcher() *MediaFetcher {
	f := NewMediaFetcher("ACxxxx", "token", logger.New(logger.Config{Env: "production", Level: "error"}))
	f.backoff = time.Millisecond
	return f
}

func TestMediaFetchSuccess(t *testing.T) {
	var gotAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		gotAuth = ok && user == "ACxxxx" && pass == "token"
		w.Header().Set("Content-Type", "audio/ogg")
		_, _ = w.Write([]byte("voice-note-bytes"))
	}))
	defer srv.Close()

	content, contentType, err := testFetcher().Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, []byte("voice-note-bytes"), content)
	assert.Equal(t, "audio/ogg", contentType)
	assert.True(t, gotAuth, "request must carry Twilio basic auth")
}

func TestMediaFetchRetriesTransientFailure(t *testing.T) {
	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("bill-image-bytes"))
	}))
	defer srv.Close()

	content, _, err := testFetcher().Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []byte("bill-image-bytes"), content)
}

func TestMediaFetchEmptyBodyExhaustsRetries(t *testing.T) {
	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		// 200 OK with no content: treated as a failed download
	}))
	defer srv.Close()

	_, _, err := testFetcher().Fetch(context.Background(), srv.URL)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDownloadFailed)
	assert.Equal(t, 3, attempts)
}
