package youtube

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	messages []string
}

func (f *fakeNotifier) Send(clientID, message string) {
	f.messages = append(f.messages, message)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *fakeNotifier) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	log := logrus.New()
	log.SetOutput(io.Discard)

	notifier := &fakeNotifier{}
	client := NewClient("test-key", notifier, log)
	client.apiURL = server.URL
	client.httpClient = &http.Client{Timeout: 5 * time.Second}
	return client, notifier
}

func TestFetchTranscriptNormalizesTrack(t *testing.T) {
	client, notifier := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Basic test-key", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"ids":["dQw4w9WgXcQ"]}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{"tracks":[{"transcript":[
			{"text":"hi","start":"0","dur":"1.5"},
			{"text":" ","start":"1.5","dur":"1"}
		]}]}]`)
	})

	result, err := client.FetchTranscript(context.Background(), "dQw4w9WgXcQ", "client-1")
	require.NoError(t, err)

	// The blank entry is dropped entirely and contributes nothing to text.
	assert.Equal(t, "hi", result.Text)
	require.Len(t, result.Segments, 1)
	assert.Equal(t, "hi", result.Segments[0].Text)
	assert.Equal(t, 0.0, result.Segments[0].Start)
	assert.Equal(t, 1.5, result.Segments[0].End)

	assert.Equal(t, []string{
		"Fetching transcript from YouTube...",
		"Transcript fetched successfully!",
	}, notifier.messages)
}

func TestFetchTranscriptRateLimited(t *testing.T) {
	client, notifier := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.FetchTranscript(context.Background(), "dQw4w9WgXcQ", "client-1")
	require.ErrorIs(t, err, ErrRateLimited)
	assert.Contains(t, notifier.messages, ErrRateLimited.Error())
}

func TestFetchTranscriptUpstreamError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "upstream exploded")
	})

	_, err := client.FetchTranscript(context.Background(), "dQw4w9WgXcQ", "client-1")
	require.Error(t, err)

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusBadGateway, upstream.StatusCode)
	assert.Contains(t, err.Error(), "upstream exploded")
}

func TestFetchTranscriptNoTranscript(t *testing.T) {
	responses := map[string]string{
		"empty array":       `[]`,
		"malformed body":    `{"not":"an array"}`,
		"missing tracks":    `[{}]`,
		"empty tracks":      `[{"tracks":[]}]`,
		"empty first track": `[{"tracks":[{"transcript":[]}]}]`,
	}

	for name, body := range responses {
		t.Run(name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				io.WriteString(w, body)
			})

			_, err := client.FetchTranscript(context.Background(), "dQw4w9WgXcQ", "client-1")
			assert.ErrorIs(t, err, ErrNoTranscript)
		})
	}
}

func TestFetchTranscriptAllBlankEntries(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{"tracks":[{"transcript":[
			{"text":"  ","start":"0","dur":"1"},
			{"text":"","start":"1","dur":"1"}
		]}]}]`)
	})

	_, err := client.FetchTranscript(context.Background(), "dQw4w9WgXcQ", "client-1")
	assert.ErrorIs(t, err, ErrEmptyTranscript)
}

func TestFetchTranscriptMissingAPIKey(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	client := NewClient("", &fakeNotifier{}, log)

	_, err := client.FetchTranscript(context.Background(), "dQw4w9WgXcQ", "client-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YOUTUBE_TRANSCRIPT_IO_API_KEY")
}

func TestProcessVideoInvalidURL(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	notifier := &fakeNotifier{}
	client := NewClient("test-key", notifier, log)

	_, _, err := client.ProcessVideo(context.Background(), "https://example.com/not-youtube", "client-1")
	require.ErrorIs(t, err, ErrInvalidURL)
	assert.Equal(t, []string{
		"Processing YouTube video...",
		"Error processing YouTube video: " + ErrInvalidURL.Error(),
	}, notifier.messages)
}

func TestProcessVideoSuccess(t *testing.T) {
	client, notifier := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{"tracks":[{"transcript":[
			{"text":"first","start":"0","dur":"2"},
			{"text":"second","start":"2","dur":"3"}
		]}]}]`)
	})

	result, videoID, err := client.ProcessVideo(context.Background(), "https://youtu.be/dQw4w9WgXcQ", "client-1")
	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", videoID)
	assert.Equal(t, "first second", result.Text)
	require.Len(t, result.Segments, 2)
	assert.Equal(t, 2.0, result.Segments[1].Start)
	assert.Equal(t, 5.0, result.Segments[1].End)

	assert.Equal(t, "Processing YouTube video...", notifier.messages[0])
	assert.Equal(t, "Processing complete!", notifier.messages[len(notifier.messages)-1])
}
