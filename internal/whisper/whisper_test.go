package whisper

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	data map[string][]byte
	err  error
}

func (f *fakeStore) Download(key string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.data[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

type fakeNotifier struct {
	messages []string
}

func (f *fakeNotifier) Send(clientID, message string) {
	f.messages = append(f.messages, message)
}

func newTestService(t *testing.T, store ObjectStore, whisperHandler http.HandlerFunc) (*Service, *fakeNotifier) {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	notifier := &fakeNotifier{}
	svc := NewService("test-key", store, notifier, log)

	if whisperHandler != nil {
		server := httptest.NewServer(whisperHandler)
		t.Cleanup(server.Close)
		svc.apiURL = server.URL
	}
	return svc, notifier
}

func TestSourceExtension(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"https://example.com/storage/v1/object/public/audio/abc.m4a", ".m4a"},
		{"https://example.com/audio/abc.wav?token=xyz&sig=123", ".wav"},
		{"https://example.com/audio/no-extension", ".mp3"},
		{"abc123.flac", ".flac"},
		{"bare-key", ".mp3"},
	}

	for _, tt := range tests {
		got := sourceExtension(tt.source)
		if got != tt.want {
			t.Errorf("sourceExtension(%q) = %q, want %q", tt.source, got, tt.want)
		}
	}
}

func TestTranscribeKeepsEmptySegments(t *testing.T) {
	media := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("fake audio bytes"))
	}))
	defer media.Close()

	svc, notifier := newTestService(t, &fakeStore{}, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "verbose_json", r.FormValue("response_format"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"text":"a","segments":[
			{"text":"a","start":0,"end":1},
			{"text":"","start":1,"end":2}
		]}`)
	})

	result := svc.Transcribe(context.Background(), media.URL+"/file.mp3", "client-1")

	assert.Equal(t, "a", result.Text)
	// Empty-text segments are preserved on the speech-to-text path.
	require.Len(t, result.Segments, 2)
	assert.Equal(t, "", result.Segments[1].Text)
	assert.Equal(t, 1.0, result.Segments[1].Start)
	assert.Equal(t, 2.0, result.Segments[1].End)

	assert.Equal(t, []string{"Transcribing...", "Transcription complete."}, notifier.messages)
}

func TestTranscribeFromBucketKey(t *testing.T) {
	store := &fakeStore{data: map[string][]byte{"abc.mp3": []byte("stored audio")}}

	svc, _ := newTestService(t, store, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"text":"hello","segments":[{"text":"hello","start":0,"end":1.2}]}`)
	})

	result := svc.Transcribe(context.Background(), "abc.mp3", "client-1")
	assert.Equal(t, "hello", result.Text)
	require.Len(t, result.Segments, 1)
}

func TestTranscribeSoftFailsOnDownloadError(t *testing.T) {
	media := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer media.Close()

	svc, notifier := newTestService(t, &fakeStore{}, nil)

	result := svc.Transcribe(context.Background(), media.URL+"/gone.mp3", "client-1")

	assert.Contains(t, result.Text, "Error during transcription")
	assert.Contains(t, result.Text, "HTTP 404")
	assert.Empty(t, result.Segments)
	assert.Equal(t, result.Text, notifier.messages[len(notifier.messages)-1])
}

func TestTranscribeSoftFailsOnStorageError(t *testing.T) {
	store := &fakeStore{err: errors.New("bucket unreachable")}
	svc, _ := newTestService(t, store, nil)

	result := svc.Transcribe(context.Background(), "missing.mp3", "client-1")

	assert.Contains(t, result.Text, "Error during transcription")
	assert.Contains(t, result.Text, "bucket unreachable")
	assert.Empty(t, result.Segments)
}

func TestTranscribeSoftFailsOnWhisperError(t *testing.T) {
	media := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("fake audio bytes"))
	}))
	defer media.Close()

	svc, _ := newTestService(t, &fakeStore{}, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":"bad key"}`)
	})

	result := svc.Transcribe(context.Background(), media.URL+"/file.mp3", "client-1")

	assert.Contains(t, result.Text, "Error during transcription")
	assert.Contains(t, result.Text, "HTTP 401")
	assert.Empty(t, result.Segments)
}

func TestMaterializeCleansUpOnFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("boom")}
	svc, _ := newTestService(t, store, nil)

	path, err := svc.materialize(context.Background(), "key.mp3")
	require.Error(t, err)
	assert.Empty(t, path)
}
