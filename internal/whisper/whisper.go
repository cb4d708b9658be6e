package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"lingoscribe/backend/models"
)

const defaultAPIURL = "https://api.openai.com/v1/audio/transcriptions"

// ObjectStore is the storage capability the service needs to materialize
// media referenced by bucket key.
type ObjectStore interface {
	Download(key string) ([]byte, error)
}

// Notifier delivers advisory progress strings to one identified client.
type Notifier interface {
	Send(clientID, message string)
}

// Service transcribes audio via the OpenAI Whisper API. The source may be
// a public URL or a bucket key; either way it is materialized into a
// single temp file that is removed before Transcribe returns.
type Service struct {
	apiKey     string
	apiURL     string
	model      string
	httpClient *http.Client
	downloader *http.Client
	store      ObjectStore
	notifier   Notifier
	log        *logrus.Logger
}

func NewService(apiKey string, store ObjectStore, notifier Notifier, log *logrus.Logger) *Service {
	return &Service{
		apiKey: apiKey,
		apiURL: defaultAPIURL,
		model:  "whisper-1",
		// Uploads can be large and Whisper is slow on long media.
		httpClient: &http.Client{Timeout: 10 * time.Minute},
		downloader: &http.Client{Timeout: 5 * time.Minute},
		store:      store,
		notifier:   notifier,
		log:        log,
	}
}

// Transcribe runs the full speech-to-text step for source. It never
// returns an error: any failure is absorbed into a normal-shaped result
// whose Text carries the error message and whose Segments are empty, so
// the upload response still renders for the client.
func (s *Service) Transcribe(ctx context.Context, source, clientID string) models.TranscriptResult {
	s.notifier.Send(clientID, "Transcribing...")
	s.log.Info("Starting transcription")

	result, err := s.transcribe(ctx, source)
	if err != nil {
		message := fmt.Sprintf("Error during transcription: %s", err.Error())
		s.log.Error(message)
		s.notifier.Send(clientID, message)
		return models.TranscriptResult{Text: message, Segments: []models.Segment{}}
	}

	s.notifier.Send(clientID, "Transcription complete.")
	s.log.Infof("Transcription complete, %d segments", len(result.Segments))
	return result
}

func (s *Service) transcribe(ctx context.Context, source string) (models.TranscriptResult, error) {
	path, err := s.materialize(ctx, source)
	if err != nil {
		return models.TranscriptResult{}, err
	}
	defer os.Remove(path)

	return s.callWhisper(ctx, path)
}

// materialize resolves source to a local temp file. An http(s) source is
// stream-downloaded; anything else is treated as a bucket key and fetched
// from the object store. The caller owns the returned file.
func (s *Service) materialize(ctx context.Context, source string) (string, error) {
	ext := sourceExtension(source)

	tmp, err := os.CreateTemp("", "audio-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	if err := s.fill(ctx, tmp, source); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

func (s *Service) fill(ctx context.Context, dst *os.File, source string) error {
	if isURL(source) {
		s.log.Infof("Downloading file from URL: %s", source)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return err
		}
		resp, err := s.downloader.Do(req)
		if err != nil {
			return fmt.Errorf("failed to download file: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("failed to download file: HTTP %d", resp.StatusCode)
		}
		_, err = io.Copy(dst, resp.Body)
		return err
	}

	s.log.Infof("Downloading file from storage bucket: %s", source)
	data, err := s.store.Download(source)
	if err != nil {
		return err
	}
	_, err = dst.Write(data)
	return err
}

// verboseTranscription is the verbose_json response shape, which carries
// segment-level timing alongside the full text.
type verboseTranscription struct {
	Text     string `json:"text"`
	Segments []struct {
		Text  string  `json:"text"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"segments"`
}

func (s *Service) callWhisper(ctx context.Context, path string) (models.TranscriptResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return models.TranscriptResult{}, err
	}
	defer file.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("model", s.model); err != nil {
		return models.TranscriptResult{}, err
	}
	if err := mw.WriteField("response_format", "verbose_json"); err != nil {
		return models.TranscriptResult{}, err
	}

	fw, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return models.TranscriptResult{}, err
	}
	if _, err := io.Copy(fw, file); err != nil {
		return models.TranscriptResult{}, err
	}
	if err := mw.Close(); err != nil {
		return models.TranscriptResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, &body)
	if err != nil {
		return models.TranscriptResult{}, err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return models.TranscriptResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return models.TranscriptResult{}, fmt.Errorf("whisper API returned HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var vt verboseTranscription
	if err := json.NewDecoder(resp.Body).Decode(&vt); err != nil {
		return models.TranscriptResult{}, fmt.Errorf("failed to decode whisper response: %w", err)
	}

	// Segments map over verbatim. Unlike the YouTube path, empty-text
	// segments are kept to preserve upstream fidelity.
	segments := make([]models.Segment, 0, len(vt.Segments))
	for _, seg := range vt.Segments {
		segments = append(segments, models.Segment{
			Text:  seg.Text,
			Start: seg.Start,
			End:   seg.End,
		})
	}

	return models.TranscriptResult{Text: vt.Text, Segments: segments}, nil
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// sourceExtension determines the temp file extension from the source,
// stripping query parameters from URLs. Defaults to .mp3.
func sourceExtension(source string) string {
	path := source
	if isURL(source) {
		if u, err := url.Parse(source); err == nil {
			path = u.Path
		}
	}

	ext := filepath.Ext(path)
	if ext == "" {
		ext = ".mp3"
	}
	return ext
}
