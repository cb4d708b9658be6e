package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"lingoscribe/backend/models"
)

const defaultAPIURL = "https://www.youtube-transcript.io/api/transcripts"

// Error taxonomy for the YouTube path. These surface verbatim as the HTTP
// error detail, so the messages are user-facing.
var (
	ErrInvalidURL      = errors.New("Invalid YouTube URL. Please provide a valid YouTube video link.")
	ErrRateLimited     = errors.New("Rate limit exceeded. Please wait a moment and try again.")
	ErrNoTranscript    = errors.New("Unfortunately, there is no transcript available for this video")
	ErrEmptyTranscript = errors.New("Transcript is empty")
)

// UpstreamError reports a non-200, non-429 response from the transcript
// API, carrying the upstream response body.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Body)
}

// Notifier delivers advisory progress strings to one identified client.
type Notifier interface {
	Send(clientID, message string)
}

// Client fetches caption tracks from the youtube-transcript.io API and
// normalizes them into TranscriptResult.
type Client struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
	notifier   Notifier
	log        *logrus.Logger
}

func NewClient(apiKey string, notifier Notifier, log *logrus.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		apiURL: defaultAPIURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		notifier: notifier,
		log:      log,
	}
}

// Wire format of the transcript API: one item per requested id, each with
// caption tracks whose entries carry numeric-as-string timings.
type transcriptEntry struct {
	Text  string `json:"text"`
	Start string `json:"start"`
	Dur   string `json:"dur"`
}

type captionTrack struct {
	Transcript []transcriptEntry `json:"transcript"`
}

type transcriptItem struct {
	Tracks []captionTrack `json:"tracks"`
}

// ProcessVideo resolves url to a video id and fetches its transcript.
// Returns the normalized transcript, the video id and an error. Progress
// strings go to the client's channel at each step; on failure the channel
// also receives the error message, prefixed for display.
func (c *Client) ProcessVideo(ctx context.Context, url, clientID string) (models.TranscriptResult, string, error) {
	c.notifier.Send(clientID, "Processing YouTube video...")
	c.log.Infof("Processing YouTube URL: %s", url)

	videoID := ExtractVideoID(url)
	if videoID == "" {
		c.notifier.Send(clientID, fmt.Sprintf("Error processing YouTube video: %s", ErrInvalidURL.Error()))
		return models.TranscriptResult{}, "", ErrInvalidURL
	}

	result, err := c.FetchTranscript(ctx, videoID, clientID)
	if err != nil {
		c.notifier.Send(clientID, fmt.Sprintf("Error processing YouTube video: %s", err.Error()))
		return models.TranscriptResult{}, "", err
	}

	c.notifier.Send(clientID, "Processing complete!")
	c.log.Infof("YouTube video %s processed, %d segments", videoID, len(result.Segments))
	return result, videoID, nil
}

// FetchTranscript requests the caption tracks for videoID and normalizes
// the first track. Entries whose text is blank after trimming are dropped
// entirely and contribute nothing to the joined text.
func (c *Client) FetchTranscript(ctx context.Context, videoID, clientID string) (models.TranscriptResult, error) {
	if c.apiKey == "" {
		return models.TranscriptResult{}, errors.New("YOUTUBE_TRANSCRIPT_IO_API_KEY not set in environment variables")
	}

	c.notifier.Send(clientID, "Fetching transcript from YouTube...")
	c.log.Infof("Fetching transcript for video ID: %s", videoID)

	result, err := c.fetch(ctx, videoID)
	if err != nil {
		c.notifier.Send(clientID, err.Error())
		return models.TranscriptResult{}, err
	}

	c.notifier.Send(clientID, "Transcript fetched successfully!")
	return result, nil
}

func (c *Client) fetch(ctx context.Context, videoID string) (models.TranscriptResult, error) {
	payload, err := json.Marshal(map[string][]string{"ids": {videoID}})
	if err != nil {
		return models.TranscriptResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return models.TranscriptResult{}, err
	}
	req.Header.Set("Authorization", "Basic "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.TranscriptResult{}, fmt.Errorf("Network error: %s", err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return models.TranscriptResult{}, ErrRateLimited
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.TranscriptResult{}, fmt.Errorf("Network error: %s", err.Error())
	}

	if resp.StatusCode != http.StatusOK {
		return models.TranscriptResult{}, &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var items []transcriptItem
	if err := json.Unmarshal(body, &items); err != nil || len(items) == 0 {
		return models.TranscriptResult{}, ErrNoTranscript
	}

	item := items[0]
	if len(item.Tracks) == 0 || len(item.Tracks[0].Transcript) == 0 {
		return models.TranscriptResult{}, ErrNoTranscript
	}

	return normalizeTrack(item.Tracks[0])
}

// normalizeTrack converts raw caption entries into the canonical transcript
// shape. The full text is the segment texts joined with single spaces, in
// original order.
func normalizeTrack(track captionTrack) (models.TranscriptResult, error) {
	segments := make([]models.Segment, 0, len(track.Transcript))
	parts := make([]string, 0, len(track.Transcript))

	for _, entry := range track.Transcript {
		text := strings.TrimSpace(entry.Text)
		if text == "" {
			continue
		}

		start, _ := strconv.ParseFloat(entry.Start, 64)
		dur, _ := strconv.ParseFloat(entry.Dur, 64)

		segments = append(segments, models.Segment{
			Text:  text,
			Start: start,
			End:   start + dur,
		})
		parts = append(parts, text)
	}

	if len(segments) == 0 {
		return models.TranscriptResult{}, ErrEmptyTranscript
	}

	return models.TranscriptResult{
		Text:     strings.Join(parts, " "),
		Segments: segments,
	}, nil
}
