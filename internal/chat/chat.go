package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultAPIURL = "https://api.openai.com/v1/chat/completions"
	defaultModel  = "gpt-4o-mini"
)

const systemPrompt = "You are a language learning teacher helping the user to improve their target language by talking to them about this text: %s which is in their target language. The text is a transcript of some audio or video content that they are using to study. Your only role is to help the user to improve in their target language, you cannot help with anything that is unrelated to this role."

// Client calls the OpenAI chat completions API to answer questions about
// a transcript.
type Client struct {
	apiKey     string
	apiURL     string
	model      string
	httpClient *http.Client
	log        *logrus.Logger
}

func NewClient(apiKey string, log *logrus.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		apiURL:     defaultAPIURL,
		model:      defaultModel,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		log:        log,
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Reply answers userMessage in the context of transcript. When the user
// has highlighted part of the transcript, selectedText carries it and is
// surfaced to the model as extra context.
func (c *Client) Reply(ctx context.Context, transcript, userMessage, selectedText string) (string, error) {
	messages := []message{
		{Role: "system", Content: fmt.Sprintf(systemPrompt, transcript)},
	}
	if selectedText != "" {
		messages = append(messages, message{
			Role:    "system",
			Content: fmt.Sprintf("The user has selected/highlighted this specific part of the text: %q. They may be asking about this particular section.", selectedText),
		})
	}
	messages = append(messages, message{Role: "user", Content: userMessage})

	payload, err := json.Marshal(completionRequest{Model: c.model, Messages: messages})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("chat API returned HTTP %d: %s", resp.StatusCode, string(body))
	}

	var cr completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", errors.New("chat API returned no choices")
	}

	return cr.Choices[0].Message.Content, nil
}
