// Package openai talks to OpenAI-compatible completion and transcription APIs.
//
// It uses the Chat Completions API to turn an extraction instruction into JSON
// text, and the Audio Transcription API (Whisper) for speech-to-text.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/rl1809/parts-inventory/internal/config"
	"github.com/rl1809/parts-inventory/internal/core/domain"
)

// StatusError is returned when the upstream API answers with a non-200 status.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed (status %d): %s", e.Op, e.StatusCode, e.Body)
}

type transportError struct {
	op  string
	err error
}

func (e *transportError) Error() string {
	return fmt.Sprintf("%s request: %v", e.op, e.err)
}

func (e *transportError) Unwrap() error {
	return e.err
}

// Client implements port.Completer and port.Transcriber.
type Client struct {
	apiKey             string
	baseURL            string
	completionModel    string
	transcriptionModel string
	maxTokens          int
	temperature        float64
	retry              retryPolicy
	client             *http.Client
}

// New creates a client from config.
func New(cfg config.OpenAIConfig) *Client {
	return &Client{
		apiKey:             cfg.APIKey,
		baseURL:            strings.TrimRight(cfg.BaseURL, "/"),
		completionModel:    cfg.CompletionModel,
		transcriptionModel: cfg.TranscriptionModel,
		maxTokens:          cfg.MaxTokens,
		temperature:        cfg.Temperature,
		retry:              newRetryPolicy(cfg.MaxRetries, cfg.RetryBackoff),
		client:             &http.Client{Timeout: cfg.Timeout},
	}
}

// Complete sends the instruction as a single user message and returns the
// content of the first choice.
func (c *Client) Complete(ctx context.Context, instruction string) (string, error) {
	reqBody := chatRequest{
		Model: c.completionModel,
		Messages: []chatMessage{
			{Role: "user", Content: instruction},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		N:           1,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshalling chat request: %w", err)
	}

	var chatResp chatResponse
	err = c.retry.do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
		if err != nil {
			return fmt.Errorf("creating chat request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		return c.send(req, "chat", &chatResp)
	})
	if err != nil {
		return "", err
	}

	if len(chatResp.Choices) == 0 {
		return "", errors.New("no choices returned from chat API")
	}

	content := chatResp.Choices[0].Message.Content
	slog.DebugContext(ctx, "completion complete", "model", c.completionModel, "content_length", len(content))
	return content, nil
}

// Transcribe uploads the audio to the transcription API with the language hint.
func (c *Client) Transcribe(ctx context.Context, audio io.Reader, filename string, language domain.Language) (string, error) {
	data, err := io.ReadAll(audio)
	if err != nil {
		return "", fmt.Errorf("reading audio: %w", err)
	}
	if filename == "" {
		filename = "audio.webm"
	}

	var result struct {
		Text string `json:"text"`
	}
	err = c.retry.do(ctx, func() error {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)

		part, err := writer.CreateFormFile("file", filepath.Base(filename))
		if err != nil {
			return fmt.Errorf("creating form file: %w", err)
		}
		if _, err := part.Write(data); err != nil {
			return fmt.Errorf("writing audio: %w", err)
		}
		_ = writer.WriteField("model", c.transcriptionModel)
		_ = writer.WriteField("response_format", "json")
		_ = writer.WriteField("language", string(language))
		if err := writer.Close(); err != nil {
			return fmt.Errorf("closing form: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", body)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", writer.FormDataContentType())
		return c.send(req, "transcription", &result)
	})
	if err != nil {
		return "", err
	}

	slog.DebugContext(ctx, "transcription complete", "language", language, "text_length", len(result.Text))
	return result.Text, nil
}

func (c *Client) send(req *http.Request, op string, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return &transportError{op: op, err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", op, err)
	}
	return nil
}

// --- Internal types ---

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
	N           int           `json:"n"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// retryPolicy retries transport failures, rate limits and server errors with
// exponential backoff. Anything else fails immediately.
type retryPolicy struct {
	maxRetries int
	backoff    time.Duration
}

func newRetryPolicy(maxRetries int, backoff time.Duration) retryPolicy {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	return retryPolicy{maxRetries: maxRetries, backoff: backoff}
}

func (r retryPolicy) do(ctx context.Context, fn func() error) error {
	var err error
	delay := r.backoff
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || attempt >= r.maxRetries || !isRetryable(err) {
			return err
		}
		slog.WarnContext(ctx, "upstream call failed, retrying", "attempt", attempt+1, "delay", delay, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500
	}
	var transportErr *transportError
	return errors.As(err, &transportErr)
}
