package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rl1809/parts-inventory/internal/config"
	"github.com/rl1809/parts-inventory/internal/core/domain"
)

func newTestClient(url string) *Client {
	return New(config.OpenAIConfig{
		APIKey:             "sk-test",
		BaseURL:            url,
		CompletionModel:    "gpt-3.5-turbo",
		TranscriptionModel: "whisper-1",
		MaxTokens:          500,
		Timeout:            5 * time.Second,
		MaxRetries:         2,
		RetryBackoff:       time.Millisecond,
	})
}

func TestComplete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", got)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if req.Model != "gpt-3.5-turbo" || req.MaxTokens != 500 || req.Temperature != 0 {
			t.Errorf("unexpected request: %+v", req)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" || req.Messages[0].Content != "instruction" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		w.Write([]byte(`{"choices":[{"message":{"content":"{\"changes\":[]}"}}]}`))
	}))
	defer server.Close()

	content, err := newTestClient(server.URL).Complete(context.Background(), "instruction")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if content != `{"changes":[]}` {
		t.Errorf("unexpected content %q", content)
	}
}

func TestComplete_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer server.Close()

	content, err := newTestClient(server.URL).Complete(context.Background(), "x")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if content != "ok" || calls.Load() != 3 {
		t.Errorf("expected success on third call, got %q after %d calls", content, calls.Load())
	}
}

func TestComplete_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), "x")

	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected StatusError 401, got: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 call, got %d", calls.Load())
	}
}

func TestComplete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	if _, err := newTestClient(server.URL).Complete(context.Background(), "x"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestTranscribe_SendsLanguageHint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
			return
		}
		if got := r.FormValue("language"); got != "lv" {
			t.Errorf("expected language lv, got %q", got)
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Errorf("expected model whisper-1, got %q", got)
		}
		if got := r.FormValue("response_format"); got != "json" {
			t.Errorf("expected json response format, got %q", got)
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if string(data) != "RIFF" || header.Filename != "command.wav" {
			t.Errorf("unexpected upload %q named %q", data, header.Filename)
		}

		w.Write([]byte(`{"text":" pievienot tajota disku "}`))
	}))
	defer server.Close()

	text, err := newTestClient(server.URL).Transcribe(context.Background(), strings.NewReader("RIFF"), "/tmp/uploads/command.wav", domain.LanguageLatvian)
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if text != " pievienot tajota disku " {
		t.Errorf("unexpected transcript %q", text)
	}
}
