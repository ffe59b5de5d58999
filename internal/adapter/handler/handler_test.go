package handler

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rl1809/parts-inventory/internal/adapter/storage"
	"github.com/rl1809/parts-inventory/internal/core/domain"
	"github.com/rl1809/parts-inventory/internal/core/service"
)

const twoCorollaDiscs = `{"changes":[{"manufacturer":"Toyota","part":"bremžu disks","model":"Corolla","quantity":2,"action":"add"}]}`

type stubCompleter struct {
	mu       sync.Mutex
	response string
	err      error
	calls    int
}

func (s *stubCompleter) Complete(ctx context.Context, instruction string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.response, s.err
}

// stubTranscriber checks that the upload exists while it is being transcribed.
type stubTranscriber struct {
	mu          sync.Mutex
	dir         string
	text        string
	err         error
	calls       int
	existedThen bool
	audio       string
}

func (s *stubTranscriber) Transcribe(ctx context.Context, audio io.Reader, filename string, language domain.Language) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	_, statErr := os.Stat(filepath.Join(s.dir, filename))
	s.existedThen = statErr == nil
	data, _ := io.ReadAll(audio)
	s.audio = string(data)
	return s.text, s.err
}

type stubCache struct {
	mu   sync.Mutex
	keys map[string]bool
}

func (s *stubCache) SetIdempotency(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *stubCache) ReleaseIdempotency(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}

func (s *stubCache) GetInterpretation(ctx context.Context, key string) (string, bool, error) {
	return "", false, nil
}

func (s *stubCache) SetInterpretation(ctx context.Context, key, raw string, ttl time.Duration) error {
	return nil
}

type testEnv struct {
	repo        *storage.MemoryAdapter
	completer   *stubCompleter
	transcriber *stubTranscriber
	uploadDir   string
	commands    *service.CommandService
	inventory   *service.InventoryService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	uploadDir := t.TempDir()
	env := &testEnv{
		repo:        storage.NewMemoryAdapter(),
		completer:   &stubCompleter{response: twoCorollaDiscs},
		transcriber: &stubTranscriber{dir: uploadDir, text: "pievieno divus tajota bremžu diskus Corolla"},
		uploadDir:   uploadDir,
	}

	prompts, err := service.NewPromptBuilder(service.DefaultTemplates)
	if err != nil {
		t.Fatalf("prompt builder: %v", err)
	}
	normalizer := service.NewTextNormalizer(service.DefaultCorrections, []domain.Language{domain.LanguageLatvian})
	cache := &stubCache{keys: make(map[string]bool)}

	env.commands = service.NewCommandService(normalizer, prompts, env.completer, env.transcriber, cache, time.Hour)
	env.inventory = service.NewInventoryService(env.repo, cache)
	return env
}

func (e *testEnv) seed(t *testing.T, parts ...domain.Part) []domain.Part {
	t.Helper()
	out := make([]domain.Part, 0, len(parts))
	for _, p := range parts {
		created, err := e.repo.Insert(context.Background(), p)
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		out = append(out, created)
	}
	return out
}

func (e *testEnv) uploadsLeft(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(e.uploadDir)
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	return len(entries)
}
