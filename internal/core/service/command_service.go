package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/rl1809/parts-inventory/internal/core/domain"
	"github.com/rl1809/parts-inventory/internal/port"
)

const interpretationKeyPrefix = "interpretation:"

// Interpretation is the change batch extracted from one command, together with
// the command text that was sent for extraction.
type Interpretation struct {
	Changes     domain.ChangeBatch
	CommandText string
}

// CommandService turns text or audio commands into change batches:
// normalize, build instruction, complete, extract. It never touches inventory.
type CommandService struct {
	normalizer  *TextNormalizer
	prompts     *PromptBuilder
	completer   port.Completer
	transcriber port.Transcriber
	cache       port.CacheRepository
	cacheTTL    time.Duration
}

func NewCommandService(
	normalizer *TextNormalizer,
	prompts *PromptBuilder,
	completer port.Completer,
	transcriber port.Transcriber,
	cache port.CacheRepository,
	cacheTTL time.Duration,
) *CommandService {
	return &CommandService{
		normalizer:  normalizer,
		prompts:     prompts,
		completer:   completer,
		transcriber: transcriber,
		cache:       cache,
		cacheTTL:    cacheTTL,
	}
}

func (s *CommandService) InterpretText(ctx context.Context, command string, language domain.Language) (Interpretation, error) {
	if !language.Valid() {
		return Interpretation{}, fmt.Errorf("%w: %q", ErrInvalidLanguage, language)
	}

	text := s.normalizer.Normalize(command, language)
	if text != command {
		slog.DebugContext(ctx, "command normalized", "language", language, "before", command, "after", text)
	}

	batch, err := s.extract(ctx, text, language)
	if err != nil {
		return Interpretation{}, err
	}
	return Interpretation{Changes: batch, CommandText: text}, nil
}

// InterpretVoice transcribes the audio and interprets the transcript. The caller
// owns the audio source and its cleanup.
func (s *CommandService) InterpretVoice(ctx context.Context, audio io.Reader, filename string, language domain.Language) (Interpretation, error) {
	if !language.Valid() {
		return Interpretation{}, fmt.Errorf("%w: %q", ErrInvalidLanguage, language)
	}

	transcript, err := s.transcriber.Transcribe(ctx, audio, filename, language)
	if err != nil {
		return Interpretation{}, fmt.Errorf("transcribe: %w", err)
	}
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return Interpretation{}, ErrTranscriptionFailure
	}
	slog.InfoContext(ctx, "audio transcribed", "language", language, "text", transcript)

	return s.InterpretText(ctx, transcript, language)
}

func (s *CommandService) extract(ctx context.Context, text string, language domain.Language) (domain.ChangeBatch, error) {
	key := interpretationKey(text, language)

	if raw, ok, err := s.cache.GetInterpretation(ctx, key); err != nil {
		slog.WarnContext(ctx, "interpretation cache read failed", "error", err)
	} else if ok {
		if batch, err := ExtractChanges(raw); err == nil {
			slog.DebugContext(ctx, "interpretation cache hit", "language", language)
			return batch, nil
		}
	}

	instruction, err := s.prompts.Build(text, language)
	if err != nil {
		return nil, err
	}

	raw, err := s.completer.Complete(ctx, instruction.Text)
	if err != nil {
		return nil, fmt.Errorf("complete: %w", err)
	}
	slog.InfoContext(ctx, "completion received", "language", language, "raw", raw)

	batch, err := ExtractChanges(raw)
	if err != nil {
		var parseErr *ResponseParseError
		var schemaErr *SchemaViolationError
		switch {
		case errors.As(err, &parseErr):
			slog.ErrorContext(ctx, "completion is not valid json", "error", parseErr.Err, "raw", parseErr.Raw)
		case errors.As(err, &schemaErr):
			slog.ErrorContext(ctx, "completion schema violation", "reason", schemaErr.Reason, "raw", schemaErr.Raw)
		}
		return nil, err
	}

	if err := s.cache.SetInterpretation(ctx, key, raw, s.cacheTTL); err != nil {
		slog.WarnContext(ctx, "interpretation cache write failed", "error", err)
	}
	return batch, nil
}

func interpretationKey(text string, language domain.Language) string {
	sum := sha256.Sum256([]byte(text))
	return interpretationKeyPrefix + string(language) + ":" + hex.EncodeToString(sum[:])
}
