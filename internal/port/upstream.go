package port

import (
	"context"
	"io"

	"github.com/rl1809/parts-inventory/internal/core/domain"
)

// Completer sends one instruction to the completion service and returns its raw text.
type Completer interface {
	Complete(ctx context.Context, instruction string) (string, error)
}

// Transcriber converts an audio stream into text using a language hint.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename string, language domain.Language) (string, error)
}
