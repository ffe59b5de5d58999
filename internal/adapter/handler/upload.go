package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type Upload struct {
	Path string
	File *os.File
}

// withUpload stores src under dir for the duration of fn. The file is removed
// when fn returns, errors or panics.
func withUpload(dir string, src io.Reader, clientName string, fn func(*Upload) error) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	path := filepath.Join(dir, uuid.NewString()+uploadExt(clientName))
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create upload: %w", err)
	}
	defer func() {
		f.Close()
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("failed to remove upload", "path", path, "error", err)
		}
	}()

	if _, err := io.Copy(f, src); err != nil {
		return fmt.Errorf("store upload: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind upload: %w", err)
	}

	return fn(&Upload{Path: path, File: f})
}

// uploadExt keeps the client's extension so the transcription service can
// detect the container format. Anything odd falls back to .webm.
func uploadExt(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	if len(ext) < 2 || len(ext) > 6 {
		return ".webm"
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ".webm"
		}
	}
	return ext
}
