package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Input stores uploaded media until the worker has consumed it.
type Input interface {
	Save(ctx context.Context, id uuid.UUID, filename string, r io.Reader) (string, error)
}

type InputStore struct {
	root string
}

var _ Input = (*InputStore)(nil)

func NewInputStore(root string) Input {
	return &InputStore{root: root}
}

// Save writes the upload to <root>/<job id>/<filename> and returns its path.
// Each job gets its own directory so uploads with the same name never collide.
func (s *InputStore) Save(_ context.Context, id uuid.UUID, filename string, r io.Reader) (string, error) {
	name, err := cleanFilename(filename)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(s.root, id.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating upload directory: %w", err)
	}

	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating upload file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("writing upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing upload file: %w", err)
	}
	return path, nil
}

func cleanFilename(filename string) (string, error) {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "" || name == "." || name == ".." || name == "/" {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}
	return name, nil
}
