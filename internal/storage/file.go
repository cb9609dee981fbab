package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/angelmondragon/miniapp-storefront/internal/cart"
)

// File persists the cart as a JSON document on disk, the desktop analog of
// the browser's local storage.
type File struct {
	path string
}

// NewFile builds a file-backed cart storage at the given path.
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("cart file path is required")
	}
	return &File{path: path}, nil
}

func (f *File) Load(ctx context.Context) ([]cart.Line, error) {
	payload, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading cart file: %w", err)
	}
	return decodeLines(payload)
}

// Save writes through a temp file and renames so a crash mid-write never
// leaves a truncated cart behind.
func (f *File) Save(ctx context.Context, lines []cart.Line) error {
	payload, err := encodeLines(lines)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".cart-*")
	if err != nil {
		return fmt.Errorf("creating temp cart file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing cart file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing cart file: %w", err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing cart file: %w", err)
	}
	return nil
}
