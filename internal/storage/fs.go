// Package storage provides blob storage for source documents and extracted
// images. The filesystem implementation treats a root directory as the
// container: source documents sit at the top level, extracted images are
// written back under images/{source}/page_{n}/.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// imagesDir is the subtree for extracted page images. It is excluded from
// document listings so a rerun does not try to ingest its own output.
const imagesDir = "images"

// FS is a filesystem-backed blob store rooted at one directory.
type FS struct {
	root string
}

// NewFS creates a filesystem blob store. The root must exist.
func NewFS(root string) (*FS, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("storage root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage root %s is not a directory", root)
	}
	return &FS{root: root}, nil
}

// List returns the names of source documents at the container root, sorted
// for deterministic ingestion order. Subdirectories are skipped.
func (f *FS) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", f.root, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Download reads one source document by name.
func (f *FS) Download(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(f.root, filepath.Clean(name)))
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", name, err)
	}
	return data, nil
}

// UploadImage persists one extracted image and returns its blob path relative
// to the container root.
func (f *FS) UploadImage(ctx context.Context, sourceName string, page int, fileName string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rel := filepath.Join(imagesDir, sourceName, fmt.Sprintf("page_%d", page), fileName)
	full := filepath.Join(f.root, rel)

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("upload %s: %w", rel, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("upload %s: %w", rel, err)
	}

	return filepath.ToSlash(rel), nil
}
