// Package reader parses source documents into positioned pages. Each format
// yields its own position kind: PDF pages carry page numbers, DOCX paragraphs
// carry section and paragraph numbers, XLSX rows carry sheet and row numbers.
package reader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chanmyae99/sopqa/internal/domain"
)

// Registry dispatches document parsing by file extension.
type Registry struct{}

// New creates a reader registry.
func New() *Registry {
	return &Registry{}
}

// Supported reports whether the file name has a readable extension.
func (r *Registry) Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf", ".docx", ".xlsx":
		return true
	}
	return false
}

// Read parses one document into pages. Unknown extensions return
// domain.ErrUnsupportedFormat so callers can skip rather than fail.
func (r *Registry) Read(name string, data []byte) ([]domain.Page, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return readPDF(data)
	case ".docx":
		return readDOCX(data)
	case ".xlsx":
		return readXLSX(data)
	}
	return nil, fmt.Errorf("%s: %w", name, domain.ErrUnsupportedFormat)
}
