package reader

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/chanmyae99/sopqa/internal/domain"
)

// readPDF extracts plain text per page. Pages without extractable text are
// dropped; page numbers are 1-based and keep their original value.
func readPDF(data []byte) ([]domain.Page, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	pages := make([]domain.Page, 0, r.NumPage())
	for n := 1; n <= r.NumPage(); n++ {
		p := r.Page(n)
		if p.V.IsNull() {
			continue
		}

		text, err := p.GetPlainText(nil)
		if err != nil {
			// A single malformed page should not sink the document.
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		pages = append(pages, domain.Page{
			Text:     text,
			Position: domain.PagePosition(n),
		})
	}

	return pages, nil
}
