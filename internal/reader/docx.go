package reader

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/chanmyae99/sopqa/internal/domain"
)

const docxDocumentPath = "word/document.xml"

// docxDocument mirrors the parts of word/document.xml we need.
type docxDocument struct {
	Body struct {
		Paragraphs []docxParagraph `xml:"p"`
	} `xml:"body"`
}

type docxParagraph struct {
	Props struct {
		Style struct {
			Val string `xml:"val,attr"`
		} `xml:"pStyle"`
	} `xml:"pPr"`
	Runs []docxRun `xml:"r"`
}

type docxRun struct {
	Text []struct {
		Content string `xml:",chardata"`
	} `xml:"t"`
}

func (p *docxParagraph) text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		for _, t := range r.Text {
			b.WriteString(t.Content)
		}
	}
	return strings.TrimSpace(b.String())
}

func (p *docxParagraph) isHeading() bool {
	return strings.HasPrefix(p.Props.Style.Val, "Heading")
}

// readDOCX yields one page per non-empty paragraph. Heading paragraphs are
// not emitted themselves; they set the section for what follows and reset the
// paragraph counter. Text before the first heading falls under "Introduction".
func readDOCX(data []byte) ([]domain.Page, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}

	content, err := readZipFile(zr, docxDocumentPath)
	if err != nil {
		return nil, err
	}

	var doc docxDocument
	if err := xml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", docxDocumentPath, err)
	}

	var pages []domain.Page
	section := "Introduction"
	paragraph := 0

	for i := range doc.Body.Paragraphs {
		p := &doc.Body.Paragraphs[i]
		text := p.text()
		if text == "" {
			continue
		}

		if p.isHeading() {
			section = text
			paragraph = 0
			continue
		}

		paragraph++
		pages = append(pages, domain.Page{
			Text:     text,
			Position: domain.SectionPosition(section, paragraph),
		})
	}

	return pages, nil
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()

		content, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return content, nil
	}
	return nil, fmt.Errorf("docx missing %s", name)
}
