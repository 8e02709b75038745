package index

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/chanmyae99/sopqa/internal/db"
	"github.com/chanmyae99/sopqa/internal/domain"
)

// Hash field names. These are the only fields the service reads or writes on
// an index record.
const (
	fieldAssetType     = "asset_type"
	fieldContent       = "content"
	fieldContentVector = "content_vector"
	fieldSourceName    = "metadata_storage_name"
	fieldStoragePath   = "metadata_storage_path"
	fieldPageNumber    = "page_number"
	fieldSection       = "section"
	fieldParagraph     = "paragraph_number"
	fieldSheetName     = "sheet_name"
	fieldRowNumber     = "row_number"
	fieldImageBlobPath = "image_blob_path"
	fieldImageCaption  = "image_caption"
	fieldImageVector   = "image_vector"
)

// textReturnFields are fetched for text/table hits; record content is needed
// for the evidence block.
var textReturnFields = []string{
	fieldAssetType, fieldContent, fieldSourceName,
	fieldPageNumber, fieldSection, fieldParagraph,
	fieldSheetName, fieldRowNumber,
}

// imageReturnFields are fetched for image hits.
var imageReturnFields = []string{
	fieldAssetType, fieldImageCaption, fieldImageBlobPath,
	fieldSourceName, fieldPageNumber,
}

// buildHashFields converts an IndexRecord into a flat map[string]string for HSET.
func buildHashFields(rec *domain.IndexRecord) map[string]string {
	m := map[string]string{
		fieldAssetType:   string(rec.AssetType),
		fieldSourceName:  rec.SourceName,
		fieldStoragePath: rec.Key,
	}

	switch rec.Position.Kind {
	case domain.PositionPage:
		m[fieldPageNumber] = strconv.Itoa(rec.Position.Page)
	case domain.PositionSection:
		m[fieldSection] = rec.Position.Section
		if rec.Position.Paragraph > 0 {
			m[fieldParagraph] = strconv.Itoa(rec.Position.Paragraph)
		}
	case domain.PositionSheet:
		m[fieldSheetName] = rec.Position.Sheet
		if rec.Position.Row > 0 {
			m[fieldRowNumber] = strconv.Itoa(rec.Position.Row)
		}
	}

	if rec.AssetType == domain.AssetImage {
		m[fieldImageBlobPath] = rec.ImageBlobPath
		m[fieldImageCaption] = rec.ImageCaption
		m[fieldImageVector] = vectorToBytes(rec.ImageVector)
	} else {
		m[fieldContent] = rec.Content
		m[fieldContentVector] = vectorToBytes(rec.ContentVector)
	}

	return m
}

// parseTextEntry converts a text/table search hit into a retrieved record.
func parseTextEntry(e *db.SearchEntry) domain.RetrievedRecord {
	return domain.RetrievedRecord{
		Modality:   domain.ModalityText,
		SourceName: e.Fields[fieldSourceName],
		Position:   parsePosition(e.Fields),
		Content:    e.Fields[fieldContent],
		Score:      e.Score,
	}
}

// parseImageEntry converts an image search hit into a retrieved record.
func parseImageEntry(e *db.SearchEntry) domain.RetrievedRecord {
	return domain.RetrievedRecord{
		Modality:      domain.ModalityImage,
		SourceName:    e.Fields[fieldSourceName],
		Position:      parsePosition(e.Fields),
		Caption:       e.Fields[fieldImageCaption],
		ImageBlobPath: e.Fields[fieldImageBlobPath],
		Score:         e.Score,
	}
}

// parsePosition rebuilds the positional context from hash fields, honoring
// the page > section > sheet precedence.
func parsePosition(fields map[string]string) domain.Position {
	if v, ok := fields[fieldPageNumber]; ok && v != "" {
		if page, err := strconv.Atoi(v); err == nil {
			return domain.PagePosition(page)
		}
	}
	if section, ok := fields[fieldSection]; ok && section != "" {
		para, _ := strconv.Atoi(fields[fieldParagraph])
		return domain.SectionPosition(section, para)
	}
	if sheet, ok := fields[fieldSheetName]; ok && sheet != "" {
		row, _ := strconv.Atoi(fields[fieldRowNumber])
		return domain.SheetPosition(sheet, row)
	}
	return domain.Position{}
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
