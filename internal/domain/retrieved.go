package domain

// Modality distinguishes text/table evidence from image evidence.
type Modality string

const (
	// ModalityText covers text and table records.
	ModalityText Modality = "text"
	// ModalityImage covers image caption records.
	ModalityImage Modality = "image"
)

// RetrievedRecord is an index record returned by a similarity query,
// annotated at request time with a score and, after assignment, a source ID.
// Records live only for the duration of one request.
type RetrievedRecord struct {
	Modality   Modality
	SourceName string
	Position   Position
	Score      float64

	// Text records.
	Content string

	// Image records.
	ImageBlobPath string
	Caption       string

	// SourceID is the per-request citation token ("T1", "I2", ...).
	// Empty until assigned.
	SourceID string
}

// SourceRef is the citation-safe projection of a retrieved record returned
// to callers: metadata only, never vectors or raw chunk content.
type SourceRef struct {
	SourceID   string `json:"source_id"`
	SourceFile string `json:"source_file"`
	PageNumber *int   `json:"page_number,omitempty"`
	Section    string `json:"section,omitempty"`
	Paragraph  *int   `json:"paragraph_number,omitempty"`
	SheetName  string `json:"sheet_name,omitempty"`
	RowNumber  *int   `json:"row_number,omitempty"`
	Caption    string `json:"caption,omitempty"`
	ImagePath  string `json:"image_path,omitempty"`
}

// Ref projects the record to its citation-safe shape.
func (r *RetrievedRecord) Ref() SourceRef {
	ref := SourceRef{
		SourceID:   r.SourceID,
		SourceFile: r.SourceName,
		Caption:    r.Caption,
		ImagePath:  r.ImageBlobPath,
	}
	switch r.Position.Kind {
	case PositionPage:
		page := r.Position.Page
		ref.PageNumber = &page
	case PositionSection:
		ref.Section = r.Position.Section
		if r.Position.Paragraph > 0 {
			para := r.Position.Paragraph
			ref.Paragraph = &para
		}
	case PositionSheet:
		ref.SheetName = r.Position.Sheet
		if r.Position.Row > 0 {
			row := r.Position.Row
			ref.RowNumber = &row
		}
	}
	return ref
}

// Answer is the final grounded response: the generated text and the refs of
// every record actually cited in it.
type Answer struct {
	Question string      `json:"question"`
	Answer   string      `json:"answer"`
	Sources  []SourceRef `json:"sources"`
}
