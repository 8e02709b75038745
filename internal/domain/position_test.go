package domain

import "testing"

func TestPosition_Citation(t *testing.T) {
	tests := []struct {
		name string
		pos  Position
		want string
	}{
		{"none", Position{}, ""},
		{"page", PagePosition(7), ", page 7"},
		{"section with paragraph", SectionPosition("Lockout Procedure", 2),
			`, section "Lockout Procedure", paragraph 2`},
		{"section only", SectionPosition("Scope", 0), `, section "Scope"`},
		{"sheet with row", SheetPosition("Incidents", 14), `, sheet "Incidents", row 14`},
		{"sheet only", SheetPosition("Incidents", 0), `, sheet "Incidents"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pos.Citation(); got != tt.want {
				t.Errorf("Citation() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRetrievedRecord_Ref(t *testing.T) {
	rec := RetrievedRecord{
		Modality:   ModalityText,
		SourceName: "sop.pdf",
		Position:   PagePosition(3),
		Content:    "never returned to callers",
		SourceID:   "T1",
	}
	ref := rec.Ref()

	if ref.SourceID != "T1" || ref.SourceFile != "sop.pdf" {
		t.Errorf("unexpected ref identity: %+v", ref)
	}
	if ref.PageNumber == nil || *ref.PageNumber != 3 {
		t.Error("expected page_number=3")
	}
	if ref.Section != "" || ref.SheetName != "" {
		t.Error("page-positioned ref must not carry section or sheet fields")
	}
}

func TestRetrievedRecord_RefImage(t *testing.T) {
	rec := RetrievedRecord{
		Modality:      ModalityImage,
		SourceName:    "sop.pdf",
		Position:      PagePosition(2),
		Caption:       "exit route diagram",
		ImageBlobPath: "images/sop.pdf/page_2/sop.pdf_p2_0.png",
		SourceID:      "I1",
	}
	ref := rec.Ref()

	if ref.Caption != "exit route diagram" {
		t.Errorf("expected caption in ref, got %q", ref.Caption)
	}
	if ref.ImagePath == "" {
		t.Error("expected image path in ref")
	}
}
