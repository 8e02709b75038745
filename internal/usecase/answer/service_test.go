package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/chanmyae99/sopqa/internal/domain"
	"github.com/chanmyae99/sopqa/internal/usecase/retrieval"
)

type mockRetriever struct {
	ev  retrieval.Evidence
	err error
}

func (m *mockRetriever) Retrieve(_ context.Context, _ string, _, _ int) (retrieval.Evidence, error) {
	return m.ev, m.err
}

type mockCompleter struct {
	reply      string
	err        error
	calls      int
	lastSystem string
	lastUser   string
}

func (m *mockCompleter) Complete(_ context.Context, system, user string) (string, error) {
	m.calls++
	m.lastSystem = system
	m.lastUser = user
	return m.reply, m.err
}

func evidence() retrieval.Evidence {
	return retrieval.Evidence{
		Texts: []domain.RetrievedRecord{
			{
				Modality:   domain.ModalityText,
				SourceName: "lifting.pdf",
				Position:   domain.PagePosition(7),
				Content:    "Attach tag lines before the lift.",
			},
			{
				Modality:   domain.ModalityText,
				SourceName: "manual.docx",
				Position:   domain.SectionPosition("Safety Requirements", 2),
				Content:    "Inspect slings before each use.",
			},
		},
		Images: []domain.RetrievedRecord{
			{
				Modality:      domain.ModalityImage,
				SourceName:    "lifting.pdf",
				Position:      domain.PagePosition(2),
				Caption:       "exclusion zone around a suspended load",
				ImageBlobPath: "images/lifting.pdf/page_2/lifting.pdf_p2_0.png",
			},
		},
	}
}

func TestAnswer_EmptyEvidenceShortCircuit(t *testing.T) {
	completer := &mockCompleter{}
	svc := New(&mockRetriever{}, completer)

	got, err := svc.Answer(context.Background(), "what is the limit?", 0, 0)
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	if got.Answer != NotAvailable {
		t.Errorf("answer = %q, want the fixed not-available text", got.Answer)
	}
	if got.Sources == nil || len(got.Sources) != 0 {
		t.Errorf("sources = %v, want empty non-nil slice", got.Sources)
	}
	if completer.calls != 0 {
		t.Error("model was called despite empty evidence")
	}
}

func TestAnswer_FiltersToCitedSources(t *testing.T) {
	completer := &mockCompleter{reply: "Attach tag lines [T1]. Based on the diagram [I1], keep the zone clear."}
	svc := New(&mockRetriever{ev: evidence()}, completer)

	got, err := svc.Answer(context.Background(), "how do I control the load?", 0, 0)
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	if len(got.Sources) != 2 {
		t.Fatalf("sources = %d, want 2 (T1 and I1, not uncited T2)", len(got.Sources))
	}
	if got.Sources[0].SourceID != "T1" || got.Sources[1].SourceID != "I1" {
		t.Errorf("source IDs = %s, %s; want T1, I1", got.Sources[0].SourceID, got.Sources[1].SourceID)
	}
	if got.Sources[0].SourceFile != "lifting.pdf" {
		t.Errorf("source file = %q", got.Sources[0].SourceFile)
	}
	if got.Sources[0].PageNumber == nil || *got.Sources[0].PageNumber != 7 {
		t.Error("T1 must carry its page number")
	}
	if got.Sources[1].Caption == "" || got.Sources[1].ImagePath == "" {
		t.Error("I1 must carry caption and image path")
	}
}

func TestAnswer_NoCitations(t *testing.T) {
	completer := &mockCompleter{reply: "The procedure requires trained riggers."}
	svc := New(&mockRetriever{ev: evidence()}, completer)

	got, err := svc.Answer(context.Background(), "who may rig?", 0, 0)
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if len(got.Sources) != 0 {
		t.Errorf("sources = %d, want 0 when nothing is cited", len(got.Sources))
	}
}

func TestAnswer_PromptContainsEvidence(t *testing.T) {
	completer := &mockCompleter{reply: "ok [T1]"}
	svc := New(&mockRetriever{ev: evidence()}, completer)

	if _, err := svc.Answer(context.Background(), "how?", 0, 0); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	if !strings.Contains(completer.lastUser, "TEXT EVIDENCE:") {
		t.Error("prompt missing TEXT EVIDENCE section")
	}
	if !strings.Contains(completer.lastUser, "IMAGE EVIDENCE:") {
		t.Error("prompt missing IMAGE EVIDENCE section")
	}
	if !strings.Contains(completer.lastUser, "[T1] lifting.pdf, page 7") {
		t.Errorf("prompt missing page citation, got:\n%s", completer.lastUser)
	}
	if !strings.Contains(completer.lastUser, `[T2] manual.docx, section "Safety Requirements", paragraph 2`) {
		t.Errorf("prompt missing section citation, got:\n%s", completer.lastUser)
	}
	if !strings.Contains(completer.lastUser, "Diagram description:\nexclusion zone") {
		t.Error("prompt missing image caption block")
	}
	if !strings.Contains(completer.lastSystem, "SOP Q&A assistant") {
		t.Error("system prompt not passed through")
	}
}

func TestAnswer_RetrieverError(t *testing.T) {
	wantErr := errors.New("index down")
	svc := New(&mockRetriever{err: wantErr}, &mockCompleter{})

	if _, err := svc.Answer(context.Background(), "q", 0, 0); !errors.Is(err, wantErr) {
		t.Fatalf("Answer() error = %v, want %v", err, wantErr)
	}
}

func TestAnswer_CompleterError(t *testing.T) {
	wantErr := errors.New("model overloaded")
	svc := New(&mockRetriever{ev: evidence()}, &mockCompleter{err: wantErr})

	if _, err := svc.Answer(context.Background(), "q", 0, 0); !errors.Is(err, wantErr) {
		t.Fatalf("Answer() error = %v, want wrapped %v", err, wantErr)
	}
}

func TestExtractCitedIDs(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"Use the hoist [T1] and see [I2].", []string{"T1", "I2"}},
		{"Repeated [T1] cites [T1] once.", []string{"T1"}},
		{"Bare T1 without brackets is not a citation.", nil},
		{"[T10] double digits work.", []string{"T10"}},
		{"[X1] unknown prefixes are ignored.", nil},
		{"", nil},
	}

	for _, tt := range tests {
		got := extractCitedIDs(tt.text)
		if len(got) != len(tt.want) {
			t.Errorf("extractCitedIDs(%q) = %v, want %v", tt.text, got, tt.want)
			continue
		}
		for _, id := range tt.want {
			if !got[id] {
				t.Errorf("extractCitedIDs(%q) missing %s", tt.text, id)
			}
		}
	}
}

func TestAssignSourceIDs_Scoping(t *testing.T) {
	ev := evidence()
	assignSourceIDs(&ev)

	if ev.Texts[0].SourceID != "T1" || ev.Texts[1].SourceID != "T2" {
		t.Errorf("text IDs = %s, %s; want T1, T2", ev.Texts[0].SourceID, ev.Texts[1].SourceID)
	}
	if ev.Images[0].SourceID != "I1" {
		t.Errorf("image ID = %s, want I1", ev.Images[0].SourceID)
	}

	// A second request starts numbering from scratch.
	ev2 := retrieval.Evidence{Texts: []domain.RetrievedRecord{ev.Texts[1]}}
	assignSourceIDs(&ev2)
	if ev2.Texts[0].SourceID != "T1" {
		t.Errorf("reassigned ID = %s, want T1", ev2.Texts[0].SourceID)
	}
}
