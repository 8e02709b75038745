// Package eval scores the pipeline offline: retrieval precision against
// expected source files, and answer faithfulness via an LLM judge.
package eval

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/chanmyae99/sopqa/internal/domain"
	"github.com/chanmyae99/sopqa/internal/usecase/retrieval"
)

// Question is one labeled evaluation case.
type Question struct {
	ID              string   `json:"id"`
	Question        string   `json:"question"`
	ExpectedSources []string `json:"expected_sources"`
}

// LoadQuestions reads the evaluation set from a JSON file.
func LoadQuestions(path string) ([]Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}

	var questions []Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("parse questions: %w", err)
	}
	return questions, nil
}

// RetrievalScore is the precision@k of one question.
type RetrievalScore struct {
	ID        string
	Precision float64
}

// Verdict is the judge's faithfulness call for one question.
type Verdict struct {
	ID      string
	Grade   string // YES, PARTIAL, NO or UNKNOWN
	Comment string
}

// Service evaluates retrieval and answer quality.
type Service struct {
	retriever Retriever
	answerer  Answerer
	judge     Completer
}

// New creates an evaluation service.
func New(retriever Retriever, answerer Answerer, judge Completer) *Service {
	return &Service{retriever: retriever, answerer: answerer, judge: judge}
}

// EvaluateRetrieval scores precision@k per question and returns the average.
func (s *Service) EvaluateRetrieval(ctx context.Context, questions []Question, k int) ([]RetrievalScore, float64, error) {
	if len(questions) == 0 {
		return nil, 0, fmt.Errorf("no evaluation questions")
	}

	scores := make([]RetrievalScore, 0, len(questions))
	sum := 0.0

	for _, q := range questions {
		ev, err := s.retriever.Retrieve(ctx, q.Question, 0, 0)
		if err != nil {
			return nil, 0, fmt.Errorf("retrieve %s: %w", q.ID, err)
		}

		retrieved := append(append([]domain.RetrievedRecord{}, ev.Texts...), ev.Images...)
		p := precisionAtK(retrieved, q.ExpectedSources, k)

		scores = append(scores, RetrievalScore{ID: q.ID, Precision: p})
		sum += p
	}

	return scores, sum / float64(len(scores)), nil
}

// precisionAtK is the share of the first k hits whose source file matches any
// expected source by substring. Fewer than k hits still divide by k.
func precisionAtK(retrieved []domain.RetrievedRecord, expected []string, k int) float64 {
	if k <= 0 {
		return 0
	}
	if len(retrieved) > k {
		retrieved = retrieved[:k]
	}

	hits := 0
	for _, r := range retrieved {
		for _, exp := range expected {
			if strings.Contains(r.SourceName, exp) {
				hits++
				break
			}
		}
	}
	return float64(hits) / float64(k)
}

// judgePrompt asks the model to grade support for every claim in the answer.
const judgePrompt = `You are evaluating a safety SOP chatbot.

Question:
%s

Retrieved Context:
%s

Answer:
%s

Is every claim in the answer supported by the retrieved context?

Respond with one of:
- YES (fully supported)
- PARTIAL (some unsupported claims)
- NO (hallucinated)

Explain briefly.`

// EvaluateFaithfulness answers every question and asks the judge whether the
// answer stays within its retrieved context.
func (s *Service) EvaluateFaithfulness(ctx context.Context, questions []Question) ([]Verdict, error) {
	verdicts := make([]Verdict, 0, len(questions))

	for _, q := range questions {
		ans, err := s.answerer.Answer(ctx, q.Question, 0, 0)
		if err != nil {
			return nil, fmt.Errorf("answer %s: %w", q.ID, err)
		}

		ev, err := s.retriever.Retrieve(ctx, q.Question, 0, 0)
		if err != nil {
			return nil, fmt.Errorf("retrieve %s: %w", q.ID, err)
		}

		prompt := fmt.Sprintf(judgePrompt, q.Question, renderContext(&ev), ans.Answer)

		reply, err := s.judge.Complete(ctx, "", prompt)
		if err != nil {
			return nil, fmt.Errorf("judge %s: %w", q.ID, err)
		}

		grade, comment := parseVerdict(reply)
		verdicts = append(verdicts, Verdict{ID: q.ID, Grade: grade, Comment: comment})
	}

	return verdicts, nil
}

// renderContext flattens the evidence for the judge. Captions stand in for
// images, the same way they do in the answer prompt.
func renderContext(ev *retrieval.Evidence) string {
	var b strings.Builder
	for i := range ev.Texts {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(ev.Texts[i].SourceName + ev.Texts[i].Position.Citation())
		b.WriteString("\n")
		b.WriteString(ev.Texts[i].Content)
	}
	for i := range ev.Images {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(ev.Images[i].SourceName + ev.Images[i].Position.Citation())
		b.WriteString("\nDiagram description:\n")
		b.WriteString(ev.Images[i].Caption)
	}
	return b.String()
}

// parseVerdict splits the judge reply into a grade and the explanation.
func parseVerdict(reply string) (grade, comment string) {
	trimmed := strings.TrimSpace(reply)
	upper := strings.ToUpper(trimmed)

	switch {
	case strings.HasPrefix(upper, "YES"):
		grade = "YES"
	case strings.HasPrefix(upper, "PARTIAL"):
		grade = "PARTIAL"
	case strings.HasPrefix(upper, "NO"):
		grade = "NO"
	default:
		return "UNKNOWN", trimmed
	}

	comment = strings.TrimSpace(strings.TrimLeft(trimmed[len(grade):], " :-.,\n"))
	return grade, comment
}
