// Package answer turns retrieved evidence into a grounded, citation-filtered
// response.
package answer

import (
	"context"
	"fmt"

	"github.com/chanmyae99/sopqa/internal/domain"
)

// NotAvailable is returned verbatim when retrieval yields no evidence. No
// model call is made in that case.
const NotAvailable = "The information is not available in the provided documents."

// Service answers questions over the ingested SOP corpus.
type Service struct {
	retriever Retriever
	completer Completer
}

// New creates an answer service.
func New(retriever Retriever, completer Completer) *Service {
	return &Service{retriever: retriever, completer: completer}
}

// Answer runs the full question pipeline: retrieve evidence, synthesize an
// answer, and keep only the sources the answer cites. An uncited retrieval
// hit never reaches the caller.
func (s *Service) Answer(ctx context.Context, question string, textK, imageK int) (domain.Answer, error) {
	ev, err := s.retriever.Retrieve(ctx, question, textK, imageK)
	if err != nil {
		return domain.Answer{}, err
	}

	if ev.Empty() {
		return domain.Answer{
			Question: question,
			Answer:   NotAvailable,
			Sources:  []domain.SourceRef{},
		}, nil
	}

	assignSourceIDs(&ev)

	prompt := buildPrompt(question, buildContext(&ev))

	text, err := s.completer.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("synthesize answer: %w", err)
	}

	return domain.Answer{
		Question: question,
		Answer:   text,
		Sources:  citedSources(&ev, extractCitedIDs(text)),
	}, nil
}
