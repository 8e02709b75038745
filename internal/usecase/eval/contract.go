package eval

import (
	"context"

	"github.com/chanmyae99/sopqa/internal/domain"
	"github.com/chanmyae99/sopqa/internal/usecase/retrieval"
)

// Retriever gathers evidence for a question.
type Retriever interface {
	Retrieve(ctx context.Context, question string, textK, imageK int) (retrieval.Evidence, error)
}

// Answerer runs the full answer pipeline.
type Answerer interface {
	Answer(ctx context.Context, question string, textK, imageK int) (domain.Answer, error)
}

// Completer runs a chat completion, used here as the faithfulness judge.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
