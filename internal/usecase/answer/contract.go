package answer

import (
	"context"

	"github.com/chanmyae99/sopqa/internal/usecase/retrieval"
)

// Retriever gathers evidence for a question.
type Retriever interface {
	Retrieve(ctx context.Context, question string, textK, imageK int) (retrieval.Evidence, error)
}

// Completer runs a grounded chat completion.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
