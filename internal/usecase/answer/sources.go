package answer

import (
	"fmt"

	"github.com/chanmyae99/sopqa/internal/domain"
	"github.com/chanmyae99/sopqa/internal/usecase/retrieval"
)

// assignSourceIDs labels evidence with per-request citation tokens: T1..Tn
// over text hits, I1..Im over image hits, each numbered in retrieval order.
// IDs never persist; the same record can be T2 in one request and T1 in the
// next.
func assignSourceIDs(ev *retrieval.Evidence) {
	for i := range ev.Texts {
		ev.Texts[i].SourceID = fmt.Sprintf("T%d", i+1)
	}
	for i := range ev.Images {
		ev.Images[i].SourceID = fmt.Sprintf("I%d", i+1)
	}
}

// citedSources projects the records whose IDs appear in the answer, text
// hits first, preserving retrieval order within each modality.
func citedSources(ev *retrieval.Evidence, cited map[string]bool) []domain.SourceRef {
	refs := make([]domain.SourceRef, 0, len(cited))
	for i := range ev.Texts {
		if cited[ev.Texts[i].SourceID] {
			refs = append(refs, ev.Texts[i].Ref())
		}
	}
	for i := range ev.Images {
		if cited[ev.Images[i].SourceID] {
			refs = append(refs, ev.Images[i].Ref())
		}
	}
	return refs
}
