package answer

import (
	"fmt"
	"strings"

	"github.com/chanmyae99/sopqa/internal/usecase/retrieval"
)

// buildContext renders the evidence into the prompt context: a TEXT EVIDENCE
// section of cited chunks followed by an IMAGE EVIDENCE section of diagram
// descriptions. Source IDs must already be assigned.
func buildContext(ev *retrieval.Evidence) string {
	var blocks []string

	if len(ev.Texts) > 0 {
		blocks = append(blocks, "TEXT EVIDENCE:")
		for i := range ev.Texts {
			rec := &ev.Texts[i]
			citation := fmt.Sprintf("[%s] %s%s", rec.SourceID, rec.SourceName, rec.Position.Citation())
			blocks = append(blocks, citation+"\n"+rec.Content)
		}
	}

	if len(ev.Images) > 0 {
		blocks = append(blocks, "\nIMAGE EVIDENCE:")
		for i := range ev.Images {
			rec := &ev.Images[i]
			citation := fmt.Sprintf("[%s] %s%s", rec.SourceID, rec.SourceName, rec.Position.Citation())
			blocks = append(blocks, citation+"\nDiagram description:\n"+rec.Caption)
		}
	}

	return strings.Join(blocks, "\n\n")
}
