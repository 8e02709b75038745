package answer

import "regexp"

// citationPattern matches source IDs cited in square brackets, e.g. [T1] or
// [I3]. Bare IDs without brackets do not count as citations.
var citationPattern = regexp.MustCompile(`\[(T\d+|I\d+)\]`)

// extractCitedIDs returns the set of source IDs the answer actually cites.
func extractCitedIDs(text string) map[string]bool {
	matches := citationPattern.FindAllStringSubmatch(text, -1)
	cited := make(map[string]bool, len(matches))
	for _, m := range matches {
		cited[m[1]] = true
	}
	return cited
}
