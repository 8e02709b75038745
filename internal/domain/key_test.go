package domain

import (
	"strings"
	"testing"
)

func TestChunkKey_Stable(t *testing.T) {
	pos := PagePosition(3)
	a := ChunkKey("sop.pdf", pos, 2)
	b := ChunkKey("sop.pdf", pos, 2)
	if a != b {
		t.Fatalf("same position produced different keys: %q vs %q", a, b)
	}
}

func TestChunkKey_DistinctPositions(t *testing.T) {
	keys := map[string]string{
		"page 1 chunk 0": ChunkKey("sop.pdf", PagePosition(1), 0),
		"page 1 chunk 1": ChunkKey("sop.pdf", PagePosition(1), 1),
		"page 2 chunk 0": ChunkKey("sop.pdf", PagePosition(2), 0),
		"no page chunk 0": ChunkKey("sop.docx",
			SectionPosition("Lockout Procedure", 1), 0),
		"no page chunk 1": ChunkKey("sop.docx",
			SectionPosition("Lockout Procedure", 2), 1),
		"other source": ChunkKey("other.pdf", PagePosition(1), 0),
	}

	seen := make(map[string]string, len(keys))
	for name, key := range keys {
		if prev, ok := seen[key]; ok {
			t.Errorf("key collision between %q and %q", name, prev)
		}
		seen[key] = name
	}
}

func TestChunkKey_SectionIgnoredWithoutPage(t *testing.T) {
	// Position metadata other than the page number does not enter the key;
	// the document-wide chunk index alone keeps position-less chunks apart.
	a := ChunkKey("sop.docx", SectionPosition("A", 1), 0)
	b := ChunkKey("sop.docx", SectionPosition("B", 9), 0)
	if a != b {
		t.Fatal("section metadata leaked into the identity key")
	}
}

func TestImageKey_IncludesFileName(t *testing.T) {
	a := ImageKey("sop.pdf", "sop.pdf_p2_0.png")
	b := ImageKey("sop.pdf", "sop.pdf_p2_1.png")
	if a == b {
		t.Fatal("two images on the same page must not share a key")
	}
}

func TestSafeKey_URLSafe(t *testing.T) {
	key := SafeKey("weird name +/?#.pdf|page=10|chunk=3")
	for _, c := range []string{"/", "+", "?", "#", "|", " "} {
		if strings.Contains(key, c) {
			t.Errorf("key contains unsafe character %q: %s", c, key)
		}
	}
}
