package domain

import (
	"encoding/base64"
	"fmt"
)

// SafeKey encodes a raw identity string into an opaque key that is safe for
// index storage and URLs. The encoding is deterministic, so re-ingesting the
// same logical position always overwrites the same record.
func SafeKey(raw string) string {
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

// ChunkKey builds the identity key for a text chunk. Pages without a page
// number must carry a chunk index that is monotonic across the whole source
// document, otherwise keys of distinct chunks would collide.
func ChunkKey(sourceName string, pos Position, chunkIndex int) string {
	if pos.Kind == PositionPage {
		return SafeKey(fmt.Sprintf("%s|page=%d|chunk=%d", sourceName, pos.Page, chunkIndex))
	}
	return SafeKey(fmt.Sprintf("%s|chunk=%d", sourceName, chunkIndex))
}

// ImageKey builds the identity key for an extracted image. The generated
// filename participates because one page may embed several images.
func ImageKey(sourceName, fileName string) string {
	return SafeKey(fmt.Sprintf("%s|img|%s", sourceName, fileName))
}
