package domain

import "fmt"

// Default chunking parameters for PDF text.
const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
)

// ValidateChunking checks that a (size, overlap) pair terminates.
func ValidateChunking(size, overlap int) error {
	if size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidChunking, size)
	}
	if overlap < 0 {
		return fmt.Errorf("%w: overlap must be non-negative, got %d", ErrInvalidChunking, overlap)
	}
	if overlap >= size {
		return fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", ErrInvalidChunking, overlap, size)
	}
	return nil
}

// Chunk splits text into fixed-size windows where consecutive chunks share
// exactly overlap characters. Size and overlap count characters, not bytes,
// so multibyte text never splits mid-rune. The final chunk may be shorter
// than size. Empty text yields no chunks; any non-empty text yields at
// least one.
func Chunk(text string, size, overlap int) ([]string, error) {
	if err := ValidateChunking(size, overlap); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}

	runes := []rune(text)
	step := size - overlap
	chunks := make([]string, 0, (len(runes)+step-1)/step)

	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}

	return chunks, nil
}
