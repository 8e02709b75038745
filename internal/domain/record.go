package domain

// AssetType partitions index records by modality.
type AssetType string

const (
	// AssetText marks a text chunk record.
	AssetText AssetType = "text"
	// AssetTable marks a tabular text record.
	AssetTable AssetType = "table"
	// AssetImage marks an image caption record.
	AssetImage AssetType = "image"
)

// IndexRecord is the unit persisted to the vector index. Text records carry
// Content and ContentVector; image records carry ImageBlobPath, ImageCaption
// and ImageVector. Key is the deterministic identity key, so upserting the
// same logical position overwrites rather than duplicates.
type IndexRecord struct {
	Key        string
	AssetType  AssetType
	SourceName string
	Position   Position

	// Text records.
	Content       string
	ContentVector []float32

	// Image records.
	ImageBlobPath string
	ImageCaption  string
	ImageVector   []float32
}

// NewTextRecord assembles a text index record for one embedded chunk.
func NewTextRecord(sourceName string, pos Position, chunkIndex int, content string, vector []float32) IndexRecord {
	return IndexRecord{
		Key:           ChunkKey(sourceName, pos, chunkIndex),
		AssetType:     AssetText,
		SourceName:    sourceName,
		Position:      pos,
		Content:       content,
		ContentVector: vector,
	}
}

// NewImageRecord assembles an image index record for one captioned image.
func NewImageRecord(sourceName, fileName string, page int, blobPath, caption string, vector []float32) IndexRecord {
	return IndexRecord{
		Key:           ImageKey(sourceName, fileName),
		AssetType:     AssetImage,
		SourceName:    sourceName,
		Position:      PagePosition(page),
		ImageBlobPath: blobPath,
		ImageCaption:  caption,
		ImageVector:   vector,
	}
}
