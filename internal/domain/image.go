package domain

// ExtractedImage is one raster image pulled out of a source document, named
// {source}_p{page}_{index}.{ext} with a document-wide running index.
type ExtractedImage struct {
	FileName string
	Page     int
	Data     []byte
}
