package reader

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/chanmyae99/sopqa/internal/domain"
)

// ExtractImages pulls embedded raster images out of a PDF. The index in the
// file name runs across the whole document, not per page, so names stay
// unique when one page holds several images.
func (r *Registry) ExtractImages(data []byte, sourceName string) ([]domain.ExtractedImage, error) {
	var (
		images []domain.ExtractedImage
		index  int
	)

	digest := func(img model.Image, singleImgPerPage bool, maxPageDigits int) error {
		raw, err := io.ReadAll(img)
		if err != nil {
			return fmt.Errorf("read image %s page %d: %w", img.Name, img.PageNr, err)
		}

		images = append(images, domain.ExtractedImage{
			FileName: fmt.Sprintf("%s_p%d_%d.%s", sourceName, img.PageNr, index, img.FileType),
			Page:     img.PageNr,
			Data:     raw,
		})
		index++
		return nil
	}

	if err := api.ExtractImages(bytes.NewReader(data), nil, digest, nil); err != nil {
		return nil, fmt.Errorf("extract images from %s: %w", sourceName, err)
	}

	return images, nil
}
