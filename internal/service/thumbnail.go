package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// ThumbnailProcessor creates thumbnails from images.
type ThumbnailProcessor interface {
	// GenerateThumbnail decodes the image and returns a JPEG of exactly
	// width x height, cropped around the center.
	GenerateThumbnail(data io.Reader, width, height int) ([]byte, error)
}

// imagingProcessor implements ThumbnailProcessor using the imaging library.
type imagingProcessor struct {
	quality int
}

// NewImagingProcessor creates a new thumbnail processor using the imaging library.
func NewImagingProcessor() ThumbnailProcessor {
	return &imagingProcessor{quality: ThumbnailJPEGQuality}
}

func (p *imagingProcessor) GenerateThumbnail(data io.Reader, width, height int) ([]byte, error) {
	img, _, err := image.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	thumb := imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(p.quality)); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
