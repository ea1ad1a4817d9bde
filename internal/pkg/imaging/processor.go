package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // decoder registration
	"image/jpeg"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// ErrUndecodable is returned when the upload is not an image the decoders know
var ErrUndecodable = errors.New("image could not be decoded")

// ProcessedImage holds the encoded variants of an attached fail image
type ProcessedImage struct {
	Original    []byte
	Thumbnail   []byte
	ContentType string
	Width       int
	Height      int
}

// Config for image processing
type Config struct {
	MaxWidth    int // longest edge kept for the original
	MaxHeight   int
	ThumbWidth  int
	ThumbHeight int
	Quality     int // JPEG quality 1-100
}

// DefaultConfig returns the processing config used for fail images
func DefaultConfig() Config {
	return Config{
		MaxWidth:    1600,
		MaxHeight:   1600,
		ThumbWidth:  480,
		ThumbHeight: 360,
		Quality:     82,
	}
}

// Processor resizes uploaded images and renders thumbnails
type Processor struct {
	config Config
}

// NewProcessor creates image processor
func NewProcessor(config Config) *Processor {
	return &Processor{config: config}
}

// Process decodes data, bounds the original to the configured box and
// renders a center-cropped thumbnail. GIF input is re-encoded as JPEG.
func (p *Processor) Process(data []byte) (*ProcessedImage, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUndecodable, err)
	}

	resized := img
	bounds := img.Bounds()
	if bounds.Dx() > p.config.MaxWidth || bounds.Dy() > p.config.MaxHeight {
		resized = imaging.Fit(img, p.config.MaxWidth, p.config.MaxHeight, imaging.Lanczos)
	}

	original, err := p.encode(resized, format)
	if err != nil {
		return nil, fmt.Errorf("failed to encode original: %w", err)
	}

	thumb := imaging.Fill(img, p.config.ThumbWidth, p.config.ThumbHeight, imaging.Center, imaging.Lanczos)
	thumbnail, err := p.encode(thumb, format)
	if err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	return &ProcessedImage{
		Original:    original,
		Thumbnail:   thumbnail,
		ContentType: mimeFromFormat(format),
		Width:       resized.Bounds().Dx(),
		Height:      resized.Bounds().Dy(),
	}, nil
}

func (p *Processor) encode(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	if format == "png" {
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.config.Quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func mimeFromFormat(format string) string {
	if format == "png" {
		return "image/png"
	}
	return "image/jpeg"
}

func extFromMime(contentType string) string {
	if contentType == "image/png" {
		return ".png"
	}
	return ".jpg"
}

// FailImageKeys returns storage keys for the original and thumbnail of a fail image.
// A fresh name per upload keeps replaced images from being served from cache.
func FailImageKeys(failID uuid.UUID, contentType string) (original, thumb string) {
	name := uuid.NewString()
	ext := extFromMime(contentType)
	original = fmt.Sprintf("fails/%s/%s%s", failID, name, ext)
	thumb = fmt.Sprintf("fails/%s/%s_thumb%s", failID, name, ext)
	return
}

// ThumbKey derives the thumbnail key from an original key
func ThumbKey(original string) string {
	for i := len(original) - 1; i >= 0 && original[i] != '/'; i-- {
		if original[i] == '.' {
			return original[:i] + "_thumb" + original[i:]
		}
	}
	return original + "_thumb"
}
