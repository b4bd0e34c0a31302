package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"

	// Register the supported raster codecs.
	_ "image/png"
)

// ErrDecode indicates the payload did not parse as a supported raster format
// or decoded to a zero-area image.
var ErrDecode = errors.New("image does not decode")

const defaultQuality = 90

// Image is a decoded upload in canonical form: an RGBA pixel buffer whose
// channel order no longer depends on the source codec.
type Image struct {
	Width  int
	Height int
	Pixels *image.RGBA

	// Format is the source codec name ("jpeg", "png").
	Format string

	// Recompressed records that the input exceeded the soft size limit and
	// the canonical JPEG will be written at reduced quality.
	Recompressed bool

	quality int
}

// Decoder turns raw upload bytes into canonical Images. Inputs above
// SoftLimit bytes are not rejected; their canonical re-encode simply uses
// RecompressQuality instead of the default.
type Decoder struct {
	SoftLimit         int
	RecompressQuality int
}

func NewDecoder(softLimit, recompressQuality int) *Decoder {
	return &Decoder{
		SoftLimit:         softLimit,
		RecompressQuality: recompressQuality,
	}
}

// Decode parses data, validates dimensions and converts the pixels to the
// canonical RGBA order. It is a pure transform: no disk I/O.
func (d *Decoder) Decode(data []byte) (*Image, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	bounds := src.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("%w: zero-area image", ErrDecode)
	}

	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, bounds.Min, draw.Src)

	img := &Image{
		Width:   bounds.Dx(),
		Height:  bounds.Dy(),
		Pixels:  rgba,
		Format:  format,
		quality: defaultQuality,
	}

	if d.SoftLimit > 0 && len(data) > d.SoftLimit {
		img.Recompressed = true
		img.quality = d.RecompressQuality
	}

	return img, nil
}

// JPEG encodes the canonical buffer for transport to an analyzer. The
// quality was fixed at decode time so oversized inputs stay recompressed.
func (i *Image) JPEG() ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, i.Pixels, &jpeg.Options{Quality: i.quality}); err != nil {
		return nil, fmt.Errorf("encode canonical jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
