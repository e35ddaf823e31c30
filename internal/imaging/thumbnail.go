// Package imaging decodes captured frames and cuts per-face thumbnails
// out of them.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	"github.com/saturnino-fabrica-de-software/facecap/internal/domain"
)

// ErrInvalidImage is returned when the payload cannot be decoded as an image.
var ErrInvalidImage = errors.New("invalid image data")

const (
	// DefaultThumbnailSize bounds the longer edge of a face thumbnail.
	DefaultThumbnailSize = 160

	// facePadding widens the detector's bounding box so the thumbnail shows
	// the whole head, not just the matched region.
	facePadding = 0.2

	jpegQuality = 85
)

// Dimensions reads the pixel dimensions of an encoded image without
// decoding the full frame.
func Dimensions(data []byte) (domain.ImageInfo, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return domain.ImageInfo{}, fmt.Errorf("%w: %s", ErrInvalidImage, err)
	}
	return domain.ImageInfo{Width: cfg.Width, Height: cfg.Height}, nil
}

// Thumbnail crops the face at box out of the encoded frame, pads the crop,
// scales its longer edge down to maxSize and returns it as JPEG. The box
// uses relative coordinates as reported by the detector.
func Thumbnail(data []byte, box domain.BoundingBox, maxSize int) ([]byte, error) {
	if maxSize <= 0 {
		maxSize = DefaultThumbnailSize
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidImage, err)
	}

	crop := cropRect(img.Bounds(), box)
	if crop.Empty() {
		return nil, fmt.Errorf("%w: bounding box outside the image", ErrInvalidImage)
	}

	w, h := fit(crop.Dx(), crop.Dy(), maxSize)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, crop, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encoding thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// cropRect converts a relative bounding box into a padded pixel rectangle
// clamped to the image bounds.
func cropRect(bounds image.Rectangle, box domain.BoundingBox) image.Rectangle {
	iw := float64(bounds.Dx())
	ih := float64(bounds.Dy())

	padX := box.Width * facePadding
	padY := box.Height * facePadding

	x0 := int((box.Left - padX) * iw)
	y0 := int((box.Top - padY) * ih)
	x1 := int((box.Left + box.Width + padX) * iw)
	y1 := int((box.Top + box.Height + padY) * ih)

	return image.Rect(x0, y0, x1, y1).Add(bounds.Min).Intersect(bounds)
}

// fit scales (w, h) down so the longer edge equals maxSize, keeping the
// aspect ratio. Smaller crops are left alone.
func fit(w, h, maxSize int) (int, int) {
	if w <= maxSize && h <= maxSize {
		return w, h
	}
	if w >= h {
		return maxSize, max(1, h*maxSize/w)
	}
	return max(1, w*maxSize/h), maxSize
}
