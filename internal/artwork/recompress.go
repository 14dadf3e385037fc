package artwork

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"

	_ "image/gif"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Encoded formats produced by Recompress.
const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
)

// DefaultMaxPixels caps the decoded size of a source image. A compressed file
// under the download ceiling can still declare dimensions that decode to
// hundreds of MiB.
const DefaultMaxPixels = 40_000_000

// Recompressor decodes artwork, downsizes it to fit MaxDimension on the long
// edge, and re-encodes it. Images with transparency become PNG; everything
// else becomes JPEG at Quality.
type Recompressor struct {
	MaxDimension int
	Quality      int
	MaxBytes     int64
	// MaxPixels bounds width*height before decoding; zero means DefaultMaxPixels.
	MaxPixels int64
}

// Recompress returns the re-encoded bytes and the chosen format.
func (r Recompressor) Recompress(raw []byte) ([]byte, string, error) {
	if len(raw) == 0 {
		return nil, "", fmt.Errorf("empty input: %w", ErrDecode)
	}
	header, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, "", errors.Join(ErrDecode, err)
	}
	limit := r.MaxPixels
	if limit <= 0 {
		limit = DefaultMaxPixels
	}
	if header.Width <= 0 || header.Height <= 0 {
		return nil, "", fmt.Errorf("dimensions %dx%d: %w", header.Width, header.Height, ErrDecode)
	}
	if int64(header.Width)*int64(header.Height) > limit {
		return nil, "", fmt.Errorf("dimensions %dx%d exceed %d pixels: %w", header.Width, header.Height, limit, ErrTooLarge)
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, "", errors.Join(ErrDecode, err)
	}

	alpha := hasAlpha(src)
	working := r.scale(src, alpha)

	var buf bytes.Buffer
	format := FormatJPEG
	if alpha {
		format = FormatPNG
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		err = enc.Encode(&buf, working)
	} else {
		err = jpeg.Encode(&buf, working, &jpeg.Options{Quality: r.Quality})
	}
	if err != nil {
		return nil, "", fmt.Errorf("encode %s: %w", format, err)
	}
	if r.MaxBytes > 0 && int64(buf.Len()) > r.MaxBytes {
		return nil, "", fmt.Errorf("recompressed to %d bytes: %w", buf.Len(), ErrTooLarge)
	}
	return buf.Bytes(), format, nil
}

// TargetSize returns the dimensions an image of w x h is scaled to.
func (r Recompressor) TargetSize(w, h int) (int, int) {
	longest := max(w, h)
	if r.MaxDimension <= 0 || longest <= r.MaxDimension {
		return w, h
	}
	scale := float64(r.MaxDimension) / float64(longest)
	tw := max(1, int(math.Round(float64(w)*scale)))
	th := max(1, int(math.Round(float64(h)*scale)))
	return tw, th
}

func (r Recompressor) scale(src image.Image, alpha bool) image.Image {
	bounds := src.Bounds()
	tw, th := r.TargetSize(bounds.Dx(), bounds.Dy())
	if tw == bounds.Dx() && th == bounds.Dy() {
		return src
	}
	rect := image.Rect(0, 0, tw, th)
	var dst draw.Image
	if alpha {
		dst = image.NewNRGBA(rect)
	} else {
		dst = image.NewRGBA(rect)
	}
	draw.CatmullRom.Scale(dst, rect, src, bounds, draw.Src, nil)
	return dst
}

// hasAlpha reports whether any pixel is not fully opaque.
func hasAlpha(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return true
			}
		}
	}
	return false
}
