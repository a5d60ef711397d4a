package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"runtime"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	// Decoders accepted for uploads.
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Default output size for task images and avatars.
const (
	DefaultWidth  = 250
	DefaultHeight = 250
)

// ErrDecode is returned when input bytes are not a decodable image.
var ErrDecode = errors.New("cannot decode image")

// Resizer turns uploaded images into fixed-size PNGs.
type Resizer struct {
	width  int
	height int
	logger *slog.Logger
}

// NewResizer creates a Resizer producing width x height images.
// Non-positive dimensions fall back to the defaults.
func NewResizer(width, height int, logger *slog.Logger) *Resizer {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resizer{
		width:  width,
		height: height,
		logger: logger.With(slog.String("component", "image_resizer")),
	}
}

// Decode decodes any registered image format and reports the format name.
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, format, nil
}

// Cover scales src to fill exactly width x height, cropping the overflow
// evenly from both sides of the longer axis.
func Cover(src image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))

	b := src.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if srcW == 0 || srcH == 0 {
		return dst
	}

	crop := b
	// Compare aspect ratios without floating point: srcW/srcH vs width/height.
	if srcW*height > srcH*width {
		cropW := srcH * width / height
		offset := (srcW - cropW) / 2
		crop = image.Rect(b.Min.X+offset, b.Min.Y, b.Min.X+offset+cropW, b.Max.Y)
	} else if srcW*height < srcH*width {
		cropH := srcW * height / width
		offset := (srcH - cropH) / 2
		crop = image.Rect(b.Min.X, b.Min.Y+offset, b.Max.X, b.Min.Y+offset+cropH)
	}

	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Src, nil)
	return dst
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG image: %w", err)
	}
	return buf.Bytes(), nil
}

// ToPNG decodes data, cover-resizes it and re-encodes it as PNG.
func (r *Resizer) ToPNG(data []byte) ([]byte, error) {
	img, format, err := Decode(data)
	if err != nil {
		return nil, err
	}

	out, err := EncodePNG(Cover(img, r.width, r.height))
	if err != nil {
		return nil, err
	}

	r.logger.Debug("image resized",
		slog.String("source_format", format),
		slog.Int("source_width", img.Bounds().Dx()),
		slog.Int("source_height", img.Bounds().Dy()),
		slog.Int("input_bytes", len(data)),
		slog.Int("output_bytes", len(out)))
	return out, nil
}

// ResizeAll converts every input concurrently. The result has the same order
// as the input; the first failure cancels the rest and is returned.
func (r *Resizer) ResizeAll(ctx context.Context, inputs [][]byte) ([][]byte, error) {
	results := make([][]byte, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, data := range inputs {
		i, data := i, data
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := r.ToPNG(data)
			if err != nil {
				return fmt.Errorf("image %d: %w", i, err)
			}
			results[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
