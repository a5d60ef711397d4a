package service

import "context"

// ImageProcessor normalizes uploaded images. imaging.Resizer implements it.
type ImageProcessor interface {
	// ToPNG resizes one image and re-encodes it as PNG.
	ToPNG(data []byte) ([]byte, error)

	// ResizeAll converts every input like ToPNG and returns the results in
	// input order.
	ResizeAll(ctx context.Context, inputs [][]byte) ([][]byte, error)
}
