package mocks

import (
	"context"
)

// MockImageProcessor stands in for imaging.Resizer. By default every image
// is "converted" by prefixing it with "png:".
type MockImageProcessor struct {
	ToPNGFn     func(data []byte) ([]byte, error)
	ResizeAllFn func(ctx context.Context, inputs [][]byte) ([][]byte, error)
}

// ToPNG implements service.ImageProcessor
func (m *MockImageProcessor) ToPNG(data []byte) ([]byte, error) {
	if m.ToPNGFn != nil {
		return m.ToPNGFn(data)
	}
	return append([]byte("png:"), data...), nil
}

// ResizeAll implements service.ImageProcessor
func (m *MockImageProcessor) ResizeAll(ctx context.Context, inputs [][]byte) ([][]byte, error) {
	if m.ResizeAllFn != nil {
		return m.ResizeAllFn(ctx, inputs)
	}
	out := make([][]byte, len(inputs))
	for i, data := range inputs {
		converted, err := m.ToPNG(data)
		if err != nil {
			return nil, err
		}
		out[i] = converted
	}
	return out, nil
}
