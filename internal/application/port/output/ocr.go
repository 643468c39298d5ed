package output

import (
	"context"
	"image"

	"desktop-agent/internal/domain/entity"
)

// OCRBackend is a single text recognition engine. Extract returns empty text,
// not an error, for images without text. Locate returns boxes in the image's
// pixel space regardless of the engine's native geometry.
type OCRBackend interface {
	Name() string
	Extract(ctx context.Context, img image.Image) (string, error)
	Locate(ctx context.Context, img image.Image) ([]entity.RecognizedText, error)
}
