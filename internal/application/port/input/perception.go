package input

import (
	"context"
	"time"

	"desktop-agent/internal/domain/entity"
)

type Perception interface {
	See(ctx context.Context, force bool) (*entity.Frame, error)
	ReadScreen(ctx context.Context, preprocess entity.PreprocessMethod) (entity.OCRResult, error)
	FindAndClick(ctx context.Context, description string) entity.ActionResult
	WaitForElement(ctx context.Context, description string, timeout, interval time.Duration) (entity.Point, error)
}
