package input

import (
	"context"
	"image"

	"desktop-agent/internal/domain/entity"
)

// ElementLocator finds UI controls in a frame. Candidates and points are in
// frame-local pixel coordinates, sorted by confidence descending.
type ElementLocator interface {
	FindButton(ctx context.Context, frame *entity.Frame, text string, template image.Image) []entity.Candidate
	FindInput(ctx context.Context, frame *entity.Frame, label string) []entity.Candidate
	FindClickable(ctx context.Context, frame *entity.Frame) []entity.Candidate
	FindElement(ctx context.Context, description string, frame *entity.Frame) []entity.Candidate
	LocatePrecisely(ctx context.Context, description string, frame *entity.Frame) (entity.Point, bool)

	// Tuned returns a locator whose search honors the retry parameters.
	Tuned(params entity.RetryParams) ElementLocator
}
