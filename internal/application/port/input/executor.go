package input

import (
	"context"

	"desktop-agent/internal/domain/entity"
)

type ActionExecutor interface {
	Execute(ctx context.Context, req entity.ActionRequest) entity.ActionResult
	ExecuteSequence(ctx context.Context, reqs []entity.ActionRequest) []entity.ActionResult
	ExecuteWithRetry(ctx context.Context, req entity.ActionRequest) entity.ActionResult
	ExecuteSequenceWithRetry(ctx context.Context, reqs []entity.ActionRequest) []entity.ActionResult
	ClickWithRetry(ctx context.Context, p entity.Point, button entity.MouseButton, maxRetries int) entity.ActionResult

	History(limit int) []entity.OperationRecord
	ClearHistory()
}
