package output

import (
	"context"
	"time"
)

// Sleeper blocks for d or until ctx is done, returning ctx.Err() in the
// latter case.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}
