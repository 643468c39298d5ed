package locator

import (
	"context"
	"math"

	"desktop-agent/internal/domain/entity"
)

// Layout summarizes where text and clickable elements sit on a frame.
type Layout struct {
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	TextBlocks  int            `json:"text_blocks"`
	Clickables  int            `json:"clickables"`
	Vertical    map[string]int `json:"vertical"`
	Horizontal  map[string]int `json:"horizontal"`
	ByKind      map[string]int `json:"by_kind"`
	TextArea    int            `json:"text_area"`
	AvgTextSize float64        `json:"avg_text_size"`
	TextDensity float64        `json:"text_density"`
	Complexity  float64        `json:"complexity"`
}

// third names the band of length n that v falls into.
func third(v, n int, names [3]string) string {
	if n <= 0 {
		return names[0]
	}
	return names[min(2, max(0, v*3/n))]
}

var (
	verticalBands   = [3]string{"top", "middle", "bottom"}
	horizontalBands = [3]string{"left", "center", "right"}
)

// AnalyzeLayout reads every text block and clickable element on the frame and
// reports their distribution and a coarse complexity score in [0,1].
func (l *Locator) AnalyzeLayout(ctx context.Context, frame *entity.Frame) Layout {
	w, h := frame.Width(), frame.Height()
	out := Layout{
		Width:      w,
		Height:     h,
		Vertical:   map[string]int{},
		Horizontal: map[string]int{},
		ByKind:     map[string]int{},
	}

	blocks := l.readFrame(ctx, frame)
	clickable := l.FindClickable(ctx, frame)
	out.TextBlocks = len(blocks)
	out.Clickables = len(clickable)

	place := func(c entity.Point) {
		out.Vertical[third(c.Y, h, verticalBands)]++
		out.Horizontal[third(c.X, w, horizontalBands)]++
	}
	for _, b := range blocks {
		out.TextArea += b.Box.Area()
		out.ByKind[string(entity.KindText)]++
		place(b.Box.Center())
	}
	for _, c := range clickable {
		out.ByKind[string(c.Kind)]++
		place(c.Center())
	}
	if len(blocks) > 0 {
		out.AvgTextSize = float64(out.TextArea) / float64(len(blocks))
	}
	out.TextDensity = float64(len(blocks)) / float64(out.TextArea+1)

	total := float64(len(blocks) + len(clickable))
	out.Complexity = math.Min(1, 0.7*math.Min(total/50, 1)+0.3*float64(len(out.ByKind))/10)

	l.logger.Debug("Layout analyzed",
		"text_blocks", out.TextBlocks,
		"clickables", out.Clickables,
		"complexity", out.Complexity,
	)
	return out
}
