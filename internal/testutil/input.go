package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/domain/entity"
)

var (
	_ output.InputPort  = (*FakeInput)(nil)
	_ output.WindowPort = (*FakeWindows)(nil)
)

// FakeInput records every call as a short event string such as
// "move 10,20" or "click left x1". Fail maps an event verb to the error it
// returns; Panic makes the verb panic instead.
type FakeInput struct {
	Fail  map[string]error
	Panic map[string]bool
	// FailTimes limits Fail to the first n matching calls when set.
	FailTimes map[string]int

	mu     sync.Mutex
	events []string
	cursor entity.Point
	counts map[string]int
}

func NewFakeInput() *FakeInput {
	return &FakeInput{
		Fail:      map[string]error{},
		Panic:     map[string]bool{},
		FailTimes: map[string]int{},
		counts:    map[string]int{},
	}
}

func (f *FakeInput) record(verb string, format string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.counts == nil {
		f.counts = map[string]int{}
	}
	f.counts[verb]++
	if f.Panic[verb] {
		panic(fmt.Sprintf("fake input: %s", verb))
	}
	if err, ok := f.Fail[verb]; ok {
		if n, limited := f.FailTimes[verb]; !limited || f.counts[verb] <= n {
			return err
		}
	}
	f.events = append(f.events, strings.TrimSpace(verb+" "+fmt.Sprintf(format, args...)))
	return nil
}

func (f *FakeInput) Events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

// Count returns how many times verb was invoked, failed calls included.
func (f *FakeInput) Count(verb string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[verb]
}

func (f *FakeInput) MoveTo(ctx context.Context, p entity.Point) error {
	if err := f.record("move", "%d,%d", p.X, p.Y); err != nil {
		return err
	}
	f.mu.Lock()
	f.cursor = p
	f.mu.Unlock()
	return nil
}

func (f *FakeInput) MouseDown(ctx context.Context, button entity.MouseButton) error {
	return f.record("down", "%s", button)
}

func (f *FakeInput) MouseUp(ctx context.Context, button entity.MouseButton) error {
	return f.record("up", "%s", button)
}

func (f *FakeInput) Click(ctx context.Context, button entity.MouseButton, count int) error {
	return f.record("click", "%s x%d", button, count)
}

func (f *FakeInput) Scroll(ctx context.Context, dx, dy int) error {
	return f.record("scroll", "%d,%d", dx, dy)
}

func (f *FakeInput) CursorPosition(ctx context.Context) (entity.Point, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursor, nil
}

func (f *FakeInput) KeyDown(ctx context.Context, key string) error {
	return f.record("keydown", "%s", key)
}

func (f *FakeInput) KeyUp(ctx context.Context, key string) error {
	return f.record("keyup", "%s", key)
}

func (f *FakeInput) TypeText(ctx context.Context, text string) error {
	return f.record("type", "%s", text)
}

// FakeWindows is an in-memory window list.
type FakeWindows struct {
	Err error

	mu      sync.Mutex
	windows []output.WindowInfo
}

func NewFakeWindows(titles ...string) *FakeWindows {
	w := &FakeWindows{}
	for _, t := range titles {
		w.windows = append(w.windows, output.WindowInfo{Title: t, Bounds: entity.NewRect(0, 0, 800, 600)})
	}
	return w
}

func (w *FakeWindows) find(title string) int {
	for i, win := range w.windows {
		if strings.Contains(strings.ToLower(win.Title), strings.ToLower(title)) {
			return i
		}
	}
	return -1
}

func (w *FakeWindows) Open(ctx context.Context, app string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Err != nil {
		return w.Err
	}
	w.windows = append(w.windows, output.WindowInfo{Title: app, Bounds: entity.NewRect(0, 0, 800, 600)})
	return nil
}

func (w *FakeWindows) Close(ctx context.Context, title string, force bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Err != nil {
		return w.Err
	}
	i := w.find(title)
	if i < 0 {
		return entity.NewNotFoundError("close window", "window "+title)
	}
	w.windows = append(w.windows[:i], w.windows[i+1:]...)
	return nil
}

func (w *FakeWindows) Switch(ctx context.Context, title string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Err != nil {
		return w.Err
	}
	i := w.find(title)
	if i < 0 {
		return entity.NewNotFoundError("switch window", "window "+title)
	}
	for j := range w.windows {
		w.windows[j].Active = j == i
	}
	return nil
}

func (w *FakeWindows) Resize(ctx context.Context, title string, width, height int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Err != nil {
		return w.Err
	}
	i := w.find(title)
	if i < 0 {
		return entity.NewNotFoundError("resize window", "window "+title)
	}
	w.windows[i].Bounds.Width = width
	w.windows[i].Bounds.Height = height
	return nil
}

func (w *FakeWindows) List(ctx context.Context) ([]output.WindowInfo, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]output.WindowInfo(nil), w.windows...), nil
}
