// Package testutil provides in-memory fakes of the output ports.
package testutil

import (
	"context"
	"image"
	"sync"

	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/domain/entity"
)

var _ output.OCRBackend = (*FakeOCR)(nil)

// FakeOCR replays scripted results. Extract returns Texts[i] and Errs[i] on
// its i-th call, repeating the last entry once the script runs out.
type FakeOCR struct {
	EngineName string
	Texts      []string
	Errs       []error
	Blocks     []entity.RecognizedText
	LocateErr  error
	// OnExtract runs before each Extract returns.
	OnExtract func()

	mu          sync.Mutex
	calls       int
	locateCalls int
	lastImage   image.Image
}

func (f *FakeOCR) Name() string {
	return f.EngineName
}

func (f *FakeOCR) Extract(ctx context.Context, img image.Image) (string, error) {
	f.mu.Lock()
	i := f.calls
	f.calls++
	f.lastImage = img
	f.mu.Unlock()

	if f.OnExtract != nil {
		f.OnExtract()
	}
	return pick(f.Texts, i), pick(f.Errs, i)
}

func (f *FakeOCR) Locate(ctx context.Context, img image.Image) ([]entity.RecognizedText, error) {
	f.mu.Lock()
	f.locateCalls++
	f.mu.Unlock()
	if f.LocateErr != nil {
		return nil, f.LocateErr
	}
	out := make([]entity.RecognizedText, len(f.Blocks))
	for i, b := range f.Blocks {
		b.Engine = f.EngineName
		out[i] = b
	}
	return out, nil
}

func (f *FakeOCR) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *FakeOCR) LocateCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.locateCalls
}

func (f *FakeOCR) LastImage() image.Image {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastImage
}

func pick[T any](script []T, i int) T {
	var zero T
	if len(script) == 0 {
		return zero
	}
	if i >= len(script) {
		return script[len(script)-1]
	}
	return script[i]
}
