package locator

import (
	"testing"

	"desktop-agent/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func cand(x, y, w, h int, conf float64) entity.Candidate {
	return entity.Candidate{Box: entity.NewRect(x, y, w, h), Confidence: conf}
}

func TestDeduplicate(t *testing.T) {
	tests := []struct {
		name string
		in   []entity.Candidate
		want []entity.Candidate
	}{
		{"empty", nil, []entity.Candidate{}},
		{
			"overlap keeps higher confidence",
			[]entity.Candidate{cand(0, 0, 10, 10, 0.5), cand(0, 0, 10, 9, 0.8)},
			[]entity.Candidate{cand(0, 0, 10, 9, 0.8)},
		},
		{
			"nested near-duplicate collapses",
			[]entity.Candidate{cand(10, 10, 50, 20, 0.9), cand(12, 11, 48, 19, 0.6)},
			[]entity.Candidate{cand(10, 10, 50, 20, 0.9)},
		},
		{
			"disjoint boxes sorted",
			[]entity.Candidate{cand(0, 0, 10, 10, 0.5), cand(50, 50, 10, 10, 0.9)},
			[]entity.Candidate{cand(50, 50, 10, 10, 0.9), cand(0, 0, 10, 10, 0.5)},
		},
		{
			"equal confidence keeps first",
			[]entity.Candidate{
				{Box: entity.NewRect(0, 0, 10, 10), Confidence: 0.7, Text: "first"},
				{Box: entity.NewRect(0, 0, 10, 10), Confidence: 0.7, Text: "second"},
			},
			[]entity.Candidate{{Box: entity.NewRect(0, 0, 10, 10), Confidence: 0.7, Text: "first"}},
		},
		{
			"moderate overlap survives",
			[]entity.Candidate{cand(0, 0, 10, 10, 0.9), cand(5, 0, 10, 10, 0.6)},
			[]entity.Candidate{cand(0, 0, 10, 10, 0.9), cand(5, 0, 10, 10, 0.6)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Deduplicate(tt.in))
		})
	}
}

func TestDeduplicate_Properties(t *testing.T) {
	gen := rapid.Custom(func(t *rapid.T) entity.Candidate {
		return cand(
			rapid.IntRange(0, 60).Draw(t, "x"),
			rapid.IntRange(0, 60).Draw(t, "y"),
			rapid.IntRange(1, 30).Draw(t, "w"),
			rapid.IntRange(1, 30).Draw(t, "h"),
			float64(rapid.IntRange(0, 10).Draw(t, "conf"))/10,
		)
	})
	rapid.Check(t, func(t *rapid.T) {
		in := rapid.SliceOfN(gen, 0, 15).Draw(t, "candidates")
		out := Deduplicate(in)

		assert.LessOrEqual(t, len(out), len(in))
		for i := range out {
			if i > 0 && out[i].Confidence > out[i-1].Confidence {
				t.Fatalf("not sorted at %d", i)
			}
			for j := i + 1; j < len(out); j++ {
				if out[i].Box.IoU(out[j].Box) > duplicateIoU {
					t.Fatalf("survivors %v and %v overlap", out[i].Box, out[j].Box)
				}
			}
		}
		if len(in) > 0 {
			best := in[0].Confidence
			for _, c := range in {
				best = max(best, c.Confidence)
			}
			if out[0].Confidence != best {
				t.Fatalf("best confidence %v dropped", best)
			}
		}
	})
}
