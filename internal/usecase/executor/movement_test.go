package executor

import (
	"math"
	"math/rand"
	"testing"

	"desktop-agent/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestHumanPath_ShortMoveIsDirect(t *testing.T) {
	path := HumanPath(entity.Point{X: 100, Y: 100}, entity.Point{X: 105, Y: 103}, rand.New(rand.NewSource(1)))
	assert.Equal(t, []entity.Point{{X: 105, Y: 103}}, path)
}

func TestHumanPath_MinimumSteps(t *testing.T) {
	path := HumanPath(entity.Point{}, entity.Point{X: 30, Y: 40}, rand.New(rand.NewSource(1)))
	assert.Len(t, path, 3)
	assert.Equal(t, entity.Point{X: 30, Y: 40}, path[2])
}

func TestHumanPath_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		from := entity.Point{X: rapid.IntRange(0, 1920).Draw(t, "fx"), Y: rapid.IntRange(0, 1080).Draw(t, "fy")}
		to := entity.Point{X: rapid.IntRange(0, 1920).Draw(t, "tx"), Y: rapid.IntRange(0, 1080).Draw(t, "ty")}
		rng := rand.New(rand.NewSource(rapid.Int64().Draw(t, "seed")))

		path := HumanPath(from, to, rng)

		if path[len(path)-1] != to {
			t.Fatalf("path ends at %v, want %v", path[len(path)-1], to)
		}
		dist := from.Distance(to)
		if dist < directMoveBelow {
			if len(path) != 1 {
				t.Fatalf("short move produced %d points", len(path))
			}
			return
		}
		want := max(pathMinSteps, int(dist/pathStepPixels))
		if len(path) != want {
			t.Fatalf("got %d points, want %d", len(path), want)
		}
		for i, p := range path[:len(path)-1] {
			progress := float64(i+1) / float64(want)
			ex := float64(from.X) + float64(to.X-from.X)*progress
			ey := float64(from.Y) + float64(to.Y-from.Y)*progress
			if math.Abs(float64(p.X)-ex) > pathJitter+1 || math.Abs(float64(p.Y)-ey) > pathJitter+1 {
				t.Fatalf("point %d %v strays from the line (%.1f,%.1f)", i, p, ex, ey)
			}
		}
	})
}
