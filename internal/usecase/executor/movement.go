package executor

import (
	"math/rand"

	"desktop-agent/internal/domain/entity"
)

const (
	pathStepPixels  = 50
	pathMinSteps    = 3
	pathJitter      = 2.0
	directMoveBelow = 10
)

// HumanPath interpolates from -> to in max(3, dist/50) steps. Intermediate
// points are jittered by up to 2px; the final point is exactly to. Moves
// shorter than 10px go straight to the target.
func HumanPath(from, to entity.Point, rng *rand.Rand) []entity.Point {
	dist := from.Distance(to)
	if dist < directMoveBelow {
		return []entity.Point{to}
	}

	steps := max(pathMinSteps, int(dist/pathStepPixels))
	path := make([]entity.Point, 0, steps)
	dx, dy := float64(to.X-from.X), float64(to.Y-from.Y)
	for i := 1; i < steps; i++ {
		progress := float64(i) / float64(steps)
		x := float64(from.X) + dx*progress + (rng.Float64()*2-1)*pathJitter
		y := float64(from.Y) + dy*progress + (rng.Float64()*2-1)*pathJitter
		path = append(path, entity.Point{X: int(x), Y: int(y)})
	}
	return append(path, to)
}
