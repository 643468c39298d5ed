package locator

import (
	"sort"

	"desktop-agent/internal/domain/entity"
)

const duplicateIoU = 0.7

// Deduplicate drops every candidate overlapping a more confident one by more
// than 70% IoU and returns the survivors by confidence, highest first. Equal
// confidences keep input order.
func Deduplicate(candidates []entity.Candidate) []entity.Candidate {
	sorted := append([]entity.Candidate(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	kept := make([]entity.Candidate, 0, len(sorted))
	for _, c := range sorted {
		duplicate := false
		for _, k := range kept {
			if c.Box.IoU(k.Box) > duplicateIoU {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, c)
		}
	}
	return kept
}
