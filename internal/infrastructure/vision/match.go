package vision

import (
	"math"
	"sort"

	"desktop-agent/internal/domain/entity"
)

type Match struct {
	Box   entity.Rect
	Score float64
}

// integral holds summed-area tables of pixel values and their squares.
type integral struct {
	w   int
	sum []float64
	sq  []float64
}

func newIntegral(g *Gray) integral {
	w := g.W + 1
	it := integral{w: w, sum: make([]float64, w*(g.H+1)), sq: make([]float64, w*(g.H+1))}
	for y := 0; y < g.H; y++ {
		var rs, rq float64
		for x := 0; x < g.W; x++ {
			v := float64(g.At(x, y))
			rs += v
			rq += v * v
			i := (y+1)*w + x + 1
			it.sum[i] = it.sum[i-w] + rs
			it.sq[i] = it.sq[i-w] + rq
		}
	}
	return it
}

func (it integral) window(table []float64, x, y, w, h int) float64 {
	a := y*it.w + x
	b := y*it.w + x + w
	c := (y+h)*it.w + x
	d := (y+h)*it.w + x + w
	return table[d] - table[b] - table[c] + table[a]
}

// MatchTemplate computes the normalized correlation coefficient of tmpl at
// every offset where it fits inside src. The result is row-major with
// (src.W-tmpl.W+1) columns. A flat window or template scores 0.
func MatchTemplate(src, tmpl *Gray) (scores []float64, cols int) {
	if tmpl.W == 0 || tmpl.H == 0 || tmpl.W > src.W || tmpl.H > src.H {
		return nil, 0
	}
	n := float64(tmpl.W * tmpl.H)
	var tsum float64
	for _, p := range tmpl.Pix {
		tsum += float64(p)
	}
	tmean := tsum / n
	tz := make([]float64, len(tmpl.Pix))
	var tnorm float64
	for i, p := range tmpl.Pix {
		tz[i] = float64(p) - tmean
		tnorm += tz[i] * tz[i]
	}

	it := newIntegral(src)
	cols = src.W - tmpl.W + 1
	rows := src.H - tmpl.H + 1
	scores = make([]float64, cols*rows)
	if tnorm == 0 {
		return scores, cols
	}
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			s := it.window(it.sum, x, y, tmpl.W, tmpl.H)
			q := it.window(it.sq, x, y, tmpl.W, tmpl.H)
			variance := q - s*s/n
			if variance <= 1e-9 {
				continue
			}
			var cross float64
			for ty := 0; ty < tmpl.H; ty++ {
				row := src.Pix[(y+ty)*src.W+x:]
				trow := tz[ty*tmpl.W:]
				for tx := 0; tx < tmpl.W; tx++ {
					cross += float64(row[tx]) * trow[tx]
				}
			}
			scores[y*cols+x] = cross / math.Sqrt(variance*tnorm)
		}
	}
	return scores, cols
}

// FindTemplate returns every placement of tmpl scoring at least threshold,
// best first, capped at limit.
func FindTemplate(src, tmpl *Gray, threshold float64, limit int) []Match {
	scores, cols := MatchTemplate(src, tmpl)
	var out []Match
	for i, s := range scores {
		if s < threshold {
			continue
		}
		out = append(out, Match{
			Box:   entity.NewRect(i%cols, i/cols, tmpl.W, tmpl.H),
			Score: entity.ClampUnit(s),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
