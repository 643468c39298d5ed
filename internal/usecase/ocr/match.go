package ocr

import (
	"sort"
	"strings"
	"unicode"

	"desktop-agent/internal/domain/entity"
)

const fuzzyThreshold = 0.6

// MatchText scores one recognized string against the target. ok is false when
// the text does not match at all.
func MatchText(target, text string) (kind entity.MatchKind, score float64, ok bool) {
	if target == "" || text == "" {
		return "", 0, false
	}
	if target == text {
		return entity.MatchExact, 1, true
	}
	if strings.Contains(strings.ToLower(text), strings.ToLower(target)) {
		return entity.MatchContains, float64(runeLen(target)) / float64(runeLen(text)), true
	}
	if looselyContains(target, text) {
		if s := Similarity(target, text); s > fuzzyThreshold {
			return entity.MatchFuzzy, s, true
		}
	}
	return "", 0, false
}

// MatchAll filters blocks down to the ones matching target, best score first.
func MatchAll(target string, blocks []entity.RecognizedText) []entity.TextMatch {
	var out []entity.TextMatch
	for _, b := range blocks {
		kind, score, ok := MatchText(target, b.Text)
		if !ok {
			continue
		}
		out = append(out, entity.TextMatch{RecognizedText: b, Kind: kind, Score: score})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// looselyContains compares the word characters of both strings, ignoring case,
// and requires one to contain the other.
func looselyContains(a, b string) bool {
	ca, cb := wordChars(a), wordChars(b)
	if runeLen(ca) < 2 || runeLen(cb) < 2 {
		return false
	}
	return strings.Contains(ca, cb) || strings.Contains(cb, ca)
}

func wordChars(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Similarity is 1 - levenshtein(a, b) / max(len(a), len(b)) over runes.
func Similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				cur[j] = prev[j-1]
			} else {
				cur[j] = min(prev[j], cur[j-1], prev[j-1]) + 1
			}
		}
		prev, cur = cur, prev
	}
	return max(0, 1-float64(prev[len(rb)])/float64(max(len(ra), len(rb))))
}

func runeLen(s string) int {
	return len([]rune(s))
}
