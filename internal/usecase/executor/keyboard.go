package executor

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"desktop-agent/internal/domain/entity"
)

const (
	maxInputRunes  = 10000
	longInputRunes = 1000
	inputChunk     = 500
)

var dangerousInput = []*regexp.Regexp{
	regexp.MustCompile(`rm\s+-rf`),
	regexp.MustCompile(`del\s+/[sf]`),
	regexp.MustCompile(`format\s+c:`),
	regexp.MustCompile(`shutdown`),
}

var blockedHotkeys = map[string]bool{
	"win+r":           true,
	"ctrl+alt+del":    true,
	"ctrl+alt+delete": true,
}

// checkText rejects overlong input and text that looks like a destructive
// shell command.
func checkText(text string) error {
	if n := utf8.RuneCountInString(text); n > maxInputRunes {
		return entity.NewPermissionDeniedError("type", fmt.Sprintf("input of %d characters exceeds the limit of %d", n, maxInputRunes))
	}
	lower := strings.ToLower(text)
	for _, p := range dangerousInput {
		if p.MatchString(lower) {
			return entity.NewPermissionDeniedError("type", "input matches blocked pattern "+p.String())
		}
	}
	return nil
}

func normalizeCombo(keys []string) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, strings.ToLower(strings.TrimSpace(k)))
	}
	return strings.Join(parts, "+")
}

func checkHotkey(op string, keys []string) error {
	if combo := normalizeCombo(keys); blockedHotkeys[combo] {
		return entity.NewPermissionDeniedError(op, "hotkey "+combo+" is blocked")
	}
	return nil
}

// chunkText splits long input into fixed-size rune chunks. Short input is
// returned whole.
func chunkText(text string) []string {
	runes := []rune(text)
	if len(runes) <= longInputRunes {
		return []string{text}
	}
	chunks := make([]string, 0, (len(runes)+inputChunk-1)/inputChunk)
	for i := 0; i < len(runes); i += inputChunk {
		chunks = append(chunks, string(runes[i:min(i+inputChunk, len(runes))]))
	}
	return chunks
}
