package digest

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	encOnce  sync.Once
	encoding *tiktoken.Tiktoken
)

// enc lazily loads cl100k_base. It returns nil when the encoding cannot be
// loaded, and callers fall back to a rune heuristic.
func enc() *tiktoken.Tiktoken {
	encOnce.Do(func() {
		e, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			encoding = e
		}
	})
	return encoding
}

// CountTokens returns the cl100k_base token count of text.
func CountTokens(text string) int {
	if e := enc(); e != nil {
		return len(e.Encode(text, nil, nil))
	}
	return EstimateFast(text)
}

// EstimateFast returns max(runes/4, words).
func EstimateFast(text string) int {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	estimate := len([]rune(trimmed)) / 4
	if words := len(strings.Fields(trimmed)); estimate < words {
		estimate = words
	}
	if estimate == 0 {
		estimate = 1
	}
	return estimate
}

// TruncateToTokens cuts text to at most maxTokens and reports whether it cut.
func TruncateToTokens(text string, maxTokens int) (string, bool) {
	if maxTokens <= 0 {
		return text, false
	}
	if e := enc(); e != nil {
		tokens := e.Encode(text, nil, nil)
		if len(tokens) <= maxTokens {
			return text, false
		}
		return e.Decode(tokens[:maxTokens]), true
	}
	runes := []rune(text)
	limit := maxTokens * 4
	if limit >= len(runes) {
		return text, false
	}
	return string(runes[:limit]), true
}
