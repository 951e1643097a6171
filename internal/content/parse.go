package content

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	jsonFence = regexp.MustCompile("```json\\s*")
	anyFence  = regexp.MustCompile("```\\s*")
)

// stripFences removes markdown code fences around provider output.
func stripFences(text string) string {
	text = jsonFence.ReplaceAllString(strings.TrimSpace(text), "")
	text = anyFence.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// ExtractArray returns the substring from the first '[' to the last ']'
// after fence stripping. Surrounding prose is ignored.
func ExtractArray(text string) ([]byte, error) {
	return extract(text, '[', ']')
}

// ExtractObject is ExtractArray for a top-level '{' ... '}' object.
func ExtractObject(text string) ([]byte, error) {
	return extract(text, '{', '}')
}

func extract(text string, open, close byte) ([]byte, error) {
	clean := stripFences(text)
	start := strings.IndexByte(clean, open)
	end := strings.LastIndexByte(clean, close)
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("%w: no %c...%c found", ErrMalformedResponse, open, close)
	}
	return []byte(clean[start : end+1]), nil
}
