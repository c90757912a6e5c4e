package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxInputSize bounds a single answer, in bytes.
const DefaultMaxInputSize = 4096

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// Limit picks the byte ceiling for one answer: the step's own limit when it
// is set and tighter than the global one.
func Limit(global, step int) int {
	if global <= 0 {
		global = DefaultMaxInputSize
	}
	if step > 0 && step < global {
		return step
	}
	return global
}

// Sanitize cleans a visitor answer of at most limit bytes. It rejects
// invalid UTF-8, turns CR and CRLF line breaks into LF and drops every other
// control character except tab. A non-positive limit means
// DefaultMaxInputSize.
func Sanitize(input string, limit int) (string, error) {
	if limit <= 0 {
		limit = DefaultMaxInputSize
	}
	if len(input) > limit {
		// Reject rather than truncate so the stored answer is never a fragment.
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}

	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	// The handoff message is one URL parameter; keep its line breaks uniform.
	if strings.ContainsRune(input, '\r') {
		input = strings.ReplaceAll(input, "\r\n", "\n")
		input = strings.ReplaceAll(input, "\r", "\n")
	}

	clean := true
	for _, r := range input {
		if unicode.IsControl(r) && !isSafeControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return input, nil
	}

	// ESC, NULL, BEL and the rest would corrupt logs or the terminal client.
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !unicode.IsControl(r) || isSafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t'
}
