// Package sanitize cleans user input at the transport boundaries before it
// enters a persisted conversation.
package sanitize

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxInputSize is 4KB (conservative default).
const DefaultMaxInputSize = 4096

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// Input enforces the size limit, validates UTF-8 and strips dangerous
// control characters. Oversized input is rejected rather than truncated:
// the persisted transcript must hold exactly what the model saw. A
// non-positive max applies DefaultMaxInputSize.
func Input(input string, max int) (string, error) {
	if max <= 0 {
		max = DefaultMaxInputSize
	}
	if len(input) > max {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), max)
	}

	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	// Strip control characters except newline, tab and carriage return.
	// This prevents log poisoning and terminal corruption when transcripts
	// are rendered.
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
	return r == '\n' || r == '\t' || r == '\r'
}
