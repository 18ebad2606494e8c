package runner

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxInputSize bounds a single field value (4KB).
	DefaultMaxInputSize = 4096
	// DefaultMaxDocumentSize bounds document bodies and analysis text (1MB).
	DefaultMaxDocumentSize = 1 << 20
	// EnvMaxInputSize overrides DefaultMaxInputSize.
	EnvMaxInputSize = "LIVINGTRUST_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// SanitizeInput applies Sanitize with the field size limit.
func SanitizeInput(input string) (string, error) {
	return Sanitize(input, maxInputSize())
}

// Sanitize rejects input longer than limit bytes or with invalid UTF-8, and
// strips control characters other than newline, tab and carriage return.
// Oversized input is rejected, never truncated.
func Sanitize(input string, limit int) (string, error) {
	if len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}
	if strings.IndexFunc(input, unsafeControl) < 0 {
		return input, nil
	}
	return strings.Map(func(r rune) rune {
		if unsafeControl(r) {
			return -1
		}
		return r
	}, input), nil
}

func unsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}

func maxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
