package sanitize

import (
	"errors"
	"strings"
	"testing"
)

func TestInput_SizeLimit(t *testing.T) {
	limit := DefaultMaxInputSize

	tests := []struct {
		name      string
		inputSize int
		wantErr   bool
	}{
		{"Under Limit", limit - 1, false},
		{"Exact Limit", limit, false},
		{"Over Limit", limit + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := strings.Repeat("a", tt.inputSize)
			_, err := Input(input, 0)
			if tt.wantErr {
				if !errors.Is(err, ErrInputTooLarge) {
					t.Errorf("Input() expected ErrInputTooLarge for size %d, got %v", tt.inputSize, err)
				}
			} else {
				if err != nil {
					t.Errorf("Input() unexpected error: %v", err)
				}
			}
		})
	}
}

func TestInput_CustomLimit(t *testing.T) {
	if _, err := Input(strings.Repeat("a", 11), 10); !errors.Is(err, ErrInputTooLarge) {
		t.Errorf("expected ErrInputTooLarge with custom limit, got %v", err)
	}
	if _, err := Input(strings.Repeat("a", 10), 10); err != nil {
		t.Errorf("unexpected error at the custom limit: %v", err)
	}
}

func TestInput_ControlChars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Normal Text", "Hello World", "Hello World"},
		{"Safe Controls", "Line1\nLine2\tTabbed", "Line1\nLine2\tTabbed"},
		{"ANSI Code", "\x1b[31mRed\x1b[0m", "[31mRed[0m"}, // ESC removed
		{"Null Byte", "Null\x00Byte", "NullByte"},         // NULL removed
		{"Bell", "Ding\x07", "Ding"},                      // BEL removed
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Input(tt.input, 0)
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestInput_InvalidUTF8(t *testing.T) {
	if _, err := Input("valid\xff\xfeinvalid", 0); !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("expected ErrInvalidUTF8, got %v", err)
	}
}

func TestInput_Unicode(t *testing.T) {
	input := "Olá, 世界! émojis: 🚀"
	got, err := Input(input, 0)
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if got != input {
		t.Errorf("Unicode text should pass through unchanged, got %q", got)
	}
}
