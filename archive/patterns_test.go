package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatterns_Match(t *testing.T) {
	tests := []struct {
		name     string
		patterns *Patterns
		input    string
		want     bool
	}{
		{name: "match all", patterns: All, input: "anything/at/all", want: true},
		{name: "match all empty name", patterns: All, input: "", want: true},
		{name: "nil matches everything", patterns: nil, input: "x", want: true},
		{name: "empty set matches nothing", patterns: MustPatterns(), input: "x", want: false},
		{name: "unanchored", patterns: MustPatterns(`control`), input: "control.tar.gz", want: true},
		{name: "anchored", patterns: MustPatterns(`^control$`), input: "control.tar.gz", want: false},
		{name: "logical or", patterns: MustPatterns(`^a$`, `^b$`), input: "b", want: true},
		{name: "no match", patterns: MustPatterns(`^a$`, `^b$`), input: "c", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.patterns.Match(tt.input))
		})
	}
}

func TestNewPatterns_Invalid(t *testing.T) {
	_, err := NewPatterns(`(`)
	assert.Error(t, err)

	assert.Panics(t, func() {
		MustPatterns(`[`)
	})
}

func TestPatterns_String(t *testing.T) {
	assert.Equal(t, `^a$, b`, MustPatterns(`^a$`, `b`).String())
	assert.Equal(t, MatchAll, (*Patterns)(nil).String())
}
