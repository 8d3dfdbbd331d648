package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPromptLine(t *testing.T) {
	assert.Equal(t, "reset? [N/y]: ", promptLine("reset?", []string{No, Yes}))
}

func TestMatch(t *testing.T) {
	constraints := []string{No, Yes}
	tests := map[string]string{
		"":     No,
		"y":    Yes,
		" Y ":  Yes,
		"n":    No,
		"nope": No,
	}
	for in, want := range tests {
		assert.Equal(t, want, match(in, constraints), "input %q", in)
	}
}
