package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain", input: "cover.png", expected: "cover.png"},
		{name: "invalid characters removed", input: `a<b>c:d"e|f?g*.png`, expected: "abcdefg.png"},
		{name: "whitespace collapsed", input: "my\t\tcover \n image.jpg", expected: "my cover image.jpg"},
		{name: "empty falls back", input: "  ", expected: "thumbnail"},
		{name: "only invalid characters", input: "???", expected: "thumbnail"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input, "thumbnail"))
		})
	}

	t.Run("long names truncated", func(t *testing.T) {
		assert.Len(t, SanitizeFilename(strings.Repeat("a", 300), "x"), 200)
	})
}

func TestSanitizeFilename_LongMultibyte(t *testing.T) {
	// 3-byte runes, so byte 200 falls inside one
	name := strings.Repeat("€", 100)

	got := SanitizeFilename(name, "thumbnail")
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), 200)
	assert.Equal(t, strings.Repeat("€", 66), got)
}

func TestFileExtension(t *testing.T) {
	assert.Equal(t, ".png", FileExtension("/images/cover.PNG"))
	assert.Equal(t, ".jpeg", FileExtension("a.b/c.jpeg"))
	assert.Equal(t, "", FileExtension("/images/cover"))
	assert.Equal(t, "", FileExtension(""))
}
