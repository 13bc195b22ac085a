package richtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatter_Format(t *testing.T) {
	f := NewFormatter()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "   ", expected: ""},
		{name: "plain text wrapped", input: "Learn Go", expected: "<p>Learn Go</p>"},
		{name: "plain text paragraphs", input: "One\nline two\n\nThree", expected: "<p>One<br>line two</p><p>Three</p>"},
		{name: "plain text escaped", input: "a < b & c", expected: "<p>a &lt; b &amp; c</p>"},
		{name: "html kept", input: "<p>Hello <strong>world</strong></p>", expected: "<p>Hello <strong>world</strong></p>"},
		{name: "scripts removed", input: "<p>Hi</p><script>alert(1)</script>", expected: "<p>Hi</p>"},
		{name: "event handlers removed", input: `<p onclick="x()">Hi</p>`, expected: "<p>Hi</p>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, f.Format(tt.input))
		})
	}
}

func TestFormatter_Idempotent(t *testing.T) {
	f := NewFormatter()

	inputs := []string{
		"Plain summary",
		"Tom's \"quoted\" text & more",
		"<p>Intro with <a href=\"https://example.com\">link</a></p>",
		"<ul><li>one</li><li>two</li></ul>",
		"line one\nline two",
	}

	for _, in := range inputs {
		once := f.Format(in)
		assert.Equal(t, once, f.Format(once), in)
	}
}
