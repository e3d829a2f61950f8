package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "spoken email",
			input:    "John dot Doe at gmail dot com.",
			expected: "john.doe@gmail.com",
		},
		{
			name:     "trims and lowercases plain text",
			input:    "   Hello World   ",
			expected: "hello world",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "plain text without symbols keeps spaces",
			input:    "plain text no symbols",
			expected: "plain text no symbols",
		},
		{
			name:     "dash as standalone word",
			input:    "push dash up",
			expected: "push-up",
		},
		{
			name:     "dash inside a word is untouched",
			input:    "dashboard review",
			expected: "dashboard review",
		},
		{
			name:     "hyphen as standalone word",
			input:    "data hyphen driven",
			expected: "data-driven",
		},
		{
			name:     "underscore as standalone word",
			input:    "john underscore doe at proton dot me",
			expected: "john_doe@proton.me",
		},
		{
			name:     "trailing period stripped before lowering",
			input:    "Support at Example dot Org.",
			expected: "support@example.org",
		},
		{
			name:     "dot inside a word is untouched",
			input:    "dotnet meetup",
			expected: "dotnet meetup",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"John dot Doe at gmail dot com.",
		"   Hello World   ",
		"",
		"plain text no symbols",
		"push dash up",
		"john.doe@gmail.com",
	}

	for _, input := range inputs {
		once := Normalize(input)
		assert.Equal(t, once, Normalize(once), "input %q", input)
	}
}
