package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "case folds and trims",
			input: "  30yd compactor haul  ",
			want:  "30YD COMPACTOR HAUL",
		},
		{
			name:  "collapses whitespace runs",
			input: "MONTHLY\t\tEQUIPMENT   FEE",
			want:  "MONTHLY EQUIPMENT FEE",
		},
		{
			name:  "strips abbreviation periods",
			input: "20YD R.O. SVC.",
			want:  "20YD RO SVC",
		},
		{
			name:  "collapses hyphen runs",
			input: "ROLL--OFF -- HAUL",
			want:  "ROLL-OFF - HAUL",
		},
		{
			name:  "trims separator noise",
			input: "- TRASH DISPOSAL -",
			want:  "TRASH DISPOSAL",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "whitespace only",
			input: "   \t ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"  30yd compactor haul  ",
		"20YD R.O. SVC.",
		"ROLL--OFF -- HAUL",
		"- 42YD COMPACTOR MONTHLY FEE -",
		"plain text",
		"",
	}

	for _, input := range inputs {
		once := Normalize(input)
		assert.Equal(t, once, Normalize(once), "normalize must be idempotent for %q", input)
	}
}
