package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFlexibleDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2025-03-15", "2025-03-15"},
		{"15.03.2025", "2025-03-15"},
		{"5.1.2025", "2025-01-05"},
		{"15/03/2025", "2025-03-15"},
		{"2025-03-15T10:30:00Z", "2025-03-15"},
		{"  2025-03-15  ", "2025-03-15"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseFlexibleDate(tt.input)
			require.NotNil(t, got)
			require.Equal(t, tt.want, got.Format("2006-01-02"))
		})
	}
}

func TestParseFlexibleDateUnparseable(t *testing.T) {
	for _, input := range []string{"", "   ", "yesterday", "31.02", "2025"} {
		require.Nil(t, ParseFlexibleDate(input), "input %q", input)
	}
}
