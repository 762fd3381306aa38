package shared

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("%w: GEMINI_API_KEY environment variable not set", ErrConfiguration), "configuration"},
		{fmt.Errorf("import: %w", fmt.Errorf("%w: missing DTSTART", ErrParse)), "parse"},
		{fmt.Errorf("%w: nutrition preferences are required", ErrValidation), "validation"},
		{fmt.Errorf("%w: no JSON array found", ErrResponseFormat), "response_format"},
		{ErrExport, "export"},
		{errors.New("boom"), "internal"},
	}

	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%q) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
