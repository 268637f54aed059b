package errors

import (
	"strings"
	"testing"
)

func TestValidateNodeID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"numeric", "42", false},
		{"named", "Sequence_root", false},
		{"unicode", "ノード", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"control", "a\x00b", true},
		{"newline", "a\nb", true},
		{"arrow", "a->b", true},
		{"too long", strings.Repeat("x", 257), true},
		{"max length", strings.Repeat("x", 256), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateNodeID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidNodeID) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidNodeID)
			}
		})
	}
}
