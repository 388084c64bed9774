package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidateNodeID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"host id", "host-1;<host>", false},
		{"container id", "3f2a9c;<container>", false},
		{"unicode", "nœud", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", MaxNodeIDLength+1), true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
		{"reserved separator", "a---b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeID(tt.input, "---")
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNodeID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidNodeID) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidNodeID)
			}
		})
	}
}

func TestValidateDimension(t *testing.T) {
	tests := []struct {
		v       float64
		wantErr bool
	}{
		{0, false},
		{800, false},
		{-1, true},
		{math.NaN(), true},
		{math.Inf(1), true},
	}

	for _, tt := range tests {
		if err := ValidateDimension("width", tt.v); (err != nil) != tt.wantErr {
			t.Errorf("ValidateDimension(%v) error = %v, wantErr %v", tt.v, err, tt.wantErr)
		}
	}
}
