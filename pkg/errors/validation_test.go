package errors

import (
	"math"
	"testing"
)

func TestValidateRange(t *testing.T) {
	tests := []struct {
		name    string
		v       float64
		lo, hi  float64
		wantErr bool
	}{
		{"inside", 2.1, 0, math.Inf(1), false},
		{"at low end", 0, 0, math.Inf(1), false},
		{"at high end", 255, 0, 255, false},
		{"below", -0.5, 0, math.Inf(1), true},
		{"above", 256, 0, 255, true},
		{"NaN", math.NaN(), 0, 1, true},
		{"infinite", math.Inf(1), 0, math.Inf(1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRange("alpha", tt.v, tt.lo, tt.hi)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRange(%v) error = %v, wantErr %v", tt.v, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateRange(%v) returned wrong error code: %v", tt.v, err)
			}
		})
	}
}

func TestValidateBaseName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "skelpropagortho", false},
		{"valid with dots", "skel.v2", false},
		{"empty", "", true},
		{"separator", "out/skel", true},
		{"backslash", "out\\skel", true},
		{"hidden", ".skel", true},
		{"control char", "sk\x01el", true},
		{"too long", string(make([]byte, 300)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBaseName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBaseName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidateBaseName(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidShape,
		ErrCodeInvalidFormat,
		ErrCodeInvalidPath,
		ErrCodeFidelity,
		ErrCodeNotFound,
		ErrCodeFileNotFound,
		ErrCodeTimeout,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}
	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
