// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package validation

import (
	"strings"
	"testing"
)

type tileSettings struct {
	Count     int     `koanf:"count" validate:"required,perfectsquare"`
	Extension string  `koanf:"extension" validate:"required,fileext"`
	Layout    string  `koanf:"layout" validate:"oneof=grid channels"`
	Fraction  float64 `koanf:"fraction" validate:"gt=0,lt=1"`
}

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      tileSettings
		wantFields []string
	}{
		{
			name:  "valid",
			input: tileSettings{Count: 16, Extension: "png", Layout: "grid", Fraction: 0.2},
		},
		{
			name:       "count not square",
			input:      tileSettings{Count: 12, Extension: "png", Layout: "grid", Fraction: 0.2},
			wantFields: []string{"count"},
		},
		{
			name:       "dotted extension",
			input:      tileSettings{Count: 4, Extension: ".png", Layout: "channels", Fraction: 0.5},
			wantFields: []string{"extension"},
		},
		{
			name:       "multiple failures",
			input:      tileSettings{Count: 9, Extension: "png", Layout: "mosaic", Fraction: 1},
			wantFields: []string{"layout", "fraction"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateStruct(&tt.input)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("ValidateStruct() unexpected error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("ValidateStruct() expected error, got nil")
			}

			got := make(map[string]bool)
			for _, fe := range err.Errors() {
				got[fe.Field()] = true
			}
			for _, field := range tt.wantFields {
				if !got[field] {
					t.Errorf("expected failure on %q, got %v", field, err)
				}
			}
		})
	}
}

func TestValidateStructMessages(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&tileSettings{Count: 10, Extension: "png", Layout: "grid", Fraction: 0.2})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "count must be a perfect square") {
		t.Errorf("unexpected message: %v", err)
	}
	fe := err.Errors()[0]
	if fe.Tag() != "perfectsquare" {
		t.Errorf("Tag() = %q, want perfectsquare", fe.Tag())
	}
	if fe.Value() != 10 {
		t.Errorf("Value() = %v, want 10", fe.Value())
	}
}

func TestPerfectSquare(t *testing.T) {
	t.Parallel()

	squares := []int{1, 4, 9, 16, 25, 36}
	for _, n := range squares {
		if !PerfectSquare(n) {
			t.Errorf("PerfectSquare(%d) = false, want true", n)
		}
	}
	for _, n := range []int{-4, 0, 2, 8, 12, 15} {
		if PerfectSquare(n) {
			t.Errorf("PerfectSquare(%d) = true, want false", n)
		}
	}
}

func TestGetValidatorSingleton(t *testing.T) {
	t.Parallel()

	if GetValidator() != GetValidator() {
		t.Error("GetValidator() should return the same instance")
	}
}
