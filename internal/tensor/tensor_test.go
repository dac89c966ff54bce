// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package tensor

import (
	"errors"
	"reflect"
	"testing"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		shape   []int
		wantLen int
		wantErr error
	}{
		{"matrix", []int{2, 3}, 6, nil},
		{"rank four", []int{2, 4, 4, 3}, 96, nil},
		{"empty shape", nil, 0, ErrInvalidShape},
		{"zero dim", []int{2, 0}, 0, ErrInvalidShape},
		{"negative dim", []int{-1}, 0, ErrInvalidShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			x, err := New(tt.shape...)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("New() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if x.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d", x.Len(), tt.wantLen)
			}
			if !reflect.DeepEqual(x.Shape(), tt.shape) {
				t.Errorf("Shape() = %v, want %v", x.Shape(), tt.shape)
			}
		})
	}
}

func TestAtSet(t *testing.T) {
	t.Parallel()

	x, err := New(2, 3, 4)
	if err != nil {
		t.Fatal(err)
	}
	if err := x.Set(7.5, 1, 2, 3); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got := x.Data()[1*12+2*4+3]; got != 7.5 {
		t.Errorf("row-major offset holds %v, want 7.5", got)
	}
	v, err := x.At(1, 2, 3)
	if err != nil || v != 7.5 {
		t.Errorf("At() = %v, %v", v, err)
	}

	if _, err := x.At(2, 0, 0); !errors.Is(err, ErrInvalidIndex) {
		t.Errorf("At() out of range error = %v", err)
	}
	if err := x.Set(1, 0, 0); !errors.Is(err, ErrInvalidIndex) {
		t.Errorf("Set() wrong rank error = %v", err)
	}
}

func TestSliceSharesStorage(t *testing.T) {
	t.Parallel()

	x, err := New(3, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	s, err := x.Slice(1)
	if err != nil {
		t.Fatalf("Slice() error = %v", err)
	}
	if !reflect.DeepEqual(s.Shape(), []int{2, 2}) {
		t.Errorf("Slice().Shape() = %v", s.Shape())
	}
	if err := s.Set(3, 1, 1); err != nil {
		t.Fatal(err)
	}
	if v, _ := x.At(1, 1, 1); v != 3 {
		t.Errorf("write through view not visible, got %v", v)
	}
	if _, err := x.Slice(3); !errors.Is(err, ErrInvalidIndex) {
		t.Errorf("Slice(3) error = %v", err)
	}
}

func TestFromData(t *testing.T) {
	t.Parallel()

	if _, err := FromData(make([]float32, 5), 2, 3); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("FromData() error = %v, want ErrShapeMismatch", err)
	}
	x, err := FromData([]float32{1, 2, 3, 4}, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := x.At(1, 0); v != 3 {
		t.Errorf("At(1,0) = %v, want 3", v)
	}
}

func TestOneHotArgmaxRoundTrip(t *testing.T) {
	t.Parallel()

	for classes := 1; classes <= 6; classes++ {
		for g := 0; g < classes; g++ {
			v, err := OneHot(g, classes)
			if err != nil {
				t.Fatalf("OneHot(%d, %d) error = %v", g, classes, err)
			}
			if got := Argmax(v); got != g {
				t.Errorf("Argmax(OneHot(%d, %d)) = %d", g, classes, got)
			}
		}
	}
}

func TestOneHotErrors(t *testing.T) {
	t.Parallel()

	if _, err := OneHot(6, 6); !errors.Is(err, ErrInvalidIndex) {
		t.Errorf("OneHot(6, 6) error = %v", err)
	}
	if _, err := OneHot(-1, 6); !errors.Is(err, ErrInvalidIndex) {
		t.Errorf("OneHot(-1, 6) error = %v", err)
	}
	if _, err := OneHot(0, 0); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("OneHot(0, 0) error = %v", err)
	}
	if Argmax(nil) != -1 {
		t.Error("Argmax(nil) should be -1")
	}
	if Argmax([]float32{0.2, 0.5, 0.5}) != 1 {
		t.Error("Argmax should return the first maximum")
	}
}
