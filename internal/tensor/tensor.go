// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package tensor

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidShape indicates an empty shape or a non-positive dimension.
	ErrInvalidShape = errors.New("tensor: invalid shape")

	// ErrShapeMismatch indicates incompatible shapes for an operation.
	ErrShapeMismatch = errors.New("tensor: shape mismatch")

	// ErrInvalidIndex indicates an out-of-bounds index.
	ErrInvalidIndex = errors.New("tensor: invalid index")
)

// Tensor is a multi-dimensional array of float32 values in row-major order.
//
// Tensor is not safe for concurrent use.
type Tensor struct {
	data    []float32
	shape   []int
	strides []int
}

// New creates a zero tensor with the given shape.
func New(shape ...int) (*Tensor, error) {
	size, err := volume(shape)
	if err != nil {
		return nil, err
	}
	return wrap(make([]float32, size), shape), nil
}

// FromData creates a tensor over data. The slice is used without copying
// and its length must equal the volume of shape.
func FromData(data []float32, shape ...int) (*Tensor, error) {
	size, err := volume(shape)
	if err != nil {
		return nil, err
	}
	if len(data) != size {
		return nil, fmt.Errorf("%w: %d values for shape %v", ErrShapeMismatch, len(data), shape)
	}
	return wrap(data, shape), nil
}

func volume(shape []int) (int, error) {
	if len(shape) == 0 {
		return 0, fmt.Errorf("%w: empty shape", ErrInvalidShape)
	}
	size := 1
	for i, dim := range shape {
		if dim <= 0 {
			return 0, fmt.Errorf("%w: shape[%d] = %d", ErrInvalidShape, i, dim)
		}
		size *= dim
	}
	return size, nil
}

func wrap(data []float32, shape []int) *Tensor {
	s := make([]int, len(shape))
	copy(s, shape)

	strides := make([]int, len(s))
	stride := 1
	for i := len(s) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= s[i]
	}
	return &Tensor{data: data, shape: s, strides: strides}
}

// Shape returns a copy of the shape.
func (t *Tensor) Shape() []int {
	s := make([]int, len(t.shape))
	copy(s, t.shape)
	return s
}

// Data returns the backing slice. Writes are visible through the tensor.
func (t *Tensor) Data() []float32 {
	return t.data
}

// Len returns the total number of elements.
func (t *Tensor) Len() int {
	return len(t.data)
}

// Dims returns the rank.
func (t *Tensor) Dims() int {
	return len(t.shape)
}

// At returns the element at the given indices.
func (t *Tensor) At(indices ...int) (float32, error) {
	idx, err := t.offset(indices)
	if err != nil {
		return 0, err
	}
	return t.data[idx], nil
}

// Set stores v at the given indices.
func (t *Tensor) Set(v float32, indices ...int) error {
	idx, err := t.offset(indices)
	if err != nil {
		return err
	}
	t.data[idx] = v
	return nil
}

func (t *Tensor) offset(indices []int) (int, error) {
	if len(indices) != len(t.shape) {
		return 0, fmt.Errorf("%w: %d indices for rank %d", ErrInvalidIndex, len(indices), len(t.shape))
	}
	idx := 0
	for i, v := range indices {
		if v < 0 || v >= t.shape[i] {
			return 0, fmt.Errorf("%w: index %d out of [0,%d) on axis %d", ErrInvalidIndex, v, t.shape[i], i)
		}
		idx += v * t.strides[i]
	}
	return idx, nil
}

// Slice returns a view of the i-th element along the first axis. The view
// shares storage with t. Slicing a rank-1 tensor yields shape [1].
func (t *Tensor) Slice(i int) (*Tensor, error) {
	if i < 0 || i >= t.shape[0] {
		return nil, fmt.Errorf("%w: slice %d out of [0,%d)", ErrInvalidIndex, i, t.shape[0])
	}
	if len(t.shape) == 1 {
		return wrap(t.data[i:i+1], []int{1}), nil
	}
	step := t.strides[0]
	return wrap(t.data[i*step:(i+1)*step], t.shape[1:]), nil
}

// CopyFrom copies src into t. Both tensors must hold the same number of
// elements.
func (t *Tensor) CopyFrom(src *Tensor) error {
	if src.Len() != t.Len() {
		return fmt.Errorf("%w: copy %v into %v", ErrShapeMismatch, src.shape, t.shape)
	}
	copy(t.data, src.data)
	return nil
}
