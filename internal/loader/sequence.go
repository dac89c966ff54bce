// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package loader

import (
	"context"
	"fmt"
	"io/fs"
	"math"
	"math/rand/v2"
	"time"

	"github.com/tomtom215/gradeprep/internal/dataset"
	"github.com/tomtom215/gradeprep/internal/metrics"
	"github.com/tomtom215/gradeprep/internal/tensor"
	"github.com/tomtom215/gradeprep/internal/tiles"
)

// Sequence is an index-addressable source of batches.
type Sequence interface {
	// Len returns the number of full batches.
	Len() int
	// Batch loads batch idx in [0, Len()).
	Batch(ctx context.Context, idx int) (*Batch, error)
	// OnEpochEnd is called after every epoch.
	OnEpochEnd()
}

// Batch is one loaded batch.
type Batch struct {
	// Images has shape [B, ...sample shape].
	Images *tensor.Tensor
	// Labels has shape [B, classes], one-hot.
	Labels *tensor.Tensor
	// IDs are the sample identifiers in batch order.
	IDs []string
}

// Layout is the way a sample's tiles are assembled.
type Layout string

const (
	// LayoutGrid places tiles row-major on a square grid.
	LayoutGrid Layout = "grid"
	// LayoutChannels concatenates tiles along the channel axis.
	LayoutChannels Layout = "channels"
)

// Shape is the size of a single tile after decoding.
type Shape struct {
	Height   int
	Width    int
	Channels int
}

// Options configures a TileSequence.
type Options struct {
	Tile      Shape
	BatchSize int
	Table     dataset.Table
	Images    fs.FS
	// Masks is accepted for parity with the on-disk layout; mask tiles are
	// never read.
	Masks    fs.FS
	Training bool
	Layout   Layout
	Naming   tiles.Naming
	Classes  int
	Label    dataset.LabelFunc
	Seed     uint64
	// Name labels metrics and logs, typically "train" or "validation".
	Name string
}

// TileSequence decodes tiles from storage on every Batch call. It keeps no
// cache.
//
// TileSequence is not safe for concurrent use: OnEpochEnd reorders rows.
// Callers that load batches in parallel must synchronize with it.
type TileSequence struct {
	opts  Options
	order []int
	side  int
	rng   *rand.Rand
}

// NewTileSequence validates opts and returns a sequence. Training sequences
// start shuffled.
func NewTileSequence(opts Options) (*TileSequence, error) {
	if opts.BatchSize < 1 {
		return nil, fmt.Errorf("batch size must be at least 1, got %d", opts.BatchSize)
	}
	if opts.Tile.Height < 1 || opts.Tile.Width < 1 {
		return nil, fmt.Errorf("invalid tile size %dx%d", opts.Tile.Height, opts.Tile.Width)
	}
	if opts.Tile.Channels != 1 && opts.Tile.Channels != 3 {
		return nil, fmt.Errorf("tile channels must be 1 or 3, got %d", opts.Tile.Channels)
	}
	if opts.Classes < 1 {
		return nil, fmt.Errorf("class count must be at least 1, got %d", opts.Classes)
	}
	if opts.Images == nil {
		return nil, fmt.Errorf("image filesystem is required")
	}
	if err := opts.Naming.Validate(); err != nil {
		return nil, err
	}
	if opts.Label == nil {
		opts.Label = dataset.ISUPLabel
	}
	if opts.Name == "" {
		opts.Name = "unnamed"
	}

	s := &TileSequence{
		opts:  opts,
		order: make([]int, opts.Table.Len()),
		rng:   rand.New(rand.NewPCG(opts.Seed, opts.Seed)),
	}
	for i := range s.order {
		s.order[i] = i
	}

	switch opts.Layout {
	case LayoutGrid, "":
		side := int(math.Sqrt(float64(opts.Naming.Count)))
		for side*side < opts.Naming.Count {
			side++
		}
		if side*side != opts.Naming.Count {
			return nil, fmt.Errorf("grid layout needs a perfect-square tile count, got %d", opts.Naming.Count)
		}
		s.side = side
		s.opts.Layout = LayoutGrid
	case LayoutChannels:
	default:
		return nil, fmt.Errorf("unknown tile layout %q", opts.Layout)
	}

	s.OnEpochEnd()
	return s, nil
}

// Len returns floor(rows / batch size). The final partial batch is dropped.
func (s *TileSequence) Len() int {
	return len(s.order) / s.opts.BatchSize
}

// Name returns the label given in Options.
func (s *TileSequence) Name() string {
	return s.opts.Name
}

// Training reports whether the sequence reshuffles between epochs.
func (s *TileSequence) Training() bool {
	return s.opts.Training
}

// SampleShape returns the shape of one assembled sample.
func (s *TileSequence) SampleShape() []int {
	t := s.opts.Tile
	if s.opts.Layout == LayoutChannels {
		return []int{t.Height, t.Width, t.Channels * s.opts.Naming.Count}
	}
	return []int{s.side * t.Height, s.side * t.Width, t.Channels}
}

// Order returns the current row order as sample identifiers.
func (s *TileSequence) Order() []string {
	ids := make([]string, len(s.order))
	for i, p := range s.order {
		ids[i] = s.opts.Table.Row(p).ImageID
	}
	return ids
}

// OnEpochEnd reshuffles the row order in training mode and does nothing
// otherwise.
func (s *TileSequence) OnEpochEnd() {
	if !s.opts.Training {
		return
	}
	s.rng.Shuffle(len(s.order), func(i, j int) { s.order[i], s.order[j] = s.order[j], s.order[i] })
}

// Batch loads batch idx. Every tile is opened and decoded again; no
// placeholder data is ever substituted for a failed tile.
func (s *TileSequence) Batch(ctx context.Context, idx int) (*Batch, error) {
	start := time.Now()
	batch, err := s.load(ctx, idx)
	tilesRead := 0
	if err == nil {
		tilesRead = len(batch.IDs) * s.opts.Naming.Count
	}
	metrics.RecordBatch(s.opts.Name, tilesRead, time.Since(start), errorKind(err))
	return batch, err
}

func (s *TileSequence) load(ctx context.Context, idx int) (*Batch, error) {
	if idx < 0 || idx >= s.Len() {
		return nil, fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, idx, s.Len())
	}

	bs := s.opts.BatchSize
	shape := append([]int{bs}, s.SampleShape()...)
	images, err := tensor.New(shape...)
	if err != nil {
		return nil, err
	}
	labels, err := tensor.New(bs, s.opts.Classes)
	if err != nil {
		return nil, err
	}

	ids := make([]string, bs)
	for b := 0; b < bs; b++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := s.opts.Table.Row(s.order[idx*bs+b])
		ids[b] = row.ImageID

		label, err := s.label(row)
		if err != nil {
			return nil, err
		}
		lv, _ := labels.Slice(b)
		copy(lv.Data(), label)

		sample, _ := images.Slice(b)
		if err := s.assemble(row.ImageID, sample.Data()); err != nil {
			return nil, err
		}
	}

	return &Batch{Images: images, Labels: labels, IDs: ids}, nil
}

func (s *TileSequence) label(row dataset.Row) ([]float32, error) {
	label, err := s.opts.Label(row)
	if err != nil {
		return nil, err
	}
	v, err := tensor.OneHot(label, s.opts.Classes)
	if err != nil {
		return nil, &dataset.RowError{
			ImageID: row.ImageID,
			Reason:  fmt.Sprintf("label %d outside [0,%d)", label, s.opts.Classes),
		}
	}
	return v, nil
}

// assemble decodes every tile of a sample into dst according to the layout.
func (s *TileSequence) assemble(imageID string, dst []float32) error {
	t := s.opts.Tile
	for k, name := range s.opts.Naming.FileNames(imageID) {
		img, err := decodeTile(s.opts.Images, imageID, name, t.Height, t.Width)
		if err != nil {
			return err
		}

		var put pixelWriter
		if s.opts.Layout == LayoutChannels {
			depth := t.Channels * s.opts.Naming.Count
			put = func(y, x, ch int, v float32) {
				dst[(y*t.Width+x)*depth+k*t.Channels+ch] = v
			}
		} else {
			r, c := k/s.side, k%s.side
			rowWidth := s.side * t.Width
			put = func(y, x, ch int, v float32) {
				dst[((r*t.Height+y)*rowWidth+c*t.Width+x)*t.Channels+ch] = v
			}
		}
		writePixels(img, t.Channels, put)
	}
	return nil
}
