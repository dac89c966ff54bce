// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package loader

import (
	"bytes"
	"errors"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/tomtom215/gradeprep/internal/logging"
)

// closeFailFS serves files whose Close always fails.
type closeFailFS struct {
	fstest.MapFS
}

type closeFailFile struct {
	fs.File
}

func (c closeFailFile) Close() error {
	_ = c.File.Close()
	return errors.New("device busy")
}

func (c closeFailFS) Open(name string) (fs.File, error) {
	f, err := c.MapFS.Open(name)
	if err != nil {
		return nil, err
	}
	return closeFailFile{File: f}, nil
}

func TestDecodeTileLogsCloseError(t *testing.T) {
	var buf bytes.Buffer
	prev := logging.Logger()
	logging.SetLogger(logging.NewTestLogger(&buf))
	t.Cleanup(func() { logging.SetLogger(prev) })

	fsys := closeFailFS{MapFS: fstest.MapFS{
		"s0_0.png": &fstest.MapFile{Data: encodeTile(t, 4, 4, 50)},
	}}

	img, err := decodeTile(fsys, "s0", "s0_0.png", 4, 4)
	if err != nil {
		t.Fatalf("decodeTile() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 4 {
		t.Errorf("bounds = %v, want 4x4", b)
	}

	line := buf.String()
	if !strings.Contains(line, "Error closing tile file") || !strings.Contains(line, "device busy") {
		t.Errorf("close error not logged: %q", line)
	}
	if !strings.Contains(line, `"file":"s0_0.png"`) {
		t.Errorf("log line missing file name: %q", line)
	}
}
