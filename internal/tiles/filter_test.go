// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package tiles

import (
	"errors"
	"reflect"
	"testing"
	"testing/fstest"

	"github.com/tomtom215/gradeprep/internal/dataset"
)

// tileFS returns a filesystem holding the given number of tiles per identifier.
func tileFS(naming Naming, tilesPerID map[string]int) fstest.MapFS {
	fsys := fstest.MapFS{}
	for id, n := range tilesPerID {
		for i := 0; i < n; i++ {
			fsys[naming.FileName(id, naming.Start+i)] = &fstest.MapFile{Data: []byte{0}}
		}
	}
	return fsys
}

func testTable() dataset.Table {
	return dataset.NewTable([]dataset.Row{
		{ImageID: "a", Provider: "karolinska", ISUPGrade: 0, GleasonScore: "0+0"},
		{ImageID: "b", Provider: "radboud", ISUPGrade: 1, GleasonScore: "3+3"},
		{ImageID: "c", Provider: "radboud", ISUPGrade: 2, GleasonScore: "3+4"},
		{ImageID: "d", Provider: "karolinska", ISUPGrade: 3, GleasonScore: "4+3"},
	})
}

func TestBuildIndex(t *testing.T) {
	t.Parallel()

	naming := Naming{Count: 4, Start: 0, Extension: "png"}
	fsys := tileFS(naming, map[string]int{"a": 4, "b": 2})
	fsys["README.txt"] = &fstest.MapFile{Data: []byte("x")}
	fsys["masks/a_0.png"] = &fstest.MapFile{Data: []byte{0}}

	ix, err := BuildIndex(fsys, naming)
	if err != nil {
		t.Fatalf("BuildIndex() error = %v", err)
	}
	if ix.Files() != 6 {
		t.Errorf("Files() = %d, want 6", ix.Files())
	}
	if ix.Ignored() != 1 {
		t.Errorf("Ignored() = %d, want 1", ix.Ignored())
	}
	if !ix.Complete("a") || ix.Complete("b") || ix.Complete("zzz") {
		t.Error("Complete() mismatch")
	}
	if got, want := ix.Missing("b"), []string{"b_2.png", "b_3.png"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Missing(b) = %v, want %v", got, want)
	}
	if got, want := ix.IDs(), []string{"a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}
}

func TestBuildIndexInvalidNaming(t *testing.T) {
	t.Parallel()

	if _, err := BuildIndex(fstest.MapFS{}, Naming{Count: 0, Extension: "png"}); err == nil {
		t.Error("BuildIndex() expected error for zero tile count")
	}
}

func TestFilterDrop(t *testing.T) {
	t.Parallel()

	naming := Naming{Count: 4, Start: 0, Extension: "png"}
	fsys := tileFS(naming, map[string]int{"a": 4, "b": 3, "c": 4, "orphan": 4})
	ix, err := BuildIndex(fsys, naming)
	if err != nil {
		t.Fatalf("BuildIndex() error = %v", err)
	}

	table := testTable()
	result, err := Filter(table, ix, PolicyDrop)
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}

	if got, want := result.Retained.IDs(), []string{"a", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Retained.IDs() = %v, want %v", got, want)
	}
	if got, want := result.DroppedIDs(), []string{"b", "d"}; !reflect.DeepEqual(got, want) {
		t.Errorf("DroppedIDs() = %v, want %v", got, want)
	}
	if got, want := result.Orphans, []string{"orphan"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Orphans = %v, want %v", got, want)
	}
	if result.Retained.Len()+len(result.Dropped) != table.Len() || result.Total != table.Len() {
		t.Errorf("retained %d + dropped %d != total %d", result.Retained.Len(), len(result.Dropped), table.Len())
	}
	if got := result.Dropped[0].Missing; !reflect.DeepEqual(got, []string{"b_3.png"}) {
		t.Errorf("Dropped[0].Missing = %v", got)
	}
	if len(result.Dropped[1].Missing) != 4 {
		t.Errorf("Dropped[1].Missing = %v, want all four tiles", result.Dropped[1].Missing)
	}
	if table.Len() != 4 {
		t.Error("Filter() modified its input table")
	}

	result.Log()
}

func TestFilterReject(t *testing.T) {
	t.Parallel()

	naming := Naming{Count: 2, Start: 0, Extension: "png"}
	fsys := tileFS(naming, map[string]int{"a": 2, "b": 2, "c": 1, "d": 2, "e": 2})
	ix, err := BuildIndex(fsys, naming)
	if err != nil {
		t.Fatalf("BuildIndex() error = %v", err)
	}

	result, err := Filter(testTable(), ix, PolicyReject)
	if !errors.Is(err, dataset.ErrDataIntegrity) {
		t.Fatalf("Filter() error = %v, want ErrDataIntegrity", err)
	}
	var ie *dataset.IntegrityError
	if !errors.As(err, &ie) {
		t.Fatalf("Filter() error is not *IntegrityError")
	}
	if got := ie.IDs(dataset.IssueMissingTiles); !reflect.DeepEqual(got, []string{"c"}) {
		t.Errorf("missing ids = %v", got)
	}
	if got := ie.IDs(dataset.IssueOrphanTiles); !reflect.DeepEqual(got, []string{"e"}) {
		t.Errorf("orphan ids = %v", got)
	}
	if result == nil || result.Retained.Len() != 3 {
		t.Errorf("result should still be reported on reject")
	}
}

func TestFilterRejectClean(t *testing.T) {
	t.Parallel()

	naming := Naming{Count: 2, Start: 1, Extension: "jpg"}
	fsys := tileFS(naming, map[string]int{"a": 2, "b": 2, "c": 2, "d": 2})
	ix, err := BuildIndex(fsys, naming)
	if err != nil {
		t.Fatalf("BuildIndex() error = %v", err)
	}

	result, err := Filter(testTable(), ix, PolicyReject)
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if result.Retained.Len() != 4 || len(result.Dropped) != 0 || len(result.Orphans) != 0 {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestFilterExtensionCase(t *testing.T) {
	t.Parallel()

	naming := Naming{Count: 4, Start: 0, Extension: "png"}
	upper := Naming{Count: 4, Start: 0, Extension: "PNG"}
	fsys := tileFS(upper, map[string]int{"a": 4, "b": 4})
	for name, f := range tileFS(naming, map[string]int{"c": 4, "d": 4}) {
		fsys[name] = f
	}
	ix, err := BuildIndex(fsys, naming)
	if err != nil {
		t.Fatalf("BuildIndex() error = %v", err)
	}
	if ix.Ignored() != 8 {
		t.Errorf("Ignored() = %d, want 8", ix.Ignored())
	}

	result, err := Filter(testTable(), ix, PolicyReject)
	if !errors.Is(err, dataset.ErrDataIntegrity) {
		t.Fatalf("Filter() error = %v, want ErrDataIntegrity", err)
	}
	if got, want := result.Retained.IDs(), []string{"c", "d"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Retained.IDs() = %v, want %v", got, want)
	}
	if got := result.Dropped[0].Missing; !reflect.DeepEqual(got, naming.FileNames("a")) {
		t.Errorf("Dropped[0].Missing = %v, want %v", got, naming.FileNames("a"))
	}
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"reject", "drop"} {
		if p, err := ParsePolicy(s); err != nil || string(p) != s {
			t.Errorf("ParsePolicy(%q) = %q, %v", s, p, err)
		}
	}
	if _, err := ParsePolicy("ignore"); err == nil {
		t.Error("ParsePolicy(ignore) expected error")
	}
}
