// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/tomtom215/gradeprep/internal/logging"
)

// RequiredColumns are the header columns every metadata file must carry.
// Additional columns are ignored.
var RequiredColumns = []string{"image_id", "data_provider", "isup_grade", "gleason_score"}

var utf8BOM = []byte("\xef\xbb\xbf")

// Load reads a delimited metadata file.
func Load(path string, delimiter rune) (Table, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from validated configuration
	if err != nil {
		return Table{}, fmt.Errorf("open metadata %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			logging.Warn().Err(closeErr).Str("path", path).Msg("Error closing metadata file")
		}
	}()

	return Read(f, delimiter)
}

// Read parses metadata from r. It returns ErrEmptyTable when there are no
// data rows and a joined set of *RowError values for malformed, blank or
// duplicated rows.
func Read(r io.Reader, delimiter rune) (Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Table{}, fmt.Errorf("read metadata: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	if err := checkHeader(data, delimiter); err != nil {
		return Table{}, err
	}

	var rows []Row
	if err := gocsv.UnmarshalCSV(newCSVReader(data, delimiter), &rows); err != nil {
		return Table{}, fmt.Errorf("%w: parse metadata: %w", ErrInconsistentMetadata, err)
	}
	if len(rows) == 0 {
		return Table{}, ErrEmptyTable
	}

	if err := normalizeRows(rows); err != nil {
		return Table{}, err
	}

	return NewTable(rows), nil
}

func newCSVReader(data []byte, delimiter rune) *csv.Reader {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.TrimLeadingSpace = true
	return reader
}

// checkHeader verifies that the required columns are present and that at
// least one data row follows the header.
func checkHeader(data []byte, delimiter rune) error {
	reader := newCSVReader(data, delimiter)
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return ErrEmptyTable
	}
	if err != nil {
		return fmt.Errorf("%w: read header: %w", ErrInconsistentMetadata, err)
	}
	if _, err := reader.Read(); errors.Is(err, io.EOF) {
		return ErrEmptyTable
	}

	present := make(map[string]bool, len(header))
	for _, col := range header {
		present[strings.TrimSpace(col)] = true
	}
	var missing []string
	for _, col := range RequiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: header missing columns %s", ErrInconsistentMetadata, strings.Join(missing, ", "))
	}
	return nil
}

// normalizeRows trims identifiers and reports blank or duplicated rows.
func normalizeRows(rows []Row) error {
	var errs []error
	firstLine := make(map[string]int, len(rows))

	for i := range rows {
		line := i + 2
		rows[i].ImageID = strings.TrimSpace(rows[i].ImageID)
		rows[i].Provider = strings.TrimSpace(rows[i].Provider)
		rows[i].GleasonScore = strings.TrimSpace(rows[i].GleasonScore)

		switch {
		case rows[i].ImageID == "":
			errs = append(errs, &RowError{Line: line, Reason: "empty image_id"})
			continue
		case rows[i].Provider == "":
			errs = append(errs, &RowError{Line: line, ImageID: rows[i].ImageID, Reason: "empty data_provider"})
		}

		if first, dup := firstLine[rows[i].ImageID]; dup {
			errs = append(errs, &RowError{
				Line:    line,
				ImageID: rows[i].ImageID,
				Reason:  fmt.Sprintf("duplicate of line %d", first),
			})
			continue
		}
		firstLine[rows[i].ImageID] = line
	}

	return errors.Join(errs...)
}
