// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	_ "github.com/duckdb/duckdb-go/v2" // DuckDB driver

	"github.com/tomtom215/gradeprep/internal/dataset"
	"github.com/tomtom215/gradeprep/internal/logging"
)

const schema = `CREATE OR REPLACE TABLE samples (
	split VARCHAR NOT NULL,
	image_id VARCHAR NOT NULL,
	provider VARCHAR NOT NULL,
	isup_grade INTEGER NOT NULL,
	gleason_score VARCHAR
)`

const gradeQuery = `SELECT split, provider, isup_grade, count(*) AS n
FROM samples
GROUP BY split, provider, isup_grade
ORDER BY split, provider, isup_grade`

const totalQuery = `SELECT split, count(*) AS n, count(DISTINCT provider) AS providers
FROM samples
GROUP BY split
ORDER BY split`

// GradeCount is the number of rows with one grade for a split and provider.
type GradeCount struct {
	Split    string `json:"split"`
	Provider string `json:"provider"`
	Grade    int    `json:"isup_grade"`
	Count    int    `json:"count"`
}

// SplitTotal is the row and provider count of one split.
type SplitTotal struct {
	Split     string `json:"split"`
	Rows      int    `json:"rows"`
	Providers int    `json:"providers"`
}

// Summary holds the grade distribution of every partition.
type Summary struct {
	Grades []GradeCount `json:"grades"`
	Totals []SplitTotal `json:"totals"`
}

// Catalog is an in-memory DuckDB database used for dataset statistics.
type Catalog struct {
	db *sql.DB
}

// Open creates an in-memory catalog.
func Open() (*Catalog, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	return &Catalog{db: db}, nil
}

// Close releases the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Summarize loads every partition, keyed by split name, and returns grade
// counts per split and provider. Previous contents are replaced.
func (c *Catalog) Summarize(ctx context.Context, partitions map[string]dataset.Table) (*Summary, error) {
	if err := c.load(ctx, partitions); err != nil {
		return nil, err
	}

	summary := &Summary{}
	rows, err := c.db.QueryContext(ctx, gradeQuery)
	if err != nil {
		return nil, fmt.Errorf("query grade counts: %w", err)
	}
	for rows.Next() {
		var g GradeCount
		if err := rows.Scan(&g.Split, &g.Provider, &g.Grade, &g.Count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan grade count: %w", err)
		}
		summary.Grades = append(summary.Grades, g)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate grade counts: %w", err)
	}
	rows.Close()

	rows, err = c.db.QueryContext(ctx, totalQuery)
	if err != nil {
		return nil, fmt.Errorf("query split totals: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s SplitTotal
		if err := rows.Scan(&s.Split, &s.Rows, &s.Providers); err != nil {
			return nil, fmt.Errorf("scan split total: %w", err)
		}
		summary.Totals = append(summary.Totals, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate split totals: %w", err)
	}

	return summary, nil
}

func (c *Catalog) load(ctx context.Context, partitions map[string]dataset.Table) error {
	if _, err := c.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create samples table: %w", err)
	}

	names := make([]string, 0, len(partitions))
	for name := range partitions {
		names = append(names, name)
	}
	sort.Strings(names)

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin load: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO samples VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, name := range names {
		t := partitions[name]
		for i := 0; i < t.Len(); i++ {
			r := t.Row(i)
			if _, err := stmt.ExecContext(ctx, name, r.ImageID, r.Provider, r.ISUPGrade, r.GleasonScore); err != nil {
				return fmt.Errorf("insert %s: %w", r.ImageID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit load: %w", err)
	}
	return nil
}

// Summarize opens a throwaway catalog, summarizes partitions and closes it.
func Summarize(ctx context.Context, partitions map[string]dataset.Table) (*Summary, error) {
	c, err := Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := c.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close catalog")
		}
	}()
	return c.Summarize(ctx, partitions)
}

// Count returns the number of rows for a split, provider and grade.
func (s *Summary) Count(split, provider string, grade int) int {
	for _, g := range s.Grades {
		if g.Split == split && g.Provider == provider && g.Grade == grade {
			return g.Count
		}
	}
	return 0
}

// Total returns the row count of a split.
func (s *Summary) Total(split string) int {
	for _, t := range s.Totals {
		if t.Split == split {
			return t.Rows
		}
	}
	return 0
}

// Log writes split totals at info level and grade counts at debug level.
func (s *Summary) Log() {
	for _, t := range s.Totals {
		logging.Info().
			Str("split", t.Split).
			Int("rows", t.Rows).
			Int("providers", t.Providers).
			Msg("Partition summary")
	}
	for _, g := range s.Grades {
		logging.Debug().
			Str("split", g.Split).
			Str("provider", g.Provider).
			Int("isup_grade", g.Grade).
			Int("count", g.Count).
			Msg("Grade count")
	}
}
