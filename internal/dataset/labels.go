// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package dataset

import (
	"fmt"
	"strings"
)

// gleasonToISUP maps "primary+secondary" Gleason patterns to ISUP grade groups.
var gleasonToISUP = map[string]int{
	"0+0":      0,
	"negative": 0,
	"3+3":      1,
	"3+4":      2,
	"4+3":      3,
	"4+4":      4,
	"3+5":      4,
	"5+3":      4,
	"4+5":      5,
	"5+4":      5,
	"5+5":      5,
}

// ISUPFromGleason returns the ISUP grade group for a Gleason score string.
func ISUPFromGleason(score string) (int, bool) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(score), " ", ""))
	grade, ok := gleasonToISUP[key]
	return grade, ok
}

// LabelFunc resolves the integer class label of a row.
type LabelFunc func(Row) (int, error)

// ISUPLabel uses the isup_grade column.
func ISUPLabel(r Row) (int, error) {
	return r.ISUPGrade, nil
}

// GleasonLabel derives the label from the gleason_score column.
func GleasonLabel(r Row) (int, error) {
	grade, ok := ISUPFromGleason(r.GleasonScore)
	if !ok {
		return 0, &RowError{ImageID: r.ImageID, Reason: fmt.Sprintf("unmapped gleason_score %q", r.GleasonScore)}
	}
	return grade, nil
}

// LabelFuncFor returns the LabelFunc for a label source name
// ("isup_grade" or "gleason_score").
func LabelFuncFor(source string) (LabelFunc, error) {
	switch source {
	case "isup_grade", "":
		return ISUPLabel, nil
	case "gleason_score":
		return GleasonLabel, nil
	default:
		return nil, fmt.Errorf("unknown label source %q", source)
	}
}

// Mismatch is a row whose gleason_score does not agree with its isup_grade.
type Mismatch struct {
	ImageID      string `json:"image_id"`
	Provider     string `json:"data_provider"`
	ISUPGrade    int    `json:"isup_grade"`
	GleasonScore string `json:"gleason_score"`

	// Expected is the grade implied by GleasonScore, or -1 when the score is unmapped.
	Expected int `json:"expected"`
}

// Err reports the mismatch as a *RowError.
func (m Mismatch) Err() error {
	if m.Expected < 0 {
		return &RowError{ImageID: m.ImageID, Reason: fmt.Sprintf("unmapped gleason_score %q", m.GleasonScore)}
	}
	return &RowError{
		ImageID: m.ImageID,
		Reason:  fmt.Sprintf("gleason_score %q implies grade %d, isup_grade is %d", m.GleasonScore, m.Expected, m.ISUPGrade),
	}
}

// CheckGleasonConsistency returns every row whose two label columns disagree.
func CheckGleasonConsistency(t Table) []Mismatch {
	var out []Mismatch
	for _, r := range t.rows {
		expected, ok := ISUPFromGleason(r.GleasonScore)
		if !ok {
			expected = -1
		}
		if ok && expected == r.ISUPGrade {
			continue
		}
		out = append(out, Mismatch{
			ImageID:      r.ImageID,
			Provider:     r.Provider,
			ISUPGrade:    r.ISUPGrade,
			GleasonScore: r.GleasonScore,
			Expected:     expected,
		})
	}
	return out
}
