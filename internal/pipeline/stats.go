// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package pipeline

import "time"

// StageTiming is the elapsed time and output size of one stage.
type StageTiming struct {
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration"`
	Rows     int           `json:"rows"`
}

// RunStats collects counts and timings of a Prepare call.
type RunStats struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	MetadataRows    int `json:"metadata_rows"`
	Retained        int `json:"retained"`
	Dropped         int `json:"dropped"`
	Orphans         int `json:"orphans"`
	LabelMismatches int `json:"label_mismatches"`
	TrainRows       int `json:"train_rows"`
	ValidationRows  int `json:"validation_rows"`

	Stages []StageTiming `json:"stages"`
}

// Duration returns the wall time of the run.
func (s RunStats) Duration() time.Duration {
	if s.End.IsZero() {
		return 0
	}
	return s.End.Sub(s.Start)
}

// Stage returns the timing of a stage, if it ran.
func (s RunStats) Stage(name string) (StageTiming, bool) {
	for _, st := range s.Stages {
		if st.Stage == name {
			return st, true
		}
	}
	return StageTiming{}, false
}
