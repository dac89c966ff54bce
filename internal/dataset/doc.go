// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

// Package dataset holds the biopsy metadata table.
//
// Metadata files are delimited text with a header naming at least
// image_id, data_provider, isup_grade and gleason_score:
//
//	image_id,data_provider,isup_grade,gleason_score
//	0005f7aaab2800f6170c399693a96917,karolinska,0,0+0
//	0018ae58b01bdadc8e347995b69f99aa,radboud,4,4+4
//
// Parsing is done by gocsv. A Table is never modified in place: filtering,
// selection and partitioning return new tables, so a pre-filter view and a
// post-filter view can never alias each other.
package dataset
