// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

// Package export writes run results to files: the per-user recommendation
// table as CSV and the method comparison report as JSON.
//
// Files are written to a temporary sibling and renamed into place, so a
// reader never sees a half-written export.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/affinity/internal/recommend"
	"github.com/tomtom215/affinity/internal/recommend/pipeline"
)

// UserColumn is the header of the first CSV column.
const UserColumn = "adventurer_id"

// ErrInvalidWidth is returned when the recommendation table has no
// recommendation columns.
var ErrInvalidWidth = errors.New("recommendation table needs at least one column")

// Report is the evaluation report written after a batch run.
type Report struct {
	RunID       string                   `json:"run_id"`
	GeneratedAt time.Time                `json:"generated_at"`
	Scope       pipeline.Summary         `json:"scope"`
	Stages      []pipeline.StageTiming   `json:"stages,omitempty"`
	N           int                      `json:"n"`
	Strategy    string                   `json:"strategy"`
	Users       []string                 `json:"users"`
	Methods     []recommend.MethodReport `json:"methods"`
}

// NewReport assembles a report for a run.
func NewReport(run *pipeline.Run, n int, strategy string, users []string, methods []recommend.MethodReport) *Report {
	return &Report{
		RunID:       run.ID,
		GeneratedAt: time.Now().UTC(),
		Scope:       run.Summary(),
		Stages:      run.Stats.Stages,
		N:           n,
		Strategy:    strategy,
		Users:       users,
		Methods:     methods,
	}
}

// Header returns the CSV header for lists of width n.
func Header(n int) []string {
	header := make([]string, 0, n+1)
	header = append(header, UserColumn)
	for i := 1; i <= n; i++ {
		header = append(header, "rec"+strconv.Itoa(i))
	}
	return header
}

// WriteRecommendations writes one row per list. Lists shorter than n are
// padded with empty cells; longer lists are truncated.
func WriteRecommendations(w io.Writer, lists []recommend.RecommendationList, n int) error {
	if n < 1 {
		return ErrInvalidWidth
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(Header(n)); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	row := make([]string, n+1)
	for i := range lists {
		row[0] = lists[i].UserID
		for j := 0; j < n; j++ {
			row[j+1] = ""
			if j < len(lists[i].Items) {
				row[j+1] = lists[i].Items[j]
			}
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// WriteReport encodes the report as indented JSON.
func WriteReport(w io.Writer, report *Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// RecommendationsFile writes the recommendation table to path.
func RecommendationsFile(path string, lists []recommend.RecommendationList, n int) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteRecommendations(w, lists, n)
	})
}

// ReportFile writes the evaluation report to path.
func ReportFile(path string, report *Report) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteReport(w, report)
	})
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}
