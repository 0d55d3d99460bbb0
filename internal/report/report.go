// Package report writes the per-run result row a gcmc exploration
// produces, one CSV line per invocation (spec.md §6).
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Row is one exploration result: the binaries checked, how many distinct
// configurations were reached, and the worst-case cycle total.
type Row struct {
	Binaries        []string
	ConfigWidth     int
	ConfigsExplored int
	WorstCaseCycles int
	ReachedFixpoint bool
}

var header = []string{"binaries", "config_width", "configs_explored", "worst_case_cycles", "reached_fixpoint"}

// WriteCSV writes the header (if w is empty of prior rows — callers own
// that decision) followed by row, flushing before returning.
func WriteCSV(w io.Writer, writeHeader bool, row Row) error {
	cw := csv.NewWriter(w)
	if writeHeader {
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("report: writing header: %w", err)
		}
	}

	record := []string{
		joinSemicolon(row.Binaries),
		strconv.Itoa(row.ConfigWidth),
		strconv.Itoa(row.ConfigsExplored),
		strconv.Itoa(row.WorstCaseCycles),
		strconv.FormatBool(row.ReachedFixpoint),
	}
	if err := cw.Write(record); err != nil {
		return fmt.Errorf("report: writing row: %w", err)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("report: flushing: %w", err)
	}
	return nil
}

func joinSemicolon(xs []string) string {
	out := ""
	for i, x := range xs {
		if i > 0 {
			out += ";"
		}
		out += x
	}
	return out
}
