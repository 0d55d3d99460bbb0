package report

import (
	"strings"
	"testing"
)

func TestWriteCSVHeaderAndRow(t *testing.T) {
	var buf strings.Builder
	row := Row{
		Binaries:        []string{"core0.bin", "core1.bin"},
		ConfigWidth:     32,
		ConfigsExplored: 10,
		WorstCaseCycles: 42,
		ReachedFixpoint: true,
	}

	if err := WriteCSV(&buf, true, row); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2 (header + row)", len(lines))
	}
	if lines[0] != strings.Join(header, ",") {
		t.Errorf("header = %q, want %q", lines[0], strings.Join(header, ","))
	}

	want := `core0.bin;core1.bin,32,10,42,true`
	if lines[1] != want {
		t.Errorf("row = %q, want %q", lines[1], want)
	}
}

func TestWriteCSVWithoutHeader(t *testing.T) {
	var buf strings.Builder
	row := Row{Binaries: []string{"a.bin"}, ConfigWidth: 8, ConfigsExplored: 1, WorstCaseCycles: 0, ReachedFixpoint: false}

	if err := WriteCSV(&buf, false, row); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(buf.String(), "binaries") {
		t.Errorf("header should be absent, got %q", buf.String())
	}
}
