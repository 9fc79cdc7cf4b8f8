package export

import (
	"strings"
	"testing"
)

func TestCSV(t *testing.T) {
	rows := []Row{
		{Index: 0, Source: "Hello", Target: "Bonjour", Status: "translated"},
		{Index: 1, Source: "World, \"quoted\"", Target: "", Status: "untranslated"},
	}

	out, err := CSV(rows)
	if err != nil {
		t.Fatalf("CSV() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "index,source,target,status" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if lines[1] != "0,Hello,Bonjour,translated" {
		t.Fatalf("unexpected first row: %q", lines[1])
	}
	if !strings.Contains(lines[2], `"World, ""quoted"""`) {
		t.Fatalf("expected quoting on second row, got %q", lines[2])
	}
}

func TestCSVEmpty(t *testing.T) {
	out, err := CSV(nil)
	if err != nil {
		t.Fatalf("CSV() error = %v", err)
	}
	if strings.TrimRight(string(out), "\n") != "index,source,target,status" {
		t.Fatalf("expected header only, got %q", string(out))
	}
}
