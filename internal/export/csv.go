// Package export renders document segments for handoff outside the system.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
)

type Row struct {
	Index  int
	Source string
	Target string
	Status string
}

// CSV renders rows as a bilingual table with a header line.
func CSV(rows []Row) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"index", "source", "target", "status"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		record := []string{strconv.Itoa(row.Index), row.Source, row.Target, row.Status}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", row.Index, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
