package tableutil

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"samparkdash/internal/cell"
)

// Field is one named value of an export record. Records keep field order,
// which becomes column order.
type Field struct {
	Name  string
	Value any
}

// Record is one exported row.
type Record []Field

// Get returns the value stored under name.
func (r Record) Get(name string) (any, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// WriteCSV serializes records with every field quoted. Columns come from the
// first record; later records missing a column export "" and extra fields
// are dropped. headers optionally renames columns. Lines are joined by "\n"
// with no trailing newline. Zero records write nothing.
func WriteCSV(w io.Writer, records []Record, headers map[string]string) error {
	if len(records) == 0 {
		return nil
	}
	columns := make([]string, len(records[0]))
	for i, f := range records[0] {
		columns[i] = f.Name
	}

	bw := bufio.NewWriter(w)
	titles := make([]string, len(columns))
	for i, c := range columns {
		if t, ok := headers[c]; ok && t != "" {
			titles[i] = t
		} else {
			titles[i] = c
		}
	}
	writeLine(bw, titles)

	line := make([]string, len(columns))
	for _, rec := range records {
		for i, c := range columns {
			v, _ := rec.Get(c)
			line[i] = exportText(v)
		}
		bw.WriteByte('\n')
		writeLine(bw, line)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// CSV returns the serialized records as a string.
func CSV(records []Record, headers map[string]string) string {
	var sb strings.Builder
	_ = WriteCSV(&sb, records, headers)
	return sb.String()
}

func writeLine(w *bufio.Writer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteByte('"')
		w.WriteString(strings.ReplaceAll(f, `"`, `""`))
		w.WriteByte('"')
	}
}

func exportText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case cell.Value:
		return x.Export()
	default:
		return cell.Normalize(x).Export()
	}
}

// ExportFilename builds "<slug>-<YYYY-MM-DD>.csv" from the export moment.
func ExportFilename(slug string, at time.Time) string {
	return fmt.Sprintf("%s-%s.csv", slug, at.Format(time.DateOnly))
}

// ExportCSV writes records into dir and returns the file path. Zero records
// produce no file and an empty path.
func ExportCSV(dir, slug string, at time.Time, records []Record, headers map[string]string) (string, error) {
	if len(records) == 0 {
		return "", nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, ExportFilename(slug, at))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	if err := WriteCSV(f, records, headers); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close export file: %w", err)
	}
	return path, nil
}
