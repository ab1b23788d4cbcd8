package fileio

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrUnsupported is returned for files that are not .csv, .xls or .xlsx.
var ErrUnsupported = errors.New("unsupported file")

// Record is one data row keyed by header, with its 1-based line in the sheet.
type Record struct {
	Line   int
	Fields map[string]string
}

// Sheet is the first worksheet of an uploaded file.
type Sheet struct {
	Header  []string
	Records []Record
}

// HasHeader reports whether any header cell equals name (case-insensitive).
func (s Sheet) HasHeader(name string) bool {
	for _, h := range s.Header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return true
		}
	}
	return false
}

// Supported reports whether filename has an accepted extension.
func Supported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".xls", ".xlsx":
		return true
	}
	return false
}

// ReadSheet picks a reader by extension. headerRow is 1-based.
func ReadSheet(r io.Reader, filename string, headerRow int) (Sheet, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx":
		return readXLSX(r, headerRow)
	case ".xls":
		return readXLS(r, headerRow)
	case ".csv":
		return readCSV(r, headerRow)
	default:
		return Sheet{}, fmt.Errorf("%w: %s", ErrUnsupported, filename)
	}
}

// pickHeader takes the header row and names blank cells "Column N".
func pickHeader(rows [][]string, headerRow int) []string {
	idx := headerRow - 1
	if idx < 0 || idx >= len(rows) {
		idx = 0
	}
	h := rows[idx]
	out := make([]string, len(h))
	for i, v := range h {
		v = normalizeCell(v)
		if v == "" {
			v = fmt.Sprintf("Column %d", i+1)
		}
		out[i] = v
	}
	return out
}

// toSheet converts rows below the header into records, skipping blank rows.
func toSheet(rows [][]string, headerRow int) Sheet {
	if len(rows) == 0 {
		return Sheet{}
	}
	if headerRow < 1 {
		headerRow = 1
	}
	headers := pickHeader(rows, headerRow)
	sh := Sheet{Header: headers}
	for r := headerRow; r < len(rows); r++ {
		rec := rows[r]
		m := make(map[string]string, len(headers))
		empty := true
		for c, h := range headers {
			var v string
			if c < len(rec) {
				v = normalizeCell(rec[c])
			}
			if v != "" {
				empty = false
			}
			m[h] = v
		}
		if !empty {
			sh.Records = append(sh.Records, Record{Line: r + 1, Fields: m})
		}
	}
	return sh
}

// normalizeCell trims the cell and folds non-breaking spaces.
func normalizeCell(s string) string {
	s = strings.NewReplacer("\u00A0", " ", "\u202F", " ", "\uFEFF", "").Replace(s)
	return strings.TrimSpace(s)
}
