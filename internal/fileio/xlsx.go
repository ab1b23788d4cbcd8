package fileio

import (
	"fmt"
	"io"

	excelize "github.com/xuri/excelize/v2"
)

// readXLSX streams the first visible worksheet. Run sheets exported with a
// hidden lookup tab in front are common, so hidden sheets are skipped.
func readXLSX(r io.Reader, headerRow int) (Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Sheet{}, fmt.Errorf("xlsx: open: %w", err)
	}
	defer f.Close()

	name := ""
	for _, s := range f.GetSheetList() {
		if visible, err := f.GetSheetVisible(s); err == nil && visible {
			name = s
			break
		}
	}
	if name == "" {
		return Sheet{}, nil
	}

	it, err := f.Rows(name)
	if err != nil {
		return Sheet{}, fmt.Errorf("xlsx: sheet %q: %w", name, err)
	}
	defer it.Close()

	var rows [][]string
	for it.Next() {
		cols, err := it.Columns()
		if err != nil {
			return Sheet{}, fmt.Errorf("xlsx: row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, cols)
	}
	if err := it.Error(); err != nil {
		return Sheet{}, fmt.Errorf("xlsx: %w", err)
	}
	return toSheet(rows, headerRow), nil
}
