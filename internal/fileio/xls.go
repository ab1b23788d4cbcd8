// Legacy .xls reader: the table width is fixed up front and every cell up to it
// is read, since Row.LastCol() is unreliable on sheets exported from NetSuite.
package fileio

import (
	"bytes"
	"errors"
	"io"

	xls "github.com/extrame/xls"
)

// computeMaxCols probes a bounded number of columns for non-empty cells.
func computeMaxCols(sheet *xls.WorkSheet) int {
	const probeMax = 128
	maxCols := 0
	for i := 0; i <= int(sheet.MaxRow); i++ {
		r := sheet.Row(i)
		if r == nil {
			continue
		}
		for j := maxCols; j < probeMax; j++ {
			if normalizeCell(r.Col(j)) != "" {
				maxCols = j + 1
			}
		}
	}
	if maxCols == 0 {
		maxCols = 1
	}
	return maxCols
}

func readXLS(r io.Reader, headerRow int) (Sheet, error) {
	if headerRow <= 0 {
		return Sheet{}, errors.New("headerRow must be 1-based and >= 1")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return Sheet{}, err
	}

	wb, err := xls.OpenReader(bytes.NewReader(b), "utf-8")
	if err != nil {
		return Sheet{}, err
	}
	if wb == nil {
		return Sheet{}, errors.New("xls: failed to open workbook")
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return Sheet{}, nil
	}

	maxCols := computeMaxCols(sheet)
	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		cols := make([]string, maxCols)
		if row != nil {
			for j := 0; j < maxCols; j++ {
				cols[j] = row.Col(j)
			}
		}
		rows = append(rows, cols)
	}
	return toSheet(rows, headerRow), nil
}
