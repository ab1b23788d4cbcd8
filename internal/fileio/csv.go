package fileio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

const peekSize = 4096

// readCSV reads CSV with headerRow (1-based), converting legacy encodings to
// UTF-8. Spreadsheet exports here are usually UTF-8 (with or without BOM),
// Windows-1252 or UTF-16 from Excel's "Unicode text".
func readCSV(r io.Reader, headerRow int) (Sheet, error) {
	br := bufio.NewReader(r)

	peek, _ := br.Peek(peekSize)
	var dec io.Reader = br
	if enc := detectEncoding(peek); enc != nil {
		dec = transform.NewReader(br, enc.NewDecoder())
	}

	cr := csv.NewReader(dec)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Sheet{}, err
		}
		rows = append(rows, rec)
	}
	return toSheet(rows, headerRow), nil
}

// detectEncoding returns nil when the input is already UTF-8. The peek may
// cut a multi-byte rune in half, so only its complete prefix is checked.
func detectEncoding(peek []byte) encoding.Encoding {
	switch {
	case bytes.HasPrefix(peek, []byte{0xFF, 0xFE, 0, 0}):
		return utf32.UTF32(utf32.LittleEndian, utf32.UseBOM)
	case bytes.HasPrefix(peek, []byte{0, 0, 0xFE, 0xFF}):
		return utf32.UTF32(utf32.BigEndian, utf32.UseBOM)
	case len(peek) >= 2 && peek[0] == 0xFF && peek[1] == 0xFE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case len(peek) >= 2 && peek[0] == 0xFE && peek[1] == 0xFF:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	case len(peek) >= 3 && peek[0] == 0xEF && peek[1] == 0xBB && peek[2] == 0xBF:
		return unicode.UTF8BOM
	case len(peek) == 0:
		return nil
	}
	// BOM-less wide exports are byte-wise valid UTF-8, the NULs give them away
	if bytes.IndexByte(peek, 0) >= 0 {
		return detectWide(peek)
	}
	if utf8.Valid(peek) {
		return nil
	}
	if len(peek) == peekSize {
		p := peek
		for i := 0; i < utf8.UTFMax-1 && len(p) > 0; i++ {
			p = p[:len(p)-1]
			if utf8.Valid(p) {
				return nil
			}
		}
	}
	// latin-1 labels are decoded as windows-1252, its printable superset
	return charmap.Windows1252
}

// detectWide picks UTF-32 when chardet is confident, else UTF-16 by which
// byte of each pair carries the NULs.
func detectWide(peek []byte) encoding.Encoding {
	if all, err := chardet.NewTextDetector().DetectAll(peek); err == nil {
		for _, r := range all {
			if r.Confidence < 80 {
				continue
			}
			switch r.Charset {
			case "UTF-32LE":
				return utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM)
			case "UTF-32BE":
				return utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM)
			}
		}
	}
	var even, odd int
	for i, b := range peek {
		if b != 0 {
			continue
		}
		if i%2 == 0 {
			even++
		} else {
			odd++
		}
	}
	switch {
	case odd > even*4:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case even > odd*4:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	}
	return nil
}
