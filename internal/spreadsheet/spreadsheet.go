// Package spreadsheet reads claim reports into header-keyed rows.
package spreadsheet

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Veraticus/claims-triage/internal/common"
	"github.com/Veraticus/claims-triage/internal/model"
)

// Format is a supported input file type.
type Format string

// Supported formats.
const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// Sheet is a parsed report.
type Sheet struct {
	Name    string
	Headers []string
	Rows    []model.RawRow
}

// DetectFormat picks the format from a file name's extension.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// Parse reads the first worksheet of an .xlsx file, or a .csv file, chosen by
// name. The first non-empty row supplies the headers.
func Parse(r io.Reader, name string) (*Sheet, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, err
	}

	var records [][]string
	var sheetName string
	switch format {
	case FormatXLSX:
		sheetName, records, err = readXLSX(r)
	case FormatCSV:
		sheetName = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
		records, err = readCSV(r)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	sheet, err := fromRecords(records)
	if err != nil {
		return nil, err
	}
	sheet.Name = sheetName
	return sheet, nil
}

func readXLSX(r io.Reader) (string, [][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return "", nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil, common.ErrNoHeaders
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return "", nil, err
	}
	return sheets[0], rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = br.Discard(3)
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var records [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// fromRecords keys each data row by header. Cells past the last header,
// under a blank header, or empty are left out of the row.
func fromRecords(records [][]string) (*Sheet, error) {
	start := -1
	for i, rec := range records {
		if !blank(rec) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, common.ErrNoHeaders
	}

	columns := headerColumns(records[start])
	if len(columns) == 0 {
		return nil, common.ErrNoHeaders
	}

	sheet := &Sheet{Headers: make([]string, 0, len(columns))}
	for _, c := range columns {
		sheet.Headers = append(sheet.Headers, c.name)
	}

	for _, rec := range records[start+1:] {
		if blank(rec) {
			continue
		}
		row := make(model.RawRow, len(columns))
		for _, c := range columns {
			if c.index >= len(rec) {
				continue
			}
			if v := strings.TrimSpace(rec[c.index]); v != "" {
				row[c.name] = rec[c.index]
			}
		}
		if len(row) > 0 {
			sheet.Rows = append(sheet.Rows, row)
		}
	}

	if len(sheet.Rows) == 0 {
		return nil, common.ErrNoDataRows
	}
	return sheet, nil
}

type column struct {
	name  string
	index int
}

// headerColumns trims header cells, drops blank ones and renames repeats
// to name_2, name_3, ... skipping any name another header already uses, so
// every column stays addressable.
func headerColumns(rec []string) []column {
	taken := make(map[string]bool, len(rec))
	for _, h := range rec {
		if h = strings.TrimSpace(h); h != "" {
			taken[h] = true
		}
	}

	used := make(map[string]bool, len(rec))
	var cols []column
	for i, h := range rec {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		name := h
		for n := 2; used[name]; n++ {
			if candidate := h + "_" + strconv.Itoa(n); !taken[candidate] && !used[candidate] {
				name = candidate
			}
		}
		used[name] = true
		cols = append(cols, column{name: name, index: i})
	}
	return cols
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
