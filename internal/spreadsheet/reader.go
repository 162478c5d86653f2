// Package spreadsheet converts uploaded product files into import rows and
// renders the downloadable import templates.
package spreadsheet

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/GTDGit/retail_api/internal/importer"
)

// ProductSheet is the sheet name used by templates and preferred when parsing.
const ProductSheet = "Produits"

var (
	ErrUnsupportedFormat = errors.New("only .xlsx and .csv files are supported")
	ErrMissingHeader     = errors.New("file has no header row")
)

// Format identifies an upload encoding.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// FormatOf returns the format implied by the file name extension.
func FormatOf(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Sheet holds the non-empty data rows of an upload. Lines[i] is the 1-based
// line (or worksheet row) of Rows[i] in the file, header included, so blank
// lines in the middle of a file do not shift the numbering.
type Sheet struct {
	Rows  []importer.Row
	Lines []int
}

func (s *Sheet) add(row importer.Row, line int) {
	if len(row) == 0 {
		return
	}
	s.Rows = append(s.Rows, row)
	s.Lines = append(s.Lines, line)
}

// Parse decodes r according to format.
func Parse(format Format, r io.Reader) (*Sheet, error) {
	switch format {
	case FormatXLSX:
		return readXLSX(r)
	case FormatCSV:
		return readCSV(r)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// canonicalHeaders maps a lower-cased label to the import column label, so
// "prix détail" and "Prix détail *" both land on the same key.
var canonicalHeaders = func() map[string]string {
	m := make(map[string]string)
	for _, col := range importer.Columns() {
		m[strings.ToLower(col.Name)] = col.Name
	}
	return m
}()

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(h), "*"))
	if canon, ok := canonicalHeaders[strings.ToLower(h)]; ok {
		return canon
	}
	return h
}

// buildRow turns one record into a row. Empty cells are left out, so a
// record without any value yields an empty row.
func buildRow(headers, record []string, convert func(col int, header, value string) any) importer.Row {
	row := importer.Row{}
	for i, value := range record {
		if i >= len(headers) || headers[i] == "" {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if convert != nil {
			row[headers[i]] = convert(i, headers[i], value)
		} else {
			row[headers[i]] = value
		}
	}
	return row
}

// ParseXLSX reads the product sheet of an Excel workbook. Cells are read raw:
// numbers keep full precision, dates stay Excel serial numbers and boolean
// cells become Go bools.
func ParseXLSX(r io.Reader) ([]importer.Row, error) {
	sheet, err := readXLSX(r)
	if err != nil {
		return nil, err
	}
	return sheet.Rows, nil
}

func readXLSX(r io.Reader) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("no sheets found in Excel file")
	}
	sheet := sheets[0]
	for _, name := range sheets {
		if strings.EqualFold(name, ProductSheet) {
			sheet = name
			break
		}
	}

	excelRows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(excelRows) == 0 {
		return nil, ErrMissingHeader
	}

	headers := make([]string, len(excelRows[0]))
	for i, h := range excelRows[0] {
		headers[i] = normalizeHeader(h)
	}

	out := &Sheet{}
	for idx, record := range excelRows[1:] {
		line := idx + 2
		out.add(buildRow(headers, record, func(col int, header, value string) any {
			if header != importer.ColActive {
				return value
			}
			return boolCellAt(f, sheet, col, line, value)
		}), line)
	}
	return out, nil
}

// boolCellAt returns a bool for cells typed boolean, the raw text otherwise.
func boolCellAt(f *excelize.File, sheet string, col, line int, value string) any {
	cell, err := excelize.CoordinatesToCellName(col+1, line)
	if err != nil {
		return value
	}
	typ, err := f.GetCellType(sheet, cell)
	if err != nil || typ != excelize.CellTypeBool {
		return value
	}
	return value == "1" || strings.EqualFold(value, "true")
}

// ParseCSV reads a CSV file whose first line holds the column labels. Both
// comma and semicolon separators are accepted; the separator is taken from
// the header line.
func ParseCSV(r io.Reader) ([]importer.Row, error) {
	sheet, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	return sheet.Rows, nil
}

func readCSV(r io.Reader) (*Sheet, error) {
	br := bufio.NewReader(r)
	first, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}

	reader := csv.NewReader(br)
	reader.Comma = detectSeparator(first)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	headers := make([]string, len(header))
	for i, h := range header {
		headers[i] = normalizeHeader(h)
	}

	out := &Sheet{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		// csv.Reader skips blank lines; FieldPos keeps the file's numbering.
		line, _ := reader.FieldPos(0)
		out.add(buildRow(headers, record, nil), line)
	}
	return out, nil
}

func detectSeparator(head []byte) rune {
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	if bytes.Count(head, []byte{';'}) > bytes.Count(head, []byte{','}) {
		return ';'
	}
	return ','
}
