// Package ingest turns uploaded spreadsheets into typed quote line items.
// Cells are validated once here; bad values become safe defaults and are
// reported per row.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format is an upload file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for files that are neither CSV nor xlsx.
var ErrUnsupportedFormat = errors.New("unsupported file format: must be .csv or .xlsx")

// FormatFromName picks the format from a file name's extension.
func FormatFromName(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	}
	return "", ErrUnsupportedFormat
}

// ReadTable returns the header row and data rows of a CSV file or of the
// first sheet of an xlsx workbook.
func ReadTable(r io.Reader, format Format) ([]string, [][]string, error) {
	switch format {
	case FormatCSV:
		return parseCSV(r)
	case FormatXLSX:
		return parseExcel(r)
	}
	return nil, nil, ErrUnsupportedFormat
}

func parseCSV(file io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse CSV: %w", err)
	}
	return splitHeader(allRows)
}

func parseExcel(file io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet: %w", err)
	}
	return splitHeader(rows)
}

func splitHeader(rows [][]string) ([]string, [][]string, error) {
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}
	return rows[0], rows[1:], nil
}

// column names a field of a line item and the header labels that map to it.
type column struct {
	key     string
	aliases []string
}

// mapHeaders returns, for each header, the key of the column it names or
// "" when it is not recognized.
func mapHeaders(headers []string, columns []column) []string {
	labelToKey := make(map[string]string)
	for _, c := range columns {
		labelToKey[normalizeHeader(c.key)] = c.key
		for _, a := range c.aliases {
			labelToKey[normalizeHeader(a)] = c.key
		}
	}

	mapped := make([]string, len(headers))
	for i, h := range headers {
		mapped[i] = labelToKey[normalizeHeader(h)]
	}
	return mapped
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.TrimSuffix(h, "*")
	h = strings.NewReplacer("_", " ", "-", " ", "(", " ", ")", " ").Replace(h)
	return strings.Join(strings.Fields(h), " ")
}

// rowValues maps a data row onto column keys, trimming every cell.
func rowValues(row []string, keys []string) map[string]string {
	values := make(map[string]string, len(keys))
	for i, key := range keys {
		if key == "" || i >= len(row) {
			continue
		}
		values[key] = strings.TrimSpace(row[i])
	}
	return values
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
