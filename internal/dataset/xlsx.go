package dataset

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseXLSX reads the first sheet that looks like a CT table from an Excel
// workbook. A sheet qualifies when its first row contains a "Name" column;
// if no sheet qualifies the first non-empty sheet is used.
func ParseXLSX(r io.Reader, title string) (*Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := findDataSheet(f)
	if err != nil {
		return nil, err
	}
	return fromCells(rows, title)
}

func findDataSheet(f *excelize.File) ([][]string, error) {
	var fallback [][]string

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil || len(rows) < 2 {
			continue
		}
		for _, h := range rows[0] {
			if strings.EqualFold(strings.TrimSpace(h), "Name") {
				return rows, nil
			}
		}
		if fallback == nil {
			fallback = rows
		}
	}

	if fallback == nil {
		return nil, fmt.Errorf("no data sheet found in workbook")
	}
	return fallback, nil
}

func fromCells(cells [][]string, title string) (*Dataset, error) {
	headers := make([]string, 0, len(cells[0]))
	for _, h := range cells[0] {
		headers = append(headers, strings.TrimSpace(h))
	}
	if len(headers) == 0 {
		return nil, fmt.Errorf("no column headers found")
	}

	rows := make([]Row, 0, len(cells)-1)
	for _, record := range cells[1:] {
		if isBlankRecord(record) {
			continue
		}
		row := make(Row, len(headers))
		for i, h := range headers {
			if i < len(record) {
				row[h] = strings.TrimSpace(record[i])
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}

	return &Dataset{Title: title, Headers: headers, Rows: rows}, nil
}
