package dataset

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ParseCSV reads a comma-separated CT table into a Dataset.
func ParseCSV(r io.Reader, title string) (*Dataset, error) {
	return ParseDelimited(r, ',', title)
}

// ParseTSV reads a tab-separated CT table into a Dataset.
func ParseTSV(r io.Reader, title string) (*Dataset, error) {
	return ParseDelimited(r, '\t', title)
}

// ParseAuto sniffs the delimiter from the header line (tab, semicolon, then
// comma) and parses accordingly. Instrument exports vary between all three.
func ParseAuto(r io.Reader, title string) (*Dataset, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(4096)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read header: %w", err)
	}
	line := string(header)
	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}

	delim := ','
	switch {
	case strings.ContainsRune(line, '\t'):
		delim = '\t'
	case strings.ContainsRune(line, ';'):
		delim = ';'
	}
	return ParseDelimited(br, delim, title)
}

// ParseDelimited reads a delimited table with the first record as column
// headers. Short records are padded with empty strings so every row has a
// value for every header; records longer than the header are truncated.
func ParseDelimited(r io.Reader, delim rune, title string) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read delimited data: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty dataset")
	}

	headers := make([]string, 0, len(records[0]))
	for _, h := range records[0] {
		headers = append(headers, strings.TrimSpace(h))
	}
	if len(headers) == 0 {
		return nil, fmt.Errorf("no column headers found")
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
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

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
