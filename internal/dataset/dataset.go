package dataset

// Dataset is a parsed tabular CT file: a title, the column headers in file
// order, and the data rows keyed by header. Every row carries a value
// (possibly empty) for every header.
type Dataset struct {
	Title   string   `json:"title"`
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
}

// Row maps a column header to the cell value for one data row.
type Row map[string]string

// HasHeader reports whether the dataset contains the given column.
func (d *Dataset) HasHeader(name string) bool {
	for _, h := range d.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// Column returns all values of one column in row order. Unknown headers
// yield an empty slice.
func (d *Dataset) Column(name string) []string {
	if !d.HasHeader(name) {
		return nil
	}
	values := make([]string, 0, len(d.Rows))
	for _, row := range d.Rows {
		values = append(values, row[name])
	}
	return values
}
