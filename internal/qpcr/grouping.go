package qpcr

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"qpcrcli/internal/dataset"
)

// NameColumn is the required gene-name column of the input table.
const NameColumn = "Name"

// ErrNoCTColumn is returned when no usable CT value column can be detected.
var ErrNoCTColumn = fmt.Errorf("no CT value column detected")

// ctColumnNames are the exact (case-insensitive) header names instruments
// commonly emit for the cycle-threshold column, in match priority order.
var ctColumnNames = []string{"cp", "ct", "cq"}

// markerRowPattern matches control-definition rows such as "Sample 3" that
// appear between gene blocks in instrument exports. They are not gene data.
var markerRowPattern = regexp.MustCompile(`(?i)^sample\s*\d+$`)

// DetectCTColumn locates the CT value column by a priority-ordered heuristic:
// a case-insensitive exact match on cp/ct/cq, then a header containing one of
// those substrings, then the first non-Name column holding a positive number
// written with a decimal point in at least one row.
func DetectCTColumn(ds *dataset.Dataset) (string, error) {
	for _, header := range ds.Headers {
		lower := strings.ToLower(strings.TrimSpace(header))
		for _, name := range ctColumnNames {
			if lower == name {
				return header, nil
			}
		}
	}

	for _, header := range ds.Headers {
		lower := strings.ToLower(header)
		for _, name := range ctColumnNames {
			if strings.Contains(lower, name) {
				return header, nil
			}
		}
	}

	for _, header := range ds.Headers {
		if header == NameColumn {
			continue
		}
		for _, row := range ds.Rows {
			raw := row[header]
			if !strings.Contains(raw, ".") {
				continue
			}
			if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
				return header, nil
			}
		}
	}

	return "", ErrNoCTColumn
}

// ExtractGenes builds the gene table from a dataset: per-gene CT measurement
// sequences in row order, partitioned into replicate groups per cfg. Marker
// rows and rows with unparsable CT values are skipped. Genes are returned in
// first-appearance order.
func ExtractGenes(ds *dataset.Dataset, cfg Config) (GeneTable, error) {
	if !ds.HasHeader(NameColumn) {
		return GeneTable{}, fmt.Errorf("dataset has no %q column", NameColumn)
	}
	ctColumn, err := DetectCTColumn(ds)
	if err != nil {
		return GeneTable{}, err
	}

	order := make([]string, 0)
	measurements := make(map[string][]Measurement)

	for i, row := range ds.Rows {
		name := strings.TrimSpace(row[NameColumn])
		if name == "" || markerRowPattern.MatchString(name) {
			continue
		}

		ct, err := strconv.ParseFloat(strings.TrimSpace(row[ctColumn]), 64)
		if err != nil || math.IsNaN(ct) || math.IsInf(ct, 0) {
			continue
		}

		if _, seen := measurements[name]; !seen {
			order = append(order, name)
		}
		measurements[name] = append(measurements[name], Measurement{CT: ct, Row: i})
	}

	genes := make(map[string]Gene, len(order))
	for _, name := range order {
		ms := measurements[name]
		genes[name] = Gene{
			Name:          name,
			Measurements:  ms,
			ReplicaGroups: GroupIntoReplicas(ms, cfg.ReplicaCount, cfg.Samples),
		}
	}

	return GeneTable{Order: order, Genes: genes}, nil
}

// GroupIntoReplicas partitions a gene's measurement sequence into replicate
// groups aligned to the sample names. Grouping is purely positional: sample
// index i takes the contiguous slice [i*replicaCount, i*replicaCount+replicaCount).
// A sample whose slice would run past the available measurements is dropped
// entirely, along with all samples after it; trailing groups are never
// truncated to a partial size.
func GroupIntoReplicas(measurements []Measurement, replicaCount int, sampleNames []string) []ReplicaGroup {
	if replicaCount < 1 {
		return nil
	}

	groups := make([]ReplicaGroup, 0, len(sampleNames))
	for i, name := range sampleNames {
		start := i * replicaCount
		end := start + replicaCount
		if end > len(measurements) {
			break
		}

		values := make([]float64, 0, replicaCount)
		for _, m := range measurements[start:end] {
			values = append(values, m.CT)
		}
		groups = append(groups, ReplicaGroup{
			SampleName:   name,
			SampleNumber: i + 1,
			CTValues:     values,
		})
	}
	return groups
}
