package qpcr

import "fmt"

// HousekeeperNotFoundError reports a configured housekeeper gene that is
// absent from the extracted gene table. It aborts the whole run.
type HousekeeperNotFoundError struct {
	Gene string
}

func (e *HousekeeperNotFoundError) Error() string {
	return fmt.Sprintf("housekeeper gene %q not found in dataset", e.Gene)
}

// groupPair is one positionally matched target/housekeeper replicate group.
type groupPair struct {
	target      ReplicaGroup
	housekeeper ReplicaGroup
}

// pairGroupsByPosition zips the target and housekeeper replicate groups
// strictly by index: pair i is target group i against housekeeper group i.
// Groups are matched by position, never by sample name, and positions
// present on only one side are dropped.
func pairGroupsByPosition(target, housekeeper []ReplicaGroup) []groupPair {
	n := len(target)
	if len(housekeeper) < n {
		n = len(housekeeper)
	}
	pairs := make([]groupPair, 0, n)
	for i := 0; i < n; i++ {
		pairs = append(pairs, groupPair{target: target[i], housekeeper: housekeeper[i]})
	}
	return pairs
}

// CalculateProcessingRows derives the processing table of one target gene
// against the housekeeper gene.
//
// The calculation makes two passes. The first computes per-sample ΔCT (mean
// target CT minus mean housekeeper CT) to fix the ΔΔCT baseline: the first
// sample's ΔCT, or 0 when no samples pair up. The second emits, per paired
// sample, a summary row with the derived statistics followed by one replica
// row per replicate carrying only that replicate's raw CT values.
func CalculateProcessingRows(target, housekeeper Gene, cfg Config) GeneProcessing {
	pairs := pairGroupsByPosition(target.ReplicaGroups, housekeeper.ReplicaGroups)

	deltaCTs := make([]float64, 0, len(pairs))
	for _, p := range pairs {
		deltaCTs = append(deltaCTs, Mean(p.target.CTValues)-Mean(p.housekeeper.CTValues))
	}

	var baseline float64
	if len(deltaCTs) > 0 {
		baseline = deltaCTs[0]
	}

	rows := make([]ProcessingRow, 0, len(pairs)*(cfg.ReplicaCount+1))
	for _, p := range pairs {
		ctMean := Mean(p.target.CTValues)
		ctStd := SampleStdDev(p.target.CTValues)
		hkMean := Mean(p.housekeeper.CTValues)
		hkStd := SampleStdDev(p.housekeeper.CTValues)

		deltaCT := ctMean - hkMean
		deltaDeltaCT := deltaCT - baseline
		combined := CombinedStdDev(ctStd, hkStd)

		rows = append(rows, ProcessingRow{
			Kind:              RowSummary,
			SampleName:        p.target.SampleName,
			SampleNumber:      p.target.SampleNumber,
			CTMean:            ctMean,
			CTStd:             ctStd,
			HousekeeperCTMean: hkMean,
			HousekeeperCTStd:  hkStd,
			DeltaCT:           deltaCT,
			DeltaDeltaCT:      deltaDeltaCT,
			CombinedStd:       combined,
			SEM:               StandardError(combined, cfg.ReplicaCount),
			FoldChange:        FoldChange(deltaDeltaCT),
		})

		for r := 0; r < cfg.ReplicaCount && r < len(p.target.CTValues); r++ {
			row := ProcessingRow{
				Kind:         RowReplica,
				SampleName:   p.target.SampleName,
				SampleNumber: p.target.SampleNumber,
				CT:           p.target.CTValues[r],
			}
			if r < len(p.housekeeper.CTValues) {
				row.HousekeeperCT = p.housekeeper.CTValues[r]
			}
			rows = append(rows, row)
		}
	}

	return GeneProcessing{
		GeneName:     target.Name,
		Rows:         rows,
		FirstDeltaCT: baseline,
	}
}

// ProcessAllGenes runs the delta calculation for every gene in the table
// except the housekeeper itself, preserving gene order. Genes with no
// positionally paired samples against the housekeeper are dropped. Returns
// an error when the configured housekeeper is absent from the table.
func ProcessAllGenes(table GeneTable, cfg Config) ([]GeneProcessing, error) {
	housekeeper, ok := table.Genes[cfg.Housekeeper]
	if !ok {
		return nil, &HousekeeperNotFoundError{Gene: cfg.Housekeeper}
	}

	results := make([]GeneProcessing, 0, len(table.Order))
	for _, name := range table.Order {
		if name == cfg.Housekeeper {
			continue
		}
		processing := CalculateProcessingRows(table.Genes[name], housekeeper, cfg)
		if len(processing.Rows) == 0 {
			continue
		}
		results = append(results, processing)
	}
	return results, nil
}
