package qpcr

// Config controls one analysis run.
type Config struct {
	// ReplicaCount is the number of technical replicates per biological sample.
	ReplicaCount int `json:"replica_count" validate:"required,min=1"`
	// Housekeeper names the reference gene all targets are normalized against.
	Housekeeper string `json:"housekeeper" validate:"required"`
	// Samples lists biological sample names; position defines sample
	// numbering 1..N and drives replicate grouping.
	Samples []string `json:"samples" validate:"required,min=1,dive,required"`
	// Controls lists the control samples, a subset of Samples. Position
	// defines the control/observed pairing in the output stage.
	Controls []string `json:"controls"`
}

// Measurement is a single CT reading together with the dataset row it came
// from. Row is informational only; grouping is purely positional.
type Measurement struct {
	CT  float64 `json:"ct"`
	Row int     `json:"row"`
}

// ReplicaGroup holds the CT values of one biological sample for one gene.
type ReplicaGroup struct {
	SampleName   string    `json:"sample_name"`
	SampleNumber int       `json:"sample_number"`
	CTValues     []float64 `json:"ct_values"`
}

// Gene is one gene's extracted measurements and their replicate grouping.
// Genes are constructed complete; neither field is mutated afterwards.
type Gene struct {
	Name          string         `json:"name"`
	Measurements  []Measurement  `json:"measurements"`
	ReplicaGroups []ReplicaGroup `json:"replica_groups"`
}

// GeneTable holds the extracted genes keyed by name, with Order preserving
// first appearance in the source rows. Go maps do not iterate in insertion
// order, so all downstream stages walk Order.
type GeneTable struct {
	Order []string        `json:"order"`
	Genes map[string]Gene `json:"genes"`
}

// RowKind discriminates summary rows from per-replicate display rows.
type RowKind string

const (
	// RowSummary carries the per-sample statistics and derived values.
	RowSummary RowKind = "summary"
	// RowReplica carries one replicate's raw CT values; all derived fields
	// are zero since they are not meaningful per replicate.
	RowReplica RowKind = "replica"
)

// ProcessingRow is one row of a gene's processing table. Rows appear in
// sample order, each summary row immediately followed by its replica rows.
type ProcessingRow struct {
	Kind         RowKind `json:"kind"`
	SampleName   string  `json:"sample_name"`
	SampleNumber int     `json:"sample_number"`

	// Raw values, replica rows only.
	CT            float64 `json:"ct"`
	HousekeeperCT float64 `json:"housekeeper_ct"`

	// Derived values, summary rows only.
	CTMean            float64 `json:"ct_mean"`
	CTStd             float64 `json:"ct_std"`
	HousekeeperCTMean float64 `json:"housekeeper_ct_mean"`
	HousekeeperCTStd  float64 `json:"housekeeper_ct_std"`
	DeltaCT           float64 `json:"delta_ct"`
	DeltaDeltaCT      float64 `json:"delta_delta_ct"`
	CombinedStd       float64 `json:"combined_std"`
	SEM               float64 `json:"sem"`
	FoldChange        float64 `json:"fold_change"`
}

// GeneProcessing is the full processing table for one target gene.
type GeneProcessing struct {
	GeneName string          `json:"gene_name"`
	Rows     []ProcessingRow `json:"rows"`
	// FirstDeltaCT is the ΔCT of the first paired sample, the gene's
	// reference value for ΔΔCT.
	FirstDeltaCT float64 `json:"first_delta_ct"`
}

// SummaryRows returns only the per-sample summary rows in order.
func (p GeneProcessing) SummaryRows() []ProcessingRow {
	rows := make([]ProcessingRow, 0, len(p.Rows))
	for _, row := range p.Rows {
		if row.Kind == RowSummary {
			rows = append(rows, row)
		}
	}
	return rows
}

// FoldChangePair pairs one control sample's fold change with one observed
// (non-control) sample's fold change. The pairing is positional: row i holds
// the i-th control and the i-th observed sample, regardless of names. An
// absent side has an empty name and a zero fold change.
type FoldChangePair struct {
	ControlName        string  `json:"control_name"`
	ControlFoldChange  float64 `json:"control_fold_change"`
	ObservedName       string  `json:"observed_name"`
	ObservedFoldChange float64 `json:"observed_fold_change"`
}

// GeneOutput is the normalized output table for one target gene.
type GeneOutput struct {
	GeneName       string           `json:"gene_name"`
	FoldChangeRows []FoldChangePair `json:"fold_change_rows"`
	// ControlAverage is rounded to 4 decimals for display; the normalized
	// rows are computed from the unrounded average.
	ControlAverage float64          `json:"control_average"`
	NormalizedRows []FoldChangePair `json:"normalized_rows"`
}
