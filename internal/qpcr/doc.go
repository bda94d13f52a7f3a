// Package qpcr implements relative gene-expression quantification from qPCR
// cycle-threshold data using the ΔΔCT method.
//
// The pipeline runs in three stages over a parsed tabular dataset:
//
//  1. Grouping: per-gene CT measurements are extracted in row order and
//     partitioned into fixed-size replicate groups aligned to the configured
//     sample names.
//  2. Delta calculation: for every gene except the designated housekeeper,
//     per-sample ΔCT, ΔΔCT, combined standard deviation, SEM and fold change
//     (2^-ΔΔCT) are derived against the housekeeper gene, with the first
//     sample's ΔCT as the ΔΔCT baseline.
//  3. Normalization: fold changes are paired control-against-observed by
//     position and divided by the control-group average.
//
// All stages are pure, deterministic transformations; a run either completes
// or fails as a whole, and results are fully recomputed on every run.
package qpcr
