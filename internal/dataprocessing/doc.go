// Package dataprocessing implements the track statistics pipeline: tolerant
// CSV tokenization, numeric and relative-date normalization under an explicit
// coercion policy, per-row metric derivation, and quantile-based performance
// categorization.
//
// The pipeline favors silent recoverable coercion over failure. Malformed
// numeric or date fields never abort processing; they degrade to zero or
// absent values and are recorded in per-record quality flags. The only
// row-level "failure" is exclusion from the dataset (duplicate header, blank
// row, untitled row), which is expected structural filtering rather than an
// error.
//
// Everything here is single-threaded and synchronous. The full CSV text is
// materialized before tokenization begins; each Process call produces an
// independent Dataset with no shared mutable state.
package dataprocessing
