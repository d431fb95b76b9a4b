// Package exporter renders a processed track Dataset back out: canonical CSV
// text for the export contract, plus Excel workbook and JSON report variants
// of the same table.
package exporter
