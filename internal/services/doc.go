// Package services contains the application service layer. Services sit
// between the HTTP transport and the dataprocessing pipeline: they validate
// input, run the pipeline, and hand finished datasets to the exporter.
package services
