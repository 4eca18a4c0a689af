// Package ingestion coordinates the document processing pipeline: download,
// segmentation, enrichment, and index import run as background jobs, with
// document status tracked through the repository.
package ingestion
