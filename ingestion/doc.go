// Package ingestion turns source documents into an embedded, query-ready
// corpus. Chunking is synchronous; embedding warm-up fans out across a
// worker pool, one task per document, so large batches saturate the
// embedding backend without unbounded goroutines.
package ingestion
