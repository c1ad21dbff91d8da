// Package prompt composes model prompts from retrieval results.
//
// A grounded prompt embeds labeled context excerpts and instructs the model
// to cite them; when retrieval produced nothing, the query passes through
// verbatim so the caller can decide whether an ungrounded answer is
// acceptable.
package prompt
