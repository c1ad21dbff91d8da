package core

import (
	"encoding/hex"
	"fmt"

	"github.com/go-crypt/x/blake2b"
)

// DocumentID is a short deterministic token identifying a source document.
// It keys embedding cache entries and supports corpus filtering.
type DocumentID string

// DocumentIDFor derives a DocumentID from a document's content signal
// (name and byte size) using BLAKE2b hashing, truncated to 8 hex characters.
// Identical signals produce identical IDs; a changed signal produces a new ID,
// which invalidates cache entries without explicit deletion.
//
// Limitation: the signal is name+size, not a content hash. Two documents with
// the same name and size collide, and content edits that preserve the byte
// size silently reuse stale cache entries.
func DocumentIDFor(name string, size int64) DocumentID {
	h, _ := blake2b.New(4, nil) // 4 bytes = 8 hex characters
	fmt.Fprintf(h, "%s_%d", name, size)
	return DocumentID(hex.EncodeToString(h.Sum(nil)))
}

// PageUnknown marks fragments whose source page could not be determined.
const PageUnknown = 0

// Fragment is a contiguous slice of one document's text, the unit of
// retrieval. Consecutive fragments of a document overlap by a fixed word
// count except at document boundaries.
type Fragment struct {
	Text         string
	Page         int // 1-based page number, or PageUnknown
	ChunkIndex   int // insertion-ordered, contiguous from 0 within a document
	DocumentID   DocumentID
	DocumentName string
	StartWord    int // word offset of the fragment start within its page
	EndWord      int // word offset one past the fragment end
}

// Key returns the fragment's corpus-wide address. ChunkIndex alone is unique
// only within a single document; the (DocumentID, ChunkIndex) pair is unique
// across a merged multi-document corpus.
func (f *Fragment) Key() FragmentKey {
	return FragmentKey{DocumentID: f.DocumentID, ChunkIndex: f.ChunkIndex}
}

// FragmentKey addresses a fragment within a merged corpus and keys its
// cached embedding vector.
type FragmentKey struct {
	DocumentID DocumentID
	ChunkIndex int
}

// ScoredFragment pairs a fragment with a relevance score: cosine similarity
// from the semantic stage, or a cross-encoder score from the rerank stage.
// Scored fragments exist only within one retrieval call and are not persisted.
type ScoredFragment struct {
	Fragment
	Score float32
}
