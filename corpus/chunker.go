package corpus

import (
	"fmt"
	"strings"

	"github.com/poiesic/docchat/core"
)

// Default chunking parameters, in words.
const (
	DefaultChunkSize = 500
	DefaultOverlap   = 50
)

// ChunkConfig controls how document text is split into fragments.
type ChunkConfig struct {
	// ChunkSize is the window length in words.
	ChunkSize int

	// Overlap is the number of words shared between consecutive fragments.
	// Must be smaller than ChunkSize.
	Overlap int
}

// DefaultChunkConfig returns the standard 500-word window with 50 words of
// overlap.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{ChunkSize: DefaultChunkSize, Overlap: DefaultOverlap}
}

// Validate checks that the configuration can produce a terminating sequence
// of overlapping windows.
func (c ChunkConfig) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidChunking, c.ChunkSize)
	}
	if c.Overlap < 0 {
		return fmt.Errorf("%w: overlap cannot be negative, got %d", ErrInvalidChunking, c.Overlap)
	}
	if c.Overlap >= c.ChunkSize {
		return fmt.Errorf("%w: overlap %d must be smaller than chunk size %d",
			ErrInvalidChunking, c.Overlap, c.ChunkSize)
	}
	return nil
}

func (c ChunkConfig) step() int {
	return c.ChunkSize - c.Overlap
}

// ChunkText splits text into overlapping word-window fragments for one
// document. Fragment chunk indexes are contiguous from 0. The final fragment
// may be shorter than the configured chunk size; windows that would fall
// entirely inside the previous fragment are not emitted, so a document of W
// words yields ceil((W-overlap)/(chunkSize-overlap)) fragments.
//
// Page numbers are unknown for plain text; use ChunkPages for page-aware
// sources. Empty or whitespace-only text yields no fragments.
func ChunkText(text string, id core.DocumentID, name string, cfg ChunkConfig) ([]core.Fragment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	next := 0
	return chunkWords(strings.Fields(text), core.PageUnknown, id, name, cfg, &next), nil
}

// ChunkPages splits a document page by page. Each page is chunked
// independently so fragments never span a page boundary, while chunk indexes
// remain contiguous across the whole document. Pages are numbered from 1;
// blank pages are skipped without consuming a page number gap.
func ChunkPages(pages []string, id core.DocumentID, name string, cfg ChunkConfig) ([]core.Fragment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var fragments []core.Fragment
	next := 0
	for i, page := range pages {
		words := strings.Fields(page)
		if len(words) == 0 {
			continue
		}
		fragments = append(fragments, chunkWords(words, i+1, id, name, cfg, &next)...)
	}
	return fragments, nil
}

// chunkWords emits word windows over one run of words, advancing the shared
// chunk index counter. The loop stops once a window reaches the final word.
func chunkWords(words []string, page int, id core.DocumentID, name string, cfg ChunkConfig, next *int) []core.Fragment {
	if len(words) == 0 {
		return nil
	}

	fragments := make([]core.Fragment, 0, (len(words)+cfg.step()-1)/cfg.step())
	for start := 0; start < len(words); start += cfg.step() {
		end := start + cfg.ChunkSize
		if end > len(words) {
			end = len(words)
		}

		fragments = append(fragments, core.Fragment{
			Text:         strings.Join(words[start:end], " "),
			Page:         page,
			ChunkIndex:   *next,
			DocumentID:   id,
			DocumentName: name,
			StartWord:    start,
			EndWord:      end,
		})
		*next++

		if end == len(words) {
			break
		}
	}
	return fragments
}
