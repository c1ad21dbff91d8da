package corpus

import (
	"github.com/poiesic/docchat/core"
)

// Document is one extracted source document awaiting chunking.
type Document struct {
	// Name is the display name, typically the source file's base name.
	Name string

	// Size is the source document's byte size, part of the identity signal.
	// When zero, the extracted text length is used instead.
	Size int64

	// Text is the full extracted text. Ignored when Pages is set.
	Text string

	// Pages holds per-page extracted text for page-aware sources.
	Pages []string
}

// ID returns the document's derived identity.
func (d Document) ID() core.DocumentID {
	return core.DocumentIDFor(d.Name, d.signalSize())
}

func (d Document) signalSize() int64 {
	if d.Size > 0 {
		return d.Size
	}
	size := int64(len(d.Text))
	for _, page := range d.Pages {
		size += int64(len(page))
	}
	return size
}

// Merge chunks each document independently and concatenates the results into
// one addressable corpus, preserving per-document order. Identical text
// appearing in multiple documents is not deduplicated; each occurrence keeps
// its own document identity.
func Merge(documents []Document, cfg ChunkConfig) ([]core.Fragment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var corpus []core.Fragment
	for _, doc := range documents {
		var (
			fragments []core.Fragment
			err       error
		)
		if len(doc.Pages) > 0 {
			fragments, err = ChunkPages(doc.Pages, doc.ID(), doc.Name, cfg)
		} else {
			fragments, err = ChunkText(doc.Text, doc.ID(), doc.Name, cfg)
		}
		if err != nil {
			return nil, err
		}
		corpus = append(corpus, fragments...)
	}
	return corpus, nil
}

// FilterByDocument returns the fragments belonging to one document identity,
// preserving order. An identity matching no fragment yields an empty result,
// not an error.
func FilterByDocument(fragments []core.Fragment, id core.DocumentID) []core.Fragment {
	filtered := make([]core.Fragment, 0, len(fragments))
	for _, f := range fragments {
		if f.DocumentID == id {
			filtered = append(filtered, f)
		}
	}
	return filtered
}
