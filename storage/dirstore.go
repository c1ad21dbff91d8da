package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/poiesic/docchat/core"
)

const cacheFileSuffix = "_embeddings.bin"

// VectorStore persists ordered vector lists keyed by document identity.
type VectorStore interface {
	// Load returns the cached vectors for a document identity.
	// Returns ErrNotFound when no entry exists and ErrCacheRead when an
	// entry exists but cannot be parsed.
	Load(id core.DocumentID) ([][]float32, error)

	// Save replaces the cache entry for a document identity with the given
	// ordered vector list. Entries are never partially updated.
	Save(id core.DocumentID, vectors [][]float32) error
}

// DirStore is a VectorStore rooted at a cache directory, one file per
// document identity. Writes go through a temp file and rename so concurrent
// readers never see a torn entry; concurrent writers to the same identity
// resolve last-writer-wins, which is acceptable since cache content is
// reproducible from source.
type DirStore struct {
	root   string
	logger *slog.Logger
}

// DirStoreOption configures a DirStore.
type DirStoreOption func(*DirStore)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) DirStoreOption {
	return func(s *DirStore) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// NewDirStore creates a vector store rooted at the given directory,
// creating it if necessary.
func NewDirStore(root string, opts ...DirStoreOption) (*DirStore, error) {
	if root == "" {
		return nil, errors.New("cache directory required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	s := &DirStore{
		root:   root,
		logger: slog.Default().With("component", "vector-store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *DirStore) path(id core.DocumentID) string {
	return filepath.Join(s.root, string(id)+cacheFileSuffix)
}

// Load reads the cache entry for a document identity.
func (s *DirStore) Load(id core.DocumentID) ([][]float32, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: document %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: %w", ErrCacheRead, err)
	}

	vectors, err := UnmarshalVectors(data)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("loaded cache entry", "document", id, "vectors", len(vectors))
	return vectors, nil
}

// Save atomically writes the cache entry for a document identity.
func (s *DirStore) Save(id core.DocumentID, vectors [][]float32) error {
	tmp, err := os.CreateTemp(s.root, string(id)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating cache temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(MarshalVectors(vectors)); err != nil {
		tmp.Close()
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing cache temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path(id)); err != nil {
		return fmt.Errorf("publishing cache entry: %w", err)
	}

	s.logger.Debug("saved cache entry", "document", id, "vectors", len(vectors))
	return nil
}
