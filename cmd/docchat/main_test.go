package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/docchat/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func setupContext(t *testing.T, level string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("log-level", level, "")
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestSetup(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	t.Run("valid levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "WARN"} {
			assert.NoError(t, setup(setupContext(t, level)), level)
		}
	})

	t.Run("invalid level", func(t *testing.T) {
		err := setup(setupContext(t, "loud"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestLoadDocuments(t *testing.T) {
	t.Run("reads name size and text", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notes.txt")
		require.NoError(t, os.WriteFile(path, []byte("some document text"), 0o644))

		docs, err := loadDocuments([]string{path})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "notes.txt", docs[0].Name)
		assert.Equal(t, int64(18), docs[0].Size)
		assert.Equal(t, "some document text", docs[0].Text)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadDocuments([]string{filepath.Join(t.TempDir(), "gone.txt")})
		assert.ErrorContains(t, err, "failed to read document")
	})
}

func TestResolveDocument(t *testing.T) {
	fragments := []core.Fragment{
		{
			Text:         "text",
			ChunkIndex:   0,
			DocumentID:   "cafe0123",
			DocumentName: "report.txt",
			EndWord:      1,
		},
	}

	t.Run("by name", func(t *testing.T) {
		id, err := resolveDocument(fragments, "report.txt")
		require.NoError(t, err)
		assert.Equal(t, core.DocumentID("cafe0123"), id)
	})

	t.Run("by identity", func(t *testing.T) {
		id, err := resolveDocument(fragments, "cafe0123")
		require.NoError(t, err)
		assert.Equal(t, core.DocumentID("cafe0123"), id)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := resolveDocument(fragments, "missing.txt")
		assert.ErrorContains(t, err, "no loaded document")
	})
}
