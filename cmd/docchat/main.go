// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/docchat/ai"
	"github.com/poiesic/docchat/ai/openai"
	"github.com/poiesic/docchat/config"
	"github.com/poiesic/docchat/core"
	"github.com/poiesic/docchat/corpus"
	"github.com/poiesic/docchat/embedding"
	"github.com/poiesic/docchat/ingestion"
	"github.com/poiesic/docchat/prompt"
	"github.com/poiesic/docchat/retrieval"
	"github.com/poiesic/docchat/storage"
)

func main() {
	app := &cli.App{
		Name:  "docchat",
		Usage: "Ask questions about your documents with retrieval-grounded answers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				Value:   "config.yaml",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:      "ask",
				Usage:     "Answer a question from the given documents",
				ArgsUsage: "QUESTION",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Document file to search (repeatable)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "doc",
						Usage: "Restrict retrieval to one document (name or identity)",
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of passages to ground the answer on (overrides config)",
					},
					&cli.BoolFlag{
						Name:  "legacy",
						Usage: "Use keyword search instead of semantic retrieval (no models needed for search)",
					},
				},
			},
			{
				Name:   "warm",
				Usage:  "Precompute and cache embeddings for the given documents",
				Action: warmCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Document file to embed (repeatable)",
						Required: true,
					},
				},
			},
			{
				Name:      "id",
				Usage:     "Print the derived document identity for each file",
				ArgsUsage: "FILE...",
				Action:    idCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// setup loads environment overrides and configures logging before any
// command runs. A missing .env file is not an error.
func setup(c *cli.Context) error {
	_ = godotenv.Load()

	levelStr := strings.ToLower(c.String("log-level"))
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

func askCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("question is required")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	topK := cfg.Retrieval.TopK
	if c.Int("top-k") > 0 {
		topK = c.Int("top-k")
	}

	docs, err := loadDocuments(c.StringSlice("file"))
	if err != nil {
		return err
	}

	if c.Bool("legacy") {
		return askLegacy(query, docs, cfg, topK, c.String("doc"))
	}

	provider, err := openai.NewProvider(cfg.AIConfig())
	if err != nil {
		return fmt.Errorf("failed to create model provider: %w", err)
	}
	defer provider.Close()

	cache, pipeline, err := buildPipeline(cfg, provider)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	fragments, err := pipeline.Ingest(ctx, docs...)
	if err != nil {
		return fmt.Errorf("failed to ingest documents: %w", err)
	}

	retriever, err := retrieval.NewRetriever(cache, provider.Reranker(),
		retrieval.WithCandidateCount(cfg.Retrieval.Candidates))
	if err != nil {
		return err
	}

	var opts []retrieval.RetrieveOption
	if filter := c.String("doc"); filter != "" {
		id, resolveErr := resolveDocument(fragments, filter)
		if resolveErr != nil {
			return resolveErr
		}
		opts = append(opts, retrieval.WithDocument(id))
	}

	results, err := retriever.Retrieve(ctx, query, fragments, topK, opts...)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	composed := prompt.Build(query, results)
	if !composed.Grounded {
		fmt.Println("No relevant passages found; answering without document context.")
	}

	answer, err := provider.Generator().Generate(ctx, composed.Text)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	fmt.Println(answer)
	printCitations(results)
	return nil
}

// askLegacy answers with keyword search for retrieval but still needs the
// generation service for the answer itself.
func askLegacy(query string, docs []corpus.Document, cfg *config.AppConfig, topK int, filter string) error {
	ctx := context.Background()

	fragments, err := corpus.Merge(docs, cfg.ChunkConfig())
	if err != nil {
		return err
	}
	if filter != "" {
		id, resolveErr := resolveDocument(fragments, filter)
		if resolveErr != nil {
			return resolveErr
		}
		fragments = corpus.FilterByDocument(fragments, id)
	}

	results := retrieval.LegacySearch(query, fragments, topK)

	provider, err := openai.NewProvider(cfg.AIConfig())
	if err != nil {
		return fmt.Errorf("failed to create model provider: %w", err)
	}
	defer provider.Close()

	composed := prompt.Build(query, results)
	if !composed.Grounded {
		fmt.Println("No relevant passages found; answering without document context.")
	}

	answer, err := provider.Generator().Generate(ctx, composed.Text)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	fmt.Println(answer)
	printCitations(results)
	return nil
}

func warmCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	docs, err := loadDocuments(c.StringSlice("file"))
	if err != nil {
		return err
	}

	provider, err := openai.NewProvider(cfg.AIConfig())
	if err != nil {
		return fmt.Errorf("failed to create model provider: %w", err)
	}
	defer provider.Close()

	_, pipeline, err := buildPipeline(cfg, provider)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	fragments, err := pipeline.Ingest(ctx, docs...)
	if err != nil {
		return fmt.Errorf("failed to warm cache: %w", err)
	}

	fmt.Printf("Embedded %d fragments from %d documents into %s\n",
		len(fragments), len(docs), cfg.CacheDir)
	return nil
}

func idCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one file is required")
	}

	docs, err := loadDocuments(c.Args().Slice())
	if err != nil {
		return err
	}

	for _, doc := range docs {
		fmt.Printf("%s  %s\n", doc.ID(), doc.Name)
	}
	return nil
}

func loadConfig(c *cli.Context) (*config.AppConfig, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Environment overrides, typically sourced from .env.
	if host := os.Getenv("DOCCHAT_HOST"); host != "" {
		cfg.AI.EmbeddingHost = host
		cfg.AI.GenerationHost = host
	}
	if host := os.Getenv("DOCCHAT_RERANK_HOST"); host != "" {
		cfg.AI.RerankHost = host
	}

	return cfg, nil
}

func buildPipeline(cfg *config.AppConfig, provider ai.Provider) (*embedding.Cache, *ingestion.Pipeline, error) {
	store, err := storage.NewDirStore(cfg.CacheDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open cache directory: %w", err)
	}

	cache, err := embedding.NewCache(provider.Embedder(), store)
	if err != nil {
		return nil, nil, err
	}

	pipeline, err := ingestion.NewPipeline(cache, ingestion.WithChunking(cfg.ChunkConfig()))
	if err != nil {
		return nil, nil, err
	}

	return cache, pipeline, nil
}

// loadDocuments reads each file into a corpus document named after its base
// name, with the on-disk size as the identity signal.
func loadDocuments(paths []string) ([]corpus.Document, error) {
	docs := make([]corpus.Document, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read document: %w", err)
		}
		docs = append(docs, corpus.Document{
			Name: filepath.Base(path),
			Size: int64(len(data)),
			Text: string(data),
		})
	}
	return docs, nil
}

// resolveDocument maps a --doc value, either a document name or an identity,
// onto a document identity present in the corpus.
func resolveDocument(fragments []core.Fragment, value string) (core.DocumentID, error) {
	for _, f := range fragments {
		if f.DocumentName == value || string(f.DocumentID) == value {
			return f.DocumentID, nil
		}
	}
	return "", fmt.Errorf("no loaded document matches %q", value)
}

func printCitations(results []core.ScoredFragment) {
	if len(results) == 0 {
		return
	}

	fmt.Println(strings.Repeat("=", 70))
	fmt.Println("Sources:")
	for i, result := range results {
		page := "?"
		if result.Page != core.PageUnknown {
			page = fmt.Sprintf("%d", result.Page)
		}
		fmt.Printf("[%d] %s, Page %s (score %.3f)\n", i+1, result.DocumentName, page, result.Score)
	}
}
