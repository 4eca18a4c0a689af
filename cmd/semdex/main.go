// Copyright 2026 Lattice Works
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
	"path"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/lattice-works/semdex"
	"github.com/lattice-works/semdex/ai"
	"github.com/lattice-works/semdex/config"
	"github.com/lattice-works/semdex/core"
	"github.com/lattice-works/semdex/embedding"
	"github.com/lattice-works/semdex/ingestion"
	"github.com/lattice-works/semdex/search"
	"github.com/lattice-works/semdex/segment"
	"github.com/lattice-works/semdex/storage"
	"github.com/lattice-works/semdex/storage/minio"
)

func main() {
	app := &cli.App{
		Name:  "semdex",
		Usage: "Document ingestion and semantic retrieval over a local corpus",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file",
				Value:   "semdex.yaml",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest a document (local path or s3:// URI) into the corpus",
				ArgsUsage: "<uri>",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "name",
						Usage: "Display name for the document (defaults to the filename)",
					},
					&cli.BoolFlag{
						Name:  "no-wait",
						Usage: "Return immediately instead of waiting for processing",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search the corpus and print a formatted context",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Maximum number of excerpts",
						Value:   5,
					},
					&cli.IntFlag{
						Name:  "max-chars",
						Usage: "Context size budget in characters (0 = unbounded)",
						Value: 4000,
					},
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a document and its indexed chunks",
				ArgsUsage: "<document-id>",
				Action:    deleteCommand,
			},
			{
				Name:   "status",
				Usage:  "List tracked documents and their ingestion status",
				Action: statusCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// openCorpus loads the config and wires a Corpus from it.
func openCorpus(c *cli.Context) (*semdex.Corpus, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(cfg.AI.EmbeddingHost),
		ai.WithGeneratorHost(cfg.AI.GeneratorHost),
		ai.WithGeneratorModel(cfg.AI.GeneratorModel),
		ai.WithToken(cfg.AI.Token),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	embeddingConfig := embedding.DefaultConfig()
	if cfg.Embedding.PreferredModel != "" {
		embeddingConfig.PreferredModel = cfg.Embedding.PreferredModel
	}
	embeddingConfig.Dimension = cfg.Embedding.Dimension
	if cfg.Embedding.MaxBatchSize > 0 {
		embeddingConfig.MaxBatchSize = cfg.Embedding.MaxBatchSize
	}

	objects, err := buildObjectStore(cfg)
	if err != nil {
		return nil, err
	}

	return semdex.Open(cfg.Storage.DataDir, cfg.Corpus,
		semdex.WithAIConfig(aiConfig),
		semdex.WithEmbeddingConfig(embeddingConfig),
		semdex.WithObjectStore(objects),
		semdex.WithSegmentOptions(segmentOptionsFromConfig(cfg)...),
		semdex.WithPipelineOptions(pipelineOptionsFromConfig(cfg)...),
	)
}

func segmentOptionsFromConfig(cfg *config.AppConfig) []segment.Option {
	return []segment.Option{
		segment.WithChunkSize(cfg.Segmenter.ChunkSize),
		segment.WithOverlap(cfg.Segmenter.Overlap),
	}
}

func pipelineOptionsFromConfig(cfg *config.AppConfig) []ingestion.Option {
	var opts []ingestion.Option
	if cfg.Pipeline.PoolSize > 0 {
		opts = append(opts, ingestion.WithPoolSize(cfg.Pipeline.PoolSize))
	}
	return opts
}

func buildObjectStore(cfg *config.AppConfig) (storage.ObjectStore, error) {
	switch cfg.Storage.ObjectStore {
	case "minio":
		return minio.NewObjectStore(minio.Config{
			Endpoint:  cfg.Storage.Minio.Endpoint,
			AccessKey: cfg.Storage.Minio.AccessKey,
			SecretKey: cfg.Storage.Minio.SecretKey,
			UseSSL:    cfg.Storage.Minio.UseSSL,
			Region:    cfg.Storage.Minio.Region,
		})
	default:
		return storage.NewFileStore(cfg.Storage.LocalRoot), nil
	}
}

func ingestCommand(c *cli.Context) error {
	uri := c.Args().First()
	if uri == "" {
		return fmt.Errorf("document path or URI is required")
	}

	name := c.String("name")
	if name == "" {
		name = displayName(uri)
	}

	corpus, err := openCorpus(c)
	if err != nil {
		return err
	}
	defer corpus.Close()

	ctx := context.Background()
	doc, err := corpus.Ingest(ctx, name, uri)
	if err != nil {
		return fmt.Errorf("ingesting %q: %w", uri, err)
	}
	fmt.Printf("document %d (%s) submitted\n", doc.Id, doc.Name)

	if c.Bool("no-wait") {
		return nil
	}

	corpus.Wait()
	final, err := corpus.Documents().GetDocument(ctx, doc.Id)
	if err != nil {
		return err
	}

	fmt.Printf("document %d: %s\n", final.Id, final.Status)
	if final.Status == core.StatusError {
		return fmt.Errorf("ingestion failed: %s", final.ErrorDetail)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query is required")
	}

	corpus, err := openCorpus(c)
	if err != nil {
		return err
	}
	defer corpus.Close()

	results, err := corpus.SearchKnowledge(context.Background(), query, c.Int("top-k"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(results) == 0 {
		fmt.Println("no results")
		return nil
	}

	fmt.Println(search.FormatContext(results, c.Int("max-chars")))
	return nil
}

func deleteCommand(c *cli.Context) error {
	arg := c.Args().First()
	if arg == "" {
		return fmt.Errorf("document ID is required")
	}
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid document ID %q: %w", arg, err)
	}

	corpus, err := openCorpus(c)
	if err != nil {
		return err
	}
	defer corpus.Close()

	if err := corpus.Delete(context.Background(), core.ID(id)); err != nil {
		return fmt.Errorf("deleting document %d: %w", id, err)
	}
	fmt.Printf("document %d deleted\n", id)
	return nil
}

func statusCommand(c *cli.Context) error {
	corpus, err := openCorpus(c)
	if err != nil {
		return err
	}
	defer corpus.Close()

	docs, err := corpus.Documents().ListDocuments(context.Background(), "")
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Println("no documents")
		return nil
	}

	for _, doc := range docs {
		line := fmt.Sprintf("%d\t%s\t%s", doc.Id, doc.Status, doc.Name)
		if doc.Status == core.StatusError && doc.ErrorDetail != "" {
			line += "\t" + doc.ErrorDetail
		}
		fmt.Println(line)
	}
	return nil
}

// displayName derives a document name from a path or URI.
func displayName(uri string) string {
	trimmed := strings.TrimRight(uri, "/")
	if name := path.Base(trimmed); name != "." && name != "/" {
		return name
	}
	return trimmed
}

func setupLogger(c *cli.Context) error {
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
