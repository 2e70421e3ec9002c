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
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/retrievit"
	"github.com/poiesic/retrievit/ai"
	"github.com/poiesic/retrievit/search"
	"github.com/poiesic/retrievit/vector"
)

func main() {
	// Pick up OPENAI_API_KEY and host overrides from a local .env if present.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "retrievit",
		Usage: "Hybrid lexical and vector retrieval over text corpora",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Path to the data directory holding the index and caches",
				Value:   "./data",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "index",
				Usage:     "Index every .txt and .md file under a directory",
				ArgsUsage: "<directory>",
				Action:    indexCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Chunk size in runes",
						Value: 800,
					},
					&cli.IntFlag{
						Name:  "overlap",
						Usage: "Chunk overlap in runes",
						Value: 50,
					},
				},
			},
			{
				Name:      "add",
				Usage:     "Index one or more files",
				ArgsUsage: "<file> [file...]",
				Action:    addCommand,
			},
			{
				Name:      "query",
				Usage:     "Retrieve the chunks most relevant to a query",
				ArgsUsage: "<query>",
				Action:    queryCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Number of chunks to return",
						Value:   5,
					},
					&cli.StringSliceFlag{
						Name:  "tag",
						Usage: "Only return chunks carrying one of these tags",
					},
					&cli.BoolFlag{
						Name:  "parallel",
						Usage: "Shard the vector scan across CPUs",
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Answer a question using retrieved context",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Number of context chunks to retrieve",
						Value:   5,
					},
					&cli.StringSliceFlag{
						Name:  "tag",
						Usage: "Only use context chunks carrying one of these tags",
					},
					&cli.IntFlag{
						Name:  "max-tokens",
						Usage: "Maximum tokens to generate in the answer",
						Value: 1024,
					},
				},
			},
			{
				Name:      "remember",
				Usage:     "Store a question-answer pair as a document",
				ArgsUsage: "<question> <answer>",
				Action:    rememberCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "tag",
						Usage: "Tags to attach to the stored document",
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Recompute all embeddings with the current embedding model",
				Action: reembedCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newClient(c *cli.Context, extra ...retrievit.ClientOption) (*retrievit.Client, error) {
	opts := []retrievit.ClientOption{
		retrievit.WithAIConfig(configFromEnv()),
	}
	return retrievit.NewClient(c.String("data"), append(opts, extra...)...)
}

// configFromEnv builds the AI config from environment variables, falling
// back to the OpenAI defaults.
func configFromEnv() *ai.Config {
	var opts []ai.ConfigOption
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		opts = append(opts, ai.WithAPIKey(key))
	}
	if host := os.Getenv("OPENAI_BASE_URL"); host != "" {
		opts = append(opts, ai.WithHost(host))
	}
	if model := os.Getenv("EMBEDDING_MODEL"); model != "" {
		opts = append(opts, ai.WithEmbeddingModel(model))
	}
	if model := os.Getenv("GENERATION_MODEL"); model != "" {
		opts = append(opts, ai.WithGenerationModel(model))
	}
	return ai.NewConfig(opts...)
}

func indexCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one directory argument")
	}

	client, err := newClient(c,
		retrievit.WithSplitConfig(c.Int("chunk-size"), c.Int("overlap")))
	if err != nil {
		return err
	}
	defer client.Close()

	report, err := client.AddDirectory(c.Context, c.Args().First())
	if err != nil {
		return err
	}
	for _, failed := range report.Failed() {
		fmt.Fprintf(os.Stderr, "failed: %s: %v\n", failed.Path, failed.Err)
	}
	fmt.Printf("indexed %d files (%d chunks, %d failed)\n",
		report.Loaded(), len(report.Chunks()), len(report.Failed()))

	return client.Save()
}

func addCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("expected at least one file argument")
	}

	client, err := newClient(c)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.AddFiles(c.Context, c.Args().Slice()...); err != nil {
		return err
	}
	fmt.Printf("corpus now holds %d chunks\n", client.Len())

	return client.Save()
}

func queryCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one query argument")
	}

	var extra []retrievit.ClientOption
	if c.Bool("parallel") {
		extra = append(extra, retrievit.WithVectorBackend(vector.BackendParallel))
	}
	client, err := newClient(c, extra...)
	if err != nil {
		return err
	}
	defer client.Close()

	results, err := client.Retrieve(c.Context, c.Args().First(), c.Int("top-k"),
		search.WithTags(c.StringSlice("tag")...))
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("no results")
		return nil
	}
	for i, res := range results {
		fmt.Printf("%2d. [%.4f] %s (%s)\n", i+1, res.Score,
			res.Chunk.Metadata.ChunkID, res.Chunk.Metadata.Source)
		fmt.Printf("    %s\n", firstLine(res.Chunk.Content))
	}
	return nil
}

func askCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one question argument")
	}

	cfg := configFromEnv()
	ai.WithMaxTokens(c.Int("max-tokens"))(cfg)

	client, err := retrievit.NewClient(c.String("data"), retrievit.WithAIConfig(cfg))
	if err != nil {
		return err
	}
	defer client.Close()

	answer, err := client.Answer(c.Context, c.Args().First(), c.Int("top-k"),
		search.WithTags(c.StringSlice("tag")...))
	if err != nil {
		return err
	}
	fmt.Println(answer)
	return nil
}

func rememberCommand(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("expected question and answer arguments")
	}

	client, err := newClient(c)
	if err != nil {
		return err
	}
	defer client.Close()

	question := c.Args().Get(0)
	answer := c.Args().Get(1)
	content := fmt.Sprintf("Question: %s\nAnswer: %s\n", question, answer)
	if tags := c.StringSlice("tag"); len(tags) > 0 {
		content = "tags: " + strings.Join(tags, ", ") + "\n" + content
	}

	path, err := writeMemory(c.String("data"), content)
	if err != nil {
		return err
	}
	if err := client.AddFiles(c.Context, path); err != nil {
		return err
	}
	fmt.Printf("stored %s\n", path)

	return client.Save()
}

func reembedCommand(c *cli.Context) error {
	client, err := newClient(c)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Reembed(c.Context); err != nil {
		return err
	}
	fmt.Printf("reembedded %d chunks\n", client.Len())

	return client.Save()
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
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

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	if len(line) > 120 {
		line = line[:120] + "..."
	}
	return line
}
