// Command qseval evaluates directories of model-generated (query, summary)
// arrays against their references and prints one report line per file.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/queryopt/qseval/core/eval"
	"github.com/queryopt/qseval/providers/metrics/rouge"
	"github.com/queryopt/qseval/providers/metrics/semantic"
	"github.com/queryopt/qseval/providers/source/csvdir"

	_ "github.com/joho/godotenv/autoload"
)

// Environment variables consulted when --embeddings is set.
const (
	envEmbeddingsURL   = "QSEVAL_EMBEDDINGS_URL"
	envEmbeddingsModel = "QSEVAL_EMBEDDINGS_MODEL"
	envAPIKey          = "OPENAI_API_KEY"
)

const defaultEmbeddingsModel = "text-embedding-3-small"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		dir        string
		ext        string
		repair     bool
		embeddings bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "qseval",
		Short: "Evaluate format-following and summary quality of model outputs",
		Long: `qseval reads CSV files of (reference, response) rows, repairs and parses
the model responses, and reports per-file format-following accuracy, ROUGE
overlap and averaged semantic similarity.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)

			evaluator := newEvaluator(logger, repair, embeddings)

			files, err := csvdir.List(dir, ext)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				logger.Warn("no input files found", "dir", dir, "ext", ext)
				return nil
			}

			failed := 0
			for _, file := range files {
				records, err := csvdir.Read(file)
				if err != nil {
					logger.Error("skipping unreadable file", "file", file, "error", err)
					failed++
					continue
				}
				report, err := evaluator.EvaluateRecords(cmd.Context(), file, records)
				if err != nil {
					logger.Error("evaluation aborted", "file", file, "error", err)
					failed++
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), report)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(files))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "outputs", "directory containing input files")
	cmd.Flags().StringVar(&ext, "ext", ".csv", "input file extension")
	cmd.Flags().BoolVar(&repair, "repair", false, "retry failed parses through automatic JSON repair (accuracy accounting unchanged)")
	cmd.Flags().BoolVar(&embeddings, "embeddings", false, "score similarity with a remote embeddings endpoint instead of local term frequencies")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

func newEvaluator(logger *slog.Logger, repair, embeddings bool) *eval.Evaluator {
	var embedder semantic.Embedder = semantic.NewTFEmbedder()
	if embeddings {
		model := os.Getenv(envEmbeddingsModel)
		if model == "" {
			model = defaultEmbeddingsModel
		}
		embedder = semantic.NewRESTEmbedder(model, os.Getenv(envAPIKey),
			semantic.WithURL(os.Getenv(envEmbeddingsURL)))
	}

	opts := []eval.Option{eval.WithLogger(logger)}
	if repair {
		opts = append(opts, eval.WithRepair())
	}
	return eval.New(rouge.New(), semantic.New(embedder), opts...)
}
