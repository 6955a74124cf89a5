package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/example/go-aeva-intent/internal/artifact"
	"github.com/example/go-aeva-intent/internal/pipeline"
)

func newTrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Assemble the dataset, write vocab and label map, then train and export the model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			opts := pipeline.Options{
				DataPath: cfg.Paths.DataPath,
				Store:    artifact.NewOSStore(cfg.Paths.OutputDir),
				Seed:     cfg.Run.Seed,
				Workers:  cfg.Run.Workers,
			}
			if cfg.Trainer.Enabled {
				py := newPython(cfg)
				opts.Trainer = py
				opts.Exporter = py
			}

			res, err := pipeline.Run(ctx, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "samples: %d across %d intents\n", res.Report.TrainingSamples, res.Report.NumIntents)
			_, _ = fmt.Fprintf(out, "vocab:   %s (%d tokens)\n", opts.Store.Path(artifact.VocabFile), res.Report.VocabSize)
			_, _ = fmt.Fprintf(out, "labels:  %s\n", opts.Store.Path(artifact.LabelMapFile))
			_, _ = fmt.Fprintf(out, "report:  %s\n", opts.Store.Path(artifact.ReportFile))
			if res.Trained {
				_, _ = fmt.Fprintf(out, "model:   %s (%.1f KB, accuracy %.1f%%)\n",
					opts.Store.Path(artifact.ModelFile), res.Report.ModelSizeKB, *res.Report.FinalAccuracy*100)
			} else {
				_, _ = fmt.Fprintf(out, "model:   not generated (%s)\n", res.Report.Note)
			}

			return nil
		},
	}

	return cmd
}
