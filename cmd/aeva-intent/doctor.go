package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/go-aeva-intent/internal/doctor"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the Python tooling, training data and output directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			py := newPython(cfg)

			result := doctor.Run(doctor.Config{
				PythonVersion: func() (string, error) { return py.Version(ctx) },
				TensorFlow:    func() error { return py.Probe(ctx) },
				SkipTrainer:   !cfg.Trainer.Enabled,
				ScriptPath:    cfg.Paths.ScriptPath,
				DataPath:      cfg.Paths.DataPath,
				OutputDir:     cfg.Paths.OutputDir,
			}, cmd.OutOrStdout())

			if result.Failed() {
				for _, f := range result.Failures() {
					fmt.Fprintf(os.Stderr, "FAIL: %s\n", f)
				}

				return errors.New("doctor checks failed")
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "doctor checks passed")

			return nil
		},
	}

	return cmd
}
