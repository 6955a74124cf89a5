package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/go-aeva-intent/internal/artifact"
	"github.com/example/go-aeva-intent/internal/config"
	"github.com/example/go-aeva-intent/internal/text"
	"github.com/example/go-aeva-intent/internal/vocab"
)

type encodedLine struct {
	Text       string `json:"text"`
	Normalized string `json:"normalized"`
	IDs        []int  `json:"ids"`
}

func newEncodeCmd() *cobra.Command {
	var (
		vocabPath string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "encode <text>...",
		Short: "Print the normalized form and vocabulary ids of each argument",
		Long: "Encode each argument exactly as the training pipeline does, against a\n" +
			"persisted vocab.json. Use it to check an inference runtime for parity.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			v, err := loadVocab(cfg, vocabPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)
			enc.SetEscapeHTML(false)

			for _, arg := range args {
				normalized := text.Normalize(arg)
				ids := text.Encode(normalized, v, config.MaxSequenceLength)

				if asJSON {
					if err := enc.Encode(encodedLine{Text: arg, Normalized: normalized, IDs: ids}); err != nil {
						return err
					}
					continue
				}

				_, _ = fmt.Fprintf(out, "%s\t%s\n", normalized, joinIDs(ids))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&vocabPath, "vocab", "", "vocab.json to encode against (default <output-dir>/vocab.json)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print one JSON object per argument")

	return cmd
}

func loadVocab(cfg config.Config, path string) (*vocab.Vocabulary, error) {
	var (
		data []byte
		err  error
	)
	if path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = artifact.NewOSStore(cfg.Paths.OutputDir).Read(artifact.VocabFile)
	}
	if err != nil {
		return nil, fmt.Errorf("load vocabulary (run train first?): %w", err)
	}

	return vocab.Load(bytes.NewReader(data))
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
