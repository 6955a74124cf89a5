// Package pipeline runs a complete training pass: load the intent catalog,
// assemble the encoded dataset, write the encoding artifacts, then train,
// evaluate and export the model when the tooling is available.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/example/go-aeva-intent/internal/artifact"
	"github.com/example/go-aeva-intent/internal/catalog"
	"github.com/example/go-aeva-intent/internal/config"
	"github.com/example/go-aeva-intent/internal/dataset"
	"github.com/example/go-aeva-intent/internal/model"
)

type Options struct {
	DataPath string
	Store    *artifact.Store
	Seed     uint64
	Workers  int

	// Trainer and Exporter are optional together; when nil the run writes
	// the encoding artifacts and a report without model fields.
	Trainer  model.Trainer
	Exporter model.Exporter
}

type Result struct {
	Report   Report
	Assembly *dataset.Assembly
	// Trained is false when training was disabled or the tooling was
	// unavailable.
	Trained bool
}

type trained struct {
	blob     []byte
	loss     float64
	accuracy float64
	history  model.History
}

func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Store == nil {
		return nil, errors.New("pipeline: artifact store is required")
	}
	if (opts.Trainer == nil) != (opts.Exporter == nil) {
		return nil, errors.New("pipeline: trainer and exporter must be set together")
	}

	start := time.Now()

	cat, err := catalog.Load(opts.DataPath)
	if err != nil {
		return nil, err
	}
	slog.Info("training data loaded",
		"path", opts.DataPath,
		"intents", cat.NumClasses(),
		"samples", cat.NumSamples(),
	)

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))
	asm, err := dataset.Assemble(cat, dataset.Options{
		Factor:    config.AugmentFactor,
		MaxLen:    config.MaxSequenceLength,
		VocabSize: config.VocabSize,
		Rand:      rng,
		Workers:   opts.Workers,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("dataset assembled",
		"rows", humanize.Comma(int64(asm.Dataset.Len())),
		"vocab_size", asm.Vocab.Len(),
		"mean_tokens", asm.Stats.MeanTokens,
		"truncated", asm.Stats.Truncated,
	)

	var vocabJSON bytes.Buffer
	if err := asm.Vocab.Save(&vocabJSON); err != nil {
		return nil, fmt.Errorf("encode vocabulary: %w", err)
	}
	labelJSON, err := artifact.JSON(asm.LabelMap)
	if err != nil {
		return nil, fmt.Errorf("encode label map: %w", err)
	}

	// The model and report of an earlier run describe the old vocabulary.
	// They are removed before it is replaced so a failed run cannot leave
	// them next to the new one.
	for _, name := range []string{artifact.ModelFile, artifact.ReportFile} {
		if err := opts.Store.Remove(name); err != nil {
			return nil, err
		}
	}

	err = opts.Store.WriteStage("encoding",
		artifact.File{Name: artifact.VocabFile, Data: vocabJSON.Bytes()},
		artifact.File{Name: artifact.LabelMapFile, Data: labelJSON},
	)
	if err != nil {
		return nil, err
	}
	slog.Info("encoding artifacts written",
		"dir", opts.Store.Dir(),
		"vocab_bytes", humanize.Bytes(uint64(vocabJSON.Len())),
	)

	report := Report{
		ModelArchitecture: model.Architecture,
		NumIntents:        cat.NumClasses(),
		IntentLabels:      asm.LabelMap,
		VocabSize:         asm.Vocab.Len(),
		MaxSequenceLength: config.MaxSequenceLength,
		EmbeddingDim:      config.EmbeddingDim,
		TrainingSamples:   asm.Dataset.Len(),
		Seed:              opts.Seed,
		AugmentFactor:     config.AugmentFactor,
		VocabSHA256:       artifact.SHA256(vocabJSON.Bytes()),
		SequenceStats:     asm.Stats,
	}

	res := &Result{Assembly: asm}

	var out *trained
	if opts.Trainer == nil {
		report.Note = noteDisabled
		slog.Info("model training disabled")
	} else {
		hp := model.DefaultHyperparameters(asm.Vocab.Len(), cat.NumClasses(), opts.Seed)
		out, err = train(ctx, opts, asm, hp)
		if errors.Is(err, model.ErrUnavailable) {
			report.Note = noteUnavailable
			slog.Warn("model not trained", "err", err)
			err = nil
		}
		if err != nil {
			return nil, err
		}
	}

	reportFile := func() (artifact.File, error) {
		data, err := artifact.JSON(report)
		return artifact.File{Name: artifact.ReportFile, Data: data}, err
	}

	if out == nil {
		f, err := reportFile()
		if err != nil {
			return nil, fmt.Errorf("encode report: %w", err)
		}
		if err := opts.Store.WriteStage("report", f); err != nil {
			return nil, err
		}
	} else {
		report.Epochs = config.Epochs
		report.FinalAccuracy = &out.accuracy
		report.FinalLoss = &out.loss
		report.ModelSizeKB = float64(len(out.blob)) / 1024
		report.Quantization = model.Quantization
		report.TrainingHistory = &TrainingHistory{
			Accuracy:    nonNil(out.history.Accuracy),
			ValAccuracy: nonNil(out.history.ValAccuracy),
		}

		f, err := reportFile()
		if err != nil {
			return nil, fmt.Errorf("encode report: %w", err)
		}
		err = opts.Store.WriteStage("model",
			artifact.File{Name: artifact.ModelFile, Data: out.blob},
			f,
		)
		if err != nil {
			return nil, err
		}
		res.Trained = true
		slog.Info("model exported",
			"path", opts.Store.Path(artifact.ModelFile),
			"size", humanize.Bytes(uint64(len(out.blob))),
			"accuracy", out.accuracy,
		)
	}

	res.Report = report
	slog.Info("training pipeline complete",
		"trained", res.Trained,
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)

	return res, nil
}

func train(ctx context.Context, opts Options, asm *dataset.Assembly, hp model.Hyperparameters) (*trained, error) {
	X := asm.Dataset.Matrix()
	y := asm.Dataset.Labels

	slog.Info("training model", "rows", len(X), "classes", hp.NumClasses, "epochs", hp.Epochs)
	m, err := opts.Trainer.Fit(ctx, X, y, hp)
	if err != nil {
		return nil, fmt.Errorf("train model: %w", err)
	}
	if c, ok := m.(io.Closer); ok {
		defer func() {
			if err := c.Close(); err != nil {
				slog.Warn("release trained model", "err", err)
			}
		}()
	}

	loss, acc, err := m.Evaluate(ctx, X, y)
	if err != nil {
		return nil, fmt.Errorf("evaluate model: %w", err)
	}
	slog.Info("model evaluated", "loss", loss, "accuracy", acc)

	representative := asm.Dataset.Head(config.RepresentativeSamples)
	rows := make([][]int, len(representative))
	for i, s := range representative {
		rows[i] = s
	}

	blob, err := opts.Exporter.Export(ctx, m, rows)
	if err != nil {
		return nil, fmt.Errorf("export model: %w", err)
	}

	return &trained{blob: blob, loss: loss, accuracy: acc, history: m.History()}, nil
}

func nonNil(v []float64) []float64 {
	if v == nil {
		return []float64{}
	}
	return v
}
