// Package model defines the training and export collaborators of the
// pipeline and ships an implementation that drives a TensorFlow script in a
// Python subprocess.
package model

import (
	"context"
	"errors"

	"github.com/example/go-aeva-intent/internal/config"
)

// ErrUnavailable reports that the training or export tooling is not
// installed. Callers treat it as a degraded run rather than a failure.
var ErrUnavailable = errors.New("model tooling unavailable")

const (
	Architecture = "Embedding → Conv1D → GlobalMaxPool → Dense → Softmax"
	Quantization = "int8 post-training quantization"
)

// Hyperparameters fully describe the network and its training schedule.
type Hyperparameters struct {
	VocabSize       int     `json:"vocab_size"`
	MaxLen          int     `json:"max_sequence_length"`
	NumClasses      int     `json:"num_classes"`
	EmbeddingDim    int     `json:"embedding_dim"`
	NumFilters      int     `json:"num_filters"`
	KernelSize      int     `json:"kernel_size"`
	DenseUnits      int     `json:"dense_units"`
	DropoutRate     float64 `json:"dropout_rate"`
	Epochs          int     `json:"epochs"`
	BatchSize       int     `json:"batch_size"`
	ValidationSplit float64 `json:"validation_split"`
	LearningRate    float64 `json:"learning_rate"`
	Seed            uint64  `json:"seed"`
}

// DefaultHyperparameters fills in the fixed tunables for a vocabulary of
// vocabSize entries and numClasses intents.
func DefaultHyperparameters(vocabSize, numClasses int, seed uint64) Hyperparameters {
	return Hyperparameters{
		VocabSize:       vocabSize,
		MaxLen:          config.MaxSequenceLength,
		NumClasses:      numClasses,
		EmbeddingDim:    config.EmbeddingDim,
		NumFilters:      config.NumFilters,
		KernelSize:      config.KernelSize,
		DenseUnits:      config.DenseUnits,
		DropoutRate:     config.DropoutRate,
		Epochs:          config.Epochs,
		BatchSize:       config.BatchSize,
		ValidationSplit: config.ValidationSplit,
		LearningRate:    config.LearningRate,
		Seed:            seed,
	}
}

// History holds per-epoch training metrics.
type History struct {
	Accuracy    []float64 `json:"accuracy"`
	ValAccuracy []float64 `json:"val_accuracy"`
	Loss        []float64 `json:"loss,omitempty"`
	ValLoss     []float64 `json:"val_loss,omitempty"`
}

// Trainer fits a classifier on encoded samples X with class labels y.
type Trainer interface {
	Fit(ctx context.Context, X [][]int, y []int, hp Hyperparameters) (TrainedModel, error)
}

// TrainedModel is the result of a successful Fit. Implementations holding
// external resources also implement io.Closer.
type TrainedModel interface {
	Evaluate(ctx context.Context, X [][]int, y []int) (loss, accuracy float64, err error)
	History() History
}

// Exporter serializes a trained model to a quantized on-device blob,
// calibrating on the representative samples.
type Exporter interface {
	Export(ctx context.Context, m TrainedModel, representative [][]int) ([]byte, error)
}
