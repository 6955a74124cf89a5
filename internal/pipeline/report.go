package pipeline

import (
	"github.com/example/go-aeva-intent/internal/catalog"
	"github.com/example/go-aeva-intent/internal/dataset"
)

// Report is written to training_report.json. Model fields are set only when
// a model was trained and exported; Note explains their absence otherwise.
type Report struct {
	ModelArchitecture string           `json:"model_architecture"`
	NumIntents        int              `json:"num_intents"`
	IntentLabels      catalog.LabelMap `json:"intent_labels"`
	VocabSize         int              `json:"vocab_size"`
	MaxSequenceLength int              `json:"max_sequence_length"`
	EmbeddingDim      int              `json:"embedding_dim"`
	TrainingSamples   int              `json:"training_samples"`

	Epochs          int              `json:"epochs,omitempty"`
	FinalAccuracy   *float64         `json:"final_accuracy,omitempty"`
	FinalLoss       *float64         `json:"final_loss,omitempty"`
	ModelSizeKB     float64          `json:"model_size_kb,omitempty"`
	Quantization    string           `json:"quantization,omitempty"`
	TrainingHistory *TrainingHistory `json:"training_history,omitempty"`

	Note string `json:"note,omitempty"`

	Seed          uint64        `json:"seed"`
	AugmentFactor int           `json:"augment_factor"`
	VocabSHA256   string        `json:"vocab_sha256"`
	SequenceStats dataset.Stats `json:"sequence_stats"`
}

type TrainingHistory struct {
	Accuracy    []float64 `json:"accuracy"`
	ValAccuracy []float64 `json:"val_accuracy"`
}

const (
	noteUnavailable = "TFLite model not generated: install tensorflow to train"
	noteDisabled    = "TFLite model not generated: training disabled"
)
