package config

// Model and pipeline tunables. They are part of the encoding contract shared
// with the inference runtime; they are not settings.
const (
	MaxSequenceLength = 32
	VocabSize         = 5000

	EmbeddingDim = 64
	NumFilters   = 128
	KernelSize   = 3
	DenseUnits   = 64
	DropoutRate  = 0.3

	Epochs          = 80
	BatchSize       = 16
	ValidationSplit = 0.15
	LearningRate    = 0.001

	// AugmentFactor is the number of variants generated per original sample.
	AugmentFactor = 5

	// RepresentativeSamples caps the rows handed to the quantizing exporter.
	RepresentativeSamples = 100
)
