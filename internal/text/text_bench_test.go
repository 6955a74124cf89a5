package text

import (
	"testing"

	"github.com/example/go-aeva-intent/internal/vocab"
)

var benchUtterances = []string{
	"Hey Ava, set a timer for 5 minutes please!",
	"what's the weather like in São Paulo tomorrow?",
	"Eva   could you   calculate 12*7-3 / 2^4",
	"navigate to the nearest gas station right now",
}

func BenchmarkNormalize(b *testing.B) {
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Normalize(benchUtterances[i%len(benchUtterances)])
	}
}

func BenchmarkEncodeRaw(b *testing.B) {
	corpus := make([][]string, len(benchUtterances))
	for i, u := range benchUtterances {
		corpus[i] = Tokenize(Normalize(u))
	}
	v := vocab.Build(corpus, 5000)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = EncodeRaw(benchUtterances[i%len(benchUtterances)], v, 32)
	}
}
