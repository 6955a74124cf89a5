package text

import "github.com/example/go-aeva-intent/internal/vocab"

// EncodedSample is a fixed-length sequence of vocabulary ids.
type EncodedSample []int

// Lookup resolves a token to its vocabulary id. It is satisfied by
// *vocab.Vocabulary.
type Lookup interface {
	ID(token string) (int, bool)
}

// Encode tokenizes already-normalized text and maps it to exactly maxLen ids.
// Unknown tokens become vocab.OOVID; sequences longer than maxLen lose their
// tail and shorter ones are right-padded with vocab.PadID.
func Encode(normalized string, v Lookup, maxLen int) EncodedSample {
	return EncodeTokens(Tokenize(normalized), v, maxLen)
}

// EncodeRaw normalizes s before encoding it.
func EncodeRaw(s string, v Lookup, maxLen int) EncodedSample {
	return Encode(Normalize(s), v, maxLen)
}

// EncodeTokens maps a token sequence to exactly maxLen ids.
func EncodeTokens(tokens []string, v Lookup, maxLen int) EncodedSample {
	if maxLen <= 0 {
		return EncodedSample{}
	}

	ids := make(EncodedSample, maxLen) // zero value is vocab.PadID
	for i, tok := range tokens {
		if i == maxLen {
			break
		}

		id, ok := v.ID(tok)
		if !ok {
			id = vocab.OOVID
		}
		ids[i] = id
	}

	return ids
}
