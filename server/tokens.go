package server

import (
	"unicode/utf8"

	"github.com/tiktoken-go/tokenizer"
)

// tokenEstimator counts tokens with tiktoken's cl100k_base encoding, the
// encoding used by OpenAI embedding models, so chunk sizes can be judged
// against embedding context windows.
type tokenEstimator struct {
	codec tokenizer.Codec
}

func newTokenEstimator() (*tokenEstimator, error) {
	enc, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		return nil, err
	}
	return &tokenEstimator{codec: enc}, nil
}

// estimate returns the token count for text. When no codec is available it
// falls back to a rune-based approximation.
func (e *tokenEstimator) estimate(text string) int {
	if e == nil || e.codec == nil {
		return utf8.RuneCountInString(text) / 4
	}
	ids, _, err := e.codec.Encode(text)
	if err != nil {
		return utf8.RuneCountInString(text) / 4
	}
	return len(ids)
}
