package segment

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Tokenizer is the subword tokenization capability the engine budgets with.
// Decode(Encode(text)) need not reproduce text byte for byte, but token
// counts must be deterministic.
type Tokenizer interface {
	Count(text string) int
	Encode(text string) []int
	Decode(tokens []int) string
}

const encodingName = "cl100k_base"

type tiktokenTokenizer struct {
	enc *tiktoken.Tiktoken
}

// NewTokenizer loads the cl100k_base BPE encoding.
func NewTokenizer() (Tokenizer, error) {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("load %s encoding: %w", encodingName, err)
	}
	return &tiktokenTokenizer{enc: enc}, nil
}

func (t *tiktokenTokenizer) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

func (t *tiktokenTokenizer) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

func (t *tiktokenTokenizer) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}
