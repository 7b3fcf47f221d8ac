package bench

import (
	"errors"
	"strings"
)

// wordEncoder emits one id per whitespace-separated word.
type wordEncoder struct{}

func (wordEncoder) Encode(text string) ([]int32, error) {
	return make([]int32, len(strings.Fields(text))), nil
}

func (wordEncoder) VocabSize() int { return 42 }

// runeEncoder emits one id per code point.
type runeEncoder struct{}

func (runeEncoder) Encode(text string) ([]int32, error) {
	return make([]int32, len([]rune(text))), nil
}

type failingEncoder struct{}

func (failingEncoder) Encode(string) ([]int32, error) {
	return nil, errors.New("boom")
}

// doubleBaseline counts two tokens per word.
type doubleBaseline struct{}

func (doubleBaseline) Name() string { return "double" }

func (doubleBaseline) Count(text string) (int, error) {
	return 2 * len(strings.Fields(text)), nil
}
