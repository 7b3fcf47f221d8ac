package bench

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rivo/uniseg"
)

// Encoder is the tokenizer under test.
type Encoder interface {
	Encode(text string) ([]int32, error)
}

// Baseline is a reference tokenizer the report compares against.
type Baseline interface {
	Name() string
	Count(text string) (int, error)
}

// SampleStats holds the measurements for one text.
type SampleStats struct {
	Text      string  `json:"text"`
	Words     int     `json:"words"`
	Graphemes int     `json:"graphemes"`
	Tokens    int     `json:"tokens"`
	Ratio     float64 `json:"tokens_per_word"`

	BaselineTokens int     `json:"baseline_tokens,omitempty"`
	BaselineRatio  float64 `json:"baseline_tokens_per_word,omitempty"`
}

// LanguageReport aggregates the samples of one language.
type LanguageReport struct {
	Language string        `json:"language"`
	Samples  []SampleStats `json:"samples"`
	Words    int           `json:"words"`
	Tokens   int           `json:"tokens"`
	Ratio    float64       `json:"tokens_per_word"`

	// CharsPerToken is the mean number of grapheme clusters per token.
	CharsPerToken float64 `json:"graphemes_per_token"`

	BaselineTokens int     `json:"baseline_tokens,omitempty"`
	BaselineRatio  float64 `json:"baseline_tokens_per_word,omitempty"`
	// Improvement is the fraction of baseline tokens saved; negative when
	// the baseline is more compact.
	Improvement float64 `json:"improvement,omitempty"`
}

// Report is the outcome of Evaluate over every sample set.
type Report struct {
	VocabSize int              `json:"vocab_size,omitempty"`
	Baseline  string           `json:"baseline,omitempty"`
	Languages []LanguageReport `json:"languages"`
	Words     int              `json:"words"`
	Tokens    int              `json:"tokens"`
	Ratio     float64          `json:"tokens_per_word"`
}

// Language returns the report for lang, matched case-insensitively.
func (r *Report) Language(lang string) (LanguageReport, bool) {
	for _, l := range r.Languages {
		if strings.EqualFold(l.Language, lang) {
			return l, true
		}
	}
	return LanguageReport{}, false
}

// CountWords counts whitespace-separated words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// ratio divides tokens by words, treating an empty text as zero.
func ratio(tokens, words int) float64 {
	if words == 0 {
		return 0
	}
	return float64(tokens) / float64(words)
}

// Evaluate encodes every sample with enc and, when baseline is non-nil, with
// the baseline. Sets sharing a language are reported together, in first-seen
// order. Averages are token totals over word totals.
func Evaluate(enc Encoder, sets []*SampleSet, baseline Baseline) (*Report, error) {
	if enc == nil {
		return nil, errors.New("nil encoder")
	}

	report := &Report{}
	if baseline != nil {
		report.Baseline = baseline.Name()
	}
	if sized, ok := enc.(interface{ VocabSize() int }); ok {
		report.VocabSize = sized.VocabSize()
	}

	index := make(map[string]int)
	for _, set := range sets {
		i, ok := index[set.Language]
		if !ok {
			i = len(report.Languages)
			index[set.Language] = i
			report.Languages = append(report.Languages, LanguageReport{Language: set.Language})
		}
		lang := &report.Languages[i]

		for _, text := range set.Samples {
			ids, err := enc.Encode(text)
			if err != nil {
				return nil, fmt.Errorf("encoding %s sample: %w", set.Language, err)
			}

			s := SampleStats{
				Text:      text,
				Words:     CountWords(text),
				Graphemes: uniseg.GraphemeClusterCount(text),
				Tokens:    len(ids),
			}
			s.Ratio = ratio(s.Tokens, s.Words)

			if baseline != nil {
				n, err := baseline.Count(text)
				if err != nil {
					return nil, fmt.Errorf("%s baseline: %w", baseline.Name(), err)
				}
				s.BaselineTokens = n
				s.BaselineRatio = ratio(n, s.Words)
			}

			lang.Samples = append(lang.Samples, s)
		}
	}

	for i := range report.Languages {
		lang := &report.Languages[i]
		var graphemes int
		for _, s := range lang.Samples {
			lang.Words += s.Words
			lang.Tokens += s.Tokens
			lang.BaselineTokens += s.BaselineTokens
			graphemes += s.Graphemes
		}
		lang.Ratio = ratio(lang.Tokens, lang.Words)
		lang.BaselineRatio = ratio(lang.BaselineTokens, lang.Words)
		if lang.Tokens > 0 {
			lang.CharsPerToken = float64(graphemes) / float64(lang.Tokens)
		}
		if lang.BaselineTokens > 0 {
			lang.Improvement = float64(lang.BaselineTokens-lang.Tokens) / float64(lang.BaselineTokens)
		}

		report.Words += lang.Words
		report.Tokens += lang.Tokens
	}
	report.Ratio = ratio(report.Tokens, report.Words)

	return report, nil
}
