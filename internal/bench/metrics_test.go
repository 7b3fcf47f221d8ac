package bench

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountWords(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"hello", 1},
		{"The quick  brown\tfox\n", 4},
		{"আমার সোনার বাংলা, আমি তোমায় ভালোবাসি।", 6},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, CountWords(tt.text))
		})
	}
}

func TestEvaluate_WordEncoder(t *testing.T) {
	report, err := Evaluate(wordEncoder{}, DefaultSamples(), nil)
	require.NoError(t, err)

	assert.Equal(t, 42, report.VocabSize)
	assert.Empty(t, report.Baseline)
	require.Len(t, report.Languages, 2)
	assert.InDelta(t, 1.0, report.Ratio, 1e-9)

	en, ok := report.Language("english")
	require.True(t, ok)
	require.Len(t, en.Samples, 3)
	assert.Equal(t, 13, en.Samples[0].Words)
	assert.Equal(t, 13, en.Samples[0].Tokens)
	assert.InDelta(t, 1.0, en.Ratio, 1e-9)
	assert.Equal(t, en.Words, en.Tokens)
	assert.Zero(t, en.BaselineTokens)
	assert.Zero(t, en.Improvement)

	_, ok = report.Language("French")
	assert.False(t, ok)
}

func TestEvaluate_Graphemes(t *testing.T) {
	sets := []*SampleSet{{Language: "Bengali", Samples: []string{"কি"}}}

	report, err := Evaluate(runeEncoder{}, sets, nil)
	require.NoError(t, err)

	s := report.Languages[0].Samples[0]
	assert.Equal(t, 2, s.Tokens)
	assert.Equal(t, 1, s.Graphemes)
	assert.InDelta(t, 0.5, report.Languages[0].CharsPerToken, 1e-9)
}

func TestEvaluate_Baseline(t *testing.T) {
	sets := []*SampleSet{{Language: "English", Samples: []string{"one two", "three four five six"}}}

	report, err := Evaluate(wordEncoder{}, sets, doubleBaseline{})
	require.NoError(t, err)

	assert.Equal(t, "double", report.Baseline)
	lang := report.Languages[0]
	assert.Equal(t, 6, lang.Tokens)
	assert.Equal(t, 12, lang.BaselineTokens)
	assert.InDelta(t, 2.0, lang.BaselineRatio, 1e-9)
	assert.InDelta(t, 0.5, lang.Improvement, 1e-9)
	assert.Equal(t, 4, lang.Samples[0].BaselineTokens)
}

func TestEvaluate_WeightedAverage(t *testing.T) {
	// A token total over a word total, not a mean of per-sample ratios.
	sets := []*SampleSet{{Language: "English", Samples: []string{"ab", "abcdef ghij"}}}

	report, err := Evaluate(runeEncoder{}, sets, nil)
	require.NoError(t, err)

	lang := report.Languages[0]
	assert.InDelta(t, 2.0, lang.Samples[0].Ratio, 1e-9)
	assert.InDelta(t, 5.5, lang.Samples[1].Ratio, 1e-9)
	assert.InDelta(t, 13.0/3, lang.Ratio, 1e-9)
}

func TestEvaluate_MergesLanguages(t *testing.T) {
	sets := []*SampleSet{
		{Language: "English", Samples: []string{"a b"}},
		{Language: "Bengali", Samples: []string{"ক খ গ"}},
		{Language: "English", Samples: []string{"c"}},
	}

	report, err := Evaluate(wordEncoder{}, sets, nil)
	require.NoError(t, err)

	require.Len(t, report.Languages, 2)
	assert.Equal(t, "English", report.Languages[0].Language)
	assert.Len(t, report.Languages[0].Samples, 2)
	assert.Equal(t, 3, report.Languages[0].Words)
	assert.Equal(t, 6, report.Words)
}

func TestEvaluate_EmptySample(t *testing.T) {
	sets := []*SampleSet{{Language: "English", Samples: []string{""}}}

	report, err := Evaluate(wordEncoder{}, sets, nil)
	require.NoError(t, err)
	assert.Zero(t, report.Ratio)
	assert.Zero(t, report.Languages[0].CharsPerToken)
}

func TestEvaluate_Errors(t *testing.T) {
	_, err := Evaluate(nil, DefaultSamples(), nil)
	assert.Error(t, err)

	_, err = Evaluate(failingEncoder{}, DefaultSamples(), nil)
	assert.ErrorContains(t, err, "boom")
}
