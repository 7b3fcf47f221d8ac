package bench

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	unigram "github.com/jamesainslie/go-unigram"
	"github.com/jamesainslie/go-unigram/trainer"
)

// SweepResult holds the report for one vocabulary size. Err is set when the
// size could not be reached on the corpus.
type SweepResult struct {
	VocabSize int
	Report    *Report
	Err       error
}

// MarshalJSON renders Err as a string.
func (r SweepResult) MarshalJSON() ([]byte, error) {
	out := struct {
		VocabSize int     `json:"vocab_size"`
		Report    *Report `json:"report,omitempty"`
		Error     string  `json:"error,omitempty"`
	}{VocabSize: r.VocabSize, Report: r.Report}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

// SweepVocabSizes generates vocabulary sizes from min to max inclusive.
func SweepVocabSizes(min, max, step int) []int {
	if step <= 0 {
		return nil
	}
	var sizes []int
	for v := min; v <= max; v += step {
		sizes = append(sizes, v)
	}
	return sizes
}

// Sweep trains one model per vocabulary size on corpus and evaluates it on
// sets. Results are sorted by tokens per word ascending, smaller
// vocabularies first on ties; sizes that failed to converge come last.
func Sweep(ctx context.Context, corpus *trainer.Corpus, cfg trainer.Config, sizes []int, sets []*SampleSet) ([]SweepResult, error) {
	var results []SweepResult
	for _, size := range sizes {
		c := cfg
		c.VocabSize = size

		model, err := trainer.Train(ctx, c, corpus)
		if errors.Is(err, trainer.ErrConvergence) {
			results = append(results, SweepResult{VocabSize: size, Err: err})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("vocab size %d: %w", size, err)
		}

		proc, err := unigram.FromModel(model, unigram.WithLogger(cfg.Logger))
		if err != nil {
			return nil, err
		}
		report, err := Evaluate(proc, sets, nil)
		_ = proc.Close()
		if err != nil {
			return nil, err
		}

		results = append(results, SweepResult{VocabSize: size, Report: report})
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if (a.Err == nil) != (b.Err == nil) {
			return a.Err == nil
		}
		if a.Err != nil {
			return a.VocabSize < b.VocabSize
		}
		if a.Report.Ratio != b.Report.Ratio {
			return a.Report.Ratio < b.Report.Ratio
		}
		return a.VocabSize < b.VocabSize
	})

	return results, nil
}
