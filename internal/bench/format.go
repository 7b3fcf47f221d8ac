package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"unicode/utf8"
)

// previewLen is the number of characters of a sample shown in tables.
const previewLen = 40

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// WriteTable writes a human-readable report.
func WriteTable(w io.Writer, r *Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	withBaseline := r.Baseline != ""

	if r.VocabSize > 0 {
		fmt.Fprintf(tw, "vocab size:\t%d\n", r.VocabSize)
	}
	if withBaseline {
		fmt.Fprintf(tw, "baseline:\t%s\n", r.Baseline)
	}

	for _, lang := range r.Languages {
		fmt.Fprintf(tw, "\n%s\n", lang.Language)
		if withBaseline {
			fmt.Fprintln(tw, "text\twords\ttokens\tratio\tbaseline\tbaseline ratio")
		} else {
			fmt.Fprintln(tw, "text\twords\ttokens\tratio")
		}
		for _, s := range lang.Samples {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f", preview(s.Text), s.Words, s.Tokens, s.Ratio)
			if withBaseline {
				fmt.Fprintf(tw, "\t%d\t%.2f", s.BaselineTokens, s.BaselineRatio)
			}
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "average tokens/word:\t%.2f\n", lang.Ratio)
		if withBaseline {
			fmt.Fprintf(tw, "baseline tokens/word:\t%.2f\n", lang.BaselineRatio)
			fmt.Fprintf(tw, "improvement:\t%.0f%%\n", lang.Improvement*100)
		}
	}

	fmt.Fprintf(tw, "\noverall tokens/word:\t%.2f\n", r.Ratio)
	return tw.Flush()
}

// WriteSweep writes one line per vocabulary size.
func WriteSweep(w io.Writer, results []SweepResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "vocab\ttokens/word\tlanguages")
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(tw, "%d\t-\t%v\n", res.VocabSize, res.Err)
			continue
		}
		parts := make([]string, 0, len(res.Report.Languages))
		for _, lang := range res.Report.Languages {
			parts = append(parts, fmt.Sprintf("%s=%.2f", lang.Language, lang.Ratio))
		}
		fmt.Fprintf(tw, "%d\t%.2f\t%s\n", res.VocabSize, res.Report.Ratio, strings.Join(parts, " "))
	}
	return tw.Flush()
}

func preview(text string) string {
	if utf8.RuneCountInString(text) <= previewLen {
		return text
	}
	return string([]rune(text)[:previewLen]) + "..."
}
