package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	unigram "github.com/jamesainslie/go-unigram"
	"github.com/jamesainslie/go-unigram/trainer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--log-level=error"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func catLines() []string {
	lines := make([]string, 200)
	for i := range lines {
		lines[i] = "the cat sat on the mat"
	}
	return lines
}

// saveModel trains a model of the given size and returns its .model path.
func saveModel(t *testing.T, vocabSize int) string {
	t.Helper()
	cfg := trainer.DefaultConfig()
	cfg.VocabSize = vocabSize
	cfg.Threads = 2
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	proc, err := unigram.Train(context.Background(), catLines(), cfg, unigram.WithLogger(cfg.Logger))
	require.NoError(t, err)
	t.Cleanup(func() { _ = proc.Close() })

	prefix := filepath.Join(t.TempDir(), "cat")
	require.NoError(t, proc.Save(prefix))
	return prefix + ".model"
}

func TestNewRootCmd_HasExpectedSubcommands(t *testing.T) {
	root := NewRootCmd()

	var names []string
	for _, sub := range root.Commands() {
		names = append(names, sub.Name())
	}
	assert.Subset(t, names, []string{"report", "sweep"})
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestReport_Table(t *testing.T) {
	model := saveModel(t, 30)

	out, err := run(t, "report", "--baseline=", "-m", model)
	require.NoError(t, err)
	assert.Contains(t, out, "vocab size:")
	assert.Contains(t, out, "English")
	assert.Contains(t, out, "Bengali")
	assert.Contains(t, out, "overall tokens/word:")
	assert.NotContains(t, out, "baseline")
}

func TestReport_JSONMultipleModels(t *testing.T) {
	small := saveModel(t, 30)
	large := saveModel(t, 34)

	out, err := run(t, "report", "--baseline=", "--format=json", small, large)
	require.NoError(t, err)

	var reports []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 2)
	assert.EqualValues(t, 30, reports[0]["vocab_size"])
	assert.EqualValues(t, 34, reports[1]["vocab_size"])
}

func TestReport_SampleDir(t *testing.T) {
	model := saveModel(t, 30)
	dir := t.TempDir()
	content := "# Language: Cats\nthe cat sat\non the mat\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cats.txt"), []byte(content), 0o600))

	out, err := run(t, "report", "--baseline=", "--format=json", "--samples", dir, "-m", model)
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	langs, ok := report["languages"].([]any)
	require.True(t, ok)
	require.Len(t, langs, 1)
	assert.Equal(t, "Cats", langs[0].(map[string]any)["language"])
}

func TestReport_Errors(t *testing.T) {
	model := saveModel(t, 30)

	_, err := run(t, "report", "--baseline=", "--format=xml", "-m", model)
	assert.ErrorContains(t, err, "unknown format")

	_, err = run(t, "report", "--baseline=", filepath.Join(t.TempDir(), "missing.model"))
	assert.ErrorIs(t, err, unigram.ErrModelNotFound)
}

func TestSweep(t *testing.T) {
	corpus := filepath.Join(t.TempDir(), "corpus.txt")
	require.NoError(t, os.WriteFile(corpus, []byte(strings.Join(catLines(), "\n")), 0o600))

	out, err := run(t, "sweep", "--threads=2", "--sweep-min=30", "--sweep-max=100", "--sweep-step=70", corpus)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "30"), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "100"), lines[2])

	out, err = run(t, "sweep", "--threads=2", "--format=json", "--sweep-min=30", "--sweep-max=30", "--sweep-step=1", corpus)
	require.NoError(t, err)
	var results []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.EqualValues(t, 30, results[0]["vocab_size"])
}

func TestSweep_EmptyRange(t *testing.T) {
	corpus := filepath.Join(t.TempDir(), "corpus.txt")
	require.NoError(t, os.WriteFile(corpus, []byte("the cat\n"), 0o600))

	_, err := run(t, "sweep", "--sweep-min=50", "--sweep-max=10", corpus)
	assert.ErrorContains(t, err, "empty sweep range")
}
