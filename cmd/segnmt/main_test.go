package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/segnmt/internal/tokenizer"
)

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	code := run([]string{"version"}, nil, &out, &out)
	assert.Equal(t, 0, code)
	assert.Equal(t, "segnmt "+version+"\n", out.String())
}

func TestRun_Usage(t *testing.T) {
	var out, errOut bytes.Buffer
	assert.Equal(t, 0, run(nil, nil, &out, &errOut))
	assert.Contains(t, out.String(), "translate")

	assert.Equal(t, 2, run([]string{"serve"}, nil, &out, &errOut))
	assert.Contains(t, errOut.String(), `unknown command "serve"`)
}

// writeConfig writes a small model configuration with a vocabulary.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	vocabPath := filepath.Join(dir, "vocab.json")
	vocab := tokenizer.NewVocab([]string{"Hello", "world", "!", "안녕", "세계"})
	require.NoError(t, vocab.Save(vocabPath))

	cfg := fmt.Sprintf(`model:
  embed_dim: 4
  fusion_hidden: 3
  hidden_size: 5
  layers: 1
decode:
  max_steps: 4
service:
  vocab: %q
  parallel:
    enabled: false
`, vocabPath)
	path := filepath.Join(dir, "segnmt.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path
}

func TestRun_TranslateArgs(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run([]string{"translate", "-config", writeConfig(t), "-beam", "1", "Hello world!", "안녕 세계"}, nil, &out, &errOut)

	require.Equal(t, 0, code, errOut.String())
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	assert.Len(t, lines, 2)
}

func TestRun_TranslateStdin(t *testing.T) {
	var out, errOut bytes.Buffer
	stdin := strings.NewReader("Hello world!\n\n안녕\n")
	code := run([]string{"translate", "-config", writeConfig(t), "-v"}, stdin, &out, &errOut)

	require.Equal(t, 0, code, errOut.String())
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, errOut.String(), "level=DEBUG")
}

func TestRun_TranslateErrors(t *testing.T) {
	var out, errOut bytes.Buffer

	code := run([]string{"translate", "Hello"}, nil, &out, &errOut)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "no vocabulary configured")

	errOut.Reset()
	code = run([]string{"translate", "-config", writeConfig(t), "-from", "fr", "Hello"}, nil, &out, &errOut)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "unknown language")

	assert.Equal(t, 0, run([]string{"translate", "-h"}, nil, &out, &errOut))
}
