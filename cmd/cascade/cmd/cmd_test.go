package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cascade-search/cascade/internal/search"
	"github.com/cascade-search/cascade/pkg/version"
)

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() { cfgPath, debugMode = "", false })

	var buf bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// writeTestEnv creates a corpus and a config using the memory cache
// and no external services.
func writeTestEnv(t *testing.T) (corpusPath, configPath string) {
	t.Helper()
	dir := t.TempDir()

	corpusPath = filepath.Join(dir, "corpus.json")
	corpus := `[
		{"file_name": "ba_trieu.txt", "content": "Bà Triệu khởi nghĩa chống quân Ngô năm 248"},
		{"file_name": "hai_ba_trung.txt", "content": "Hai Bà Trưng khởi nghĩa chống quân Hán"},
		{"file_name": "thang_long.txt", "content": "Thăng Long là kinh đô cũ"}
	]`
	require.NoError(t, os.WriteFile(corpusPath, []byte(corpus), 0o644))

	configPath = filepath.Join(dir, "cascade.yaml")
	cfg := `embeddings:
  provider: none
rerank:
  enabled: false
cache:
  backend: memory
  dir: ` + filepath.Join(dir, "cache") + "\n"
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0o644))
	return corpusPath, configPath
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, version.Version+"\n", out)
}

func TestVersionCommandJSON(t *testing.T) {
	out, err := execute(t, "version", "--json")
	require.NoError(t, err)

	var info version.BuildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, version.Version, info.Version)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cascade.yaml")

	out, err := execute(t, "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote")
	assert.FileExists(t, path)

	// A second init without --force leaves the file alone.
	out, err = execute(t, "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")
}

func TestIndexCommand(t *testing.T) {
	corpusPath, configPath := writeTestEnv(t)

	out, err := execute(t, "index", corpusPath, "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "indexed 3 documents")
}

func TestIndexCommandMissingCorpus(t *testing.T) {
	_, configPath := writeTestEnv(t)

	_, err := execute(t, "index", "no-such-corpus.json", "--config", configPath)
	require.Error(t, err)
}

func TestSearchCommandJSON(t *testing.T) {
	corpusPath, configPath := writeTestEnv(t)

	out, err := execute(t, "search", "khởi nghĩa",
		"--corpus", corpusPath, "--config", configPath, "--format", "json")
	require.NoError(t, err)

	var resp search.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, search.StateDone, resp.State)
	require.Len(t, resp.Results, 2)
	for _, r := range resp.Results {
		assert.NotEqual(t, "thang long", r.DocTitle)
	}
}

func TestSearchCommandChunkMode(t *testing.T) {
	corpusPath, configPath := writeTestEnv(t)

	out, err := execute(t, "search", "quân",
		"--corpus", corpusPath, "--config", configPath,
		"--mode", "chunk", "--format", "json", "--explain")
	require.NoError(t, err)

	var resp search.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotEmpty(t, resp.Results)
	assert.NotNil(t, resp.Results[0].Breakdown)
	assert.NotEmpty(t, resp.Stages)
}

func TestSearchCommandNoResults(t *testing.T) {
	corpusPath, configPath := writeTestEnv(t)

	out, err := execute(t, "search", "không tồn tại đâu",
		"--corpus", corpusPath, "--config", configPath, "--format", "json")
	require.NoError(t, err)

	var resp search.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Empty(t, resp.Results)
	assert.Equal(t, search.StateDone, resp.State)
}

func TestStatsCommandJSON(t *testing.T) {
	corpusPath, configPath := writeTestEnv(t)

	out, err := execute(t, "stats", corpusPath, "--config", configPath, "--json")
	require.NoError(t, err)

	var stats struct {
		Documents int `json:"documents"`
		Chunks    int `json:"chunks"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 3, stats.Documents)
	assert.GreaterOrEqual(t, stats.Chunks, 3)
}
