package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cascerr "github.com/cascade-search/cascade/internal/errors"
)

func writeCorpus(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCorpus(t *testing.T) {
	path := writeCorpus(t, `[
		{"file_name": "docs/ba_trieu.txt", "content": "Bà Triệu khởi nghĩa năm 248."},
		{"file_name": "hai-ba-trung.txt", "content": "Hai Bà Trưng."}
	]`)

	docs, err := LoadCorpus(path)

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "docs/ba_trieu.txt", docs[0].ID)
	assert.Equal(t, "ba trieu", docs[0].Title)
	assert.Equal(t, "hai ba trung", docs[1].Title)
	assert.Contains(t, docs[0].Content, "248")
}

func TestLoadCorpusMissingFile(t *testing.T) {
	_, err := LoadCorpus("/nonexistent/corpus.json")

	require.Error(t, err)
	assert.Equal(t, cascerr.ErrCodeCorpusLoad, cascerr.GetCode(err))
}

func TestLoadCorpusMalformedJSON(t *testing.T) {
	path := writeCorpus(t, `{"file_name": "not an array"}`)

	_, err := LoadCorpus(path)

	require.Error(t, err)
	assert.Equal(t, cascerr.ErrCodeCorpusLoad, cascerr.GetCode(err))
}

func TestLoadCorpusRejectsDuplicates(t *testing.T) {
	path := writeCorpus(t, `[
		{"file_name": "a.txt", "content": "one"},
		{"file_name": "a.txt", "content": "two"}
	]`)

	_, err := LoadCorpus(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestLoadCorpusRejectsMissingFileName(t *testing.T) {
	path := writeCorpus(t, `[{"content": "orphan"}]`)

	_, err := LoadCorpus(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "file_name")
}
