package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusWithIcon(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	w.Status("→", "indexing corpus")
	assert.Equal(t, "→ indexing corpus\n", buf.String())
}

func TestStatusWithoutIconIndents(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	w.Status("", "details")
	assert.Equal(t, "   details\n", buf.String())
}

func TestSuccessWarningError(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	w.Successf("indexed %d documents", 3)
	w.Warning("rerank service unreachable")
	w.Errorf("corpus %s not found", "docs.json")

	out := buf.String()
	assert.Contains(t, out, "indexed 3 documents")
	assert.Contains(t, out, "rerank service unreachable")
	assert.Contains(t, out, "corpus docs.json not found")
}

func TestFieldAlignment(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	w.Field("documents", 12)
	w.Field("chunks", 48)

	assert.Contains(t, buf.String(), "documents:")
	assert.Contains(t, buf.String(), "48")
}
