// Package loader reads document corpora from disk.
//
// The corpus format is a JSON array of objects with file_name and
// content fields. Document ids are derived from file names, which must
// be unique within a corpus.
package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cascade-search/cascade/internal/chunk"
	cascerr "github.com/cascade-search/cascade/internal/errors"
)

// corpusEntry is one document record in the corpus file.
type corpusEntry struct {
	FileName string `json:"file_name"`
	Content  string `json:"content"`
}

// LoadCorpus reads documents from a JSON corpus file. Missing or
// malformed files surface as typed corpus-load errors.
func LoadCorpus(path string) ([]*chunk.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cascerr.New(cascerr.ErrCodeCorpusLoad,
			fmt.Sprintf("failed to read corpus file %s", path), err)
	}

	var entries []corpusEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, cascerr.New(cascerr.ErrCodeCorpusLoad,
			fmt.Sprintf("corpus file %s is not a valid JSON document array", path), err)
	}

	docs := make([]*chunk.Document, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		if e.FileName == "" {
			return nil, cascerr.New(cascerr.ErrCodeCorpusLoad,
				fmt.Sprintf("corpus entry %d has no file_name", i), nil)
		}
		if _, dup := seen[e.FileName]; dup {
			return nil, cascerr.New(cascerr.ErrCodeCorpusLoad,
				fmt.Sprintf("duplicate file_name %q in corpus", e.FileName), nil)
		}
		seen[e.FileName] = struct{}{}

		docs = append(docs, &chunk.Document{
			ID:      e.FileName,
			Title:   titleFromFileName(e.FileName),
			Content: e.Content,
		})
	}
	return docs, nil
}

// titleFromFileName turns "docs/ba_trieu.txt" into "ba trieu".
func titleFromFileName(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ReplaceAll(base, "_", " ")
	base = strings.ReplaceAll(base, "-", " ")
	return strings.TrimSpace(base)
}
