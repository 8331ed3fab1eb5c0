package config

import (
	"fmt"

	cascerr "github.com/cascade-search/cascade/internal/errors"
)

// Preset applies a named use-case preset on top of the current config.
//
//	fast     — lexical-heavy, small candidate sets, no rerank
//	balanced — the defaults
//	accurate — wide candidate sets, rerank enabled
func (c *Config) Preset(name string) error {
	switch name {
	case "fast":
		c.Retrieval.Stage1TopK = 50
		c.Retrieval.Stage2TopK = 20
		c.Retrieval.Stage3TopK = 10
		c.Retrieval.Weights = StageWeights{Lexical: 0.6, Dense: 0.4, Rerank: 0}
		c.Rerank.Enabled = false
	case "balanced":
		d := NewConfig()
		c.Retrieval.Stage1TopK = d.Retrieval.Stage1TopK
		c.Retrieval.Stage2TopK = d.Retrieval.Stage2TopK
		c.Retrieval.Stage3TopK = d.Retrieval.Stage3TopK
		c.Retrieval.Weights = d.Retrieval.Weights
	case "accurate":
		c.Retrieval.Stage1TopK = 200
		c.Retrieval.Stage2TopK = 100
		c.Retrieval.Stage3TopK = 30
		c.Retrieval.Weights = StageWeights{Lexical: 0.2, Dense: 0.4, Rerank: 0.4}
		c.Rerank.Enabled = true
	default:
		return cascerr.ConfigError(fmt.Sprintf("unknown preset %q", name), nil)
	}
	return nil
}
