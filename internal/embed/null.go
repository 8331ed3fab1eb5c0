package embed

import (
	"context"
	"fmt"
)

// NullEmbedder is the disabled-provider variant. It reports itself
// unavailable, which makes the dense stage a transparent pass-through.
type NullEmbedder struct{}

var _ Embedder = (*NullEmbedder)(nil)

// NewNullEmbedder creates the null embedder.
func NewNullEmbedder() *NullEmbedder {
	return &NullEmbedder{}
}

func (e *NullEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return nil, fmt.Errorf("embedding disabled")
}

func (e *NullEmbedder) EmbedBatch(_ context.Context, _ []string) ([][]float32, error) {
	return nil, fmt.Errorf("embedding disabled")
}

func (e *NullEmbedder) Dimensions() int { return 0 }

func (e *NullEmbedder) ModelName() string { return "none" }

func (e *NullEmbedder) Available(_ context.Context) bool { return false }

func (e *NullEmbedder) Close() error { return nil }
