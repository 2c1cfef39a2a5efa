package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
)

// Embedder is the single provider contract: one vector per input text, in
// input order. Adapters normalize whatever the provider returns before
// handing vectors back.
type Embedder interface {
	Embed(ctx context.Context, texts []string) (EmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries vectors and token usage through the decorator chain.
type EmbeddingResult struct {
	Vectors      [][]float32
	PromptTokens int
	TotalTokens  int
}

// EmbedOne embeds a single text through a one-element batch.
func EmbedOne(ctx context.Context, e Embedder, text string) ([]float32, error) {
	res, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(res.Vectors) != 1 {
		return nil, fmt.Errorf("%w: expected 1 vector, got %d", ErrEmbeddingProviderError, len(res.Vectors))
	}
	return res.Vectors[0], nil
}

// CheckDim rejects vectors whose length is not dim.
func CheckDim(vec []float32, dim int) error {
	if len(vec) != dim {
		return fmt.Errorf("%w: got %d, want %d", ErrVectorDimMismatch, len(vec), dim)
	}
	return nil
}

// Normalize converts a provider vector to []float32. It accepts native float
// slices and generic decoded JSON sequences ([]any of numbers, json.Number).
func Normalize(v any) ([]float32, error) {
	switch vec := v.(type) {
	case []float32:
		out := make([]float32, len(vec))
		copy(out, vec)
		return out, nil
	case []float64:
		out := make([]float32, len(vec))
		for i, f := range vec {
			out[i] = float32(f)
		}
		return out, nil
	case []json.Number:
		out := make([]float32, len(vec))
		for i, n := range vec {
			f, err := n.Float64()
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = float32(f)
		}
		return out, nil
	case []any:
		out := make([]float32, len(vec))
		for i, el := range vec {
			f, err := toFloat(el)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out[i] = float32(f)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported vector type %T", v)
	}
}

func toFloat(el any) (float64, error) {
	var f float64
	switch n := el.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		var err error
		if f, err = n.Float64(); err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("not a number: %T", el)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number: %v", f)
	}
	return f, nil
}
