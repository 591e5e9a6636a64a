// Package provider defines the contract between the engine and a remote
// embedding/generation model provider, together with the retry policy and
// error taxonomy shared by all provider implementations.
package provider

import "context"

// Embedder turns text into fixed-dimension vectors.
type Embedder interface {
	// Embed returns the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float64, error)
	// EmbedBatch returns one vector per input text, in input order.
	// Partial failure of the batch fails the whole call.
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
	// Dimensions returns the vector size the embedder is configured for.
	Dimensions() int
	// EmbeddingModel names the model producing the vectors, for provenance.
	EmbeddingModel() string
}

// Generator produces structured output from a prompt. Implementations request
// a JSON response from the model and unmarshal it into out; a response that
// does not parse into out is reported as ErrMalformedResponse and must not be
// retried.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string, out any) error
}
