// Package gemini implements the provider contract on top of the Google GenAI
// API: embeddings for similarity scoring and JSON-schema generation for the
// resume sub-analyses.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/cvmatch/cv-match/internal/logger"
	"github.com/cvmatch/cv-match/internal/provider"
)

const (
	defaultEmbeddingModel  = "gemini-embedding-001"
	defaultGenerationModel = "gemini-2.5-flash"
	defaultDimensions      = 768
	defaultTimeout         = 30 * time.Second
	defaultBatchSize       = 5
	defaultBatchDelay      = 500 * time.Millisecond
	defaultTemperature     = float32(0.2)
	defaultMaxLogLength    = 200
)

// Config carries the tunables for the Gemini-backed provider client.
// Zero values fall back to the documented defaults.
type Config struct {
	EmbeddingModel  string
	GenerationModel string
	Dimensions      int
	Timeout         time.Duration
	MaxRetries      int
	BackoffStep     time.Duration
	BatchSize       int
	BatchDelay      time.Duration
	MaxLogLength    int
}

// Client wraps the GenAI client behind the provider.Embedder and
// provider.Generator contracts. It is stateless apart from the underlying
// HTTP client and safe for concurrent use.
type Client struct {
	client *genai.Client
	cfg    Config
	policy provider.RetryPolicy
	logger *zap.Logger

	// Seams for the batch loop. embedOne points at Embed and wait at
	// provider.WaitFor; tests swap them to observe chunking and delays.
	embedOne func(ctx context.Context, text string) ([]float64, error)
	wait     func(ctx context.Context, d time.Duration) error
}

// NewClient creates a provider client for the Gemini API backend.
func NewClient(ctx context.Context, apiKey string, cfg Config, log *zap.Logger) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	cfg = withDefaults(cfg)

	policy := provider.DefaultRetryPolicy(retryable)
	if cfg.MaxRetries > 0 {
		policy.MaxAttempts = cfg.MaxRetries
	}
	if cfg.BackoffStep > 0 {
		policy.BackoffStep = cfg.BackoffStep
	}

	log = logger.WithProviderFields(log, "gemini", cfg.GenerationModel)

	c := &Client{client: client, cfg: cfg, policy: policy, logger: log}
	c.embedOne = c.Embed
	c.wait = provider.WaitFor

	return c, nil
}

func withDefaults(cfg Config) Config {
	if strings.TrimSpace(cfg.EmbeddingModel) == "" {
		cfg.EmbeddingModel = defaultEmbeddingModel
	}
	if strings.TrimSpace(cfg.GenerationModel) == "" {
		cfg.GenerationModel = defaultGenerationModel
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = defaultDimensions
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.BatchDelay <= 0 {
		cfg.BatchDelay = defaultBatchDelay
	}
	if cfg.MaxLogLength <= 0 {
		cfg.MaxLogLength = defaultMaxLogLength
	}
	return cfg
}

// Dimensions returns the vector size the client is configured for.
func (c *Client) Dimensions() int {
	return c.cfg.Dimensions
}

// EmbeddingModel names the configured embedding model.
func (c *Client) EmbeddingModel() string {
	return c.cfg.EmbeddingModel
}

// Embed returns the embedding vector for a single text. The input is trimmed,
// truncated and stripped of unsafe characters before it leaves the process;
// the call is retried per the client's policy with a per-attempt timeout.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	sanitized, err := provider.SanitizeInput(text)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}

	preview := logger.TruncateForLog(sanitized, c.cfg.MaxLogLength)

	var vector []float64
	err = c.policy.Do(ctx, fmt.Sprintf("embed %q", preview), func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()

		contents := []*genai.Content{genai.NewContentFromText(sanitized, genai.RoleUser)}
		dims := int32(c.cfg.Dimensions)
		resp, err := c.client.Models.EmbedContent(callCtx, c.cfg.EmbeddingModel, contents, &genai.EmbedContentConfig{
			OutputDimensionality: &dims,
		})
		if err != nil {
			return err
		}

		vector, err = validateEmbedding(resp, c.cfg.Dimensions)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("embedding generated",
		zap.Int("dimensions", len(vector)),
		zap.String("input_preview", preview),
	)

	return vector, nil
}

// EmbedBatch embeds the texts in fixed-size chunks with an inter-chunk delay
// to respect upstream rate limits. Items within a chunk are embedded
// concurrently; a failure anywhere fails the whole batch.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("embed batch: no texts provided: %w", provider.ErrInvalidInput)
	}

	vectors := make([][]float64, len(texts))

	for start := 0; start < len(texts); start += c.cfg.BatchSize {
		end := start + c.cfg.BatchSize
		if end > len(texts) {
			end = len(texts)
		}

		var wg sync.WaitGroup
		chunkErrs := make([]error, end-start)

		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				vector, err := c.embedOne(ctx, texts[i])
				if err != nil {
					chunkErrs[i-start] = fmt.Errorf("item %d: %w", i, err)
					return
				}
				vectors[i] = vector
			}(i)
		}
		wg.Wait()

		for _, err := range chunkErrs {
			if err != nil {
				return nil, fmt.Errorf("embed batch: %w", err)
			}
		}

		c.logger.Debug("embedding batch chunk completed",
			zap.Int("chunk_start", start),
			zap.Int("chunk_end", end),
			zap.Int("total", len(texts)),
		)

		if end < len(texts) {
			if err := c.wait(ctx, c.cfg.BatchDelay); err != nil {
				return nil, fmt.Errorf("embed batch: %w", err)
			}
		}
	}

	return vectors, nil
}

// GenerateJSON sends the prompt to the generation model requesting a JSON
// response and unmarshals the reply into out. A reply that does not parse is
// reported as provider.ErrMalformedResponse and is not retried.
func (c *Client) GenerateJSON(ctx context.Context, prompt string, out any) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return fmt.Errorf("generate: prompt must not be empty: %w", provider.ErrInvalidInput)
	}

	preview := logger.TruncateForLog(prompt, c.cfg.MaxLogLength)
	c.logger.Debug("generate content request", zap.String("prompt_preview", preview))

	temperature := defaultTemperature
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
	}

	return c.policy.Do(ctx, fmt.Sprintf("generate %q", preview), func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()

		resp, err := c.client.Models.GenerateContent(callCtx, c.cfg.GenerationModel, genai.Text(prompt), config)
		if err != nil {
			return err
		}

		raw := collectText(resp)
		if raw == "" {
			return fmt.Errorf("empty response: %w", provider.ErrMalformedResponse)
		}

		c.logger.Debug("generate content response",
			zap.String("response_preview", logger.TruncateForLog(raw, c.cfg.MaxLogLength)),
		)

		if err := json.Unmarshal([]byte(stripCodeFence(raw)), out); err != nil {
			return fmt.Errorf("parse response: %v: %w", err, provider.ErrMalformedResponse)
		}

		return nil
	})
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}

// stripCodeFence removes a surrounding markdown code block, which some models
// still emit around JSON despite the response MIME type.
func stripCodeFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(strings.Trim(raw, "`"))
}

func validateEmbedding(resp *genai.EmbedContentResponse, dimensions int) ([]float64, error) {
	if resp == nil || len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned: %w", provider.ErrMalformedResponse)
	}

	values := resp.Embeddings[0].Values
	if len(values) == 0 {
		return nil, fmt.Errorf("embedding vector is empty: %w", provider.ErrMalformedResponse)
	}

	if dimensions > 0 && len(values) != dimensions {
		return nil, fmt.Errorf("embedding has %d dimensions, expected %d: %w", len(values), dimensions, provider.ErrMalformedResponse)
	}

	vector := make([]float64, len(values))
	for i, v := range values {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("invalid embedding value at index %d: %w", i, provider.ErrMalformedResponse)
		}
		vector[i] = f
	}

	return vector, nil
}

// retryableMessages is the fixed substring allow-list for transient failures
// that do not arrive as typed API errors.
var retryableMessages = []string{
	"rate limit",
	"unavailable",
	"overloaded",
	"timeout",
	"connection refused",
	"connection reset",
	"temporary failure",
	"eof",
}

// retryable classifies an error as worth re-attempting. Classification is by
// API error code and message substring allow-list, not by error type, so it
// stays portable across transports.
func retryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) {
		return false
	}

	// A per-attempt timeout is a transient condition.
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	if errors.Is(err, provider.ErrMalformedResponse) || errors.Is(err, provider.ErrInvalidInput) {
		return false
	}

	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429, 500, 502, 503, 504:
			return true
		default:
			return false
		}
	}

	msg := strings.ToLower(err.Error())
	for _, fragment := range retryableMessages {
		if strings.Contains(msg, fragment) {
			return true
		}
	}

	return false
}
