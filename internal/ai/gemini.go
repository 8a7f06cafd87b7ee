package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	genai "github.com/google/generative-ai-go/genai"

	"enterprise-knowledge-platform/internal/config"
	"enterprise-knowledge-platform/internal/logger"
)

// GeminiClient wraps the Google Generative AI SDK behind a circuit breaker
// and a client-side rate limiter. One client is constructed at startup and
// shared by the indexer, the retriever and the synthesizer; it must be
// closed on shutdown.
type GeminiClient struct {
	client          *genai.Client
	breaker         *gobreaker.CircuitBreaker
	rateLimiter     *rate.Limiter
	embeddingsModel string
	generativeModel string
	temperature     float32
}

func NewGeminiClient(ctx context.Context, cfg *config.Config) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GeminiAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	// RPM limit with some buffer
	rateLimiter := rate.NewLimiter(rate.Limit(float64(cfg.GeminiRPM)*0.9/60.0), maxInt(cfg.GeminiRPM/10, 1))

	return &GeminiClient{
		client:          client,
		breaker:         breaker,
		rateLimiter:     rateLimiter,
		embeddingsModel: cfg.EmbeddingsModel,
		generativeModel: cfg.GeminiModel,
		temperature:     float32(cfg.Temperature),
	}, nil
}

// Embed returns the embedding vector for the given text.
func (gc *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	tracer := otel.Tracer("gemini-client")
	ctx, span := tracer.Start(ctx, "gemini.embed_content")
	defer span.End()

	span.SetAttributes(
		attribute.String("gemini.model", gc.embeddingsModel),
		attribute.Int("gemini.input_chars", len(text)),
	)

	if err := gc.rateLimiter.Wait(ctx); err != nil {
		span.SetAttributes(attribute.Bool("gemini.rate_limited", true))
		return nil, err
	}

	result, err := gc.breaker.Execute(func() (interface{}, error) {
		model := gc.client.EmbeddingModel(gc.embeddingsModel)
		resp, err := model.EmbedContent(ctx, genai.Text(text))
		if err != nil {
			return nil, err
		}
		if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
			return nil, fmt.Errorf("no embedding returned")
		}
		return resp.Embedding.Values, nil
	})
	if err != nil {
		span.SetAttributes(attribute.Bool("gemini.error", true))
		return nil, fmt.Errorf("embed content: %w", err)
	}

	return result.([]float32), nil
}

// Generate invokes the generative model once with the given prompt and
// returns the raw text of the first candidate. Failures are not retried.
func (gc *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	tracer := otel.Tracer("gemini-client")
	ctx, span := tracer.Start(ctx, "gemini.generate_content")
	defer span.End()

	span.SetAttributes(
		attribute.String("gemini.model", gc.generativeModel),
		attribute.Int("gemini.prompt_chars", len(prompt)),
	)

	if err := gc.rateLimiter.Wait(ctx); err != nil {
		span.SetAttributes(attribute.Bool("gemini.rate_limited", true))
		return "", err
	}

	result, err := gc.breaker.Execute(func() (interface{}, error) {
		model := gc.client.GenerativeModel(gc.generativeModel)
		model.SetTemperature(gc.temperature)

		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return nil, err
		}

		text := extractResponseText(resp)
		if text == "" {
			return nil, fmt.Errorf("no candidates in response")
		}

		if resp.UsageMetadata != nil {
			span.SetAttributes(attribute.Int("gemini.total_tokens", int(resp.UsageMetadata.TotalTokenCount)))
		}

		return text, nil
	})
	if err != nil {
		span.SetAttributes(attribute.Bool("gemini.error", true))
		return "", fmt.Errorf("generate content: %w", err)
	}

	return result.(string), nil
}

func extractResponseText(resp *genai.GenerateContentResponse) string {
	text := ""
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text += string(t)
			}
		}
		if text != "" {
			break
		}
	}
	return text
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Close releases the underlying SDK client.
func (gc *GeminiClient) Close() error {
	if gc.client != nil {
		return gc.client.Close()
	}
	return nil
}
