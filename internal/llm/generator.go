package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/arogyamitra/health-chatbot/internal/observability/metrics"
	"github.com/arogyamitra/health-chatbot/pkg/logging"
)

var generatorTracer = otel.Tracer("healthchatbot.internal.llm")

const defaultMaxTokens = 1024

// Generator renders a prompt for a task and runs it through the configured
// client. It is the single entry point the pipelines use for text generation.
type Generator struct {
	client      Client
	model       string
	maxTokens   int32
	temperature float32
	timeout     time.Duration
	logger      *logging.Logger
	metrics     *metrics.ChatMetrics
}

// NewGenerator builds a Generator. A zero timeout disables the per-call
// deadline.
func NewGenerator(client Client, model string, timeout time.Duration, logger *logging.Logger, m *metrics.ChatMetrics) *Generator {
	if client == nil {
		panic("llm: client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Generator{
		client:      client,
		model:       model,
		maxTokens:   defaultMaxTokens,
		temperature: 0.7,
		timeout:     timeout,
		logger:      logger,
		metrics:     m,
	}
}

// Generate renders the prompt for kind and returns the model's reply.
// Failures are wrapped so callers can decide between a static fallback and
// surfacing the error.
func (g *Generator) Generate(ctx context.Context, kind PromptKind, vars map[string]string) (string, error) {
	ctx, span := generatorTracer.Start(ctx, "llm.generate")
	defer span.End()
	span.SetAttributes(attribute.String("llm.prompt_kind", string(kind)))

	prompt, err := RenderPrompt(kind, vars)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.client.Complete(ctx, Request{
		Model:       g.model,
		Messages:    []Message{{Role: RoleUser, Content: prompt}},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	g.metrics.ObserveLLMLatency(string(kind), time.Since(start))
	if err != nil {
		span.RecordError(err)
		g.logger.Error("llm generation failed", "prompt_kind", string(kind), "error", err.Error())
		return "", fmt.Errorf("llm: generate %s failed: %w", kind, err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		err := fmt.Errorf("llm: generate %s returned empty text", kind)
		span.RecordError(err)
		return "", err
	}
	return text, nil
}
