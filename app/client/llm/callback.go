package llm

import (
	"context"
	"log/slog"

	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

var _ callbacks.Handler = LogCallbackHandler{}

// LogCallbackHandler traces model calls. Only the hooks fired by plain
// content generation and retrieval are logged.
type LogCallbackHandler struct {
	callbacks.SimpleHandler

	Model string
}

func (l LogCallbackHandler) HandleLLMGenerateContentStart(ctx context.Context, ms []llms.MessageContent) {
	slog.DebugContext(ctx, "LLM generate content start",
		"model", l.Model,
		"messages", len(ms),
	)
}

func (l LogCallbackHandler) HandleLLMGenerateContentEnd(ctx context.Context, res *llms.ContentResponse) {
	if res == nil || len(res.Choices) == 0 {
		slog.WarnContext(ctx, "LLM generate content returned no choices", "model", l.Model)
		return
	}

	slog.DebugContext(ctx, "LLM generate content end",
		"model", l.Model,
		"stop_reason", res.Choices[0].StopReason,
		"length", len(res.Choices[0].Content),
	)
}

func (l LogCallbackHandler) HandleLLMError(ctx context.Context, err error) {
	slog.ErrorContext(ctx, "LLM error", "model", l.Model, "error", err)
}

func (l LogCallbackHandler) HandleRetrieverStart(ctx context.Context, query string) {
	slog.DebugContext(ctx, "Retriever start", "query", query)
}

func (l LogCallbackHandler) HandleRetrieverEnd(ctx context.Context, query string, documents []schema.Document) {
	slog.DebugContext(ctx, "Retriever end",
		"query", query,
		"document_count", len(documents),
	)
}
