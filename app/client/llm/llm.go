package llm

import (
	"net/http"
	"strings"
	"time"

	"recipechat/app/config"

	"github.com/samber/oops"
	"github.com/tmc/langchaingo/llms/openai"
)

const requestTimeout = 60 * time.Second

// New builds an OpenAI compatible model client. Clients are meant to be
// created once per process and shared by every dialogue session.
func New(cfg config.ModelConfig) (*openai.LLM, error) {
	client, err := openai.New(
		openai.WithToken(cfg.Token),
		openai.WithModel(cfg.Model),
		openai.WithBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")),
		openai.WithHTTPClient(&http.Client{
			Timeout: requestTimeout,
		}),
		openai.WithCallback(LogCallbackHandler{Model: cfg.Model}),
	)
	if err != nil {
		return nil, oops.In("llm").With("model", cfg.Model).Wrapf(err, "failed to create client")
	}

	return client, nil
}

// NewEmbedder builds a client used only for embedding queries.
func NewEmbedder(cfg config.ModelConfig) (*openai.LLM, error) {
	client, err := openai.New(
		openai.WithToken(cfg.Token),
		openai.WithEmbeddingModel(cfg.Model),
		openai.WithBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")),
		openai.WithHTTPClient(&http.Client{
			Timeout: requestTimeout,
		}),
	)
	if err != nil {
		return nil, oops.In("llm").With("model", cfg.Model).Wrapf(err, "failed to create embedding client")
	}

	return client, nil
}
