package whisper

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"recipechat/app/config"

	"github.com/samber/do"
	"github.com/samber/oops"
	"github.com/sashabaranov/go-openai"
)

const requestTimeout = 2 * time.Minute

// Client transcribes whole audio files through an OpenAI compatible
// /audio/transcriptions endpoint.
type Client struct {
	cfg    config.Transcription
	client *openai.Client
}

func New(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewClient(cfg.OpenAI.Transcription), nil
}

func NewClient(cfg config.Transcription) *Client {
	if cfg.Model == "" {
		return &Client{cfg: cfg}
	}

	clientConfig := openai.DefaultConfig(cfg.Token)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	clientConfig.HTTPClient = &http.Client{
		Timeout: requestTimeout,
	}

	return &Client{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

func (c *Client) Enabled() bool {
	return c.client != nil
}

// Transcribe sends the file as is, the endpoint detects the container from
// the file name.
func (c *Client) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	if !c.Enabled() {
		return "", oops.In("whisper").Errorf("transcription model is not configured")
	}

	if filename == "" {
		filename = "audio.webm"
	}

	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.cfg.Model,
		FilePath: filename,
		Reader:   audio,
		Language: c.cfg.Language,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", oops.In("whisper").
			With("model", c.cfg.Model).
			With("language", c.cfg.Language).
			Wrapf(err, "failed to transcribe audio")
	}

	return strings.TrimSpace(resp.Text), nil
}
