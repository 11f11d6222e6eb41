package chroma

import (
	"context"
	"strings"

	"recipechat/app/config"

	chromago "github.com/amikos-tech/chroma-go"
	"github.com/samber/oops"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/vectorstores"
)

// Connector opens the recipe collection. It is called again after a failed
// attempt so that a chroma server started after the app is still picked up.
// A missing collection is an error, it is never created here.
type Connector struct {
	cfg      config.Chroma
	embedder embeddings.Embedder
}

func NewConnector(cfg config.Chroma, client embeddings.EmbedderClient) (*Connector, error) {
	embedder, err := embeddings.NewEmbedder(client)
	if err != nil {
		return nil, oops.In("chroma").Wrapf(err, "failed to create embedder")
	}

	return &Connector{
		cfg:      cfg,
		embedder: embedder,
	}, nil
}

func (c *Connector) Connect(ctx context.Context) (vectorstores.VectorStore, error) {
	errBuilder := oops.In("chroma").
		With("url", c.cfg.URL).
		With("collection", c.cfg.Collection)

	client, err := chromago.NewClient(strings.TrimSuffix(c.cfg.URL, "/"))
	if err != nil {
		return nil, errBuilder.Wrapf(err, "failed to create client")
	}

	collection, err := client.GetCollection(ctx, c.cfg.Collection, embeddingFunction{embedder: c.embedder})
	if err != nil {
		return nil, errBuilder.Wrapf(err, "failed to open collection")
	}

	return &Store{collection: collection}, nil
}
