package chroma

import (
	"context"

	chromatypes "github.com/amikos-tech/chroma-go/types"
	"github.com/tmc/langchaingo/embeddings"
)

var _ chromatypes.EmbeddingFunction = embeddingFunction{}

type embeddingFunction struct {
	embedder embeddings.Embedder
}

func (e embeddingFunction) EmbedDocuments(ctx context.Context, texts []string) ([]*chromatypes.Embedding, error) {
	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, err
	}

	return chromatypes.NewEmbeddingsFromFloat32(vectors), nil
}

func (e embeddingFunction) EmbedQuery(ctx context.Context, text string) (*chromatypes.Embedding, error) {
	vector, err := e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}

	return chromatypes.NewEmbeddingFromFloat32(vector), nil
}

func (e embeddingFunction) EmbedRecords(ctx context.Context, records []*chromatypes.Record, force bool) error {
	return chromatypes.EmbedRecordsDefaultImpl(e, ctx, records, force)
}
