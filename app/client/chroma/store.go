package chroma

import (
	"context"
	"errors"
	"fmt"
	"math"

	chromago "github.com/amikos-tech/chroma-go"
	chromatypes "github.com/amikos-tech/chroma-go/types"
	"github.com/google/uuid"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
)

var ErrUnexpectedResponse = errors.New("unexpected chroma response")

var includes = []chromatypes.QueryEnum{
	chromatypes.IDocuments,
	chromatypes.IMetadatas,
	chromatypes.IDistances,
}

var _ vectorstores.VectorStore = (*Store)(nil)

// Store queries the collection as it is. Documents carry whatever metadata
// they were ingested with, no namespace key is added or filtered on.
type Store struct {
	collection *chromago.Collection
}

func (s *Store) AddDocuments(ctx context.Context, docs []schema.Document, _ ...vectorstores.Option) ([]string, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	ids := make([]string, len(docs))
	texts := make([]string, len(docs))
	metadatas := make([]map[string]any, len(docs))

	for i, doc := range docs {
		ids[i] = uuid.NewString()
		texts[i] = doc.PageContent
		metadatas[i] = doc.Metadata
		if metadatas[i] == nil {
			metadatas[i] = map[string]any{}
		}
	}

	if _, err := s.collection.Add(ctx, nil, metadatas, texts, ids); err != nil {
		return nil, fmt.Errorf("failed to add documents: %w", err)
	}

	return ids, nil
}

// SimilaritySearch returns the nearest documents, closest first. Filters are
// passed through only when given as a chroma where map.
func (s *Store) SimilaritySearch(ctx context.Context, query string, numDocuments int, options ...vectorstores.Option) ([]schema.Document, error) {
	opts := vectorstores.Options{}
	for _, opt := range options {
		opt(&opts)
	}

	if numDocuments < 1 {
		return nil, nil
	}
	if numDocuments > math.MaxInt32 {
		numDocuments = math.MaxInt32
	}

	where, _ := opts.Filters.(map[string]any)

	result, err := s.collection.Query(ctx, []string{query}, int32(numDocuments), where, nil, includes)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}

	if len(result.Documents) != len(result.Metadatas) || len(result.Documents) != len(result.Distances) {
		return nil, fmt.Errorf("%w: documents %d, metadatas %d, distances %d",
			ErrUnexpectedResponse, len(result.Documents), len(result.Metadatas), len(result.Distances))
	}

	var docs []schema.Document

	for i := range result.Documents {
		if len(result.Metadatas[i]) != len(result.Documents[i]) || len(result.Distances[i]) != len(result.Documents[i]) {
			return nil, fmt.Errorf("%w: mismatched row %d", ErrUnexpectedResponse, i)
		}

		for j, text := range result.Documents[i] {
			score := 1 - result.Distances[i][j]
			if opts.ScoreThreshold > 0 && score < opts.ScoreThreshold {
				continue
			}

			docs = append(docs, schema.Document{
				PageContent: text,
				Metadata:    result.Metadatas[i][j],
				Score:       score,
			})
		}
	}

	return docs, nil
}
