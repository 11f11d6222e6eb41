package dialogue

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"recipechat/app/model"

	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/vectorstores"
)

const (
	untitledRecipe = "وصفة بدون عنوان"
	titleMetadata  = "title"
)

// Retriever never fails: an unreachable backend yields no candidates.
type Retriever interface {
	Retrieve(ctx context.Context, query string) []model.Recipe
}

// StoreConnector opens the vector store backing the knowledge base.
type StoreConnector interface {
	Connect(ctx context.Context) (vectorstores.VectorStore, error)
}

var _ Retriever = (*VectorRetriever)(nil)

type VectorRetriever struct {
	connector StoreConnector
	topK      int
	handler   callbacks.Handler

	mu    sync.Mutex
	store vectorstores.VectorStore
}

func NewVectorRetriever(connector StoreConnector, topK int, handler callbacks.Handler) *VectorRetriever {
	return &VectorRetriever{
		connector: connector,
		topK:      topK,
		handler:   handler,
	}
}

func (r *VectorRetriever) Retrieve(ctx context.Context, query string) []model.Recipe {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	store, err := r.getStore(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Knowledge base unavailable", "query", query, "error", err)
		return nil
	}

	if r.handler != nil {
		r.handler.HandleRetrieverStart(ctx, query)
	}

	docs, err := store.SimilaritySearch(ctx, query, r.topK)
	if err != nil {
		slog.WarnContext(ctx, "Similarity search failed", "query", query, "error", err)
		return nil
	}

	if r.handler != nil {
		r.handler.HandleRetrieverEnd(ctx, query, docs)
	}

	if len(docs) > r.topK {
		docs = docs[:r.topK]
	}

	result := make([]model.Recipe, 0, len(docs))
	for _, doc := range docs {
		title, _ := doc.Metadata[titleMetadata].(string)
		if strings.TrimSpace(title) == "" {
			title = untitledRecipe
		}

		result = append(result, model.Recipe{
			Title: title,
			Body:  doc.PageContent,
		})
	}

	return result
}

func (r *VectorRetriever) getStore(ctx context.Context) (vectorstores.VectorStore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.store != nil {
		return r.store, nil
	}

	store, err := r.connector.Connect(ctx)
	if err != nil {
		return nil, err
	}

	r.store = store

	return store, nil
}
