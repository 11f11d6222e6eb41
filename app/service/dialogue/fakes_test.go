package dialogue

import (
	"context"
	"errors"
	"sync"

	"recipechat/app/model"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
)

type fakeModel struct {
	reply string
	err   error

	messages []llms.MessageContent
	options  llms.CallOptions
}

func (f *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	f.options = llms.CallOptions{}
	for _, opt := range options {
		opt(&f.options)
	}

	if f.err != nil {
		return nil, f.err
	}

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{Content: f.reply},
		},
	}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func messageText(m llms.MessageContent) string {
	if len(m.Parts) == 0 {
		return ""
	}
	text, _ := m.Parts[0].(llms.TextContent)
	return text.Text
}

type fakeStore struct {
	docs []schema.Document
	err  error

	queries []string
	k       int
}

func (f *fakeStore) AddDocuments(context.Context, []schema.Document, ...vectorstores.Option) ([]string, error) {
	return nil, errors.New("read only")
}

func (f *fakeStore) SimilaritySearch(_ context.Context, query string, numDocuments int, _ ...vectorstores.Option) ([]schema.Document, error) {
	f.queries = append(f.queries, query)
	f.k = numDocuments

	if f.err != nil {
		return nil, f.err
	}

	return f.docs, nil
}

type fakeConnector struct {
	store    vectorstores.VectorStore
	failures int
	calls    int
}

func (f *fakeConnector) Connect(context.Context) (vectorstores.VectorStore, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("connection refused")
	}
	return f.store, nil
}

// scriptedClassifier returns a fixed verdict and records what it was given.
type scriptedClassifier struct {
	category Category
	err      error

	utterances []string
	contexts   []string
}

func (c *scriptedClassifier) Classify(_ context.Context, utterance, recentContext string) (Category, error) {
	c.utterances = append(c.utterances, utterance)
	c.contexts = append(c.contexts, recentContext)
	return c.category, c.err
}

type stubRetriever struct {
	recipes []model.Recipe
	queries []string
}

func (r *stubRetriever) Retrieve(_ context.Context, query string) []model.Recipe {
	r.queries = append(r.queries, query)
	return r.recipes
}

type generateCall struct {
	persona   string
	history   []model.Turn
	humanTurn string
}

type stubGenerator struct {
	reply string
	err   error

	calls []generateCall
}

func (g *stubGenerator) Generate(_ context.Context, persona string, history []model.Turn, humanTurn string) (string, error) {
	g.calls = append(g.calls, generateCall{
		persona:   persona,
		history:   history,
		humanTurn: humanTurn,
	})

	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func (g *stubGenerator) last() generateCall {
	return g.calls[len(g.calls)-1]
}

type memorySink struct {
	mu        sync.Mutex
	persisted chan []model.Turn
}

func newMemorySink() *memorySink {
	return &memorySink{
		persisted: make(chan []model.Turn, 8),
	}
}

func (m *memorySink) PersistTurns(_ context.Context, _ string, turns []model.Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.persisted <- turns
	return nil
}
