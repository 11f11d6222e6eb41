package dialogue

import (
	"recipechat/app/client/chroma"
	"recipechat/app/client/llm"
	"recipechat/app/config"
	"recipechat/app/model"
	"recipechat/app/service/store"

	"github.com/samber/do"
	"github.com/samber/oops"
)

// Service owns the model clients and the knowledge base connection shared by
// every session.
type Service struct {
	cfg *config.Config

	classifier Classifier
	retriever  Retriever
	generator  Generator
	sink       TurnSink
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	classifierModel, err := llm.New(cfg.OpenAI.Classifier)
	if err != nil {
		return nil, oops.In("dialogue").Wrapf(err, "failed to create classifier model")
	}

	replyModel, err := llm.New(cfg.OpenAI.Reply)
	if err != nil {
		return nil, oops.In("dialogue").Wrapf(err, "failed to create reply model")
	}

	embedder, err := llm.NewEmbedder(cfg.OpenAI.Embedding)
	if err != nil {
		return nil, oops.In("dialogue").Wrapf(err, "failed to create embedding model")
	}

	connector, err := chroma.NewConnector(cfg.Chroma, embedder)
	if err != nil {
		return nil, oops.In("dialogue").Wrapf(err, "failed to create knowledge base connector")
	}

	handler := llm.LogCallbackHandler{Model: cfg.OpenAI.Embedding.Model}

	return &Service{
		cfg:        cfg,
		classifier: NewLLMClassifier(classifierModel),
		retriever:  NewVectorRetriever(connector, cfg.Dialogue.MaxCandidates, handler),
		generator:  NewLLMGenerator(replyModel),
		sink:       do.MustInvoke[*store.Service](di),
	}, nil
}

func (s *Service) Retriever() Retriever {
	return s.retriever
}

func (s *Service) NewSession(identity string, profile model.UserProfile, mode model.Mode) *Session {
	return NewSession(SessionParams{
		Identity: identity,
		Profile:  profile,
		Mode:     mode,
		Options: Options{
			MemoryWindow:      s.cfg.Dialogue.MemoryWindow,
			ClassifierContext: *s.cfg.Dialogue.ClassifierContext,
			MaxCandidates:     s.cfg.Dialogue.MaxCandidates,
			ResetCommand:      s.cfg.Dialogue.ResetCommand,
		},
		Classifier: s.classifier,
		Retriever:  s.retriever,
		Generator:  s.generator,
		Sink:       s.sink,
	})
}
