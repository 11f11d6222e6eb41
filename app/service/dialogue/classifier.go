package dialogue

import (
	"context"
	"fmt"

	_ "embed"

	"github.com/samber/oops"
	"github.com/tmc/langchaingo/llms"
)

//go:embed classifier_prompt.txt
var classifierPrompt string

const classifierMaxTokens = 64

type Classifier interface {
	Classify(ctx context.Context, utterance, recentContext string) (Category, error)
}

var _ Classifier = (*LLMClassifier)(nil)

type LLMClassifier struct {
	model llms.Model
}

func NewLLMClassifier(model llms.Model) *LLMClassifier {
	return &LLMClassifier{
		model: model,
	}
}

func (c *LLMClassifier) Classify(ctx context.Context, utterance, recentContext string) (Category, error) {
	input := fmt.Sprintf("سياق المحادثة السابق:\n%s\n\nرسالة المستخدم الحالية:\n%s", recentContext, utterance)

	ctx, cancel := context.WithTimeout(ctx, maxReasonDuration)
	defer cancel()

	resp, err := c.model.GenerateContent(ctx,
		[]llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeSystem, classifierPrompt),
			llms.TextParts(llms.ChatMessageTypeHuman, input),
		},
		llms.WithTemperature(0),
		llms.WithMaxTokens(classifierMaxTokens),
	)
	if err != nil {
		return Category{}, oops.In("classifier").Wrapf(err, "failed to generate content")
	}

	if len(resp.Choices) == 0 {
		return Category{}, oops.In("classifier").Errorf("no completion choices")
	}

	return ParseCategory(resp.Choices[0].Content), nil
}
