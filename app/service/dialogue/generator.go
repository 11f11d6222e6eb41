package dialogue

import (
	"context"
	"fmt"
	"strings"

	"recipechat/app/model"

	"github.com/samber/oops"
	"github.com/tmc/langchaingo/llms"
)

const (
	replyTemperature = 0.7
	replyMaxTokens   = 4096
)

type Generator interface {
	Generate(ctx context.Context, persona string, history []model.Turn, humanTurn string) (string, error)
}

var _ Generator = (*LLMGenerator)(nil)

type LLMGenerator struct {
	model llms.Model
}

func NewLLMGenerator(model llms.Model) *LLMGenerator {
	return &LLMGenerator{
		model: model,
	}
}

func (g *LLMGenerator) Generate(ctx context.Context, persona string, history []model.Turn, humanTurn string) (string, error) {
	messages := make([]llms.MessageContent, 0, len(history)+2)
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, persona))

	for _, turn := range history {
		role := llms.ChatMessageTypeHuman
		if turn.Role == model.RoleAssistant {
			role = llms.ChatMessageTypeAI
		}

		messages = append(messages, llms.TextParts(role, turn.Text))
	}

	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, humanTurn))

	ctx, cancel := context.WithTimeout(ctx, maxReasonDuration)
	defer cancel()

	resp, err := g.model.GenerateContent(ctx, messages,
		llms.WithTemperature(replyTemperature),
		llms.WithMaxTokens(replyMaxTokens),
	)
	if err != nil {
		return "", oops.In("generator").Wrapf(err, "failed to generate content")
	}

	if len(resp.Choices) == 0 {
		return "", oops.In("generator").Errorf("no completion choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Content)
	if text == "" {
		return "", oops.In("generator").Errorf("empty completion")
	}

	return text, nil
}

// humanTurn joins the retrieved material and the question into the single
// message the reply model sees.
func humanTurn(material, question string) string {
	if material == "" {
		return fmt.Sprintf("User Question: %s", question)
	}

	return fmt.Sprintf("Retrieved Data: %s\nUser Question: %s", material, question)
}
