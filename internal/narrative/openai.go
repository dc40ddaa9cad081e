package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stemsi/clinsim-backend/internal/model"
)

const systemPrompt = "You are a clinical simulation instructor. Write a short, vivid handover " +
	"briefing (at most four sentences) for the case described. Do not reveal the " +
	"expected actions or the diagnosis."

// OpenAINarrator generates briefings with the OpenAI chat completion API.
type OpenAINarrator struct {
	client *openai.Client
	model  string
}

// NewOpenAINarrator creates a narrator for apiKey. baseURL is optional.
func NewOpenAINarrator(apiKey, model, baseURL string) *OpenAINarrator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAINarrator{client: openai.NewClientWithConfig(cfg), model: model}
}

func (n *OpenAINarrator) Briefing(ctx context.Context, s *model.Scenario) (string, error) {
	if n.client == nil {
		return "", errors.New("openai client not initialized")
	}

	resp, err := n.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: n.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: casePrompt(s)},
		},
		Temperature: 0.7,
		MaxTokens:   220,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func casePrompt(s *model.Scenario) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Case: %s (%s, %s).\n", s.Title, s.Category, strings.ToLower(string(s.Difficulty)))
	b.WriteString(StaticBriefing(s))
	if len(s.LearningObjectives) > 0 {
		fmt.Fprintf(&b, "\nLearning objectives: %s.", strings.Join(s.LearningObjectives, "; "))
	}
	return b.String()
}
