// Package llm produces short chat replies through a hosted completion API
// and keeps those long calls off the Discord gateway goroutine.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const (
	replyTemperature = 0.95
	replyMaxTokens   = 70

	// FallbackReply is used when the model returns nothing usable
	FallbackReply = "Okay... and now what?"

	// ErrorReply is sent when generation fails altogether
	ErrorReply = "My sarcasm server just tipped over. Try again."
)

// Roast modes
const (
	ModeMild  = "mild"
	ModeSpicy = "spicy"
)

// Prompt is one incoming chat message
type Prompt struct {
	UserName string
	Content  string
}

// Generator turns a prompt into reply text
type Generator interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIGenerator generates replies with the chat completions API
type OpenAIGenerator struct {
	client chatCompleter
	model  string
	mode   string
}

// NewOpenAIGenerator creates a generator for the given model and roast mode
func NewOpenAIGenerator(apiKey, model, mode string) *OpenAIGenerator {
	return newOpenAIGenerator(openai.NewClient(apiKey), model, mode)
}

func newOpenAIGenerator(client chatCompleter, model, mode string) *OpenAIGenerator {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIGenerator{client: client, model: model, mode: mode}
}

// Generate asks the model for a reply and sanitizes it
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt Prompt) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    BuildMessages(g.mode, prompt),
		Temperature: replyTemperature,
		MaxTokens:   replyMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	var content string
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}

	reply := Sanitize(content)
	if reply == "" {
		return FallbackReply, nil
	}
	return reply, nil
}

// BuildMessages assembles the system and user messages for one prompt
func BuildMessages(mode string, prompt Prompt) []openai.ChatCompletionMessage {
	system := "You are a Discord bot that answers every message cheekily.\n" +
		StyleRules(mode) +
		"\nReply with the text only. At most one emoji."
	user := fmt.Sprintf("User: %s\nMessage: %s\nGive a fitting cheeky reply.", prompt.UserName, prompt.Content)

	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
		{Role: openai.ChatMessageRoleUser, Content: user},
	}
}

// StyleRules returns the tone guidance for a roast mode. Unknown modes are mild.
func StyleRules(mode string) string {
	if strings.EqualFold(mode, ModeSpicy) {
		return "Cheeky, sarcastic, funny. One or two sentences. " +
			"No slurs, no threats, no attacks on protected characteristics, " +
			"no sexual content, no self-harm."
	}
	return "Teasing and playful, PG-13. One or two sentences. " +
		"No harsh insults, no slurs, no threats, " +
		"no attacks on protected characteristics, no sexual content, no self-harm."
}
