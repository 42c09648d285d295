package gateway

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Compile-time interface check
var _ ChatResponder = (*OpenAI)(nil)

// ChatCompletionService defines the interface for making chat completion
// calls. This abstraction enables testing without calling the real API.
type ChatCompletionService interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

const advisorPrompt = "Eres un asesor de contratación pública. Responde en " +
	"español, de forma breve y práctica, sobre expedientes, pliegos y " +
	"cumplimiento normativo."

// OpenAI answers free-form chat turns with a completion model.
type OpenAI struct {
	completions ChatCompletionService
	model       openai.ChatModel
}

// NewOpenAI creates a chat responder backed by the OpenAI API.
func NewOpenAI(apiKey, model string) *OpenAI {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAI{
		completions: client.Chat.Completions,
		model:       openai.ChatModel(model),
	}
}

// Respond generates a reply for a free-form user message.
func (o *OpenAI) Respond(ctx context.Context, message string) (string, error) {
	resp, err := o.completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(advisorPrompt),
			openai.UserMessage(message),
		}),
		Model: openai.F(o.model),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion failed: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// ModelName returns the completion model name.
func (o *OpenAI) ModelName() string {
	return string(o.model)
}
