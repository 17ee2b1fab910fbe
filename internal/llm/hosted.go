package llm

import (
	"context"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	aoption "github.com/anthropics/anthropic-sdk-go/option"
	openai "github.com/openai/openai-go"
	ooption "github.com/openai/openai-go/option"
	oshared "github.com/openai/openai-go/shared"
)

const anthropicMaxTokens = 2048

// OpenAI talks to the chat completions API of OpenAI or any compatible endpoint.
type OpenAI struct {
	client openai.Client
	model  string
}

// NewOpenAI builds an OpenAI backend. Empty apiKey falls back to OPENAI_API_KEY; empty
// baseURL uses the public API.
func NewOpenAI(apiKey, baseURL, model string, extra ...ooption.RequestOption) *OpenAI {
	var opts []ooption.RequestOption
	if k := strings.TrimSpace(apiKey); k != "" {
		opts = append(opts, ooption.WithAPIKey(k))
	}
	if u := strings.TrimSpace(baseURL); u != "" {
		opts = append(opts, ooption.WithBaseURL(u))
	}
	opts = append(opts, extra...)
	return &OpenAI{client: openai.NewClient(opts...), model: model}
}

// Complete requests a JSON object reply.
func (o *OpenAI) Complete(ctx context.Context, prompt string) (string, error) {
	format := oshared.NewResponseFormatJSONObjectParam()
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: oshared.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{OfJSONObject: &format},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat completion: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// Anthropic talks to the Anthropic messages API.
type Anthropic struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewAnthropic builds an Anthropic backend. Empty apiKey falls back to ANTHROPIC_API_KEY.
func NewAnthropic(apiKey, baseURL, model string, extra ...aoption.RequestOption) *Anthropic {
	var opts []aoption.RequestOption
	if k := strings.TrimSpace(apiKey); k != "" {
		opts = append(opts, aoption.WithAPIKey(k))
	}
	if u := strings.TrimSpace(baseURL); u != "" {
		opts = append(opts, aoption.WithBaseURL(u))
	}
	opts = append(opts, extra...)
	return &Anthropic{client: anthropic.NewClient(opts...), model: anthropic.Model(model)}
}

// Complete sends the prompt as a single user message and joins the text blocks of the reply.
func (a *Anthropic) Complete(ctx context.Context, prompt string) (string, error) {
	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var b strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("anthropic messages: reply has no text content")
	}
	return b.String(), nil
}
