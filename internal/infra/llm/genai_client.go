// Package llm provides the Gemini-backed implementation of the LLMClient
// domain service.
package llm

import (
	"context"

	"encore/config"
	"encore/internal/domain/service"

	"github.com/pkg/errors"
	"google.golang.org/genai"
)

const defaultModel = "gemini-2.0-flash"

// genaiClient implements service.LLMClient using Google's Gemini API.
type genaiClient struct {
	client *genai.Client
	model  string
}

// NewGenAIClient is the constructor for genaiClient.
func NewGenAIClient(cfg *config.Config) (service.LLMClient, error) {
	if cfg.LLM == nil || cfg.LLM.APIKey == "" {
		return nil, errors.New("llm api key must be provided")
	}

	model := cfg.LLM.Model
	if model == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.LLM.APIKey,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create GenAI client")
	}

	return &genaiClient{
		client: client,
		model:  model,
	}, nil
}

// Complete sends a single-turn prompt and returns the model's text reply.
func (c *genaiClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, prompt, nil)
}

// CompleteWithSystem sends a prompt with a separate system instruction.
func (c *genaiClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	var genConfig *genai.GenerateContentConfig
	if systemPrompt != "" {
		genConfig = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		}
	}

	return c.generate(ctx, userPrompt, genConfig)
}

func (c *genaiClient) generate(ctx context.Context, prompt string, genConfig *genai.GenerateContentConfig) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, genConfig)
	if err != nil {
		return "", errors.Wrap(err, "GenAI generate failed")
	}

	text := result.Text()
	if text == "" {
		return "", errors.New("no text returned from model")
	}

	return text, nil
}
