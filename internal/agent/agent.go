package agent

import (
	"context"
	"fmt"
	"os"

	"charm.land/fantasy"
	"charm.land/fantasy/providers/anthropic"
)

const (
	defaultModel        = "claude-haiku-4-5"
	defaultSystemPrompt = "You are an analyst for a state education department. You answer questions about the Sampark smart-classroom programme using the dashboard tables. Leading indicators measure adoption (teacher acceptance, lessons taught, active schools, daily usage); class observation and lagging indicators measure learning. Always query the tables before quoting numbers, name the districts, blocks or schools you refer to, and say when a value is missing."
)

// AgentConfig holds the configuration for creating an ask agent
type AgentConfig struct {
	apiKey       string
	model        string
	systemPrompt string
	loader       Loader
	stateName    string
}

// AgentOption is a functional option for configuring the agent
type AgentOption func(*AgentConfig) error

// WithAPIKey sets the Anthropic API key
func WithAPIKey(apiKey string) AgentOption {
	return func(c *AgentConfig) error {
		if apiKey == "" {
			return fmt.Errorf("API key cannot be empty")
		}
		c.apiKey = apiKey
		return nil
	}
}

// WithAPIKeyFromEnv sets the API key from the ANTHROPIC_API_KEY environment variable
func WithAPIKeyFromEnv() AgentOption {
	return func(c *AgentConfig) error {
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
		c.apiKey = apiKey
		return nil
	}
}

// WithModel sets the Claude model to use (default: claude-haiku-4-5)
func WithModel(model string) AgentOption {
	return func(c *AgentConfig) error {
		if model == "" {
			return fmt.Errorf("model cannot be empty")
		}
		c.model = model
		return nil
	}
}

// WithSystemPrompt sets a custom system prompt
func WithSystemPrompt(prompt string) AgentOption {
	return func(c *AgentConfig) error {
		c.systemPrompt = prompt
		return nil
	}
}

// WithLoader sets where the tools read datasets from
func WithLoader(load Loader) AgentOption {
	return func(c *AgentConfig) error {
		c.loader = load
		return nil
	}
}

// WithStateName tells the model which state the data covers
func WithStateName(name string) AgentOption {
	return func(c *AgentConfig) error {
		c.stateName = name
		return nil
	}
}

// Generator is the part of a Fantasy agent that ask needs.
type Generator interface {
	Generate(ctx context.Context, call fantasy.AgentCall) (*fantasy.AgentResult, error)
}

// NewAskAgent creates a Fantasy agent that answers questions from the
// indicator tables.
func NewAskAgent(ctx context.Context, opts ...AgentOption) (Generator, error) {
	config := &AgentConfig{
		model:        defaultModel,
		systemPrompt: defaultSystemPrompt,
	}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if config.apiKey == "" {
		return nil, fmt.Errorf("API key is required (use WithAPIKey or WithAPIKeyFromEnv)")
	}
	if config.loader == nil {
		return nil, fmt.Errorf("dataset loader is required (use WithLoader)")
	}

	provider, err := anthropic.New(anthropic.WithAPIKey(config.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Anthropic provider: %w", err)
	}

	model, err := provider.LanguageModel(ctx, config.model)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Claude model: %w", err)
	}

	prompt := config.systemPrompt
	if config.stateName != "" {
		prompt += " The data covers the state of " + config.stateName + "."
	}

	agent := fantasy.NewAgent(
		model,
		fantasy.WithSystemPrompt(prompt),
		fantasy.WithTools(CreateTools(config.loader)...),
	)

	return agent, nil
}

// GenerateResponse is a convenience function that creates an agent and generates a response in one call
func GenerateResponse(ctx context.Context, question string, opts ...AgentOption) (string, error) {
	agent, err := NewAskAgent(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create agent: %w", err)
	}

	result, err := agent.Generate(ctx, fantasy.AgentCall{Prompt: question})
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}

	return result.Response.Content.Text(), nil
}
