// Package ai adapts the generative AI provider behind the proxy endpoint.
package ai

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Config holds the AI provider configuration.
type Config struct {
	BaseURL     string
	APIKey      string
	ChatModel   string
	ImageModel  string
	SpeechModel string
	MaxRetries  int
	Timeout     time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:     "https://api.openai.com/v1",
		APIKey:      "",
		ChatModel:   "gpt-4o-mini",
		ImageModel:  "dall-e-3",
		SpeechModel: "tts-1",
		MaxRetries:  3,
		Timeout:     30 * time.Second,
	}
}

// Message represents a chat message.
type Message struct {
	Role    string
	Content string
}

// Provider provides chat, image and speech generation.
type Provider struct {
	client *openai.Client
	config *Config
}

// NewProvider creates a new AI provider.
func NewProvider(cfg *Config) (*Provider, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	// Apply defaults for unset values
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = "gpt-4o-mini"
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = "dall-e-3"
	}
	if cfg.SpeechModel == "" {
		cfg.SpeechModel = "tts-1"
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	client := openai.NewClientWithConfig(clientConfig)

	return &Provider{
		client: client,
		config: cfg,
	}, nil
}

// ChatModel returns the configured chat model name.
func (p *Provider) ChatModel() string {
	return p.config.ChatModel
}

// ImageModel returns the configured image model name.
func (p *Provider) ImageModel() string {
	return p.config.ImageModel
}

// SpeechModel returns the configured speech model name.
func (p *Provider) SpeechModel() string {
	return p.config.SpeechModel
}

// Chat performs a chat completion.
func (p *Provider) Chat(ctx context.Context, messages []Message) (string, error) {
	var result string
	err := p.doWithRetry(ctx, func() error {
		llmMessages := make([]openai.ChatCompletionMessage, len(messages))
		for i, msg := range messages {
			llmMessages[i] = openai.ChatCompletionMessage{
				Role:    msg.Role,
				Content: msg.Content,
			}
		}

		req := openai.ChatCompletionRequest{
			Model:    p.config.ChatModel,
			Messages: llmMessages,
		}

		resp, err := p.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("empty chat response")
		}
		result = resp.Choices[0].Message.Content
		return nil
	})

	if err != nil {
		return "", fmt.Errorf("failed to complete chat: %w", err)
	}

	return result, nil
}

// GenerateImage generates one image and returns its URL.
func (p *Provider) GenerateImage(ctx context.Context, prompt string) (string, error) {
	var result string
	err := p.doWithRetry(ctx, func() error {
		req := openai.ImageRequest{
			Prompt:         prompt,
			Model:          p.config.ImageModel,
			N:              1,
			Size:           openai.CreateImageSize1024x1024,
			ResponseFormat: openai.CreateImageResponseFormatURL,
		}

		resp, err := p.client.CreateImage(ctx, req)
		if err != nil {
			return err
		}
		if len(resp.Data) == 0 {
			return fmt.Errorf("empty image response")
		}
		result = resp.Data[0].URL
		return nil
	})

	if err != nil {
		return "", fmt.Errorf("failed to generate image: %w", err)
	}

	return result, nil
}

// Speech synthesizes the given text and returns the audio bytes.
func (p *Provider) Speech(ctx context.Context, text, voice string) ([]byte, error) {
	if voice == "" {
		voice = string(openai.VoiceAlloy)
	}

	var result []byte
	err := p.doWithRetry(ctx, func() error {
		req := openai.CreateSpeechRequest{
			Model: openai.SpeechModel(p.config.SpeechModel),
			Input: text,
			Voice: openai.SpeechVoice(voice),
		}

		resp, err := p.client.CreateSpeech(ctx, req)
		if err != nil {
			return err
		}
		defer resp.Close()

		audio, err := io.ReadAll(resp)
		if err != nil {
			return err
		}
		result = audio
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to synthesize speech: %w", err)
	}

	return result, nil
}

// Validate checks the provider configuration.
func (p *Provider) Validate() error {
	if p.config.APIKey == "" {
		return fmt.Errorf("API key is required, set SATCHEL_AI_API_KEY environment variable")
	}

	slog.Info("AI provider configured",
		"chat_model", p.config.ChatModel,
		"image_model", p.config.ImageModel,
		"speech_model", p.config.SpeechModel)

	return nil
}

// doWithRetry executes a function with exponential backoff retry.
func (p *Provider) doWithRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < p.config.MaxRetries; attempt++ {
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			if attempt < p.config.MaxRetries-1 {
				waitTime := time.Duration(math.Pow(2, float64(attempt))) * time.Second
				slog.Debug("AI request failed, retrying",
					"attempt", attempt+1,
					"wait_time", waitTime,
					"error", err)
				select {
				case <-time.After(waitTime):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
	return lastErr
}
