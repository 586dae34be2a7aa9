package advisory

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"opd-scanner/internal/domain/entity"
	"opd-scanner/internal/domain/port"
)

// Options настройки клиента OpenAI-совместимого API
type Options struct {
	APIKey    string
	BaseURL   string // пусто: api.openai.com
	Model     string
	MaxTokens int
}

// OpenAIAdvisor просит модель с поддержкой изображений написать советы первой помощи
type OpenAIAdvisor struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewOpenAIAdvisor создаёт клиента. Без ключа возвращает ErrAdvisorNotConfigured.
func NewOpenAIAdvisor(opts Options) (*OpenAIAdvisor, error) {
	if opts.APIKey == "" {
		return nil, entity.ErrAdvisorNotConfigured
	}
	if opts.Model == "" {
		opts.Model = openai.GPT4oMini
	}

	clientConfig := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		clientConfig.BaseURL = opts.BaseURL
	}

	return &OpenAIAdvisor{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
	}, nil
}

// Advise отправляет превью и сводку находок одним запросом
func (a *OpenAIAdvisor) Advise(ctx context.Context, req entity.AdviceRequest) (string, error) {
	parts := []openai.ChatMessagePart{
		{
			Type: openai.ChatMessagePartTypeText,
			Text: req.Instructions,
		},
	}
	if len(req.Image) > 0 {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    "data:image/png;base64," + base64.StdEncoding.EncodeToString(req.Image),
				Detail: openai.ImageURLDetailLow,
			},
		})
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: req.Constraint,
			},
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: parts,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", entity.ErrEmptyAdvice
	}
	return resp.Choices[0].Message.Content, nil
}

// Проверка реализации интерфейса
var _ port.Advisor = (*OpenAIAdvisor)(nil)
