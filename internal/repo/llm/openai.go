package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/nguyentranbao-ct/price-extractor/internal/config"
	"github.com/nguyentranbao-ct/price-extractor/pkg/util"
)

type openAIModel struct {
	client      *resty.Client
	model       string
	temperature float64
}

// NewOpenAIModel talks to an OpenAI compatible /chat/completions endpoint.
// Calls are bounded only by the caller's context.
func NewOpenAIModel(cfg config.LLMConfig) VisionModel {
	client := util.NewRestyClient(0, 0).
		SetBaseURL(cfg.OpenAIBaseURL).
		SetAuthToken(cfg.OpenAIAPIKey)
	return &openAIModel{
		client:      client,
		model:       cfg.ModelName(),
		temperature: cfg.Temperature,
	}
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (m *openAIModel) Complete(ctx context.Context, req VisionRequest) (string, error) {
	body := chatRequest{
		Model: m.model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: req.Prompt},
				{Type: "image_url", ImageURL: &imageURL{URL: req.ImageDataURI}},
			},
		}},
		Temperature:    m.temperature,
		ResponseFormat: responseFormat{Type: "json_object"},
	}

	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&chatResponse{}).
		SetError(&apiErrorResponse{}).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("send chat completion: %w", err)
	}
	if resp.IsError() {
		msg := resp.String()
		if apiErr, ok := resp.Error().(*apiErrorResponse); ok && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		return "", fmt.Errorf("chat completion failed with status %d: %s", resp.StatusCode(), msg)
	}

	result, ok := resp.Result().(*chatResponse)
	if !ok || len(result.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return result.Choices[0].Message.Content, nil
}
