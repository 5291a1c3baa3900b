package llm

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/nguyentranbao-ct/price-extractor/internal/config"
	"google.golang.org/genai"
)

type genkitModel struct {
	genkit      *genkit.Genkit
	model       string
	temperature float32
}

// NewGenkitModel initializes Genkit with the Google AI plugin.
func NewGenkitModel(ctx context.Context, cfg config.LLMConfig) (model VisionModel, err error) {
	// genkit.Init panics when a plugin fails to initialize.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("init genkit: %v", r)
		}
	}()

	googleAI := &googlegenai.GoogleAI{
		APIKey: cfg.GoogleAIAPIKey,
	}
	g := genkit.Init(ctx, genkit.WithPlugins(googleAI))

	return &genkitModel{
		genkit:      g,
		model:       cfg.ModelName(),
		temperature: float32(cfg.Temperature),
	}, nil
}

func (m *genkitModel) Complete(ctx context.Context, req VisionRequest) (string, error) {
	msg := ai.NewUserMessage(
		ai.NewTextPart(req.Prompt),
		ai.NewMediaPart(req.MIMEType, req.ImageDataURI),
	)

	resp, err := genkit.Generate(ctx, m.genkit,
		ai.WithModelName(m.model),
		ai.WithMessages(msg),
		ai.WithConfig(&genai.GenerateContentConfig{
			Temperature:      genai.Ptr(m.temperature),
			ResponseMIMEType: "application/json",
		}),
	)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return resp.Text(), nil
}
