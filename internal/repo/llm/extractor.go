package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/nguyentranbao-ct/price-extractor/internal/config"
	"github.com/nguyentranbao-ct/price-extractor/internal/models"
	log "github.com/nguyentranbao-ct/price-extractor/pkg/logger/logctx"
	"github.com/tidwall/gjson"
)

const fallbackMIMEType = "image/jpeg"

// VisionModel sends one prompt plus one image and returns the raw reply text.
type VisionModel interface {
	Complete(ctx context.Context, req VisionRequest) (string, error)
}

type VisionRequest struct {
	Prompt       string
	ImageDataURI string
	MIMEType     string
}

// ModelFactory builds the provider client. It is only called once a key is present.
type ModelFactory func(ctx context.Context, cfg config.LLMConfig) (VisionModel, error)

type Extractor interface {
	// Extract returns the reply as a JSON object. It fails with a config error
	// when the provider key is missing and an extraction error otherwise.
	Extract(ctx context.Context, image []byte, prompt string) (models.RawPayload, error)
	Provider() string
}

type extractor struct {
	cfg      config.LLMConfig
	newModel ModelFactory

	mu    sync.Mutex
	model VisionModel
}

func NewExtractor(conf *config.Config) Extractor {
	return NewExtractorWithFactory(conf.LLM, NewVisionModel)
}

func NewExtractorWithFactory(cfg config.LLMConfig, factory ModelFactory) Extractor {
	return &extractor{
		cfg:      cfg,
		newModel: factory,
	}
}

// NewVisionModel picks the client for cfg.Provider.
func NewVisionModel(ctx context.Context, cfg config.LLMConfig) (VisionModel, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIModel(cfg), nil
	case config.ProviderGoogleAI:
		return NewGenkitModel(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}

func (e *extractor) Provider() string {
	return e.cfg.Provider
}

func (e *extractor) client(ctx context.Context) (VisionModel, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.model != nil {
		return e.model, nil
	}
	if e.cfg.APIKey() == "" {
		return nil, models.ConfigError(fmt.Sprintf("%s API key is not configured", e.cfg.Provider), nil)
	}

	model, err := e.newModel(ctx, e.cfg)
	if err != nil {
		return nil, models.ConfigError("init vision model", err)
	}
	e.model = model
	return model, nil
}

func (e *extractor) Extract(ctx context.Context, image []byte, prompt string) (models.RawPayload, error) {
	model, err := e.client(ctx)
	if err != nil {
		return nil, err
	}
	if len(image) == 0 {
		return nil, models.ExtractionError("empty image", nil)
	}

	mimeType := detectImageMIME(image)
	text, err := model.Complete(ctx, VisionRequest{
		Prompt:       prompt,
		ImageDataURI: DataURI(mimeType, image),
		MIMEType:     mimeType,
	})
	if err != nil {
		log.Errorw(ctx, "vision request failed", "provider", e.cfg.Provider, "error", err)
		return nil, models.ExtractionError("vision request failed", err)
	}

	payload := []byte(strings.TrimSpace(text))
	if !gjson.ValidBytes(payload) || !gjson.ParseBytes(payload).IsObject() {
		log.Errorw(ctx, "failed to parse vision reply as JSON object", "provider", e.cfg.Provider, "content", text)
		return nil, models.ExtractionError("vision reply is not a JSON object", nil)
	}
	return models.RawPayload(payload), nil
}

// DataURI encodes image as a base64 data URI.
func DataURI(mimeType string, image []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)
}

func detectImageMIME(image []byte) string {
	m := mimetype.Detect(image)
	if strings.HasPrefix(m.String(), "image/") {
		return m.String()
	}
	return fallbackMIMEType
}
