// Package vision adapts openai-compatible and ollama endpoints behind a
// single blocking Generate call that pairs an instruction with one or more
// uploaded images.
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	domainimage "medinsight-server-go/internal/domain/image"
	"medinsight-server-go/internal/platform/config"
	platformerrors "medinsight-server-go/internal/platform/errors"
	"medinsight-server-go/internal/platform/logging"
	"medinsight-server-go/internal/platform/observability"

	"github.com/sashabaranov/go-openai"
)

// Provider talks to one configured inference endpoint.
type Provider struct {
	config *config.VisionConfig
	logger *logging.Logger

	openaiClient *openai.Client
	httpClient   *http.Client
}

// NewProvider builds a provider for the given endpoint configuration.
func NewProvider(cfg *config.VisionConfig, logger *logging.Logger) (*Provider, error) {
	if cfg == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "vision.new", "vision config is required")
	}
	if logger == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "vision.new", "logger is required")
	}

	return &Provider{
		config:     cfg,
		logger:     logger,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

// Initialize prepares the underlying client for the configured endpoint type.
func (p *Provider) Initialize() error {
	switch strings.ToLower(p.config.Type) {
	case "openai":
		if p.config.APIKey == "" {
			return platformerrors.New(platformerrors.KindConfig, "vision.init", "API key is required")
		}
		clientConfig := openai.DefaultConfig(p.config.APIKey)
		if p.config.BaseURL != "" {
			clientConfig.BaseURL = p.config.BaseURL
		}
		p.openaiClient = openai.NewClientWithConfig(clientConfig)

	case "ollama":
		if p.config.BaseURL == "" {
			p.config.BaseURL = "http://localhost:11434"
		}

	default:
		return platformerrors.New(platformerrors.KindConfig, "vision.init",
			"unsupported vision provider type: "+p.config.Type)
	}

	p.logger.DebugTag("VISION", "provider initialised: type=%s model=%s",
		p.config.Type, p.config.ModelName)
	return nil
}

// Generate sends one blocking request carrying the instruction text and the
// supplied images, and returns the model's text verbatim. No retry, no
// backoff; the caller surfaces failures to the user.
func (p *Provider) Generate(ctx context.Context, text string, images []*domainimage.Bitmap) (string, error) {
	if len(images) == 0 {
		return "", platformerrors.New(platformerrors.KindInference, "vision.generate", "at least one image is required")
	}

	ctx, spanEnd := observability.StartSpan(ctx, "vision.provider", "generate")
	var (
		result string
		err    error
	)
	defer func() { spanEnd(err) }()

	p.logger.DebugTag("VISION", "invoking endpoint: type=%s model=%s text_length=%d images=%d",
		p.config.Type, p.config.ModelName, len(text), len(images))

	switch strings.ToLower(p.config.Type) {
	case "openai":
		result, err = p.generateOpenAI(ctx, text, images)
	case "ollama":
		result, err = p.generateOllama(ctx, text, images)
	default:
		err = platformerrors.New(platformerrors.KindInference, "vision.generate",
			"unsupported vision provider type: "+p.config.Type)
	}
	if err != nil {
		return "", err
	}

	observability.RecordMetric(ctx, "vision.response.chars", float64(len(result)),
		map[string]string{"model": p.config.ModelName})
	return result, nil
}

func (p *Provider) generateOpenAI(ctx context.Context, text string, images []*domainimage.Bitmap) (string, error) {
	parts := make([]openai.ChatMessagePart, 0, len(images)+1)
	parts = append(parts, openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeText,
		Text: text,
	})
	for _, img := range images {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL: fmt.Sprintf("data:image/%s;base64,%s", img.Format, img.DataBase64()),
			},
		})
	}

	stream, err := p.openaiClient.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model: p.config.ModelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: parts,
			},
		},
		Stream:      true,
		MaxTokens:   p.config.MaxTokens,
		Temperature: float32(p.config.Temperature),
		TopP:        float32(p.config.TopP),
	})
	if err != nil {
		return "", platformerrors.Wrap(platformerrors.KindInference, "vision.generate",
			"vision API call failed", err)
	}
	defer stream.Close()

	var result strings.Builder
	for {
		response, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return "", platformerrors.Wrap(platformerrors.KindInference, "vision.generate",
				"vision API stream failed", recvErr)
		}
		if len(response.Choices) > 0 {
			result.WriteString(response.Choices[0].Delta.Content)
		}
	}
	return result.String(), nil
}

type ollamaMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  map[string]any  `json:"options,omitempty"`
}

type ollamaResponse struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

func (p *Provider) generateOllama(ctx context.Context, text string, images []*domainimage.Bitmap) (string, error) {
	encoded := make([]string, 0, len(images))
	for _, img := range images {
		encoded = append(encoded, img.DataBase64())
	}

	reqBody := ollamaRequest{
		Model: p.config.ModelName,
		Messages: []ollamaMessage{
			{
				Role:    "user",
				Content: text,
				Images:  encoded,
			},
		},
		Stream: false,
		Options: map[string]any{
			"temperature": p.config.Temperature,
			"top_p":       p.config.TopP,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", platformerrors.Wrap(platformerrors.KindInference, "vision.generate",
			"marshal ollama request", err)
	}

	url := strings.TrimRight(p.config.BaseURL, "/") + "/api/chat"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", platformerrors.Wrap(platformerrors.KindInference, "vision.generate",
			"create ollama request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", platformerrors.Wrap(platformerrors.KindInference, "vision.generate",
			"ollama call failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", platformerrors.New(platformerrors.KindInference, "vision.generate",
			fmt.Sprintf("ollama returned %s: %s", resp.Status, strings.TrimSpace(string(body))))
	}

	var parsed ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", platformerrors.Wrap(platformerrors.KindInference, "vision.generate",
			"decode ollama response", err)
	}
	return parsed.Message.Content, nil
}

// Cleanup releases provider resources.
func (p *Provider) Cleanup() error {
	p.httpClient.CloseIdleConnections()
	return nil
}
