package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/imroc/req/v3"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultBaseURL is the Gemini REST endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// ClientConfig configures the Gemini client.
type ClientConfig struct {
	APIKey  string
	BaseURL string
	// Models are tried in order until one gives a usable answer.
	Models  []string
	Timeout time.Duration
}

// Client calls generateContent on a list of candidate models.
type Client struct {
	http    *req.Client
	apiKey  string
	baseURL string
	models  []string
	logger  *zap.Logger
}

// NewClient creates a Gemini client.
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	httpc := req.C().
		SetTimeout(cfg.Timeout).
		SetUserAgent("touchless-kiosk").
		SetJsonMarshal(json.Marshal).
		SetJsonUnmarshal(json.Unmarshal)

	return &Client{
		http:    httpc,
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		models:  append([]string(nil), cfg.Models...),
		logger:  logger.Named("gemini"),
	}
}

type geminiRequest struct {
	Contents         []geminiContent   `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
	Temperature      float64 `json:"temperature,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
}

type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate sends prompt to each candidate model in turn. accept validates an
// answer; a rejected answer moves on to the next model like a transport
// error does. It returns the model that produced the accepted answer.
func (c *Client) Generate(ctx context.Context, prompt string, accept func(text string) error) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}
	if len(c.models) == 0 {
		return "", ErrNoModels
	}

	var errs []error
	for i, model := range c.models {
		text, err := c.generate(ctx, model, prompt)
		if err == nil {
			err = accept(text)
		}
		if err == nil {
			if i > 0 {
				c.logger.Info("fallback model succeeded", zap.String("model", model), zap.Int("index", i))
			}
			return model, nil
		}

		errs = append(errs, err)
		c.logger.Warn("model failed, trying next", zap.String("model", model), zap.Error(err))

		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
			break
		}
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
	}
	return "", &ChainError{Errors: errs}
}

func (c *Client) generate(ctx context.Context, model, prompt string) (string, error) {
	body := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	if wantsJSONMime(model) {
		body.GenerationConfig = &generationConfig{ResponseMimeType: "application/json"}
	}

	var result geminiResponse
	var apiErr geminiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("model", model).
		SetQueryParam("key", c.apiKey).
		SetBody(&body).
		SetSuccessResult(&result).
		SetErrorResult(&apiErr).
		Post(c.baseURL + "/models/{model}:generateContent")
	if err != nil {
		return "", fmt.Errorf("gemini [%s]: %w", model, err)
	}
	if resp.IsErrorState() {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = resp.Status
		}
		return "", &APIError{
			StatusCode: resp.StatusCode,
			Status:     apiErr.Error.Status,
			Message:    msg,
			Model:      model,
		}
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini [%s]: %w: no candidates", model, ErrMalformed)
	}

	var sb strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

// wantsJSONMime reports whether model accepts responseMimeType. The legacy
// 1.0 models reject it.
func wantsJSONMime(model string) bool {
	for _, marker := range []string{"1.5", "2.0", "2.5", "flash"} {
		if strings.Contains(model, marker) {
			return true
		}
	}
	return false
}
