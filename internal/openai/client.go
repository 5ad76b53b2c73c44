// Package openai is an OpenAI chat-completions backend for the translation
// engine.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/oukeidos/filtertranslate/internal/apperrors"
	"github.com/oukeidos/filtertranslate/internal/engine"
	"github.com/oukeidos/filtertranslate/internal/httpclient"
	"github.com/oukeidos/filtertranslate/internal/logger"
	goopenai "github.com/sashabaranov/go-openai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = goopenai.GPT4oMini

const serviceName = "OpenAI"

// Config configures a Client.
type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the API root, e.g. for a compatible gateway.
	BaseURL string
	// HTTPClient defaults to the shared client.
	HTTPClient *http.Client
}

// Client translates batches through chat completions in JSON mode.
type Client struct {
	client *goopenai.Client
	model  string

	usageMu sync.Mutex
	usage   engine.Usage
}

var (
	_ engine.Engine        = (*Client)(nil)
	_ engine.UsageReporter = (*Client)(nil)
)

func NewClient(cfg Config) *Client {
	oc := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.HTTPClient != nil {
		oc.HTTPClient = cfg.HTTPClient
	} else {
		oc.HTTPClient = httpclient.GetDefaultClient()
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		client: goopenai.NewClientWithConfig(oc),
		model:  model,
	}
}

// GetModelID returns the configured model identifier.
func (c *Client) GetModelID() string {
	return c.model
}

// Close is a no-op.
func (c *Client) Close() error { return nil }

// Usage returns the tokens consumed so far.
func (c *Client) Usage() engine.Usage {
	c.usageMu.Lock()
	defer c.usageMu.Unlock()
	return c.usage
}

func (c *Client) Translate(ctx context.Context, req engine.Request) ([]string, error) {
	payload, err := engine.EncodeLLMRequest(req.Contents)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: engine.SystemPrompt(req.SourceLang, req.TargetLang)},
			{Role: goopenai.ChatMessageRoleUser, Content: payload},
		},
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, classifyOpenAIError(ctx, err)
	}

	c.usageMu.Lock()
	c.usage = c.usage.Add(engine.Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	})
	c.usageMu.Unlock()
	logger.Debug("OpenAI API Response", "usage_total", resp.Usage.TotalTokens, "response_id", resp.ID)

	if len(resp.Choices) == 0 {
		return nil, apperrors.Translation("", fmt.Errorf("no choices returned from OpenAI"))
	}
	choice := resp.Choices[0]
	if choice.FinishReason == goopenai.FinishReasonLength {
		return nil, apperrors.Translation("OpenAI response was cut off (max tokens reached).", nil)
	}
	return engine.DecodeLLMResponse(choice.Message.Content, len(req.Contents))
}

func classifyOpenAIError(ctx context.Context, err error) error {
	wrapped := fmt.Errorf("openai chat completion failed: %w", err)

	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusNotFound && isModelNotFound(apiErr) {
			return apperrors.New(apperrors.KindBadRequest, "The model does not exist or you do not have access to it.", wrapped)
		}
		return apperrors.FromHTTPStatus(serviceName, apiErr.HTTPStatusCode, wrapped)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return apperrors.FromHTTPStatus(serviceName, reqErr.HTTPStatusCode, wrapped)
	}
	if ctx.Err() != nil {
		return wrapped
	}
	return apperrors.Network(serviceName, wrapped)
}

func isModelNotFound(e *goopenai.APIError) bool {
	needle := strings.ToLower(fmt.Sprint(e.Code) + " " + e.Type + " " + e.Message)
	return strings.Contains(needle, "model_not_found") ||
		strings.Contains(needle, "does not exist or you do not have access to it")
}
