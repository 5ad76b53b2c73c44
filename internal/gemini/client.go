// Package gemini is a Gemini backend for the translation engine. Each batch
// is sent as a JSON document and the model answers with one translation per
// line.
package gemini

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"github.com/oukeidos/filtertranslate/internal/apperrors"
	"github.com/oukeidos/filtertranslate/internal/engine"
	"github.com/oukeidos/filtertranslate/internal/httpclient"
	"google.golang.org/api/option"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

type generateFunc func(ctx context.Context, model *genai.GenerativeModel, parts ...genai.Part) (*genai.GenerateContentResponse, error)

// Client handles communication with the Gemini API.
type Client struct {
	client    *genai.Client
	modelName string
	generate  generateFunc

	usageMu sync.Mutex
	usage   engine.Usage
}

var (
	_ engine.Engine        = (*Client)(nil)
	_ engine.UsageReporter = (*Client)(nil)
)

// NewClient creates a new Gemini client.
func NewClient(ctx context.Context, apiKey, modelName string) (*Client, error) {
	if modelName == "" {
		modelName = DefaultModel
	}
	// option.WithHTTPClient would bypass the library's API key header, so the
	// timeout is enforced per request through the context instead.
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, apperrors.Config("Failed to create Gemini client.", err)
	}
	return &Client{
		client:    client,
		modelName: modelName,
		generate: func(ctx context.Context, model *genai.GenerativeModel, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
			return model.GenerateContent(ctx, parts...)
		},
	}, nil
}

// Close closes the underlying genai client.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Usage returns the tokens consumed so far.
func (c *Client) Usage() engine.Usage {
	c.usageMu.Lock()
	defer c.usageMu.Unlock()
	return c.usage
}

// model returns a fresh model handle per request; the system instruction
// depends on the request languages and handles are not safe to share.
func (c *Client) model(req engine.Request) *genai.GenerativeModel {
	var m *genai.GenerativeModel
	if c.client != nil {
		m = c.client.GenerativeModel(c.modelName)
	} else {
		m = &genai.GenerativeModel{}
	}
	m.ResponseMIMEType = "application/json"
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(engine.SystemPrompt(req.SourceLang, req.TargetLang))},
	}
	return m
}

// Translate sends one batch to Gemini.
func (c *Client) Translate(ctx context.Context, req engine.Request) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, httpclient.DefaultTimeout)
	defer cancel()

	payload, err := engine.EncodeLLMRequest(req.Contents)
	if err != nil {
		return nil, err
	}
	resp, err := c.generate(ctx, c.model(req), genai.Text(payload))
	if err != nil {
		return nil, classifyGeminiError(ctx, err)
	}
	if resp != nil && resp.UsageMetadata != nil {
		c.usageMu.Lock()
		c.usage = c.usage.Add(engine.Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		})
		c.usageMu.Unlock()
	}

	text, err := extractResponseText(resp)
	if err != nil {
		return nil, apperrors.Translation("", err)
	}
	return engine.DecodeLLMResponse(text, len(req.Contents))
}

func extractResponseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("no response received from Gemini")
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		var combined string
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				combined += string(text)
			}
		}
		if combined != "" {
			return combined, nil
		}
	}
	return "", fmt.Errorf("no text parts found in Gemini response")
}
