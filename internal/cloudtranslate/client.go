// Package cloudtranslate is the Google Cloud Translation v3 backend.
package cloudtranslate

import (
	"context"
	"errors"
	"fmt"

	"github.com/oukeidos/filtertranslate/internal/apperrors"
	"github.com/oukeidos/filtertranslate/internal/engine"
	"github.com/oukeidos/filtertranslate/internal/httpclient"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	translate "google.golang.org/api/translate/v3"
)

const (
	// Location is the regional endpoint used for text translation.
	Location = "global"
	// MimeType asks the service to treat content as plain text, not HTML.
	MimeType = "text/plain"

	serviceName = "Cloud Translation"
)

// Config configures a Client.
type Config struct {
	// ProjectID scopes requests; empty means derive it from the credentials file.
	ProjectID string
	// Options are passed to the underlying API client.
	Options []option.ClientOption
}

// Client translates batches with projects.locations.translateText.
type Client struct {
	svc       *translate.Service
	projectID string
	parent    string
}

var _ engine.Engine = (*Client)(nil)

// NewClient resolves the project id and creates the REST client. Credentials
// come from Application Default Credentials unless Options say otherwise.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	projectID, err := ResolveProjectID(cfg.ProjectID)
	if err != nil {
		return nil, err
	}
	opts := append([]option.ClientOption{option.WithUserAgent(httpclient.UserAgent())}, cfg.Options...)
	svc, err := translate.NewService(ctx, opts...)
	if err != nil {
		return nil, apperrors.Config("Failed to create Cloud Translation client. Check your application default credentials.", err)
	}
	return &Client{
		svc:       svc,
		projectID: projectID,
		parent:    fmt.Sprintf("projects/%s/locations/%s", projectID, Location),
	}, nil
}

// ProjectID returns the project the client bills requests to.
func (c *Client) ProjectID() string { return c.projectID }

// Close is a no-op; the REST client holds no resources beyond its
// http.Client.
func (c *Client) Close() error { return nil }

// Translate sends one batch and returns the translations in request order.
func (c *Client) Translate(ctx context.Context, req engine.Request) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, httpclient.DefaultTimeout)
	defer cancel()

	resp, err := c.svc.Projects.Locations.TranslateText(c.parent, &translate.TranslateTextRequest{
		Contents:           req.Contents,
		MimeType:           MimeType,
		SourceLanguageCode: req.SourceLang,
		TargetLanguageCode: req.TargetLang,
	}).Context(ctx).Do()
	if err != nil {
		return nil, classifyError(ctx, err)
	}
	if resp == nil || resp.Translations == nil {
		return nil, apperrors.Translation("Error getting the data from google translate API", nil)
	}
	if len(resp.Translations) != len(req.Contents) {
		return nil, apperrors.Translation(
			fmt.Sprintf("Translation count mismatch: sent %d lines, received %d.", len(req.Contents), len(resp.Translations)), nil)
	}
	out := make([]string, len(resp.Translations))
	for i, tr := range resp.Translations {
		if tr == nil {
			return nil, apperrors.Translation(fmt.Sprintf("Translation %d missing from response.", i+1), nil)
		}
		out[i] = tr.TranslatedText
	}
	return out, nil
}

func classifyError(ctx context.Context, err error) error {
	wrapped := fmt.Errorf("cloud translation translateText failed: %w", err)
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return apperrors.FromHTTPStatus(serviceName, gerr.Code, wrapped)
	}
	if ctx.Err() != nil {
		return wrapped
	}
	return apperrors.Network(serviceName, wrapped)
}
