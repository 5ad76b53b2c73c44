package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/oukeidos/filtertranslate/internal/apperrors"
	"google.golang.org/api/googleapi"
)

const serviceName = "Gemini"

func classifyGeminiError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	wrapped := fmt.Errorf("gemini generate content failed: %w", err)

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == 404 {
			return apperrors.New(apperrors.KindBadRequest, "Gemini model not found or no access (404).", wrapped)
		}
		return apperrors.FromHTTPStatus(serviceName, gerr.Code, wrapped)
	}
	if ctx.Err() != nil {
		return wrapped
	}
	return apperrors.Network(serviceName, wrapped)
}
