package pipeline

import (
	"github.com/oukeidos/filtertranslate/internal/engine"
	"github.com/oukeidos/filtertranslate/internal/translator"
)

// TranslationStatus is the terminal state of a translation run.
type TranslationStatus string

const (
	TranslationStatusSuccess        TranslationStatus = "Success"
	TranslationStatusPartialSuccess TranslationStatus = "Partial Success"
	TranslationStatusFailure        TranslationStatus = "Failure"
)

// TranslationResult contains structured outputs from RunTranslation.
type TranslationResult struct {
	Status     TranslationStatus
	OutputPath string
	Backend    string
	Model      string
	Report     translator.Report
	// Usage is set for backends that meter tokens.
	Usage engine.Usage
	// EstimatedCost is in USD at list prices.
	EstimatedCost float64
}

func statusFromReport(report translator.Report, err error) TranslationStatus {
	switch {
	case err == nil:
		return TranslationStatusSuccess
	case report.Partial:
		return TranslationStatusPartialSuccess
	default:
		return TranslationStatusFailure
	}
}
