package metadata

import (
	"sort"
	"strings"
)

// Backend identifies a translation service.
type Backend string

const (
	BackendGoogle Backend = "google"
	BackendGemini Backend = "gemini"
	BackendOpenAI Backend = "openai"
)

// BackendInfo describes a backend for listings and cost estimates.
type BackendInfo struct {
	Name         Backend
	Label        string
	DefaultModel string
	// NeedsAPIKey is false for Cloud Translation, which uses application
	// default credentials.
	NeedsAPIKey bool
}

var Backends = []BackendInfo{
	{Name: BackendGoogle, Label: "Google Cloud Translation (v3, NMT)"},
	{Name: BackendGemini, Label: "Google Gemini", DefaultModel: "gemini-2.5-flash", NeedsAPIKey: true},
	{Name: BackendOpenAI, Label: "OpenAI chat completions", DefaultModel: "gpt-4o-mini", NeedsAPIKey: true},
}

// LookupBackend finds a backend by name, case-insensitively.
func LookupBackend(name string) (BackendInfo, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, b := range Backends {
		if string(b.Name) == name {
			return b, true
		}
	}
	return BackendInfo{}, false
}

// BackendNames returns the valid --backend values.
func BackendNames() []string {
	names := make([]string, 0, len(Backends))
	for _, b := range Backends {
		names = append(names, string(b.Name))
	}
	sort.Strings(names)
	return names
}

type LLMModel struct {
	Backend          Backend
	ID               string
	Label            string
	InputPerMillion  float64
	OutputPerMillion float64
}

var LLMModels = []LLMModel{
	{Backend: BackendGemini, ID: "gemini-2.5-flash", Label: "Gemini 2.5 Flash", InputPerMillion: 0.30, OutputPerMillion: 2.50},
	{Backend: BackendGemini, ID: "gemini-2.5-pro", Label: "Gemini 2.5 Pro", InputPerMillion: 1.25, OutputPerMillion: 10.00},
	{Backend: BackendOpenAI, ID: "gpt-4o-mini", Label: "GPT-4o mini", InputPerMillion: 0.15, OutputPerMillion: 0.60},
	{Backend: BackendOpenAI, ID: "gpt-4o", Label: "GPT-4o", InputPerMillion: 2.50, OutputPerMillion: 10.00},
}

const (
	// CloudTranslationPerMillionChars is the list price of NMT text
	// translation in USD, before the monthly free tier.
	CloudTranslationPerMillionChars = 20.00

	DefaultGeminiInputPerMillion  = 1.25
	DefaultGeminiOutputPerMillion = 10.00
	DefaultOpenAIInputPerMillion  = 2.50
	DefaultOpenAIOutputPerMillion = 10.00
)

// Pricing returns the price sheet of an LLM model. Unknown models fall back
// to conservative per-backend defaults and report false.
func Pricing(backend Backend, modelID string) (LLMModel, bool) {
	for _, m := range LLMModels {
		if m.Backend == backend && m.ID == modelID {
			return m, true
		}
	}
	switch backend {
	case BackendGemini:
		return LLMModel{Backend: backend, ID: "default", Label: "Default Gemini",
			InputPerMillion: DefaultGeminiInputPerMillion, OutputPerMillion: DefaultGeminiOutputPerMillion}, false
	default:
		return LLMModel{Backend: backend, ID: "default", Label: "Default OpenAI",
			InputPerMillion: DefaultOpenAIInputPerMillion, OutputPerMillion: DefaultOpenAIOutputPerMillion}, false
	}
}

// CharacterCost estimates the Cloud Translation charge for chars code points.
func CharacterCost(chars int) float64 {
	return float64(chars) / 1_000_000 * CloudTranslationPerMillionChars
}

// TokenCost estimates an LLM charge from token counts.
func TokenCost(backend Backend, modelID string, promptTokens, completionTokens int) float64 {
	m, _ := Pricing(backend, modelID)
	return float64(promptTokens)/1_000_000*m.InputPerMillion +
		float64(completionTokens)/1_000_000*m.OutputPerMillion
}
