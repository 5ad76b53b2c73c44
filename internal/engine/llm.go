package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/oukeidos/filtertranslate/internal/apperrors"
	"github.com/oukeidos/filtertranslate/internal/language"
)

// LLMRequest is the JSON document sent to chat-style backends.
type LLMRequest struct {
	Lines []string `json:"lines"`
}

// LLMResponse is the JSON document expected back from chat-style backends.
type LLMResponse struct {
	Translations *[]string `json:"translations"`
}

// SystemPrompt builds the instruction for chat-style backends.
func SystemPrompt(sourceLang, targetLang string) string {
	src := language.DisplayName(sourceLang)
	tgt := language.DisplayName(targetLang)
	return fmt.Sprintf(`You are a professional %s to %s translator of plain-text documents.

1. Input:
- A JSON object with a 'lines' array. Each entry is one line of the document, possibly ending in a line break.

2. Output:
- A JSON object with a 'translations' array of strings.
- 'translations' MUST have exactly as many entries as 'lines', in the same order. Never merge, split, drop or reorder lines.
- Keep leading whitespace, trailing line breaks and empty lines as they are.
- Respond ONLY with the JSON object.

3. Rules:
- Translate from %s into %s.
- Keep the tone of the source.
- Do not add explanations or the source text.`, src, tgt, src, tgt)
}

// EncodeLLMRequest marshals the lines of one batch.
func EncodeLLMRequest(lines []string) (string, error) {
	data, err := json.Marshal(LLMRequest{Lines: lines})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}
	return string(data), nil
}

// DecodeLLMResponse parses a model reply and checks it holds want entries.
// A bare JSON array is accepted as well as the documented object.
func DecodeLLMResponse(text string, want int) ([]string, error) {
	text = stripCodeFence(text)

	var resp LLMResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		var arr []string
		if err2 := json.Unmarshal([]byte(text), &arr); err2 != nil {
			return nil, apperrors.Translation("", fmt.Errorf("failed to unmarshal response: %w", err))
		}
		resp.Translations = &arr
	}
	if resp.Translations == nil {
		return nil, apperrors.Translation("", fmt.Errorf("response has no translations field"))
	}
	got := *resp.Translations
	if len(got) != want {
		return nil, apperrors.Translation(
			fmt.Sprintf("Translation count mismatch: sent %d lines, received %d.", want, len(got)), nil)
	}
	return got, nil
}

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
