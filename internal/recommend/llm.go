package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/dvloznov/spendsense/internal/domain"
)

// RationaleModelName is the Gemini model used for rationale polishing.
const RationaleModelName = "gemini-2.5-flash"

// LLMRationaleWriter rewrites template rationales into warmer copy with a
// Gemini model. It is strictly optional: callers fall back to the template
// text on any error, and the output still passes through guardrails tone
// checking, so a misbehaving model cannot leak shaming language.
type LLMRationaleWriter struct {
	log zerolog.Logger
}

// NewLLMRationaleWriter creates a rationale writer. The genai client reads
// its API key from the environment.
func NewLLMRationaleWriter(log zerolog.Logger) *LLMRationaleWriter {
	return &LLMRationaleWriter{log: log}
}

// Rewrite asks the model to rephrase the rationale. The numbers in the
// template must survive verbatim; the prompt pins them and Rewrite rejects
// responses that drop them.
func (w *LLMRationaleWriter) Rewrite(ctx context.Context, rec domain.Recommendation) (string, error) {
	prompt := "You are a financial wellness copywriter.\n\n" +
		"Task:\n" +
		"- Rewrite the rationale below in a warm, encouraging, non-judgmental tone.\n" +
		"- Keep every number and percentage exactly as written.\n" +
		"- Never blame or shame the reader.\n" +
		"- Output plain text only: no Markdown, no quotes, no preamble.\n" +
		"- Keep it to at most three sentences.\n\n" +
		fmt.Sprintf("Content title: %s\n\nRationale to rewrite:\n%s\n", rec.Title, rec.Rationale)

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", fmt.Errorf("Rewrite: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, RationaleModelName, contents, nil)
	if err != nil {
		return "", fmt.Errorf("Rewrite: generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("Rewrite: empty response from model")
	}
	if !numbersPreserved(rec.Rationale, text) {
		return "", fmt.Errorf("Rewrite: model dropped figures from the rationale")
	}
	return text, nil
}

// numbersPreserved checks that every numeric token of the original rationale
// still appears in the rewrite.
func numbersPreserved(original, rewritten string) bool {
	for _, tok := range strings.Fields(original) {
		tok = strings.Trim(tok, ".,()")
		if tok == "" {
			continue
		}
		c := tok[0]
		if c == '$' || (c >= '0' && c <= '9') {
			if !strings.Contains(rewritten, tok) {
				return false
			}
		}
	}
	return true
}
