package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProvider implements IntentParser using Google's Gemini models.
type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiProvider initializes a new Gemini client.
// apiKey should be provided from the environment.
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	// Use Gemini 2.0 Flash for low latency and cost efficiency.
	model := client.GenerativeModel("gemini-2.0-flash")

	// Force JSON response for structured parsing.
	model.ResponseMIMEType = "application/json"

	// Extraction, not creativity.
	model.SetTemperature(0.1)

	return &GeminiProvider{
		client: client,
		model:  model,
	}, nil
}

// Close cleans up the Gemini client resources.
func (p *GeminiProvider) Close() {
	p.client.Close()
}

// ParseQuoteIntent analyzes a freight request written in natural language.
func (p *GeminiProvider) ParseQuoteIntent(ctx context.Context, message string, today time.Time) (*QuoteIntent, error) {
	fullPrompt := fmt.Sprintf("%s\n\nUser Message: %s", buildSystemPrompt(today), message)

	resp, err := p.model.GenerateContent(ctx, genai.Text(fullPrompt))
	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no response candidates from Gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		}
	}

	return decodeIntent(responseText.String())
}

func decodeIntent(raw string) (*QuoteIntent, error) {
	cleanJSON := cleanJSONString(raw)

	var result QuoteIntent
	if err := json.Unmarshal([]byte(cleanJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w. Raw: %s", err, cleanJSON)
	}
	return &result, nil
}

// buildSystemPrompt constructs the instructions for the AI.
func buildSystemPrompt(today time.Time) string {
	return fmt.Sprintf(`Role: You extract road freight quote requests for a Brazilian minimum-freight (ANTT) calculator.
Context:
- Today: %s (%s)

RULES:

1. PLACES:
   - "origin" is where the cargo is picked up ("de", "saindo de", "origem").
   - "destination" is where it is delivered ("para", "até", "destino", "entregar em").
   - Keep the city and state as written, e.g. "Campinas, SP". Add the state abbreviation when it is unambiguous.
   - If either place is missing, set "intent": "clarification" and ask for it in "reply".

2. DATE:
   - Output "date" as dd/mm/yyyy.
   - Resolve relative dates ("hoje", "amanhã", "segunda que vem") against Today.
   - If no date is mentioned, set "date" to null.

3. AMOUNTS (numbers only, no currency symbols, dot as decimal separator):
   - "difficulty_surcharge": flat extra in BRL for hard access, tolls, escort ("adicional", "taxa de dificuldade").
   - "per_km_surcharge": extra BRL per km ("R$ 0,10 por km").
   - "cargo_weight_kg": cargo weight; convert tonnes to kg (1 t = 1000 kg).
   - Use null for anything not mentioned. Never invent values.

4. REPLY:
   - One short sentence in Brazilian Portuguese.
   - DO NOT quote a price; the calculator does that.

5. Output JSON Schema:
{
  "intent": "quote" | "clarification",
  "date": "dd/mm/yyyy or null",
  "origin": "string or null",
  "destination": "string or null",
  "difficulty_surcharge": number | null,
  "per_km_surcharge": number | null,
  "cargo_weight_kg": number | null,
  "reply": "string"
}
`, today.Format("02/01/2006"), today.Weekday())
}

// cleanJSONString removes markdown code blocks if present (e.g. ```json ... ```)
func cleanJSONString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
