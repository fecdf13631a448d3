package domain

// ModelRate is the published USD price per one million tokens.
type ModelRate struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// PriceTable maps model names to their published per-token rates. It is
// loaded once at process start and read-only thereafter; services receive
// it by value.
type PriceTable map[string]ModelRate

// DefaultPriceTable lists the Gemini API rates notisync uses by default.
// https://ai.google.dev/gemini-api/docs/pricing
func DefaultPriceTable() PriceTable {
	return PriceTable{
		"gemini-2.5-flash-lite":  {InputPerMillion: 0.10, OutputPerMillion: 0.40},
		"gemini-2.5-flash":       {InputPerMillion: 0.15, OutputPerMillion: 0.60},
		"gemini-2.5-pro":         {InputPerMillion: 1.25, OutputPerMillion: 10.00},
		"gemini-3-flash-preview": {InputPerMillion: 0.15, OutputPerMillion: 0.60},
		"gemini-3-pro-preview":   {InputPerMillion: 2.00, OutputPerMillion: 12.00},
		"gemini-embedding-001":   {InputPerMillion: 0.15, OutputPerMillion: 0.00},
	}
}

// Cost converts a token count into USD for the given model. Unknown models
// cost zero.
func (t PriceTable) Cost(model string, inputTokens, outputTokens int) float64 {
	rate := t[model]
	return float64(inputTokens)/1_000_000*rate.InputPerMillion +
		float64(outputTokens)/1_000_000*rate.OutputPerMillion
}

// TokenUsage is the token accounting a model call reports.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
}
