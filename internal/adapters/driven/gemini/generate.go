package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/minsukim/notisync/internal/core/domain"
	"github.com/minsukim/notisync/internal/core/ports/driven"
)

// Interface checks.
var (
	_ driven.VisionModel  = (*VisionModel)(nil)
	_ driven.TokenCounter = (*TokenCounter)(nil)
	_ driven.AnswerModel  = (*AnswerModel)(nil)
)

// generateContent wire types.

type generatePart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *generateInline `json:"inlineData,omitempty"`
}

type generateInline struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
	Role  string         `json:"role,omitempty"`
}

type generateTool struct {
	FileSearch *fileSearchTool `json:"fileSearch,omitempty"`
}

type fileSearchTool struct {
	FileSearchStoreNames []string `json:"fileSearchStoreNames"`
}

type generateRequest struct {
	Contents []generateContent `json:"contents"`
	Tools    []generateTool    `json:"tools,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []generatePart `json:"parts"`
		} `json:"content"`
		GroundingMetadata *struct {
			GroundingChunks []struct {
				RetrievedContext *struct {
					Title string `json:"title"`
				} `json:"retrievedContext"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

// text concatenates the first candidate's text parts.
func (r *generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, part := range r.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String()
}

// usage maps the reported token counts into the domain type.
func (r *generateResponse) usage() domain.TokenUsage {
	return domain.TokenUsage{
		InputTokens:  r.UsageMetadata.PromptTokenCount,
		OutputTokens: r.UsageMetadata.CandidatesTokenCount,
	}
}

// grounding renders the retrieved source titles, one per line.
func (r *generateResponse) grounding() string {
	if len(r.Candidates) == 0 || r.Candidates[0].GroundingMetadata == nil {
		return ""
	}
	var titles []string
	for _, chunk := range r.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk.RetrievedContext != nil && chunk.RetrievedContext.Title != "" {
			titles = append(titles, chunk.RetrievedContext.Title)
		}
	}
	return strings.Join(titles, "\n")
}

// VisionModel runs image analysis calls against a fixed vision model.
type VisionModel struct {
	client *Client
	model  string
}

// NewVisionModel creates a vision model adapter.
func NewVisionModel(client *Client, model string) *VisionModel {
	return &VisionModel{client: client, model: model}
}

// Describe sends the prompt plus the image as inline data and returns the
// raw text reply with the reported token usage.
func (v *VisionModel) Describe(ctx context.Context, prompt string, image []byte, mimeType string) (string, domain.TokenUsage, error) {
	req := generateRequest{
		Contents: []generateContent{{
			Parts: []generatePart{
				{Text: prompt},
				{InlineData: &generateInline{
					MIMEType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(image),
				}},
			},
		}},
	}

	var resp generateResponse
	err := v.client.doJSON(ctx, http.MethodPost, "models/"+v.model+":generateContent", req, &resp)
	if err != nil {
		return "", domain.TokenUsage{}, fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", domain.TokenUsage{}, fmt.Errorf("gemini: no candidates returned")
	}
	return resp.text(), resp.usage(), nil
}

// ModelName returns the vision model identifier, used for pricing.
func (v *VisionModel) ModelName() string { return v.model }

// TokenCounter counts billable tokens against a fixed embedding model.
type TokenCounter struct {
	client *Client
	model  string
}

// NewTokenCounter creates a token counter adapter.
func NewTokenCounter(client *Client, model string) *TokenCounter {
	return &TokenCounter{client: client, model: model}
}

type countTokensResponse struct {
	TotalTokens int `json:"totalTokens"`
}

// CountTokens returns the model's token count for text.
func (t *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	req := generateRequest{
		Contents: []generateContent{{Parts: []generatePart{{Text: text}}}},
	}

	var resp countTokensResponse
	err := t.client.doJSON(ctx, http.MethodPost, "models/"+t.model+":countTokens", req, &resp)
	if err != nil {
		return 0, fmt.Errorf("count tokens: %w", err)
	}
	return resp.TotalTokens, nil
}

// AnswerModel generates grounded answers with the file search tool
// attached to the request.
type AnswerModel struct {
	client *Client
}

// NewAnswerModel creates a grounded answer adapter.
func NewAnswerModel(client *Client) *AnswerModel {
	return &AnswerModel{client: client}
}

// AnswerWithStore asks the model the query with the store attached as the
// retrieval corpus. The grounding return value lists the retrieved source
// titles, one per line.
func (a *AnswerModel) AnswerWithStore(ctx context.Context, storeName, model, query string) (string, string, domain.TokenUsage, error) {
	req := generateRequest{
		Contents: []generateContent{{
			Role:  "user",
			Parts: []generatePart{{Text: query}},
		}},
		Tools: []generateTool{{
			FileSearch: &fileSearchTool{FileSearchStoreNames: []string{storeName}},
		}},
	}

	var resp generateResponse
	err := a.client.doJSON(ctx, http.MethodPost, "models/"+model+":generateContent", req, &resp)
	if err != nil {
		return "", "", domain.TokenUsage{}, fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", "", domain.TokenUsage{}, fmt.Errorf("gemini: no candidates returned")
	}
	return resp.text(), resp.grounding(), resp.usage(), nil
}
