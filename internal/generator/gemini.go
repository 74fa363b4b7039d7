package generator

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	httpclient "github.com/branchmove/branch-service/internal/http"
)

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Gemini generates text through Google's generateContent REST API.
type Gemini struct {
	client *httpclient.Client
	url    string
	apiKey string
}

// NewGemini creates a Gemini provider on top of the retrying HTTP client.
func NewGemini(cfg GeminiConfig, client *httpclient.Client) *Gemini {
	return &Gemini{
		client: client,
		url:    cfg.URL,
		apiKey: cfg.APIKey,
	}
}

// Name implements Generator.
func (g *Gemini) Name() string {
	return ProviderGemini
}

// Generate implements Generator.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	req := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	header := http.Header{}
	header.Set("X-goog-api-key", g.apiKey)

	var resp geminiResponse
	if err := g.client.PostJSON(ctx, g.url, req, header, &resp); err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
