package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"geniusdesign/internal/prompts"
	"geniusdesign/internal/storage"
)

const defaultTextModel = "gemini-2.5-flash"

// SuggestionRequest is the photo and choices the suggestions are written for.
type SuggestionRequest struct {
	Flow     storage.FlowType
	Image    []byte
	MIMEType string
	Params   prompts.Params
}

// Suggester produces the three suggestion lists for a photo.
type Suggester interface {
	Suggest(ctx context.Context, req SuggestionRequest) (storage.Suggestions, error)
}

// contentGenerator is the subset of *genai.Models the client uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiClient asks a Gemini text model for structured suggestions.
type GeminiClient struct {
	models  contentGenerator
	model   string
	timeout time.Duration
}

// NewGeminiClient constructs a Gemini client for the desired model.
func NewGeminiClient(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini: missing API key")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return newGeminiClient(client.Models, model, timeout), nil
}

func newGeminiClient(models contentGenerator, model string, timeout time.Duration) *GeminiClient {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &GeminiClient{
		models:  models,
		model:   normalizeModel(model),
		timeout: timeout,
	}
}

// Suggest sends the photo with the flow prompt and parses the JSON reply.
func (c *GeminiClient) Suggest(ctx context.Context, req SuggestionRequest) (storage.Suggestions, error) {
	if len(req.Image) == 0 {
		return storage.Suggestions{}, errors.New("gemini: image is required")
	}

	childCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	parts := []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: req.MIMEType, Data: req.Image}},
		genai.NewPartFromText(prompts.SuggestionsPrompt(req.Flow, req.Params)),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   prompts.SuggestionsSchema(req.Flow),
	}

	resp, err := c.models.GenerateContent(childCtx, c.model, contents, config)
	if err != nil {
		return storage.Suggestions{}, fmt.Errorf("gemini: suggestions: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return storage.Suggestions{}, errors.New("gemini returned no candidates")
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return storage.Suggestions{}, errors.New("gemini candidate missing text")
	}
	return ParseSuggestions(text)
}

func normalizeModel(model string) string {
	clean := strings.TrimSpace(model)
	clean = strings.TrimPrefix(clean, "models/")
	if clean == "" {
		return defaultTextModel
	}
	return clean
}
