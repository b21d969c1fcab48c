package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// Image is raw image bytes with their MIME type.
type Image struct {
	Data     []byte
	MIMEType string
}

// DataURI renders the image as a data: URI.
func (i Image) DataURI() string {
	mime := i.MIMEType
	if strings.TrimSpace(mime) == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// ParseDataURI accepts either a data: URI or bare base64 and decodes it.
// fallbackMIME is used when the input carries no MIME type.
func ParseDataURI(raw, fallbackMIME string) (Image, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Image{}, errors.New("vision: empty image")
	}
	mime := fallbackMIME
	if strings.HasPrefix(raw, "data:") {
		header, payload, ok := strings.Cut(raw, ",")
		if !ok {
			return Image{}, errors.New("vision: invalid data URL")
		}
		if m := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64"); m != "" {
			mime = m
		}
		raw = payload
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return Image{}, fmt.Errorf("vision: decode image: %w", err)
	}
	if len(data) == 0 {
		return Image{}, errors.New("vision: empty image")
	}
	return Image{Data: data, MIMEType: mime}, nil
}

// Renderer produces one redesigned variation of a source photo.
type Renderer interface {
	Render(ctx context.Context, source Image, prompt string) (Image, error)
}

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiImageGenerator renders variations via Gemini image outputs.
type GeminiImageGenerator struct {
	models  contentGenerator
	model   string
	timeout time.Duration
}

const defaultImageModel = "gemini-2.5-flash-image"

// NewGeminiImageGenerator constructs a generator able to request inline images.
func NewGeminiImageGenerator(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiImageGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("vision: image generator unavailable")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("vision: create genai client: %w", err)
	}
	return newGeminiImageGenerator(client.Models, model, timeout), nil
}

func newGeminiImageGenerator(models contentGenerator, model string, timeout time.Duration) *GeminiImageGenerator {
	if strings.TrimSpace(model) == "" {
		model = defaultImageModel
	}
	model = strings.TrimPrefix(strings.TrimSpace(model), "models/")
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &GeminiImageGenerator{models: models, model: model, timeout: timeout}
}

// Render sends the photo and prompt and returns the first inline image.
func (g *GeminiImageGenerator) Render(ctx context.Context, source Image, prompt string) (Image, error) {
	if len(source.Data) == 0 {
		return Image{}, errors.New("vision: source image is required")
	}
	if strings.TrimSpace(prompt) == "" {
		return Image{}, errors.New("vision: empty prompt for rendering")
	}

	childCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	parts := []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: source.MIMEType, Data: source.Data}},
		genai.NewPartFromText(prompt),
	}
	resp, err := g.models.GenerateContent(childCtx, g.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		&genai.GenerateContentConfig{
			ResponseModalities: []string{string(genai.ModalityImage), string(genai.ModalityText)},
		})
	if err != nil {
		return Image{}, fmt.Errorf("vision: render failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Image{}, errors.New("vision: render returned no candidates")
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		mime := part.InlineData.MIMEType
		if strings.TrimSpace(mime) == "" {
			mime = "image/png"
		}
		return Image{Data: part.InlineData.Data, MIMEType: mime}, nil
	}

	// The model explains refusals in text; surface that as the error.
	if text := strings.TrimSpace(resp.Text()); text != "" {
		return Image{}, errors.New(text)
	}
	return Image{}, errors.New("No image data in response.")
}
