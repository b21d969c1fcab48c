// Package submission turns a filled-in form into a stored result by calling
// the generation endpoint.
package submission

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"geniusdesign/internal/generation"
	"geniusdesign/internal/metrics"
	"geniusdesign/internal/prompts"
	"geniusdesign/internal/storage"
	"geniusdesign/internal/vision"
)

// Progress messages shown while a submission is in flight.
const (
	MessageGenerating = "Generating your design..."
	MessageFinalizing = "Finalizing your results..."
)

// Request is everything the form collected.
type Request struct {
	Flow          storage.FlowType
	Image         string // data URI, or bare base64 with ImageMimeType
	ImageMimeType string
	Style         string
	Details       string
	Holiday       string
	Event         string
	SeasonalTheme string
	Token         string
	// Credits is the last known balance; nil when it has not been loaded.
	Credits *int
}

// Outcome is a finished submission. Stored is false when the result could
// only be kept in memory.
type Outcome struct {
	Result           storage.Result
	Stored           bool
	CreditsRemaining int
}

// Service runs submissions.
type Service struct {
	Endpoint Endpoint
	Results  storage.ResultStore
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
	// Progress, when set, receives the loading messages in order.
	Progress func(message string)
}

// Submit checks credits, image and session in that order, calls the
// endpoint and stores the bundle under a fresh id. Nothing is stored on failure.
func (s *Service) Submit(ctx context.Context, req Request) (Outcome, error) {
	if req.Credits != nil && *req.Credits <= 0 {
		return Outcome{}, ErrNoCredits
	}
	if strings.TrimSpace(req.Image) == "" {
		return Outcome{}, ErrMissingImage
	}
	if strings.TrimSpace(req.Token) == "" {
		return Outcome{}, ErrNotAuthenticated
	}
	if !req.Flow.Valid() {
		req.Flow = storage.FlowDesign
	}

	original, err := vision.ParseDataURI(req.Image, req.ImageMimeType)
	if err != nil {
		return Outcome{}, ErrInvalidImage
	}
	if len(original.Data) > generation.MaxImageBytes {
		return Outcome{}, ErrImageTooLarge
	}
	mime := original.MIMEType
	if mime == "" {
		mime = "image/jpeg"
		original.MIMEType = mime
	}

	body := generation.Request{
		ImageBase64:   base64.StdEncoding.EncodeToString(original.Data),
		ImageMimeType: mime,
		Style:         req.Style,
		Details:       req.Details,
		FlowType:      req.Flow,
	}
	if req.Flow == storage.FlowDecor {
		body.Style = prompts.DecorStyleLabel
		body.Holiday = req.Holiday
		body.Event = req.Event
		body.SeasonalTheme = req.SeasonalTheme
	}

	s.progress(MessageGenerating)
	resp, err := s.Endpoint.Generate(ctx, req.Token, body)
	if err != nil {
		s.logger().Warn("Generation request failed", zap.String("flow", string(req.Flow)), zap.Error(err))
		return Outcome{}, err
	}
	if len(resp.GeneratedImages) == 0 {
		return Outcome{}, newUpstreamError(0, "No image data in response.")
	}
	s.progress(MessageFinalizing)

	result := storage.Result{
		ID:                 uuid.NewString(),
		Type:               req.Flow,
		ImageBase64:        original.DataURI(),
		ImageMimeType:      mime,
		GeneratedImages:    asDataURIs(resp.GeneratedImages),
		GeneratedImageURLs: resp.ImageURLs,
		Style:              body.Style,
		Details:            req.Details,
		Suggestions:        resp.Suggestions,
		Holiday:            body.Holiday,
		Event:              body.Event,
		SeasonalTheme:      body.SeasonalTheme,
		SchemaVersion:      storage.CurrentSchemaVersion,
		CreatedAt:          time.Now().UTC(),
	}
	result.Normalize()

	out := Outcome{Result: result, CreditsRemaining: resp.CreditsRemaining}
	if s.Results == nil {
		return out, nil
	}
	if _, err := s.Results.Put(ctx, result); err != nil {
		s.Metrics.ResultStoreFailed()
		s.logger().Error("Failed to store result, keeping it in memory", zap.String("id", result.ID), zap.Error(err))
		return out, nil
	}
	s.Metrics.ResultStored()
	out.Stored = true
	return out, nil
}

// Message is the text a page shows for a failed submission.
func Message(err error) string {
	var upstream *UpstreamError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &upstream):
		return upstream.Error()
	case errors.Is(err, ErrMissingImage), errors.Is(err, ErrInvalidImage), errors.Is(err, ErrImageTooLarge),
		errors.Is(err, ErrNotAuthenticated), errors.Is(err, ErrNoCredits):
		return err.Error()
	default:
		return fallbackMessage
	}
}

func (s *Service) progress(message string) {
	if s.Progress != nil {
		s.Progress(message)
	}
}

func (s *Service) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func asDataURIs(images []string) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		if !strings.HasPrefix(img, "data:") {
			img = "data:image/png;base64," + img
		}
		out = append(out, img)
	}
	return out
}
