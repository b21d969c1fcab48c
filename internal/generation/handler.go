package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"geniusdesign/internal/auth"
	"geniusdesign/internal/events"
	"geniusdesign/internal/media"
	"geniusdesign/internal/metrics"
	"geniusdesign/internal/prompts"
	"geniusdesign/internal/storage"
	"geniusdesign/internal/vision"
)

// MaxImageBytes is the largest decoded photo the endpoint accepts.
const MaxImageBytes = 20 << 20

// maxBodyBytes fits a base64-encoded MaxImageBytes photo plus the text fields.
const maxBodyBytes = (MaxImageBytes+2)/3*4 + 1<<20

// Request is the body of POST /api/generate.
type Request struct {
	ImageBase64   string           `json:"imageBase64"`
	ImageMimeType string           `json:"imageMimeType"`
	Style         string           `json:"style"`
	Details       string           `json:"details"`
	FlowType      storage.FlowType `json:"flowType"`
	Holiday       string           `json:"holiday,omitempty"`
	Event         string           `json:"event,omitempty"`
	SeasonalTheme string           `json:"seasonalTheme,omitempty"`
}

// Response is the success body of POST /api/generate.
type Response struct {
	Success          bool                `json:"success"`
	Suggestions      storage.Suggestions `json:"suggestions"`
	GeneratedImages  []string            `json:"generatedImages"`
	ImageURLs        []string            `json:"imageUrls,omitempty"`
	CreditsRemaining int                 `json:"creditsRemaining"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handler authenticates, charges one credit and runs the generator.
type Handler struct {
	Generator Generator
	Profiles  storage.ProfileStore
	Sessions  auth.SessionManager
	Media     media.Uploader
	Events    events.Publisher
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "GET, POST, PUT, DELETE, OPTIONS",
	"Access-Control-Allow-Headers": "Content-Type, Authorization, X-Client-Info, Apikey",
}

// Generate handles POST and OPTIONS /api/generate.
func (h Handler) Generate(w http.ResponseWriter, r *http.Request) {
	for k, v := range corsHeaders {
		w.Header().Set(k, v)
	}
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	logger := h.logger()

	header := r.Header.Get("Authorization")
	if strings.TrimSpace(header) == "" {
		writeError(w, http.StatusUnauthorized, "Missing authorization header")
		return
	}
	token, ok := auth.BearerToken(header)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	claims, err := h.Sessions.Parse(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	userID := claims.UserID

	profile, err := h.Profiles.GetProfile(r.Context(), userID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		logger.Error("Failed to fetch user profile", zap.String("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch user profile")
		return
	}
	if err != nil || profile.Credits <= 0 {
		h.Metrics.CreditDenied()
		writeError(w, http.StatusForbidden, "Insufficient credits")
		return
	}

	var req Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	remaining, err := h.Profiles.ReserveCredit(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrInsufficientCredits) || errors.Is(err, storage.ErrNotFound) {
			h.Metrics.CreditDenied()
			writeError(w, http.StatusForbidden, "Insufficient credits")
			return
		}
		logger.Error("Failed to reserve credit", zap.String("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch user profile")
		return
	}

	h.publish(userID, in.Flow, events.StageGenerating, "Generating your design...")
	started := time.Now()

	ctx := r.Context()
	out, err := h.Generator.Generate(ctx, in)
	if err == nil && len(out.Images) == 0 {
		err = errors.New("No image data in response.")
	}
	if err != nil {
		h.refund(userID)
		h.Metrics.GenerationFailed(failureReason(err))
		h.publish(userID, in.Flow, events.StageFailed, err.Error())
		logger.Error("Generation failed", zap.String("user_id", userID), zap.String("flow", string(in.Flow)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.publish(userID, in.Flow, events.StageFinalizing, "Finalizing your results...")

	resp := Response{
		Success:          true,
		Suggestions:      out.Suggestions,
		GeneratedImages:  make([]string, len(out.Images)),
		CreditsRemaining: remaining,
	}
	resp.Suggestions.General = nonNil(resp.Suggestions.General)
	resp.Suggestions.LowBudget = nonNil(resp.Suggestions.LowBudget)
	resp.Suggestions.DIY = nonNil(resp.Suggestions.DIY)
	for i, img := range out.Images {
		resp.GeneratedImages[i] = img.DataURI()
	}
	resp.ImageURLs = h.archive(ctx, userID, out.Images)

	h.Metrics.GenerationSucceeded(string(in.Flow), time.Since(started))
	h.publish(userID, in.Flow, events.StageCompleted, "Your results are ready.")
	logger.Info("Generation completed",
		zap.String("user_id", userID),
		zap.String("flow", string(in.Flow)),
		zap.Int("variations", len(out.Images)),
		zap.Int("credits_remaining", remaining),
		zap.Duration("took", time.Since(started)),
	)
	writeJSON(w, http.StatusOK, resp)
}

func (req Request) input() (Input, error) {
	if req.FlowType == "" {
		req.FlowType = storage.FlowDesign
	}
	if !req.FlowType.Valid() {
		return Input{}, fmt.Errorf("Unknown flow type %q", req.FlowType)
	}
	if strings.TrimSpace(req.ImageBase64) == "" {
		return Input{}, errors.New("Missing image")
	}
	mime := strings.TrimSpace(req.ImageMimeType)
	if mime == "" {
		mime = "image/jpeg"
	}
	img, err := vision.ParseDataURI(req.ImageBase64, mime)
	if err != nil {
		return Input{}, errors.New("Invalid image data")
	}
	if len(img.Data) > MaxImageBytes {
		return Input{}, errors.New("Image is too large")
	}

	style := strings.TrimSpace(req.Style)
	if style == "" && req.FlowType == storage.FlowDecor {
		style = prompts.DecorStyleLabel
	}
	params := prompts.Params{Style: style, Details: strings.TrimSpace(req.Details)}
	if req.FlowType == storage.FlowDecor {
		params.Holiday = req.Holiday
		params.Event = req.Event
		params.SeasonalTheme = req.SeasonalTheme
	}
	return Input{Flow: req.FlowType, Image: img, Params: params}, nil
}

// archive uploads every variation under a fresh directory. URLs are only
// returned when all uploads succeeded.
func (h Handler) archive(ctx context.Context, userID string, images []vision.Image) []string {
	if h.Media == nil {
		return nil
	}
	dir := media.ArchiveDir(userID, time.Now())
	urls := make([]string, 0, len(images))
	for i, img := range images {
		res, err := h.Media.Upload(ctx, media.UploadInput{
			Filename:    media.VariationFilename(dir, i, img.MIMEType),
			ContentType: img.MIMEType,
			Body:        bytes.NewReader(img.Data),
			Size:        int64(len(img.Data)),
		})
		if err != nil {
			if !errors.Is(err, media.ErrUploaderDisabled) {
				h.logger().Warn("Failed to archive variation", zap.Int("index", i), zap.Error(err))
			}
			return nil
		}
		urls = append(urls, res.URL)
	}
	return urls
}

func (h Handler) refund(userID string) {
	// The request context may already be cancelled; the refund must still land.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := h.Profiles.RefundCredit(ctx, userID); err != nil {
		h.logger().Error("Failed to refund credit", zap.String("user_id", userID), zap.Error(err))
	}
}

func (h Handler) publish(userID string, flow storage.FlowType, stage events.Stage, message string) {
	if h.Events == nil {
		return
	}
	h.Events.Publish(events.Event{UserID: userID, Flow: string(flow), Stage: stage, Message: message})
}

func (h Handler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "upstream"
	}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Catalog serves the style and occasion lists the forms offer.
func Catalog(w http.ResponseWriter, _ *http.Request) {
	for k, v := range corsHeaders {
		w.Header().Set(k, v)
	}
	writeJSON(w, http.StatusOK, prompts.DefaultCatalog())
}
