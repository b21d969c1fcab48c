package web

import (
	"encoding/base64"
	"errors"
	"html/template"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"geniusdesign/internal/auth"
	"geniusdesign/internal/generation"
	"geniusdesign/internal/prompts"
	"geniusdesign/internal/storage"
	"geniusdesign/internal/submission"
)

// maxUploadBytes bounds the whole multipart form: one photo and the text fields.
const maxUploadBytes = generation.MaxImageBytes + 1<<20

// formValues is what the form shows and resubmits.
type formValues struct {
	ImageData     string
	ImageSrc      template.URL
	Style         string
	Details       string
	Holiday       string
	Event         string
	SeasonalTheme string
	Preset        submission.Preset
}

type formPage struct {
	page
	Flow       storage.FlowType
	Heading    string
	Styles     []string
	Catalog    prompts.Catalog
	Form       formValues
	Error      string
	Upgrade    bool
	PricingURL string
}

// Home renders the landing page.
func (h Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "home", newPage(r, "Home"))
}

// DesignForm renders GET /design.
func (h Handler) DesignForm(w http.ResponseWriter, r *http.Request) {
	h.showForm(w, r, storage.FlowDesign)
}

// DecorForm renders GET /decor.
func (h Handler) DecorForm(w http.ResponseWriter, r *http.Request) {
	h.showForm(w, r, storage.FlowDecor)
}

// SubmitDesign handles POST /design.
func (h Handler) SubmitDesign(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, storage.FlowDesign)
}

// SubmitDecor handles POST /decor.
func (h Handler) SubmitDecor(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, storage.FlowDecor)
}

func (h Handler) showForm(w http.ResponseWriter, r *http.Request, flow storage.FlowType) {
	data := h.newFormPage(r, flow)
	if from := r.URL.Query().Get("from"); from != "" {
		h.prefill(r, &data, from)
	}
	if data.User != nil && data.User.Credits <= 0 {
		data.Upgrade = true
	}
	h.render(w, http.StatusOK, "form", data)
}

// prefill copies a previous result into the form for "Generate Again".
func (h Handler) prefill(r *http.Request, data *formPage, id string) {
	if h.Results == nil {
		return
	}
	result, err := h.Results.Get(r.Context(), id)
	if err != nil {
		h.logger().Warn("Failed to load result for prefill", zap.String("id", id), zap.Error(err))
		return
	}
	if result == nil {
		return
	}
	data.Form.ImageData = result.ImageBase64
	data.Form.ImageSrc = imageURL(result.ImageBase64)
	data.Form.Details = result.Details
	if data.Flow == storage.FlowDesign {
		data.Form.Style = result.Style
		return
	}
	data.Form.Holiday = result.Holiday
	data.Form.Event = result.Event
	data.Form.SeasonalTheme = result.SeasonalTheme
}

func (h Handler) newFormPage(r *http.Request, flow storage.FlowType) formPage {
	heading := "Design your Space"
	if flow == storage.FlowDecor {
		heading = "Decorate your Space"
	}
	catalog := h.catalog()
	data := formPage{
		page:       newPage(r, heading),
		Flow:       flow,
		Heading:    heading,
		Styles:     catalog.DesignStyles,
		Catalog:    catalog,
		PricingURL: h.PricingURL,
		Form: formValues{
			Holiday:       prompts.None,
			Event:         prompts.None,
			SeasonalTheme: prompts.None,
		},
	}
	if len(data.Styles) > 0 {
		data.Form.Style = data.Styles[0]
	}
	return data
}

func (h Handler) submit(w http.ResponseWriter, r *http.Request, flow storage.FlowType) {
	data := h.newFormPage(r, flow)
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		data.Error = "The upload is too large."
		h.render(w, http.StatusRequestEntityTooLarge, "form", data)
		return
	}

	data.Form.Style = strings.TrimSpace(r.FormValue("style"))
	data.Form.Details = strings.TrimSpace(r.FormValue("details"))
	data.Form.Holiday = r.FormValue("holiday")
	data.Form.Event = r.FormValue("event")
	data.Form.SeasonalTheme = r.FormValue("seasonal_theme")
	data.Form.Preset = submission.Preset{
		Name:           strings.TrimSpace(r.FormValue("preset_name")),
		ColorPalette:   r.FormValue("preset_color_palette"),
		FurnitureTypes: r.FormValue("preset_furniture_types"),
		DecorElements:  r.FormValue("preset_decor_elements"),
		OverallMood:    r.FormValue("preset_overall_mood"),
	}
	if flow == storage.FlowDesign && data.Form.Preset.Valid() {
		data.Styles = data.Form.Preset.WithStyle(data.Styles)
		data.Form.Style = data.Form.Preset.Name
		if details := data.Form.Preset.Details(); details != "" {
			data.Form.Details = details
		}
	}

	image, mime, err := readImage(r)
	if errors.Is(err, submission.ErrImageTooLarge) {
		data.Error = err.Error()
		h.render(w, http.StatusRequestEntityTooLarge, "form", data)
		return
	}
	if err != nil {
		h.logger().Warn("Failed to read uploaded image", zap.Error(err))
	}
	if image != "" {
		data.Form.ImageData = image
		data.Form.ImageSrc = imageURL(image)
	}

	req := submission.Request{
		Flow:          flow,
		Image:         image,
		ImageMimeType: mime,
		Style:         data.Form.Style,
		Details:       data.Form.Details,
		Holiday:       data.Form.Holiday,
		Event:         data.Form.Event,
		SeasonalTheme: data.Form.SeasonalTheme,
		Token:         auth.TokenFromContext(r.Context()),
	}
	if data.User != nil {
		credits := data.User.Credits
		req.Credits = &credits
	}

	out, err := h.Submissions.Submit(r.Context(), req)
	if err != nil {
		data.Error = submission.Message(err)
		status := http.StatusBadRequest
		switch {
		case submission.IsUpgradeRequired(err):
			data.Upgrade = true
			data.Error = ""
			status = http.StatusPaymentRequired
		case errors.Is(err, submission.ErrNotAuthenticated):
			status = http.StatusUnauthorized
		case !errors.Is(err, submission.ErrMissingImage) && !errors.Is(err, submission.ErrInvalidImage) &&
			!errors.Is(err, submission.ErrImageTooLarge):
			status = http.StatusBadGateway
		}
		h.render(w, status, "form", data)
		return
	}

	if out.Stored {
		http.Redirect(w, r, "/result/"+out.Result.ID, http.StatusSeeOther)
		return
	}
	// The store is unavailable: show the result straight from memory.
	if data.User != nil {
		data.User.Credits = out.CreditsRemaining
	}
	h.render(w, http.StatusOK, "result", h.newResultPage(data.page, &out.Result, 0, true, false))
}

// readImage returns the uploaded file as a data URI, or the carried-over
// image from a prefilled form.
func readImage(r *http.Request) (string, string, error) {
	file, header, err := r.FormFile("image")
	if err == nil {
		defer file.Close()
		raw, err := io.ReadAll(io.LimitReader(file, generation.MaxImageBytes+1))
		if err != nil {
			return "", "", err
		}
		if len(raw) > generation.MaxImageBytes {
			return "", "", submission.ErrImageTooLarge
		}
		if len(raw) > 0 {
			mime := header.Header.Get("Content-Type")
			if !strings.HasPrefix(mime, "image/") {
				mime = http.DetectContentType(raw)
			}
			return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(raw), mime, nil
		}
	} else if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		return "", "", err
	}

	carried := strings.TrimSpace(r.FormValue("image_data"))
	if !strings.HasPrefix(carried, "data:image/") {
		return "", "", nil
	}
	mime, _, _ := strings.Cut(strings.TrimPrefix(carried, "data:"), ";")
	return carried, mime, nil
}

func (h Handler) catalog() prompts.Catalog {
	if len(h.Catalog.DesignStyles) == 0 {
		return prompts.DefaultCatalog()
	}
	return h.Catalog
}
