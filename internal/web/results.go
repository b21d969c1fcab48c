package web

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"geniusdesign/internal/compare"
	"geniusdesign/internal/prompts"
	"geniusdesign/internal/storage"
	"geniusdesign/internal/vision"
)

type variation struct {
	Number   int
	Src      template.URL
	Link     string
	Selected bool
}

type resultPage struct {
	page
	Result           *storage.Result
	PageTitle        string
	SuggestionsTitle string
	Compare          *compare.View
	BeforeSrc        template.URL
	AfterSrc         template.URL
	ClipStyle        template.CSS
	DividerStyle     template.CSS
	Variations       []variation
	Selected         int
	ShareURL         string
	Owner            bool
	Stored           bool
}

// Result renders GET /result/{id}. ?v=n picks the variation, counted from 1.
func (h Handler) Result(w http.ResponseWriter, r *http.Request) {
	result := h.load(w, r)
	if result == nil {
		return
	}
	data := h.newResultPage(newPage(r, "Your result"), result, selectedIndex(r, result), true, true)
	h.render(w, http.StatusOK, "result", data)
}

// Share renders the public GET /s/{id}.
func (h Handler) Share(w http.ResponseWriter, r *http.Request) {
	result := h.load(w, r)
	if result == nil {
		return
	}
	data := h.newResultPage(newPage(r, "Shared design"), result, selectedIndex(r, result), false, true)
	h.render(w, http.StatusOK, "result", data)
}

// DownloadImage serves GET /result/{id}/images/{n} as an attachment.
func (h Handler) DownloadImage(w http.ResponseWriter, r *http.Request) {
	result := h.load(w, r)
	if result == nil {
		return
	}
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil || n < 1 || n > len(result.GeneratedImages) {
		h.NotFound(w, r)
		return
	}
	img, err := vision.ParseDataURI(result.GeneratedImages[n-1], "image/png")
	if err != nil {
		h.logger().Warn("Stored variation is not decodable", zap.String("id", result.ID), zap.Int("n", n), zap.Error(err))
		h.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", img.MIMEType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+prompts.ImageFilename(result.ID, n)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	_, _ = w.Write(img.Data)
}

// SuggestionsText serves GET /result/{id}/suggestions.txt.
func (h Handler) SuggestionsText(w http.ResponseWriter, r *http.Request) {
	result := h.load(w, r)
	if result == nil {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+prompts.SuggestionsFilename(result.ID)+`"`)
	_, _ = w.Write([]byte(prompts.FormatSuggestionsText(*result)))
}

// load fetches the {id} result, rendering the not-found page when it is
// missing or has nothing to show.
func (h Handler) load(w http.ResponseWriter, r *http.Request) *storage.Result {
	id := chi.URLParam(r, "id")
	if h.Results == nil || id == "" {
		h.NotFound(w, r)
		return nil
	}
	result, err := h.Results.Get(r.Context(), id)
	if err != nil {
		h.logger().Error("Failed to load result", zap.String("id", id), zap.Error(err))
		h.NotFound(w, r)
		return nil
	}
	if !result.Renderable() {
		h.NotFound(w, r)
		return nil
	}
	return result
}

func (h Handler) newResultPage(p page, result *storage.Result, selected int, owner, stored bool) resultPage {
	data := resultPage{
		page:             p,
		Result:           result,
		PageTitle:        "Your New Design",
		SuggestionsTitle: "Design Suggestions",
		Selected:         selected + 1,
		Owner:            owner,
		Stored:           stored,
	}
	if result.Type == storage.FlowDecor {
		data.PageTitle = "Your Decorated Space"
		data.SuggestionsTitle = "Decor Suggestions"
	}
	if stored {
		data.ShareURL = "/s/" + result.ID
	}

	// Share pages prefer archived URLs over inline data when they exist.
	sources := result.GeneratedImages
	if !owner && len(result.GeneratedImageURLs) == len(result.GeneratedImages) {
		sources = result.GeneratedImageURLs
	}
	base := "/result/" + result.ID
	if !owner {
		base = data.ShareURL
	}
	for i, src := range sources {
		data.Variations = append(data.Variations, variation{
			Number:   i + 1,
			Src:      imageURL(src),
			Link:     base + "?v=" + strconv.Itoa(i+1),
			Selected: i == selected,
		})
	}

	if result.ImageBase64 == "" {
		return data
	}
	slider, err := compare.New(result.ImageBase64, sources[selected], nil, nil)
	if err != nil {
		return data
	}
	view := slider.View()
	data.Compare = &view
	data.Slider = h.SliderAssets
	data.BeforeSrc = imageURL(view.Before)
	data.AfterSrc = imageURL(view.After)
	data.ClipStyle = template.CSS("clip-path: " + view.Clip)
	data.DividerStyle = template.CSS("left: " + view.DividerLeft)
	return data
}

func selectedIndex(r *http.Request, result *storage.Result) int {
	v, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("v")))
	if err != nil || v < 1 || v > len(result.GeneratedImages) {
		return 0
	}
	return v - 1
}
