// Package web serves the server-rendered pages: the submission forms, the
// result and share pages and the sign-in page.
package web

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"go.uber.org/zap"

	"geniusdesign/internal/auth"
	"geniusdesign/internal/prompts"
	"geniusdesign/internal/storage"
	"geniusdesign/internal/submission"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var pages = parsePages("home", "form", "result", "auth", "notfound")

func parsePages(names ...string) map[string]*template.Template {
	out := make(map[string]*template.Template, len(names))
	for _, name := range names {
		out[name] = template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html"))
	}
	return out
}

// Handler renders every HTML route.
type Handler struct {
	Results      storage.ResultStore
	Submissions  *submission.Service
	Accounts     auth.Service
	Sessions     auth.SessionManager
	Catalog      prompts.Catalog
	PricingURL   string
	// SliderAssets enables the draggable slider scripts; see SliderAssets.
	SliderAssets bool
	Logger       *zap.Logger
}

// page carries the fields the layout needs.
type page struct {
	Title  string
	User   *storage.Profile
	Slider bool
}

func newPage(r *http.Request, title string) page {
	p := page{Title: title}
	if profile, ok := auth.UserFromContext(r.Context()); ok {
		p.User = &profile
	}
	return p
}

func (h Handler) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := pages[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		h.logger().Error("Failed to render page", zap.String("page", name), zap.Error(err))
		http.Error(w, "Something went wrong.", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// NotFound renders the "Not found." page.
func (h Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusNotFound, "notfound", newPage(r, "Not found"))
}

func (h Handler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

// Static serves assets from dir when it holds the file, and from the
// embedded copies otherwise. The wasm slider build lands in dir.
func Static(dir string) http.Handler {
	embedded, _ := fs.Sub(staticFS, "static")
	fallback := http.FileServer(http.FS(embedded))
	if dir == "" {
		return fallback
	}
	disk := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := path.Clean("/" + r.URL.Path)
		if info, err := os.Stat(dir + name); err == nil && !info.IsDir() {
			disk.ServeHTTP(w, r)
			return
		}
		fallback.ServeHTTP(w, r)
	})
}

// imageURL marks a stored data: URI or http(s) URL as safe for src attributes.
// Anything else is dropped.
func imageURL(raw string) template.URL {
	switch {
	case strings.HasPrefix(raw, "data:image/"),
		strings.HasPrefix(raw, "https://"),
		strings.HasPrefix(raw, "http://"),
		strings.HasPrefix(raw, "/"):
		return template.URL(raw)
	default:
		return ""
	}
}
