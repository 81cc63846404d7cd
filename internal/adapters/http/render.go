package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"tagdesk/internal/adapters/http/middleware"
	"tagdesk/internal/application/lookup"
)

//go:embed templates
var templatesFS embed.FS

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// wantsJSON reports whether the client prefers a JSON answer over HTML.
func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

// isFragmentRequest reports whether the inline script asked for a partial.
func isFragmentRequest(r *http.Request) bool {
	return r.Header.Get("X-Fragment") == "1"
}

func isJSONBody(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// sessionCache returns the browser's lookup cache. Requests that bypassed the
// session middleware get a throwaway cache.
func sessionCache(r *http.Request) *lookup.Cache {
	if c, ok := middleware.CacheFromContext(r.Context()); ok {
		return c
	}
	return lookup.NewCache(0)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("json_write_failed", "error", err.Error())
	}
}

func funcMap(r *http.Request) template.FuncMap {
	return template.FuncMap{
		"csrfToken": func() string { return csrf.Token(r) },
		"csrfField": func() template.HTML { return csrf.TemplateField(r) },
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
		"stateName": func(s lookup.State) string { return s.String() },
	}
}

// renderPage renders a full page: layout.html wrapping the "content" block of page.
func renderPage(w http.ResponseWriter, r *http.Request, page string, data any) {
	tpl, err := template.New("layout.html").Funcs(funcMap(r)).ParseFS(templatesFS,
		"templates/layout.html", "templates/partials.html", "templates/"+page)
	if err != nil {
		internalError(w, err)
		return
	}
	execute(w, tpl, "layout.html", data)
}

// renderFragment renders one named block of partials.html.
func renderFragment(w http.ResponseWriter, r *http.Request, name string, data any) {
	tpl, err := template.New("partials.html").Funcs(funcMap(r)).ParseFS(templatesFS, "templates/partials.html")
	if err != nil {
		internalError(w, err)
		return
	}
	execute(w, tpl, name, data)
}

// execute buffers the output so a template error never leaves a half-written page.
func execute(w http.ResponseWriter, tpl *template.Template, name string, data any) {
	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, name, data); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Vary", "Accept, X-Fragment")
	if _, err := buf.WriteTo(w); err != nil {
		slog.Debug("render_write_failed", "error", err.Error())
	}
}
