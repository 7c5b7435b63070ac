// Package web holds the HTML templates of the upload and results pages.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/finstat/internal/report"
)

//go:embed templates/*.html
var files embed.FS

// Renderer executes the embedded page templates.
type Renderer struct {
	templates *template.Template
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"money": report.FormatAmount,
		"chartPath": func(set report.ChartSet, kind report.ChartKind) string {
			return set.Path(kind)
		},
		"kinds": func() []report.ChartKind {
			return []report.ChartKind{report.ChartLine, report.ChartBar, report.ChartPie, report.ChartHistogram}
		},
	}
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	tmpl, err := template.New("").Funcs(funcMap()).ParseFS(files, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	return &Renderer{templates: tmpl}, nil
}

// Render writes the named page with status. The page is executed into a
// buffer first so a template failure never leaves a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write response", "template", name, "error", err)
	}
}
