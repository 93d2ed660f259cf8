package httpx

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"
)

//go:embed templates
var templateFS embed.FS

// TemplateRenderer renders one page template inside the shared layout.
type TemplateRenderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// NewTemplateRenderer parses layout.tmpl once and clones it for every file
// under pages/, so each page can define its own "content" block.
func NewTemplateRenderer(fsys fs.FS, logger *slog.Logger) (*TemplateRenderer, error) {
	if fsys == nil {
		return nil, errors.New("template filesystem is required")
	}
	base, err := template.New("layout").Funcs(templateFuncs()).ParseFS(fsys, "templates/layout.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	files, err := fs.Glob(fsys, "templates/pages/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	pages := make(map[string]*template.Template, len(files))
	for _, f := range files {
		t, cloneErr := base.Clone()
		if cloneErr != nil {
			return nil, fmt.Errorf("clone layout: %w", cloneErr)
		}
		if _, err = t.ParseFS(fsys, f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		pages[strings.TrimSuffix(path.Base(f), ".tmpl")] = t
	}
	return &TemplateRenderer{pages: pages, logger: logger}, nil
}

// Render writes page with status. Output is buffered so a template failure
// never leaves a half-written page.
func (r *TemplateRenderer) Render(w http.ResponseWriter, status int, page string, data any) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		if r.logger != nil {
			r.logger.Error("template execution failed", slog.String("page", page), slog.Any("error", err))
		}
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 2, 2006")
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"join": strings.Join,
		"split": func(s string) []string {
			var out []string
			for _, p := range strings.Split(s, ",") {
				if p = strings.TrimSpace(p); p != "" {
					out = append(out, p)
				}
			}
			return out
		},
		"add": func(a, b int) int { return a + b },
	}
}
