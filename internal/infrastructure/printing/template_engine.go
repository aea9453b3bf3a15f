package printing

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"maps"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TemplateEngine renders HTML templates with formatting helpers for es-CL
// documents
type TemplateEngine struct {
	funcMap  template.FuncMap
	location *time.Location
}

// TemplateEngineOption configures the template engine
type TemplateEngineOption func(*TemplateEngine)

// WithTemplateLocation sets the zone dates are shown in
func WithTemplateLocation(loc *time.Location) TemplateEngineOption {
	return func(e *TemplateEngine) {
		if loc != nil {
			e.location = loc
		}
	}
}

// WithFuncs adds or replaces template functions
func WithFuncs(funcs template.FuncMap) TemplateEngineOption {
	return func(e *TemplateEngine) {
		maps.Copy(e.funcMap, funcs)
	}
}

// NewTemplateEngine creates a new template engine with default configuration
func NewTemplateEngine(opts ...TemplateEngineOption) *TemplateEngine {
	e := &TemplateEngine{location: time.UTC}

	e.funcMap = template.FuncMap{
		"formatDate":     e.formatDate,
		"formatDateTime": e.formatDateTime,

		"truncate": truncate,
		"upper":    strings.ToUpper,
		"lower":    strings.ToLower,
		"title":    titleCase,
		"trim":     strings.TrimSpace,

		"inc":     func(i int) int { return i + 1 },
		"even":    func(i int) bool { return i%2 == 0 },
		"default": defaultString,
	}

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Parse compiles a template with the engine's functions
func (e *TemplateEngine) Parse(name, content string) (*template.Template, error) {
	if strings.TrimSpace(content) == "" {
		return nil, NewRenderError(ErrCodeInvalidHTML, "template content is empty", nil)
	}
	tmpl, err := template.New(name).Funcs(e.funcMap).Parse(content)
	if err != nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "failed to parse template", err)
	}
	return tmpl, nil
}

// Execute renders a parsed template
func (e *TemplateEngine) Execute(ctx context.Context, tmpl *template.Template, data any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute template", err)
	}
	return buf.String(), nil
}

// RenderString parses and renders a template string in one step
func (e *TemplateEngine) RenderString(ctx context.Context, name, content string, data any) (string, error) {
	tmpl, err := e.Parse(name, content)
	if err != nil {
		return "", err
	}
	return e.Execute(ctx, tmpl, data)
}

// GetFuncMap returns a copy of the template function map
func (e *TemplateEngine) GetFuncMap() template.FuncMap {
	return maps.Clone(e.funcMap)
}

// formatDate writes dates the es-CL way, e.g. 09-03-2024
func (e *TemplateEngine) formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(e.location).Format("02-01-2006")
}

func (e *TemplateEngine) formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(e.location).Format("02-01-2006 15:04")
}

// truncate shortens s to max runes, appending "…"
func truncate(s string, max int) string {
	runes := []rune(s)
	if max <= 0 || len(runes) <= max {
		return s
	}
	return fmt.Sprintf("%s…", string(runes[:max]))
}

func titleCase(s string) string {
	return cases.Title(language.LatinAmericanSpanish).String(s)
}

func defaultString(def, v string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
