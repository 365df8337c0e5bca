package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed assets/app.css assets/app.js
var assetsFS embed.FS

// Renderer renders the dashboard templates. It satisfies echo.Renderer.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// MustRenderer is NewRenderer for program start-up
func MustRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

// Render executes a named template. The output is buffered so that a failing
// template never writes a half page.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// RenderPage renders a full page to a string
func (r *Renderer) RenderPage(page Page) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, "layout", page, nil); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Assets is the static file system served under /assets
func Assets() fs.FS {
	sub, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}
