package projects

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Detail is what the modal renders for one project.
type Detail struct {
	Record
	Body template.HTML
}

// Renderer turns project write-ups into HTML.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer builds a renderer. Raw HTML in descriptions is dropped and
// single newlines are kept as line breaks.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

// Detail renders the modal view of r.
func (rd *Renderer) Detail(r Record) (Detail, error) {
	var buf bytes.Buffer
	if err := rd.md.Convert([]byte(r.FullDescription), &buf); err != nil {
		return Detail{}, fmt.Errorf("rendering %s description: %w", r.Slug, err)
	}
	return Detail{Record: r, Body: template.HTML(buf.String())}, nil
}
