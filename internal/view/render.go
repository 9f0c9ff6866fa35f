package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/ariefcatur/go-storefront/internal/catalog"
)

//go:embed templates/*.html
var templateFS embed.FS

type Page struct {
	Title string
	Menu  Menu
}

type HomePage struct {
	Page
	Featured   []ProductCard
	Products   []ProductCard
	Categories []catalog.CategoryCount
	Category   string
	Query      string
}

type ProductPage struct {
	Page
	Product ProductDetail
}

type CartPage struct {
	Page
	Cart CartView
}

// Renderer renders view-models to HTML pages.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: map[string]*template.Template{}}
	for _, name := range []string{"home", "product", "cart"} {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render writes the page only after it rendered completely.
func (r *Renderer) Render(w io.Writer, page string, data any) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}
