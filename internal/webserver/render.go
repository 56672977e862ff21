package webserver

import (
	"bytes"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// Renderer renders page templates inside a shared set of layout templates.
// Every page is parsed into its own clone of the layouts so pages can
// redefine the same blocks.
type Renderer struct {
	templates map[string]*template.Template
}

// NewRenderer parses layoutGlob once and every file matching pageGlob on
// top of it. Pages are named after their file name without extension.
func NewRenderer(fsys fs.FS, layoutGlob, pageGlob string, funcs template.FuncMap) (*Renderer, error) {
	base, err := template.New("").Funcs(funcs).ParseFS(fsys, layoutGlob)
	if err != nil {
		return nil, errors.Wrap(err, "parse layouts")
	}
	pages, err := fs.Glob(fsys, pageGlob)
	if err != nil {
		return nil, errors.Wrap(err, "glob pages")
	}
	r := &Renderer{templates: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err = t.ParseFS(fsys, page); err != nil {
			return nil, errors.Wrapf(err, "parse %s", page)
		}
		name := strings.TrimSuffix(path.Base(page), path.Ext(page))
		r.templates[name] = t
	}
	return r, nil
}

// Has reports whether a page template is known.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// Render executes the "base" layout of the named page. Output is buffered
// so a template error never leaves a half written response.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.templates[name]
	if !ok {
		return errors.Errorf("template %s not found", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		return errors.Wrapf(err, "render %s", name)
	}
	_, err := buf.WriteTo(w)
	return err
}
