// Package templates holds the embedded HTML templates and the echo renderer
// that executes them.
package templates

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"sort"

	"github.com/labstack/echo/v4"
)

//go:embed base.html partials/*.html posts/*.html users/*.html core/*.html
var files embed.FS

// Pages lists every renderable template name.
var Pages = []string{
	"posts/index.html",
	"posts/group_list.html",
	"posts/profile.html",
	"posts/post_detail.html",
	"posts/create_post.html",
	"posts/follow.html",
	"users/login.html",
	"users/signup.html",
	"core/error.html",
}

type TemplateRegistry struct {
	templates map[string]*template.Template
}

// New parses each page together with base.html and the shared partials.
func New() (*TemplateRegistry, error) {
	t := make(map[string]*template.Template, len(Pages))
	for _, page := range Pages {
		tmpl, err := template.ParseFS(files, "base.html", "partials/*.html", page)
		if err != nil {
			return nil, err
		}
		t[page] = tmpl
	}
	return &TemplateRegistry{templates: t}, nil
}

func Must() *TemplateRegistry {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

func (t *TemplateRegistry) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	tmpl, ok := t.templates[name]
	if !ok {
		err := errors.New("template not found: " + name)
		return err
	}

	return tmpl.ExecuteTemplate(w, "base.html", data)
}

func (t *TemplateRegistry) Names() []string {
	names := make([]string, 0, len(t.templates))
	for name := range t.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
