// Package render serves the server-side HTML pages through echo's Renderer.
package render

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"path"

	"userhub/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const layoutFile = "templates/layout.html"

//go:embed templates/*.html
var templateFS embed.FS

// Page is the data every template receives.
type Page struct {
	Title  string
	Error  string
	Detail string
	User   *entity.User
	Users  []*entity.User
	Total  int64
	// SessionUserID is the logged-in user, zero when anonymous.
	SessionUserID int64
	// Form echoes submitted values back after a failed post. Passwords are never echoed.
	Form FormValues
}

// FormValues holds the non-secret fields of a submitted form.
type FormValues struct {
	Name  string
	Email string
}

// Renderer renders the embedded page templates. Each page is parsed together with the shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses every embedded page template.
func New() (*Renderer, error) {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "list templates")
	}

	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		if name == layoutFile {
			continue
		}

		tmpl, err := template.ParseFS(templateFS, layoutFile, name)
		if err != nil {
			return nil, errors.Wrapf(err, "parse template %s", name)
		}
		pages[path.Base(name)] = tmpl
	}

	return &Renderer{pages: pages}, nil
}

// Render implements echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return errors.Errorf("template %s not found", name)
	}

	return errors.WithStack(tmpl.ExecuteTemplate(w, "layout", data))
}
