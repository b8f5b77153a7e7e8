package templates

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
)

//go:embed default.html
var builtin embed.FS

// Data is what waiting pages can interpolate.
type Data struct {
	ServiceName string
}

// Renderer produces the waiting page shown while a host boots. A
// per-service override named <name>.html is looked up in dir on every
// render, so pages can be edited without a restart; the embedded
// default covers everything else.
type Renderer struct {
	dir string
	def *template.Template
}

// New creates a renderer. dir may be empty to disable overrides.
func New(dir string) (*Renderer, error) {
	def, err := template.ParseFS(builtin, "default.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse built-in template: %w", err)
	}
	return &Renderer{dir: dir, def: def}, nil
}

// Render writes the waiting page for name to w. The page is built in
// memory first so a template error never leaves a half-written body.
func (r *Renderer) Render(w io.Writer, name string) error {
	var buf bytes.Buffer
	if err := r.execute(&buf, name); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

func (r *Renderer) execute(w io.Writer, name string) error {
	if r.dir != "" && validName(name) {
		path := filepath.Join(r.dir, name+".html")
		if _, err := os.Stat(path); err == nil {
			t, err := template.ParseFiles(path)
			if err != nil {
				return fmt.Errorf("failed to parse template %s: %w", name, err)
			}
			return t.Execute(w, Data{ServiceName: name})
		}
	}
	return r.def.Execute(w, Data{ServiceName: name})
}

// validName rejects names that could escape the template directory.
// Route parameters end up here, not just registered service names.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}
