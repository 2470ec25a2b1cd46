package app

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/klabast/wb-services/beschikbaarheid/internal/notify"
	"github.com/klabast/wb-services/beschikbaarheid/internal/view"
)

type PageName string

const (
	baseTemplatePath     = "templates/base.gohtml"
	partialsTemplateGlob = "templates/partials/*.gohtml"
	pagesTemplateGlob    = "templates/pages/*.gohtml"
)

const (
	PageIndex PageName = "index"
	Page404   PageName = "404"
)

// PageData is what every page template receives.
type PageData struct {
	View         view.View
	Notification notify.Notice
}

var tmplFuncs = template.FuncMap{
	"millis": func(d time.Duration) int64 {
		return d.Milliseconds()
	},
	"fadeMillis": func() int64 {
		return notify.FadeFor.Milliseconds()
	},
	"weekRows": func(cells []view.Cell) [][]view.Cell {
		var rows [][]view.Cell
		for i := 0; i < len(cells); i += 7 {
			end := min(i+7, len(cells))
			rows = append(rows, cells[i:end])
		}
		return rows
	},
}

// Templates caches one parsed template set per page.
type Templates struct {
	pages map[string]*template.Template
}

// NewTemplates parses every page under templates/pages in fsys, each together
// with the base layout and the partials.
func NewTemplates(fsys fs.FS) (*Templates, error) {
	filePaths, err := fs.Glob(fsys, pagesTemplateGlob)
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(filePaths))
	for _, filePath := range filePaths {
		tmpl, err := template.New("base").Funcs(tmplFuncs).ParseFS(fsys, baseTemplatePath, partialsTemplateGlob, filePath)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", filePath, err)
		}
		pages[cacheKeyFromPath(filePath)] = tmpl
	}

	if _, ok := pages[string(PageIndex)]; !ok {
		return nil, fmt.Errorf("page %q is missing", PageIndex)
	}
	return &Templates{pages: pages}, nil
}

func cacheKeyFromPath(filePath string) string {
	return strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
}

// Render executes the page into a buffer first so a failing template never
// leaves a half-written response.
func (t *Templates) Render(w http.ResponseWriter, status int, name PageName, data any) error {
	tmpl := t.pages[string(name)]
	if tmpl == nil {
		tmpl = t.pages[string(Page404)]
		status = http.StatusNotFound
	}
	if tmpl == nil {
		return fmt.Errorf("page %q not found", name)
	}

	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", data); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
