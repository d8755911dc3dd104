package main

import (
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"time"

	"github.com/aoideee/booknotes/internal/data"
	"github.com/aoideee/booknotes/ui"
	"github.com/dustin/go-humanize"
	"github.com/gedex/inflector"
)

// templateData is the single value handed to every page template.
type templateData struct {
	CurrentYear int
	Books       []*data.Book
	Book        *data.Book
	CurrentSort data.SortMode
	SortModes   []data.SortMode
	Form        bookForm
	FormAction  string
}

func (app *applicationDependencies) newTemplateData(r *http.Request) templateData {
	return templateData{
		CurrentYear: time.Now().Year(),
		SortModes:   data.SortModes,
	}
}

// humanDate renders t relative to now, e.g. "3 weeks ago".
func humanDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return humanize.Time(*t)
}

// rating renders a rating without trailing zeros: 4 -> "4", 4.5 -> "4.5".
func rating(r *float64) string {
	if r == nil {
		return ""
	}
	return humanize.Ftoa(*r)
}

// pluralize returns word, or its plural when n != 1.
func pluralize(n int, word string) string {
	if n == 1 {
		return word
	}
	return inflector.Pluralize(word)
}

var functions = template.FuncMap{
	"humanDate": humanDate,
	"rating":    rating,
	"pluralize": pluralize,
}

// newTemplateCache parses every page under ui/html/pages together with the
// base layout and partials, keyed by the page's file name.
func newTemplateCache() (map[string]*template.Template, error) {
	cache := map[string]*template.Template{}

	pages, err := fs.Glob(ui.Files, "html/pages/*.tmpl")
	if err != nil {
		return nil, err
	}

	for _, page := range pages {
		name := filepath.Base(page)

		patterns := []string{
			"html/base.tmpl",
			"html/partials/*.tmpl",
			page,
		}

		ts, err := template.New(name).Funcs(functions).ParseFS(ui.Files, patterns...)
		if err != nil {
			return nil, err
		}

		cache[name] = ts
	}

	return cache, nil
}
