package server

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/rs/zerolog/log"
)

//go:embed templates/*.html
var templateFiles embed.FS

const contentTypeHTML = "text/html; charset=utf-8"

type pages struct {
	login  *template.Template
	signup *template.Template
	index  *template.Template
}

func parsePages() (*pages, error) {
	sub, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		return nil, err
	}
	parse := func(name string) (*template.Template, error) {
		return template.New(name).ParseFS(sub, "layout.html", name)
	}

	p := &pages{}
	if p.login, err = parse("login.html"); err != nil {
		return nil, err
	}
	if p.signup, err = parse("signup.html"); err != nil {
		return nil, err
	}
	if p.index, err = parse("index.html"); err != nil {
		return nil, err
	}
	return p, nil
}

func renderPage(w http.ResponseWriter, tmpl *template.Template, status int, data any) {
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		log.Err(err).Str("template", tmpl.Name()).Msg("Failed to render template")
	}
}
