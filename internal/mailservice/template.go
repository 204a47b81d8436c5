package mailservice

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"text/template"
)

//go:embed templates/*
var templateFS embed.FS

type parsedTemplate struct {
	text *template.Template
	html *htmltemplate.Template
}

func NewTemplate() *Template {
	return &Template{}
}

// lookup parses the named template on first use and keeps it for later calls.
func (tp *Template) lookup(name string) (*parsedTemplate, error) {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	if pt, ok := tp.parsed[name]; ok {
		return pt, nil
	}

	t, err := template.New("email").ParseFS(templateFS, "templates/"+name)
	if err != nil {
		return nil, fmt.Errorf("could not parse template: %w", err)
	}

	h, err := htmltemplate.New("email").ParseFS(templateFS, "templates/"+name)
	if err != nil {
		return nil, fmt.Errorf("could not parse template: %w", err)
	}

	if tp.parsed == nil {
		tp.parsed = make(map[string]*parsedTemplate)
	}
	pt := &parsedTemplate{text: t, html: h}
	tp.parsed[name] = pt

	return pt, nil
}

// ParseTemplate renders the subject, plainBody and htmlBody blocks of the named
// template. Only htmlBody is HTML escaped.
func (tp *Template) ParseTemplate(name string, data any) (*bytes.Buffer, *bytes.Buffer, *bytes.Buffer, error) {
	pt, err := tp.lookup(name)
	if err != nil {
		return nil, nil, nil, err
	}

	subject := new(bytes.Buffer)
	if err := pt.text.ExecuteTemplate(subject, "subject", data); err != nil {
		return nil, nil, nil, err
	}

	plainBody := new(bytes.Buffer)
	if err := pt.text.ExecuteTemplate(plainBody, "plainBody", data); err != nil {
		return nil, nil, nil, err
	}

	htmlBody := new(bytes.Buffer)
	if err := pt.html.ExecuteTemplate(htmlBody, "htmlBody", data); err != nil {
		return nil, nil, nil, err
	}

	return subject, plainBody, htmlBody, nil
}
