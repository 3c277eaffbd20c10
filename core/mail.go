package core

import (
	"bytes"
	htmltmpl "html/template"
	"io/fs"
	"net/mail"
	"path"
	"strings"
	"sync"
	texttmpl "text/template"

	"github.com/pkg/errors"
)

var (
	templates tmplCache
	tmplErr   error
	tmplInit  sync.Once
)

type (
	tmplCacheEntry map[string]interface{}    // {ext: *Template}
	tmplCache      map[string]tmplCacheEntry // {name: {tmplCacheEntry}}

	EmailMessage struct {
		To      []mail.Address
		Cc      []mail.Address
		ReplyTo *mail.Address
		Subject string
		BodyStr string // simple text/plain, non-templated content

		// templated contents
		TemplateName string // without ext
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	ContextData struct {
		AppName string
		Data    interface{}
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

// ParseEmailTemplates loads `email/*.txt|*.gohtml` from fsys. Names starting with "_" are bases.
// It only runs once; later calls return the first result.
func ParseEmailTemplates(fsys fs.FS, strict bool) error {
	tmplInit.Do(func() {
		templates, tmplErr = parseTemplates(fsys, strict)
	})
	return tmplErr
}

func (m *EmailMessage) getTemplate(ext string) (interface{}, bool) {
	cache, ok := templates[m.TemplateName]
	if !ok {
		return nil, ok
	}
	tmplEntry, ok := cache[ext]
	return tmplEntry, ok
}

func (m *EmailMessage) Render(appName string) error {
	data := ContextData{AppName: appName, Data: m.TemplateData}

	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
	} else if tmplEntry, ok := m.getTemplate(".txt"); ok {
		if tmpl, ok := tmplEntry.(*texttmpl.Template); ok {
			var buff bytes.Buffer
			if err := tmpl.Execute(&buff, data); err != nil {
				return errors.Wrap(err, "rendering text template")
			}
			m.TextContent = buff.String()
		}
	}

	if tmplEntry, ok := m.getTemplate(".gohtml"); ok {
		if tmpl, ok := tmplEntry.(*htmltmpl.Template); ok {
			var buff bytes.Buffer
			if err := tmpl.Execute(&buff, data); err != nil {
				return errors.Wrap(err, "rendering html template")
			}
			m.HTMLContent = buff.String()
		}
	}
	return nil
}

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return (m.TextContent != "") || (m.HTMLContent != "") }

func parseTemplates(fsys fs.FS, strict bool) (tmplCache, error) {
	cache := make(tmplCache)

	fps, err := fs.Glob(fsys, "templates/email/*")
	if err != nil {
		return nil, errors.Wrap(err, "listing email templates")
	}

	for _, fp := range fps {
		fname := path.Base(fp)
		ext := path.Ext(fname)
		if strings.HasPrefix(fname, "_") || !(ext == ".txt" || ext == ".gohtml") {
			continue
		}
		name := strings.TrimSuffix(fname, ext)
		entry, ok := cache[name]
		if !ok {
			entry = make(tmplCacheEntry)
			cache[name] = entry
		}
		if ext == ".txt" {
			tmpl, err := texttmpl.ParseFS(fsys, "templates/email/_base.txt", fp)
			if err != nil {
				return nil, errors.Wrapf(err, "parsing %s", fp)
			}
			if strict {
				tmpl = tmpl.Option("missingkey=error")
			}
			entry[ext] = tmpl
		} else {
			tmpl, err := htmltmpl.ParseFS(fsys, "templates/email/_base.gohtml", fp)
			if err != nil {
				return nil, errors.Wrapf(err, "parsing %s", fp)
			}
			if strict {
				tmpl = tmpl.Option("missingkey=error")
			}
			entry[ext] = tmpl
		}
	}
	return cache, nil
}
