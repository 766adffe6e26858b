package core

import (
	"bytes"
	htmltmpl "html/template"
	"net/mail"
	"sync"
	texttmpl "text/template"

	"github.com/pkg/errors"

	appfs "github.com/darasahq/darasa/fs"
)

var (
	textTemplates *texttmpl.Template
	htmlTemplates *htmltmpl.Template
	tmplInit      sync.Once
	tmplInitErr   error
)

type (
	EmailMessage struct {
		To      []mail.Address
		Subject string
		BodyStr string // simple text/plain, non-templated content

		// templated contents
		TemplateName string // without ext
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	// ContextData wraps TemplateData with app-wide context for the templates.
	ContextData struct {
		AppName         string
		FrontendBaseURL string
		Data            interface{}
	}

	// EmailService is any service that can send emails.
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

func initTemplates() {
	tmplInit.Do(func() {
		textTemplates, tmplInitErr = texttmpl.ParseFS(appfs.FS, "templates/*.txt")
		if tmplInitErr != nil {
			tmplInitErr = errors.Wrap(tmplInitErr, "parsing text templates")
			return
		}
		htmlTemplates, tmplInitErr = htmltmpl.ParseFS(appfs.FS, "templates/*.html")
		if tmplInitErr != nil {
			tmplInitErr = errors.Wrap(tmplInitErr, "parsing html templates")
		}
	})
}

func (m *EmailMessage) getContextData() ContextData {
	return ContextData{
		AppName:         Conf.AppName,
		FrontendBaseURL: Conf.FrontendBaseURL,
		Data:            m.TemplateData,
	}
}

// Render resolves TextContent and HTMLContent from either BodyStr or the
// named templates.
func (m *EmailMessage) Render() error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
		return nil
	}
	if m.TemplateName == "" {
		return nil
	}

	initTemplates()
	if tmplInitErr != nil {
		return tmplInitErr
	}

	data := m.getContextData()
	var txt bytes.Buffer
	if err := textTemplates.ExecuteTemplate(&txt, m.TemplateName+".txt", data); err != nil {
		return errors.Wrapf(err, "rendering %s.txt", m.TemplateName)
	}
	m.TextContent = txt.String()

	var html bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&html, m.TemplateName+".html", data); err != nil {
		return errors.Wrapf(err, "rendering %s.html", m.TemplateName)
	}
	m.HTMLContent = html.String()
	return nil
}

func (m *EmailMessage) HasRecipients() bool {
	return len(m.To) > 0
}

func (m *EmailMessage) HasContent() bool {
	return m.BodyStr != "" || m.TemplateName != "" || m.TextContent != "" || m.HTMLContent != ""
}
