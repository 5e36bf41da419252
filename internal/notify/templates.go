// Package notify delivers share notifications to grantees.
package notify

import (
	"bytes"
	_ "embed"
	"fmt"
	htmltemplate "html/template"
	"net/url"
	"strings"
	texttemplate "text/template"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
	models "studiodrive/internal/domain/models/drive"
	"studiodrive/internal/domain/services"
)

//go:embed templates.yaml
var defaultTemplates []byte

type templateSource struct {
	Subject string `yaml:"subject"`
	Body    string `yaml:"body"`
}

type compiledTemplate struct {
	subject *texttemplate.Template
	body    *htmltemplate.Template
}

// Templates renders share emails per resource kind
type Templates struct {
	byKind  map[models.ResourceKind]compiledTemplate
	baseURL string
}

// templateData is what the YAML templates see
type templateData struct {
	Owner        string
	ResourceName string
	Kind         models.ResourceKind
	Level        models.PermissionLevel
	Size         string
	Link         string
}

// LoadTemplates parses the embedded templates
func LoadTemplates(baseURL string) (*Templates, error) {
	return ParseTemplates(defaultTemplates, baseURL)
}

// ParseTemplates parses a YAML document with one entry per resource kind
func ParseTemplates(doc []byte, baseURL string) (*Templates, error) {
	var raw map[string]templateSource
	if err := yaml.Unmarshal(doc, &raw); err != nil {
		return nil, fmt.Errorf("parse notification templates: %w", err)
	}

	t := &Templates{
		byKind:  make(map[models.ResourceKind]compiledTemplate, len(raw)),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
	for name, src := range raw {
		kind, err := models.ParseResourceKind(name)
		if err != nil {
			return nil, fmt.Errorf("notification template %q: %w", name, err)
		}
		// Subjects are plain text headers, not HTML
		subject, err := texttemplate.New(name + ".subject").Parse(src.Subject)
		if err != nil {
			return nil, fmt.Errorf("notification template %q subject: %w", name, err)
		}
		body, err := htmltemplate.New(name + ".body").Parse(src.Body)
		if err != nil {
			return nil, fmt.Errorf("notification template %q body: %w", name, err)
		}
		t.byKind[kind] = compiledTemplate{subject: subject, body: body}
	}

	for _, kind := range []models.ResourceKind{models.KindFolder, models.KindFile} {
		if _, ok := t.byKind[kind]; !ok {
			return nil, fmt.Errorf("notification template for %q is missing", kind)
		}
	}
	return t, nil
}

// Render returns the subject and HTML body for notice
func (t *Templates) Render(notice services.ShareNotice) (subject, body string, err error) {
	tmpl, ok := t.byKind[notice.ResourceKind]
	if !ok {
		return "", "", fmt.Errorf("no notification template for %q", notice.ResourceKind)
	}

	data := templateData{
		Owner:        notice.Owner,
		ResourceName: notice.ResourceName,
		Kind:         notice.ResourceKind,
		Level:        notice.Level,
		Link:         t.link(notice),
	}
	if notice.FileSize > 0 {
		data.Size = humanize.Bytes(uint64(notice.FileSize))
	}

	var sb, bb bytes.Buffer
	if err := tmpl.subject.Execute(&sb, data); err != nil {
		return "", "", fmt.Errorf("render subject: %w", err)
	}
	if err := tmpl.body.Execute(&bb, data); err != nil {
		return "", "", fmt.Errorf("render body: %w", err)
	}
	return strings.TrimSpace(sb.String()), bb.String(), nil
}

func (t *Templates) link(notice services.ShareNotice) string {
	return fmt.Sprintf("%s/drive/%ss/%s", t.baseURL, notice.ResourceKind, url.PathEscape(notice.ResourceID))
}
