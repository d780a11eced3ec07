package service

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/lmorchard/fediring-manager/internal/biz/domain"
	"github.com/lmorchard/fediring-manager/internal/conf"
)

// ReplyVars are the variables available to reply templates.
type ReplyVars struct {
	Account  string
	Member   string
	Members  string
	Selected []string
	Request  string
	Requests domain.DeferredRequestList
	Commands []domain.Command
}

// Renderer renders named reply templates. All templates are parsed once at
// startup so a bad override fails fast instead of mid-command.
type Renderer struct {
	templates map[string]*template.Template
}

// NewRenderer parses every configured template.
func NewRenderer(cfg *conf.TemplatesConfig) (*Renderer, error) {
	templates := make(map[string]*template.Template, len(cfg.Templates))
	for name, text := range cfg.Templates {
		tmpl, err := template.New(name).Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		templates[name] = tmpl
	}
	return &Renderer{templates: templates}, nil
}

// Render renders the named template with the given variables.
func (r *Renderer) Render(name string, vars ReplyVars) (string, error) {
	tmpl, ok := r.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown template %s", name)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, vars); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return strings.TrimSpace(sb.String()), nil
}
