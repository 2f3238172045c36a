package yamlfile

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Apurer/portrait-customizer/internal/domains/prompts/domain"
	"github.com/Apurer/portrait-customizer/internal/domains/prompts/ports"
)

var _ ports.TemplateSource = (*Source)(nil)

// document is the on-disk layout:
//
//	templates:
//	  portrait: "A {breed} {animal} ..."
//	  holiday: "..."
type document struct {
	Templates map[string]string `yaml:"templates"`
}

// Source serves templates loaded once from a YAML file.
type Source struct {
	templates map[string]domain.Template
}

// Load reads path. An empty path yields only the built-in default template.
// The default template is always present unless the file overrides it.
func Load(path string) (*Source, error) {
	src := Builtin()
	path = strings.TrimSpace(path)
	if path == "" {
		return src, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt templates: %w", err)
	}
	if err := src.merge(raw); err != nil {
		return nil, fmt.Errorf("parse prompt templates %s: %w", path, err)
	}
	return src, nil
}

// Parse builds a source from YAML bytes on top of the built-in default.
func Parse(raw []byte) (*Source, error) {
	src := Builtin()
	if err := src.merge(raw); err != nil {
		return nil, err
	}
	return src, nil
}

// Builtin returns a source holding the default template only.
func Builtin() *Source {
	return &Source{templates: map[string]domain.Template{
		domain.DefaultTemplateName: {Name: domain.DefaultTemplateName, Text: domain.DefaultTemplateText},
	}}
}

func (s *Source) merge(raw []byte) error {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return err
	}
	for name, text := range doc.Templates {
		tpl, err := domain.NewTemplate(name, text)
		if err != nil {
			return fmt.Errorf("template %q: %w", name, err)
		}
		s.templates[tpl.Name] = tpl
	}
	return nil
}

// Get returns a template by name.
func (s *Source) Get(_ context.Context, name string) (domain.Template, error) {
	tpl, ok := s.templates[name]
	if !ok {
		return domain.Template{}, ports.ErrTemplateNotFound
	}
	return tpl, nil
}

// Names lists template names in lexical order.
func (s *Source) Names(_ context.Context) []string {
	names := make([]string, 0, len(s.templates))
	for name := range s.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
