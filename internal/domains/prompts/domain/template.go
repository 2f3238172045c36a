package domain

import (
	"errors"
	"regexp"
	"strings"
)

// DefaultTemplateName names the template used for wizard previews.
const DefaultTemplateName = "portrait"

// DefaultTemplateText is used when no template file is configured.
const DefaultTemplateText = "A {style} portrait of a {personality} {breed} {animal} with a {coat} ({pattern}) coat, " +
	"wearing {outfit}: {clothing}. Scene: {theme}. Format: {format}."

var (
	ErrEmptyTemplate   = errors.New("prompt template text is required")
	ErrUnnamedTemplate = errors.New("prompt template name is required")
)

// KnownPlaceholders lists the tokens a template may reference.
var KnownPlaceholders = []string{
	"animal", "breed", "coat", "coat_color", "pattern", "outfit",
	"clothing", "theme", "style", "format", "personality",
}

var (
	placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)
	spaceBeforePunct   = regexp.MustCompile(`\s+([,.:;!?)])`)
	emptyParens        = regexp.MustCompile(`\(\s*\)`)
	knownSet           = func() map[string]struct{} {
		set := make(map[string]struct{}, len(KnownPlaceholders))
		for _, name := range KnownPlaceholders {
			set[name] = struct{}{}
		}
		return set
	}()
)

// Template is a named prompt with {placeholder} tokens.
type Template struct {
	Name string
	Text string
}

// NewTemplate validates a template definition.
func NewTemplate(name, text string) (Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Template{}, ErrUnnamedTemplate
	}
	if strings.TrimSpace(text) == "" {
		return Template{}, ErrEmptyTemplate
	}
	return Template{Name: name, Text: text}, nil
}

// Rendering is the substituted prompt plus the tokens that were left untouched.
type Rendering struct {
	Text       string
	Unresolved []string
}

// IsKnownPlaceholder reports whether name is a supported token.
func IsKnownPlaceholder(name string) bool {
	_, ok := knownSet[name]
	return ok
}

// Render substitutes known placeholders. Missing values render empty; unknown tokens stay
// verbatim and are reported once each, in order of first appearance.
func (t Template) Render(values map[string]string) Rendering {
	var unresolved []string
	seen := map[string]struct{}{}
	text := placeholderPattern.ReplaceAllStringFunc(t.Text, func(token string) string {
		name := token[1 : len(token)-1]
		if IsKnownPlaceholder(name) {
			return strings.TrimSpace(values[name])
		}
		if _, dup := seen[name]; !dup {
			seen[name] = struct{}{}
			unresolved = append(unresolved, name)
		}
		return token
	})
	return Rendering{Text: tidy(text), Unresolved: unresolved}
}

func tidy(text string) string {
	text = emptyParens.ReplaceAllString(text, "")
	text = strings.Join(strings.Fields(text), " ")
	return spaceBeforePunct.ReplaceAllString(text, "$1")
}
