// Package prompt turns a typed feature request into the message pair and
// generation parameters sent to the generative backend. Templates are
// configuration data; the builder only binds placeholders and fails fast
// when a template references a field the request does not carry.
package prompt

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/your-org/aura-wellness-engine/internal/resilience"
)

// placeholderPattern matches {{field_name}} references inside templates
var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

// Template is the per-feature prompt configuration. VisionModel, when set,
// replaces Model for requests that attach an image.
type Template struct {
	System      string
	User        string
	Model       string
	VisionModel string
	Temperature float32
	MaxTokens   int
}

// Image is an inline image payload for vision features
type Image struct {
	MediaType string
	Base64    string
}

// Prompt is the fully bound request handed to the model gateway
type Prompt struct {
	SystemMessage string
	UserMessage   string
	Model         string
	Temperature   float32
	MaxTokens     int
	Image         *Image
}

// Build binds the template's placeholders from the request fields. Every
// placeholder must be satisfied; unbound placeholders are a caller bug and
// return a template_binding error rather than producing a partial prompt.
func Build(tpl Template, fields map[string]string) (Prompt, error) {
	if strings.TrimSpace(tpl.User) == "" {
		return Prompt{}, resilience.NewTemplateBindingError("template has no user message", nil)
	}

	system, err := bind(tpl.System, fields)
	if err != nil {
		return Prompt{}, err
	}
	user, err := bind(tpl.User, fields)
	if err != nil {
		return Prompt{}, err
	}

	return Prompt{
		SystemMessage: system,
		UserMessage:   user,
		Model:         tpl.Model,
		Temperature:   tpl.Temperature,
		MaxTokens:     tpl.MaxTokens,
	}, nil
}

// bind substitutes placeholders, collecting all unbound names so the error
// reports the full defect at once
func bind(text string, fields map[string]string) (string, error) {
	var missing []string

	bound := placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		value, ok := fields[name]
		if !ok || strings.TrimSpace(value) == "" {
			missing = append(missing, name)
			return match
		}
		return value
	})

	if len(missing) > 0 {
		sort.Strings(missing)
		return "", resilience.NewTemplateBindingError(
			fmt.Sprintf("unbound placeholders: %s", strings.Join(unique(missing), ", ")), nil)
	}
	return bound, nil
}

// Placeholders returns the distinct placeholder names referenced by the
// template, for startup-time validation of feature definitions
func (t Template) Placeholders() []string {
	var names []string
	for _, text := range []string{t.System, t.User} {
		for _, match := range placeholderPattern.FindAllStringSubmatch(text, -1) {
			names = append(names, match[1])
		}
	}
	sort.Strings(names)
	return unique(names)
}

func unique(sorted []string) []string {
	var out []string
	for _, s := range sorted {
		if len(out) == 0 || out[len(out)-1] != s {
			out = append(out, s)
		}
	}
	return out
}
