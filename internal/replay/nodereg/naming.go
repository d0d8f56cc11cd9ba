package nodereg

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/replaysight/replaysight/internal/domain"
)

const maxSurfacedText = 40

// generatedIdentifier matches framework-emitted ids and CSS-module class
// names: hash suffixes, long hex runs, long digit runs.
var generatedIdentifier = regexp.MustCompile(`(?i)(__|--)[a-z0-9]+$|[0-9a-f]{8,}|\d{4,}`)

// describe builds the human phrase for a descriptor, first match wins:
// interactive-role phrasing, short text, aria-label, non-generated id,
// non-generated class, bare tag name.
func (r *Registry) describe(d domain.NodeDescriptor) string {
	text := r.surface(d.TextContent)
	aria := r.surface(d.Attributes[domain.AttrAriaLabel])

	switch d.TagName {
	case "button":
		return rolePhrase("button", text, aria, d.Attributes[domain.AttrName])
	case "a":
		return rolePhrase("link", text, aria, d.Attributes[domain.AttrName])
	case "input":
		return r.inputPhrase(d)
	case "textarea":
		return rolePhrase("text area", r.surface(d.Attributes[domain.AttrPlaceholder]), aria, d.Attributes[domain.AttrName])
	case "select":
		return rolePhrase("dropdown", aria, d.Attributes[domain.AttrName], "")
	case "img":
		return rolePhrase("image", aria, fileBaseName(d.Attributes[domain.AttrSrc]), "")
	}

	if d.Attributes[domain.AttrRole] == "button" {
		return rolePhrase("button", text, aria, d.Attributes[domain.AttrName])
	}

	if text != "" {
		return fmt.Sprintf("%q %s", text, orTag(d.TagName))
	}
	if aria != "" {
		return fmt.Sprintf("%q %s", aria, orTag(d.TagName))
	}
	if id := d.Attributes[domain.AttrID]; id != "" && !generatedIdentifier.MatchString(id) {
		return fmt.Sprintf("%s#%s", orTag(d.TagName), id)
	}
	if class := firstUsableClass(d.Attributes[domain.AttrClass]); class != "" {
		return fmt.Sprintf("%s.%s", orTag(d.TagName), class)
	}
	return orTag(d.TagName)
}

func (r *Registry) inputPhrase(d domain.NodeDescriptor) string {
	kind := d.Attributes[domain.AttrType]
	if kind == "" {
		kind = "text"
	}
	label := r.surface(d.Attributes[domain.AttrPlaceholder])
	if label == "" {
		label = r.surface(d.Attributes[domain.AttrAriaLabel])
	}
	if label == "" {
		label = d.Attributes[domain.AttrName]
	}
	if label != "" {
		return fmt.Sprintf("%s field %q", kind, label)
	}
	return fmt.Sprintf("%s field", kind)
}

// surface redacts and truncates text before it may appear in output.
func (r *Registry) surface(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	text = r.redactor.Redact(text)
	if len(text) > maxSurfacedText {
		text = text[:maxSurfacedText] + "…"
	}
	return text
}

func rolePhrase(role, primary, secondary, tertiary string) string {
	for _, label := range []string{primary, secondary, tertiary} {
		if label != "" {
			return fmt.Sprintf("%s %q", role, label)
		}
	}
	return role
}

func firstUsableClass(classAttr string) string {
	for _, class := range strings.Fields(classAttr) {
		if !generatedIdentifier.MatchString(class) {
			return class
		}
	}
	return ""
}

func fileBaseName(src string) string {
	if src == "" {
		return ""
	}
	if i := strings.LastIndexByte(src, '/'); i >= 0 {
		src = src[i+1:]
	}
	if i := strings.IndexByte(src, '?'); i >= 0 {
		src = src[:i]
	}
	return src
}

func orTag(tag string) string {
	if tag == "" {
		return "element"
	}
	return tag
}
