// Package nodereg maintains the mapping from structural element ids to
// human-describable attributes, built from full-snapshot trees and extended
// by mutation-added subtrees.
package nodereg

import (
	"fmt"
	"strings"

	"github.com/replaysight/replaysight/internal/adapter/pii"
	"github.com/replaysight/replaysight/internal/domain"
)

// serialized node types in snapshot trees
const (
	nodeTypeDocument = 0
	nodeTypeDoctype  = 1
	nodeTypeElement  = 2
	nodeTypeText     = 3
)

var trackedAttributes = []string{
	domain.AttrID, domain.AttrClass, domain.AttrType, domain.AttrPlaceholder,
	domain.AttrName, domain.AttrRole, domain.AttrAriaLabel, domain.AttrHref,
	domain.AttrSrc,
}

// Registry answers "describe element X in one short human phrase" for any
// structural id seen during a session. Ids are never reused within a session,
// so descriptors are only ever added.
type Registry struct {
	nodes    map[int]domain.NodeDescriptor
	redactor *pii.Redactor
}

// New creates an empty Registry. Surfaced text passes through the redactor
// before it can appear in output.
func New(redactor *pii.Redactor) *Registry {
	return &Registry{
		nodes:    make(map[int]domain.NodeDescriptor),
		redactor: redactor,
	}
}

// AddTree walks a decoded snapshot node tree depth-first and records one
// descriptor per element node that carries an id. It is called once for the
// full snapshot root and again for every mutation-added subtree.
func (r *Registry) AddTree(root any) {
	node, ok := root.(map[string]any)
	if !ok {
		return
	}
	r.walk(node)
}

// Len reports the number of registered descriptors.
func (r *Registry) Len() int {
	return len(r.nodes)
}

// Lookup returns the raw descriptor for an id.
func (r *Registry) Lookup(id int) (domain.NodeDescriptor, bool) {
	d, ok := r.nodes[id]
	return d, ok
}

// IsInteractive reports whether the element is one a user would expect to
// respond to pointer activity. Unknown ids are not interactive.
func (r *Registry) IsInteractive(id int) bool {
	d, ok := r.nodes[id]
	if !ok {
		return false
	}
	switch d.TagName {
	case "button", "a", "input", "textarea", "select", "option", "label":
		return true
	}
	switch d.Attributes[domain.AttrRole] {
	case "button", "link", "tab", "menuitem", "checkbox", "switch":
		return true
	}
	return false
}

// Describe resolves an id to a short human phrase. Unknown ids resolve to a
// generic placeholder rather than an error.
func (r *Registry) Describe(id int) string {
	d, ok := r.nodes[id]
	if !ok {
		return fmt.Sprintf("element #%d", id)
	}
	return r.describe(d)
}

func (r *Registry) walk(node map[string]any) {
	nodeType, hasType := asInt(node["type"])
	id, hasID := asInt(node["id"])

	if hasType && nodeType == nodeTypeElement && hasID {
		r.nodes[id] = r.descriptorFrom(id, node)
	}

	children, _ := node["childNodes"].([]any)
	for _, child := range children {
		if m, ok := child.(map[string]any); ok {
			r.walk(m)
		}
	}
}

func (r *Registry) descriptorFrom(id int, node map[string]any) domain.NodeDescriptor {
	d := domain.NodeDescriptor{
		ID:      id,
		TagName: strings.ToLower(stringValue(node["tagName"])),
	}

	if attrs, ok := node["attributes"].(map[string]any); ok {
		for _, key := range trackedAttributes {
			if v := stringValue(attrs[key]); v != "" {
				if d.Attributes == nil {
					d.Attributes = make(map[string]string)
				}
				d.Attributes[key] = v
			}
		}
	}

	d.TextContent = childText(node)
	return d
}

// childText collects the immediate text-node children of an element, which is
// what a user visually reads on buttons and links.
func childText(node map[string]any) string {
	children, _ := node["childNodes"].([]any)
	var parts []string
	for _, child := range children {
		m, ok := child.(map[string]any)
		if !ok {
			continue
		}
		if t, _ := asInt(m["type"]); t == nodeTypeText {
			if text := strings.TrimSpace(stringValue(m["textContent"])); text != "" {
				parts = append(parts, text)
			}
		}
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

func asInt(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}
