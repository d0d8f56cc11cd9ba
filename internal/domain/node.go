package domain

// NodeDescriptor captures the human-describable attributes of one DOM element
// from a snapshot tree, keyed by its structural id. Structural ids are not
// reused within a session, so descriptors are never removed.
type NodeDescriptor struct {
	ID          int               `json:"id"`
	TagName     string            `json:"tagName"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	TextContent string            `json:"textContent,omitempty"`
}

// Attribute keys surfaced by the node registry when describing an element.
const (
	AttrID          = "id"
	AttrClass       = "class"
	AttrType        = "type"
	AttrPlaceholder = "placeholder"
	AttrName        = "name"
	AttrRole        = "role"
	AttrAriaLabel   = "aria-label"
	AttrHref        = "href"
	AttrSrc         = "src"
)
