package domain

import "encoding/json"

// EventKind is the top-level type code of a replay event record. The numeric
// values are fixed by the upstream capture format and must not be renumbered.
type EventKind int

const (
	KindDOMContentLoaded    EventKind = 0
	KindLoad                EventKind = 1
	KindFullSnapshot        EventKind = 2
	KindIncrementalSnapshot EventKind = 3
	KindMeta                EventKind = 4
	KindCustom              EventKind = 5
	KindPlugin              EventKind = 6
)

// IncrementalSource identifies the sub-source of an incremental snapshot
// event. Values mirror the upstream capture format.
type IncrementalSource int

const (
	SourceMutation         IncrementalSource = 0
	SourceMouseMove        IncrementalSource = 1
	SourceMouseInteraction IncrementalSource = 2
	SourceScroll           IncrementalSource = 3
	SourceViewportResize   IncrementalSource = 4
	SourceInput            IncrementalSource = 5
	SourceTouchMove        IncrementalSource = 6
	SourceMediaInteraction IncrementalSource = 7
	SourceCanvasMutation   IncrementalSource = 9
	SourceLog              IncrementalSource = 11
	SourceDrag             IncrementalSource = 12
)

// MouseInteractionType distinguishes pointer interactions carried by a
// SourceMouseInteraction event.
type MouseInteractionType int

const (
	MouseUp MouseInteractionType = iota
	MouseDown
	Click
	ContextMenu
	DblClick
	Focus
	Blur
	TouchStart
	TouchMoveDeparted
	TouchEnd
	TouchCancel
)

// RawEventRecord is one replay event exactly as received: a kind code, a
// timestamp in epoch milliseconds and an opaque payload that may itself be a
// compressed blob. It is immutable once received.
type RawEventRecord struct {
	Type      EventKind       `json:"type"`
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
	WindowID  string          `json:"windowId,omitempty"`
}

// NormalizedEvent is the decoded, uniform representation of a replay event.
// Data holds the fully expanded payload tree: all nested compressed strings
// have been inflated and parsed.
type NormalizedEvent struct {
	Kind      EventKind `json:"type"`
	Timestamp int64     `json:"timestamp"`
	WindowID  string    `json:"windowId"`
	Data      any       `json:"data"`
}

// DefaultWindowID is assigned to events whose browsing context cannot be
// resolved explicitly or by inheritance.
const DefaultWindowID = "default"
