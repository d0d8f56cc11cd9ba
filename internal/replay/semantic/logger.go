// Package semantic turns a normalized replay event stream into a timestamped
// human-readable narrative of what the user did, flagged with behavioral
// anomalies, plus session-level summary counters. One Run call is a single
// left-to-right pass threading an explicit rolling state struct.
package semantic

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/replaysight/replaysight/internal/adapter/pii"
	"github.com/replaysight/replaysight/internal/domain"
	"github.com/replaysight/replaysight/internal/replay/nodereg"
)

// Logger folds normalized events into a SemanticSession. It holds no
// per-session state itself; everything rolling lives in the state struct
// created per Run, so one Logger may serve concurrent sessions as long as
// each session gets its own node registry.
type Logger struct {
	opts     Options
	registry *nodereg.Registry
	redactor *pii.Redactor
	logger   *slog.Logger
}

// New creates a Logger over a session's node registry.
func New(registry *nodereg.Registry, redactor *pii.Redactor, opts Options, logger *slog.Logger) *Logger {
	return &Logger{
		opts:     opts.withDefaults(),
		registry: registry,
		redactor: redactor,
		logger:   logger.With("component", "semantic"),
	}
}

// Run processes the event sequence and returns the narrative log and final
// summary. An empty input yields a well-defined empty session. Behavioral
// flags are left for the signal synthesizer.
func (l *Logger) Run(events []domain.NormalizedEvent) domain.SemanticSession {
	session := domain.SemanticSession{
		TotalDuration: "00:00",
		Logs:          []domain.SemanticLogEntry{},
	}
	if len(events) == 0 {
		return session
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp < events[j].Timestamp
	})

	st := newState()
	st.start = events[0].Timestamp
	st.lastEventTime = events[0].Timestamp
	st.currentWindow = events[0].WindowID

	b := &builder{start: st.start}

	for i := range events {
		ev := &events[i]
		l.accumulateIdle(st, b, ev)
		l.trackWindow(st, b, ev)
		l.dispatch(st, b, events, i)
		st.lastEventTime = ev.Timestamp
	}

	session.EventCount = len(events)
	session.TotalDuration = formatClock(events[len(events)-1].Timestamp - st.start)
	session.PageURL = st.pageURL
	session.PageTitle = st.pageTitle
	session.ViewportSize = st.viewport
	session.Logs = b.entries
	session.Summary = b.summary
	session.Summary.IdleSeconds = int(math.Round(float64(st.idleMillis) / 1000))
	return session
}

func (l *Logger) accumulateIdle(st *state, b *builder, ev *domain.NormalizedEvent) {
	gap := ev.Timestamp - st.lastEventTime
	threshold := l.opts.IdleThreshold.Milliseconds()
	if gap <= threshold {
		return
	}
	idle := gap - threshold
	st.idleMillis += idle
	b.add(ev.Timestamp, "went idle", fmt.Sprintf("inactive for %ds", (gap+500)/1000))
}

func (l *Logger) trackWindow(st *state, b *builder, ev *domain.NormalizedEvent) {
	if ev.WindowID == st.currentWindow {
		return
	}
	st.currentWindow = ev.WindowID
	b.summary.TabSwitches++
	b.add(ev.Timestamp, "switched tab", fmt.Sprintf("to window %s", ev.WindowID))
}

func (l *Logger) dispatch(st *state, b *builder, events []domain.NormalizedEvent, i int) {
	ev := &events[i]
	switch ev.Kind {
	case domain.KindMeta:
		l.handleMeta(st, b, ev)
	case domain.KindFullSnapshot:
		l.handleFullSnapshot(st, b, ev)
	case domain.KindIncrementalSnapshot:
		l.handleIncremental(st, b, events, i)
	case domain.KindCustom:
		l.handleCustom(st, b, ev)
	case domain.KindPlugin:
		l.handlePlugin(st, b, ev)
	}
}

func (l *Logger) handleMeta(st *state, b *builder, ev *domain.NormalizedEvent) {
	data, ok := payloadMap(ev.Data)
	if !ok {
		return
	}
	if href := strField(data, "href"); href != "" {
		st.pageURL = href
		b.add(ev.Timestamp, "navigated", href)
	}
	if title := strField(data, "title"); title != "" {
		st.pageTitle = title
	}
	if w, ok := intField(data, "width"); ok {
		st.viewport.Width = w
	}
	if h, ok := intField(data, "height"); ok {
		st.viewport.Height = h
	}
}

func (l *Logger) handleFullSnapshot(st *state, b *builder, ev *domain.NormalizedEvent) {
	data, ok := payloadMap(ev.Data)
	if !ok {
		return
	}
	if node, ok := mapField(data, "node"); ok {
		l.registry.AddTree(node)
		b.add(ev.Timestamp, "page rendered", "")
	}
}

func (l *Logger) handleCustom(st *state, b *builder, ev *domain.NormalizedEvent) {
	data, ok := payloadMap(ev.Data)
	if !ok {
		return
	}
	tag := strField(data, "tag")
	switch tag {
	case "form-submit", "submit":
		b.summary.FormSubmissions++
		b.add(ev.Timestamp, "submitted form", "")
	case "selection", "copy":
		b.summary.Selections++
		b.add(ev.Timestamp, "selected text", "")
	case "":
	default:
		b.add(ev.Timestamp, "custom event", l.redactor.Redact(tag))
	}
}

// handlePlugin recognizes network-recorder plugin events and counts failed
// requests as network errors.
func (l *Logger) handlePlugin(st *state, b *builder, ev *domain.NormalizedEvent) {
	data, ok := payloadMap(ev.Data)
	if !ok {
		return
	}
	payload, ok := mapField(data, "payload")
	if !ok {
		return
	}
	requests := sliceField(payload, "requests")
	if requests == nil {
		requests = []any{payload}
	}
	for _, req := range requests {
		m, ok := req.(map[string]any)
		if !ok {
			continue
		}
		status, ok := intField(m, "status")
		if !ok || status < 400 {
			continue
		}
		b.summary.NetworkErrors++
		b.add(ev.Timestamp, "network error",
			fmt.Sprintf("%d on %s", status, l.redactor.Redact(strField(m, "url"))),
			domain.FlagError)
	}
}

func (l *Logger) handleIncremental(st *state, b *builder, events []domain.NormalizedEvent, i int) {
	ev := &events[i]
	data, ok := payloadMap(ev.Data)
	if !ok {
		return
	}
	source, ok := intField(data, "source")
	if !ok {
		return
	}

	switch domain.IncrementalSource(source) {
	case domain.SourceMutation:
		l.handleMutation(st, data)
	case domain.SourceMouseMove:
		l.handleMouseMove(st, b, ev, data)
	case domain.SourceMouseInteraction:
		l.handleMouseInteraction(st, b, events, i, data)
	case domain.SourceScroll:
		l.handleScroll(st, b, ev, data)
	case domain.SourceViewportResize:
		l.handleResize(st, b, ev, data)
	case domain.SourceInput:
		l.handleInput(st, b, ev, data)
	case domain.SourceTouchMove:
		// Intermediate touch positions; gesture classification keys off
		// the start/end interaction pair.
	case domain.SourceMediaInteraction:
		l.handleMedia(st, b, ev, data)
	case domain.SourceCanvasMutation:
		// Canvas draws carry no describable target.
	case domain.SourceLog:
		l.handleConsole(st, b, ev, data)
	case domain.SourceDrag:
		if l.throttle(st, "drag", l.opts.MouseLogInterval, ev.Timestamp) {
			b.add(ev.Timestamp, "dragged", "")
		}
	}
}

func (l *Logger) handleMutation(st *state, data map[string]any) {
	for _, add := range sliceField(data, "adds") {
		m, ok := add.(map[string]any)
		if !ok {
			continue
		}
		if node, ok := mapField(m, "node"); ok {
			l.registry.AddTree(node)
		}
	}
}

func (l *Logger) handleMouseMove(st *state, b *builder, ev *domain.NormalizedEvent, data map[string]any) {
	positions := sliceField(data, "positions")
	if len(positions) == 0 {
		return
	}
	last, ok := positions[len(positions)-1].(map[string]any)
	if !ok {
		return
	}
	id, ok := intField(last, "id")
	if !ok {
		return
	}

	if id != st.hoverNode {
		st.hoverNode = id
		st.hoverStart = ev.Timestamp
		st.hoverFlagged = false
		b.summary.Hovers++
		if l.throttle(st, "hover", l.opts.MouseLogInterval, ev.Timestamp) {
			b.add(ev.Timestamp, "moved pointer", fmt.Sprintf("over %s", l.registry.Describe(id)))
		}
		return
	}

	// Same node: continuous hover. Flag a hesitation once per stay.
	if !st.hoverFlagged &&
		ev.Timestamp-st.hoverStart > l.opts.HesitationThreshold.Milliseconds() &&
		l.registry.IsInteractive(id) {
		st.hoverFlagged = true
		b.summary.Hesitations++
		b.add(ev.Timestamp, "hesitated", fmt.Sprintf("over %s", l.registry.Describe(id)), domain.FlagHesitation)
	}
}

func (l *Logger) handleMouseInteraction(st *state, b *builder, events []domain.NormalizedEvent, i int, data map[string]any) {
	ev := &events[i]
	kind, ok := intField(data, "type")
	if !ok {
		return
	}
	id, _ := intField(data, "id")
	x, _ := floatField(data, "x")
	y, _ := floatField(data, "y")

	switch domain.MouseInteractionType(kind) {
	case domain.Click, domain.DblClick:
		l.handleClick(st, b, events, i, id)
	case domain.Focus:
		st.focusedNode = id
		if _, ok := st.inputs[id]; !ok {
			st.inputs[id] = &inputState{}
		}
	case domain.Blur:
		l.closeInput(st, b, ev, id)
	case domain.ContextMenu:
		b.add(ev.Timestamp, "opened context menu", fmt.Sprintf("on %s", l.registry.Describe(id)))
	case domain.TouchStart:
		st.touch = &touchGesture{x: x, y: y, startTime: ev.Timestamp, nodeID: id}
	case domain.TouchEnd:
		l.handleTouchEnd(st, b, ev, x, y)
	case domain.TouchCancel:
		st.touch = nil
	}
}

func (l *Logger) handleClick(st *state, b *builder, events []domain.NormalizedEvent, i int, id int) {
	ev := &events[i]
	b.summary.Clicks++
	var flags []string

	// Rage click: enough prior clicks on the same node inside the window.
	priors := 0
	rageWindow := l.opts.RageClickWindow.Milliseconds()
	for _, c := range st.clickHistory {
		if c.nodeID == id && ev.Timestamp-c.timestamp <= rageWindow {
			priors++
		}
	}
	if priors >= l.opts.RageClickPriors {
		flags = append(flags, domain.FlagRageClick)
		b.summary.RageClicks++
	}

	// Thrashing: a burst of clicks across distinct nodes.
	thrashWindow := l.opts.ThrashWindow.Milliseconds()
	burst := 1
	nodes := map[int]struct{}{id: {}}
	for _, c := range st.clickHistory {
		if ev.Timestamp-c.timestamp <= thrashWindow {
			burst++
			nodes[c.nodeID] = struct{}{}
		}
	}
	if burst >= l.opts.ThrashClicks && len(nodes) >= l.opts.ThrashNodes {
		flags = append(flags, domain.FlagClickThrashing)
	}

	if l.isDeadClick(events, i) {
		flags = append(flags, domain.FlagDeadClick)
		b.summary.DeadClicks++
	}

	st.clickHistory = append(st.clickHistory, clickRecord{nodeID: id, timestamp: ev.Timestamp})
	st.clickHistory = pruneClicks(st.clickHistory, ev.Timestamp, max64(rageWindow, thrashWindow))

	b.add(ev.Timestamp, "clicked", l.registry.Describe(id), flags...)
}

// isDeadClick looks ahead a bounded number of events for a structural
// mutation inside the dead-click window.
func (l *Logger) isDeadClick(events []domain.NormalizedEvent, i int) bool {
	clickTime := events[i].Timestamp
	window := l.opts.DeadClickWindow.Milliseconds()
	limit := i + 1 + l.opts.DeadClickLookahead
	if limit > len(events) {
		limit = len(events)
	}
	for j := i + 1; j < limit; j++ {
		next := &events[j]
		if next.Timestamp-clickTime > window {
			break
		}
		if next.Kind != domain.KindIncrementalSnapshot {
			continue
		}
		data, ok := payloadMap(next.Data)
		if !ok {
			continue
		}
		if source, ok := intField(data, "source"); ok && domain.IncrementalSource(source) == domain.SourceMutation {
			return false
		}
	}
	return true
}

func (l *Logger) handleScroll(st *state, b *builder, ev *domain.NormalizedEvent, data map[string]any) {
	y, ok := floatField(data, "y")
	if !ok {
		return
	}
	b.summary.Scrolls++
	var flags []string

	if st.hasScrolled {
		dt := ev.Timestamp - st.lastScrollTime
		dy := y - st.lastScrollY
		if dt > 0 {
			speed := math.Abs(dy) / float64(dt)
			if speed > l.opts.RapidScrollSpeed {
				flags = append(flags, domain.FlagRapidScroll)
				b.summary.RapidScrolls++
			}
		}
		dir := 0
		if dy > 0 {
			dir = 1
		} else if dy < 0 {
			dir = -1
		}
		if dir != 0 {
			if st.scrollDir != 0 && dir != st.scrollDir {
				b.summary.ScrollReversals++
			}
			st.scrollDir = dir
		}
	}

	if st.viewport.Height > 0 {
		pageHeight := float64(l.opts.PageHeightViewports * st.viewport.Height)
		depth := int(math.Min(y/pageHeight*100, 100))
		if depth > b.summary.MaxScrollDepth {
			b.summary.MaxScrollDepth = depth
		}
	}

	if len(flags) > 0 || l.throttle(st, "scroll", l.opts.ScrollLogInterval, ev.Timestamp) {
		direction := "down"
		if st.scrollDir < 0 {
			direction = "up"
		}
		b.add(ev.Timestamp, "scrolled "+direction, fmt.Sprintf("to %dpx", int(y)), flags...)
	}

	st.hasScrolled = true
	st.lastScrollY = y
	st.lastScrollTime = ev.Timestamp
}

func (l *Logger) handleResize(st *state, b *builder, ev *domain.NormalizedEvent, data map[string]any) {
	w, _ := intField(data, "width")
	h, _ := intField(data, "height")
	if w > 0 && h > 0 {
		st.viewport = domain.ViewportSize{Width: w, Height: h}
	}
	b.summary.Resizes++
	b.add(ev.Timestamp, "resized viewport", fmt.Sprintf("to %dx%d", w, h))
}

func (l *Logger) handleInput(st *state, b *builder, ev *domain.NormalizedEvent, data map[string]any) {
	id, ok := intField(data, "id")
	if !ok {
		return
	}
	text := strField(data, "text")

	ns := st.inputs[id]
	if ns == nil {
		ns = &inputState{}
		st.inputs[id] = ns
	}

	if text != "" && !ns.hadContentEver {
		ns.hadContentEver = true
		b.summary.Inputs++
		b.add(ev.Timestamp, "typed", fmt.Sprintf("into %s", l.registry.Describe(id)))
	}

	if len(text) < len(ns.lastText) &&
		l.throttle(st, fmt.Sprintf("correction:%d", id), l.opts.ScrollLogInterval, ev.Timestamp) {
		b.add(ev.Timestamp, "corrected input", fmt.Sprintf("in %s", l.registry.Describe(id)), domain.FlagCorrection)
	}

	ns.lastText = text
	ns.lastTimestamp = ev.Timestamp
}

// closeInput ends a focus→blur cycle and classifies it as abandoned (nothing
// was ever typed) or cleared (typed then fully deleted).
func (l *Logger) closeInput(st *state, b *builder, ev *domain.NormalizedEvent, id int) {
	if id == 0 && st.focusedNode >= 0 {
		id = st.focusedNode
	}
	ns := st.inputs[id]
	if ns == nil {
		return
	}
	if !l.fieldAcceptsText(id) {
		delete(st.inputs, id)
		return
	}

	switch {
	case !ns.hadContentEver:
		b.summary.AbandonedInputs++
		b.add(ev.Timestamp, "left field empty", l.registry.Describe(id), domain.FlagAbandonedInput)
	case ns.lastText == "":
		b.add(ev.Timestamp, "cleared field", l.registry.Describe(id), domain.FlagClearedInput)
	}

	delete(st.inputs, id)
	if st.focusedNode == id {
		st.focusedNode = -1
	}
}

// fieldAcceptsText limits abandoned/cleared classification to text-capable
// elements; focusing a checkbox and moving on is not abandonment.
func (l *Logger) fieldAcceptsText(id int) bool {
	d, ok := l.registry.Lookup(id)
	if !ok {
		return false
	}
	switch d.TagName {
	case "textarea":
		return true
	case "input":
		switch d.Attributes[domain.AttrType] {
		case "checkbox", "radio", "button", "submit", "range", "file":
			return false
		}
		return true
	}
	return false
}

func (l *Logger) handleTouchEnd(st *state, b *builder, ev *domain.NormalizedEvent, x, y float64) {
	g := st.touch
	if g == nil {
		return
	}
	st.touch = nil
	b.summary.Touches++

	dx := x - g.x
	dy := y - g.y
	dist := math.Hypot(dx, dy)
	duration := ev.Timestamp - g.startTime

	switch {
	case dist < l.opts.TapMaxDistance && duration < l.opts.TapMaxDuration.Milliseconds():
		b.add(ev.Timestamp, "tapped", l.registry.Describe(g.nodeID))
	case dist > l.opts.SwipeMinDistance:
		b.add(ev.Timestamp, "swiped "+swipeDirection(dx, dy), "")
	case duration > l.opts.LongPressMinDuration.Milliseconds():
		b.add(ev.Timestamp, "long-pressed", l.registry.Describe(g.nodeID))
	default:
		b.add(ev.Timestamp, "touched", l.registry.Describe(g.nodeID))
	}
}

func (l *Logger) handleMedia(st *state, b *builder, ev *domain.NormalizedEvent, data map[string]any) {
	b.summary.MediaInteractions++
	kind, _ := intField(data, "type")
	id, _ := intField(data, "id")
	action := "interacted with media"
	switch kind {
	case 0:
		action = "played media"
	case 1:
		action = "paused media"
	case 2:
		action = "seeked media"
	case 3:
		action = "changed media volume"
	}
	b.add(ev.Timestamp, action, l.registry.Describe(id))
}

func (l *Logger) handleConsole(st *state, b *builder, ev *domain.NormalizedEvent, data map[string]any) {
	if strField(data, "level") != "error" {
		return
	}
	b.summary.ConsoleErrors++
	detail := strField(data, "payload")
	if detail == "" {
		if payload := sliceField(data, "payload"); len(payload) > 0 {
			detail, _ = payload[0].(string)
		}
	}
	if len(detail) > 120 {
		detail = detail[:120] + "…"
	}
	b.add(ev.Timestamp, "console error", l.redactor.Redact(detail), domain.FlagError)
}

// throttle reports whether an ambient log line for the given class is due.
// Counters are incremented by callers regardless.
func (l *Logger) throttle(st *state, class string, interval time.Duration, ts int64) bool {
	if last, ok := st.lastLogged[class]; ok && ts-last < interval.Milliseconds() {
		return false
	}
	st.lastLogged[class] = ts
	return true
}

func swipeDirection(dx, dy float64) string {
	if math.Abs(dx) > math.Abs(dy) {
		if dx > 0 {
			return "right"
		}
		return "left"
	}
	if dy > 0 {
		return "down"
	}
	return "up"
}

func pruneClicks(history []clickRecord, now, keep int64) []clickRecord {
	cut := 0
	for cut < len(history) && now-history[cut].timestamp > keep {
		cut++
	}
	return history[cut:]
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// builder accumulates log entries and counters during a pass.
type builder struct {
	start   int64
	entries []domain.SemanticLogEntry
	summary domain.SessionSummary
}

func (b *builder) add(ts int64, action, details string, flags ...string) {
	b.entries = append(b.entries, domain.SemanticLogEntry{
		Timestamp:    formatClock(ts - b.start),
		Action:       action,
		Details:      details,
		Flags:        flags,
		RawTimestamp: ts,
	})
}

func formatClock(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	total := ms / 1000
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
