package semantic

import (
	"time"

	"github.com/replaysight/replaysight/internal/domain"
)

// Options are the tunable thresholds of the action logger. Zero-value fields
// are filled in from DefaultOptions by New.
type Options struct {
	// RageClickWindow is how far back prior same-node clicks count toward a
	// rage click; RageClickPriors is how many of them trigger the flag.
	RageClickWindow time.Duration
	RageClickPriors int

	// ThrashWindow bounds the burst of cross-node clicks flagged as
	// thrashing; ThrashClicks and ThrashNodes are the minimum click and
	// distinct-node counts within it.
	ThrashWindow time.Duration
	ThrashClicks int
	ThrashNodes  int

	// DeadClickWindow is how long a click may wait for a structural
	// mutation before it is flagged unresponsive; DeadClickLookahead
	// bounds the scan in events.
	DeadClickWindow    time.Duration
	DeadClickLookahead int

	// HesitationThreshold is the continuous hover duration over an
	// interactive node that counts as hesitating.
	HesitationThreshold time.Duration

	// RapidScrollSpeed is the instantaneous scroll speed, in pixels per
	// millisecond, above which a scroll is flagged rapid.
	RapidScrollSpeed float64

	// PageHeightViewports estimates total page height as a multiple of the
	// viewport height for scroll-depth percentages. A heuristic standing in
	// for real page-height data; retune when the capture provides it.
	PageHeightViewports int

	// IdleThreshold is the inter-event gap beyond which the excess counts
	// as idle time.
	IdleThreshold time.Duration

	// ScrollLogInterval and MouseLogInterval throttle ambient log lines for
	// noisy event classes. Counters are unaffected.
	ScrollLogInterval time.Duration
	MouseLogInterval  time.Duration

	// Touch gesture classification bounds.
	TapMaxDistance       float64
	TapMaxDuration       time.Duration
	SwipeMinDistance     float64
	LongPressMinDuration time.Duration
}

// DefaultOptions returns the thresholds the detection rules are specified
// against.
func DefaultOptions() Options {
	return Options{
		RageClickWindow:      2000 * time.Millisecond,
		RageClickPriors:      2,
		ThrashWindow:         1500 * time.Millisecond,
		ThrashClicks:         3,
		ThrashNodes:          3,
		DeadClickWindow:      1000 * time.Millisecond,
		DeadClickLookahead:   100,
		HesitationThreshold:  2000 * time.Millisecond,
		RapidScrollSpeed:     5,
		PageHeightViewports:  3,
		IdleThreshold:        5000 * time.Millisecond,
		ScrollLogInterval:    2 * time.Second,
		MouseLogInterval:     3 * time.Second,
		TapMaxDistance:       10,
		TapMaxDuration:       300 * time.Millisecond,
		SwipeMinDistance:     50,
		LongPressMinDuration: 500 * time.Millisecond,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.RageClickWindow == 0 {
		o.RageClickWindow = def.RageClickWindow
	}
	if o.RageClickPriors == 0 {
		o.RageClickPriors = def.RageClickPriors
	}
	if o.ThrashWindow == 0 {
		o.ThrashWindow = def.ThrashWindow
	}
	if o.ThrashClicks == 0 {
		o.ThrashClicks = def.ThrashClicks
	}
	if o.ThrashNodes == 0 {
		o.ThrashNodes = def.ThrashNodes
	}
	if o.DeadClickWindow == 0 {
		o.DeadClickWindow = def.DeadClickWindow
	}
	if o.DeadClickLookahead == 0 {
		o.DeadClickLookahead = def.DeadClickLookahead
	}
	if o.HesitationThreshold == 0 {
		o.HesitationThreshold = def.HesitationThreshold
	}
	if o.RapidScrollSpeed == 0 {
		o.RapidScrollSpeed = def.RapidScrollSpeed
	}
	if o.PageHeightViewports == 0 {
		o.PageHeightViewports = def.PageHeightViewports
	}
	if o.IdleThreshold == 0 {
		o.IdleThreshold = def.IdleThreshold
	}
	if o.ScrollLogInterval == 0 {
		o.ScrollLogInterval = def.ScrollLogInterval
	}
	if o.MouseLogInterval == 0 {
		o.MouseLogInterval = def.MouseLogInterval
	}
	if o.TapMaxDistance == 0 {
		o.TapMaxDistance = def.TapMaxDistance
	}
	if o.TapMaxDuration == 0 {
		o.TapMaxDuration = def.TapMaxDuration
	}
	if o.SwipeMinDistance == 0 {
		o.SwipeMinDistance = def.SwipeMinDistance
	}
	if o.LongPressMinDuration == 0 {
		o.LongPressMinDuration = def.LongPressMinDuration
	}
	return o
}

type clickRecord struct {
	nodeID    int
	timestamp int64
}

type inputState struct {
	lastText       string
	lastTimestamp  int64
	hadContentEver bool
}

type touchGesture struct {
	x, y      float64
	startTime int64
	nodeID    int
}

// state is the rolling parser state threaded through the event fold. It is
// local to one Run call, which keeps the logger reentrant.
type state struct {
	start         int64
	lastEventTime int64
	idleMillis    int64

	clickHistory []clickRecord

	hoverNode    int
	hoverStart   int64
	hoverFlagged bool

	inputs      map[int]*inputState
	focusedNode int

	touch *touchGesture

	lastScrollY    float64
	lastScrollTime int64
	scrollDir      int
	hasScrolled    bool

	lastLogged map[string]int64

	currentWindow string
	pageURL       string
	pageTitle     string
	viewport      domain.ViewportSize
}

func newState() *state {
	return &state{
		hoverNode:   -1,
		focusedNode: -1,
		inputs:      make(map[int]*inputState),
		lastLogged:  make(map[string]int64),
	}
}
