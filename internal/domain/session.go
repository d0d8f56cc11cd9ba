package domain

// Flags attached to semantic log entries when a detection heuristic fires.
const (
	FlagRageClick      = "RAGE CLICK"
	FlagClickThrashing = "CLICK THRASHING"
	FlagDeadClick      = "NO RESPONSE"
	FlagAbandonedInput = "ABANDONED INPUT"
	FlagClearedInput   = "CLEARED INPUT"
	FlagHesitation     = "HESITATION"
	FlagRapidScroll    = "RAPID SCROLL"
	FlagCorrection     = "CORRECTION"
	FlagError          = "ERROR"
)

// SemanticLogEntry is one line of the human-readable session narrative.
// Entries are append-only and ordered by RawTimestamp.
type SemanticLogEntry struct {
	Timestamp    string   `json:"timestamp"` // mm:ss offset from session start
	Action       string   `json:"action"`
	Details      string   `json:"details,omitempty"`
	Flags        []string `json:"flags,omitempty"`
	RawTimestamp int64    `json:"rawTimestamp"`
}

// SessionSummary is the fixed set of counters accumulated over one session.
type SessionSummary struct {
	Clicks            int `json:"clicks"`
	RageClicks        int `json:"rageClicks"`
	DeadClicks        int `json:"deadClicks"`
	Inputs            int `json:"inputs"`
	AbandonedInputs   int `json:"abandonedInputs"`
	Scrolls           int `json:"scrolls"`
	ScrollReversals   int `json:"scrollReversals"`
	RapidScrolls      int `json:"rapidScrolls"`
	MaxScrollDepth    int `json:"maxScrollDepth"` // percent, 0-100
	Hovers            int `json:"hovers"`
	Hesitations       int `json:"hesitations"`
	Touches           int `json:"touches"`
	MediaInteractions int `json:"mediaInteractions"`
	Selections        int `json:"selections"`
	ConsoleErrors     int `json:"consoleErrors"`
	NetworkErrors     int `json:"networkErrors"`
	TabSwitches       int `json:"tabSwitches"`
	IdleSeconds       int `json:"idleSeconds"`
	FormSubmissions   int `json:"formSubmissions"`
	Resizes           int `json:"resizes"`
}

// BehavioralFlags are the six session-level booleans synthesized from the
// summary counters.
type BehavioralFlags struct {
	IsExploring   bool `json:"isExploring"`
	IsFrustrated  bool `json:"isFrustrated"`
	IsEngaged     bool `json:"isEngaged"`
	IsConfused    bool `json:"isConfused"`
	IsMobile      bool `json:"isMobile"`
	CompletedGoal bool `json:"completedGoal"`
}

// ViewportSize is the page viewport reported by a meta event.
type ViewportSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// SemanticSession is the full analysis output for one session: the narrative
// log, the counter summary and the synthesized behavioral flags.
type SemanticSession struct {
	TotalDuration     string             `json:"totalDuration"` // mm:ss
	EventCount        int                `json:"eventCount"`
	PageURL           string             `json:"pageUrl"`
	PageTitle         string             `json:"pageTitle"`
	ViewportSize      ViewportSize       `json:"viewportSize"`
	Logs              []SemanticLogEntry `json:"logs"`
	Summary           SessionSummary     `json:"summary"`
	BehavioralSignals BehavioralFlags    `json:"behavioralSignals"`
}
