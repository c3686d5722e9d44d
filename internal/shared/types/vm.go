package types

// VMState represents the simulated machine's power state
type VMState string

const (
	StateInactive VMState = "inactive"
	StateActive   VMState = "active"
	StatePaused   VMState = "paused"
)

// Valid reports whether s is one of the known states.
func (s VMState) Valid() bool {
	switch s {
	case StateInactive, StateActive, StatePaused:
		return true
	}
	return false
}

// OSOption describes one selectable operating system
type OSOption struct {
	ID         string `json:"id" yaml:"id" toml:"id"`
	Name       string `json:"name" yaml:"name" toml:"name"`
	Version    string `json:"version" yaml:"version" toml:"version"`
	Icon       string `json:"icon" yaml:"icon" toml:"icon"`
	Color      string `json:"color" yaml:"color" toml:"color"`
	DefaultURL string `json:"default_url" yaml:"default_url" toml:"default_url"`
}

// Stats holds the synthetic resource readings
type Stats struct {
	CPU     int `json:"cpu"`
	RAM     int `json:"ram"`
	Network int `json:"network"`
}

// IsZero reports whether all readings are zero.
func (s Stats) IsZero() bool {
	return s == Stats{}
}

// StatsAverages holds the means over the recent sample window
type StatsAverages struct {
	CPU     float64 `json:"cpu"`
	RAM     float64 `json:"ram"`
	Network float64 `json:"network"`
	Samples int     `json:"samples"`
}

// Indicator is the status dot shown next to an OS entry
type Indicator string

const (
	IndicatorIdle   Indicator = "idle"
	IndicatorActive Indicator = "active"
	IndicatorPaused Indicator = "paused"
)

// Controls lists which console controls are enabled
type Controls struct {
	SelectOS   bool   `json:"select_os"`
	PowerOn    bool   `json:"power_on"`
	PowerOff   bool   `json:"power_off"`
	Restart    bool   `json:"restart"`
	Pause      bool   `json:"pause"`
	PauseLabel string `json:"pause_label"`
	FullScreen bool   `json:"full_screen"`
	URLInput   bool   `json:"url_input"`
	Go         bool   `json:"go"`
}

// DisplayKind selects what the display surface shows
type DisplayKind string

const (
	DisplayBlank    DisplayKind = "blank"
	DisplayDocument DisplayKind = "document"
	DisplayRemote   DisplayKind = "remote"
)

// Display describes the current content of the display surface.
// Revision increases every time the content is (re)loaded.
type Display struct {
	Kind        DisplayKind `json:"kind"`
	URL         string      `json:"url,omitempty"`
	Revision    uint64      `json:"revision"`
	Dimmed      bool        `json:"dimmed"`
	Interactive bool        `json:"interactive"`
}

// Snapshot is the externally visible controller state
type Snapshot struct {
	Mode          string               `json:"mode"`
	SelectedOS    string               `json:"selected_os"`
	OS            OSOption             `json:"os"`
	State         VMState              `json:"state"`
	BrowserURL    string               `json:"browser_url"`
	SessionID     string               `json:"session_id,omitempty"`
	SessionBadge  string               `json:"session_badge,omitempty"`
	Stats         Stats                `json:"stats"`
	Averages      StatsAverages        `json:"averages"`
	Controls      Controls             `json:"controls"`
	Display       Display              `json:"display"`
	Indicators    map[string]Indicator `json:"indicators"`
	TokenRequired bool                 `json:"token_required"`
	HasToken      bool                 `json:"has_token"`
}

// NoticeLevel classifies user-facing notices
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a non-blocking message for the user
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// EventType identifies controller events
type EventType string

const (
	EventState  EventType = "state"
	EventStats  EventType = "stats"
	EventNotice EventType = "notice"
)

// Event is published by the controller after transitions and timer ticks
type Event struct {
	Type      EventType      `json:"type"`
	Snapshot  *Snapshot      `json:"snapshot,omitempty"`
	Stats     *Stats         `json:"stats,omitempty"`
	Averages  *StatsAverages `json:"averages,omitempty"`
	Notice    *Notice        `json:"notice,omitempty"`
	Timestamp int64          `json:"timestamp"`
}
