package types

import "time"

// Session is the handle of a running VM session.
// ViewURL is set only when a remote service provides the display.
type Session struct {
	ID        string    `json:"id"`
	ViewURL   string    `json:"view_url,omitempty"`
	OS        string    `json:"os"`
	CreatedAt time.Time `json:"created_at"`
}

// Badge returns the abbreviated id shown in the console header.
func (s Session) Badge() string {
	const n = 12
	if len(s.ID) <= n {
		return s.ID + "..."
	}
	return s.ID[:n] + "..."
}
