package types

// SelectOSRequest selects an operating system
type SelectOSRequest struct {
	ID string `json:"id" binding:"required"`
}

// URLRequest updates the browser URL
type URLRequest struct {
	URL string `json:"url" binding:"required"`
}

// NavigateRequest submits the current or a new URL
type NavigateRequest struct {
	URL string `json:"url"`
}

// TokenRequest supplies the remote session API token
type TokenRequest struct {
	Token string `json:"token"`
}

// WSMessage represents an inbound WebSocket message
type WSMessage struct {
	Type string `json:"type"`
}
