package chat

import "time"

// Session tracks one player's transient conversation context.
type Session struct {
	Player     string    `json:"player"`
	CreatedAt  time.Time `json:"createdAt"`
	LastActive time.Time `json:"lastActive"`
}
