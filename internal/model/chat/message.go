package chat

import "time"

// Message sender roles as forwarded to the model backend.
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// Message persists individual turns for transcript lookup and model context.
type Message struct {
	ID        string    `json:"id"`
	Player    string    `json:"player"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
