package domain

// EventKind classifies an inbound chat event.
type EventKind string

const (
	EventDirectMessage EventKind = "direct_message"
	EventChannelPost   EventKind = "channel_post"
)

// InboundEvent is a chat message extracted from a platform webhook payload.
type InboundEvent struct {
	Kind      EventKind `json:"kind"`
	Text      string    `json:"text"`
	UserID    string    `json:"user_id"`
	ChannelID string    `json:"channel_id"`
	Timestamp string    `json:"timestamp"`
}
