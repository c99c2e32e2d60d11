package domain

import "time"

// PinnedMessage is a message marked as noteworthy within a channel
type PinnedMessage struct {
	ID        string    `json:"id"`
	ChannelID string    `json:"channel_id"`
	Timestamp time.Time `json:"timestamp"`
	Content   string    `json:"content"` // Mentions already replaced with display names
	Permalink string    `json:"permalink"`
}
