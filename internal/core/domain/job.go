package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReportJob is a queued report request together with where to answer it
type ReportJob struct {
	ID         string        `json:"id"`
	Request    ReportRequest `json:"request"`
	ChannelID  string        `json:"channel_id"`
	MessageID  string        `json:"message_id"`
	EnqueuedAt time.Time     `json:"enqueued_at"`
}

// NewReportJob creates a job for a request received in a channel message
func NewReportJob(req ReportRequest, channelID, messageID string) *ReportJob {
	return &ReportJob{
		ID:         uuid.NewString(),
		Request:    req,
		ChannelID:  channelID,
		MessageID:  messageID,
		EnqueuedAt: time.Now(),
	}
}
