package domain

import (
	"errors"
	"time"
)

// ReportRequest is one invocation of the report command
type ReportRequest struct {
	GuildID     string   `json:"guild_id"`
	RequestedBy string   `json:"requested_by,omitempty"`
	Args        []string `json:"args"`
}

// Report is a finished Markdown report and the interval it covers
type Report struct {
	GuildID     string       `json:"guild_id"`
	Interval    DateInterval `json:"interval"`
	RangeLabel  string       `json:"range_label"`
	Markdown    string       `json:"markdown"`
	Filename    string       `json:"filename"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// Bytes returns the report body for delivery as an attachment
func (r *Report) Bytes() []byte {
	return []byte(r.Markdown)
}

// RunStatus is the outcome of a report run
type RunStatus string

const (
	RunStatusSucceeded        RunStatus = "succeeded"
	RunStatusInvalidReference RunStatus = "invalid_reference"
	RunStatusFetchFailed      RunStatus = "fetch_failed"
	RunStatusBusy             RunStatus = "busy"
	RunStatusUnavailable      RunStatus = "unavailable"
	RunStatusFailed           RunStatus = "failed"
)

// RunStatusFor maps a generation error to the status recorded for it
func RunStatusFor(err error) RunStatus {
	switch {
	case err == nil:
		return RunStatusSucceeded
	case errors.Is(err, ErrInvalidReference):
		return RunStatusInvalidReference
	case errors.Is(err, ErrFetchFailed):
		return RunStatusFetchFailed
	case errors.Is(err, ErrReportInProgress):
		return RunStatusBusy
	case errors.Is(err, ErrServiceUnavailable):
		return RunStatusUnavailable
	default:
		return RunStatusFailed
	}
}

// ReportRun records one generation attempt. The report text is never stored.
type ReportRun struct {
	ID          string        `json:"id"`
	GuildID     string        `json:"guild_id"`
	RequestedBy string        `json:"requested_by,omitempty"`
	Args        []string      `json:"args"`
	RangeLabel  string        `json:"range_label,omitempty"`
	Sections    int           `json:"sections"`
	Status      RunStatus     `json:"status"`
	Error       string        `json:"error,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration_ns"`
}
