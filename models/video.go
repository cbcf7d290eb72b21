package models

import (
	"time"
)

type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Video is what the UI needs to show before any remote call is made.
type Video struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
	WatchURL     string `json:"watch_url"`
}

// Result is the outcome of one summarize action. The transcript is not kept.
type Result struct {
	Video    *Video        `json:"video"`
	Summary  string        `json:"summary"`
	Model    string        `json:"model"`
	Duration time.Duration `json:"-"`
}

// Run is one row of the operational run log.
type Run struct {
	ID         string        `json:"id"`
	VideoID    string        `json:"video_id"`
	Status     Status        `json:"status"`
	ErrorKind  string        `json:"error_kind,omitempty"`
	Model      string        `json:"model,omitempty"`
	Duration   time.Duration `json:"-"`
	DurationMS int64         `json:"duration_ms"`
	CreatedAt  time.Time     `json:"created_at"`
}

func (r *Run) IsCompleted() bool { return r.Status == StatusCompleted }
func (r *Run) IsFailed() bool    { return r.Status == StatusFailed }
