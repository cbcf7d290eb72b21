package models

// SummarizeRequest is the body accepted by the summarize endpoint, as JSON or form.
type SummarizeRequest struct {
	URL string `json:"url" form:"url"`
}

type VideoResponse struct {
	VideoID      string `json:"video_id"`
	ThumbnailURL string `json:"thumbnail_url"`
	WatchURL     string `json:"watch_url"`
}

type SummaryResponse struct {
	VideoID      string `json:"video_id"`
	ThumbnailURL string `json:"thumbnail_url"`
	Summary      string `json:"summary"`
	Model        string `json:"model"`
	DurationMS   int64  `json:"duration_ms"`
}

func NewVideoResponse(v *Video) *VideoResponse {
	return &VideoResponse{
		VideoID:      v.ID,
		ThumbnailURL: v.ThumbnailURL,
		WatchURL:     v.WatchURL,
	}
}

func NewSummaryResponse(r *Result) *SummaryResponse {
	return &SummaryResponse{
		VideoID:      r.Video.ID,
		ThumbnailURL: r.Video.ThumbnailURL,
		Summary:      r.Summary,
		Model:        r.Model,
		DurationMS:   r.Duration.Milliseconds(),
	}
}
