package transcription

import (
	"context"
	"strings"

	apperrors "github.com/nijaru/yt-summary/errors"
	"github.com/nijaru/yt-summary/validation"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	ErrMalformedURL        = errors.New("malformed URL: no video id")
	ErrTooManyRequests     = errors.New("transcript service is rate limiting requests")
	ErrVideoUnavailable    = errors.New("video is unavailable")
	ErrTranscriptsDisabled = errors.New("transcripts are disabled for this video")
	ErrNoTranscriptFound   = errors.New("no transcript found for the requested languages")
)

// Segment is one caption line. Only Text survives into the joined transcript.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Source returns the ordered transcript segments for a video.
type Source interface {
	Segments(ctx context.Context, videoID string) ([]Segment, error)
}

// JoinSegments joins segment texts with a single space in their original order.
func JoinSegments(segments []Segment) string {
	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.Text
	}
	return strings.Join(texts, " ")
}

type Fetcher struct {
	source Source
	logger *logrus.Logger
}

func NewFetcher(source Source) *Fetcher {
	return &Fetcher{
		source: source,
		logger: logrus.StandardLogger(),
	}
}

// Fetch derives the video id from rawURL and returns the joined transcript.
// Every failure is a TranscriptUnavailable error; a URL without a video id
// fails before any remote call with ErrMalformedURL as its cause.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	const op = "Fetcher.Fetch"

	videoID, ok := validation.ParseVideoID(rawURL)
	if !ok {
		return "", apperrors.TranscriptUnavailable(op, ErrMalformedURL)
	}

	logger := f.logger.WithContext(ctx).WithField("video_id", videoID)

	segments, err := f.source.Segments(ctx, videoID)
	if err != nil {
		logger.WithError(err).Warn("Transcript fetch failed")
		return "", apperrors.TranscriptUnavailable(op, err)
	}

	logger.WithField("segments", len(segments)).Debug("Transcript fetched")
	return JoinSegments(segments), nil
}
