package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/nijaru/yt-summary/errors"
	"github.com/nijaru/yt-summary/models"
	"github.com/nijaru/yt-summary/transcription"
	"github.com/nijaru/yt-summary/validation"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var errEmptyTranscript = errors.New("transcript is empty")

type Transcripts interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, text, prompt string) (string, error)
	Model() string
}

// RunRecorder stores one row per summarize action. Failures to record never
// affect the action itself.
type RunRecorder interface {
	RecordRun(ctx context.Context, run *models.Run) error
}

type Option func(*Pipeline)

func WithRecorder(r RunRecorder) Option {
	return func(p *Pipeline) {
		p.recorder = r
	}
}

// Pipeline runs fetch then summarize for one URL at a time. It holds no
// per-request state and is safe for concurrent use.
type Pipeline struct {
	transcripts Transcripts
	summarizer  Summarizer
	prompt      string
	recorder    RunRecorder
	logger      *logrus.Logger
}

func New(transcripts Transcripts, summarizer Summarizer, prompt string, opts ...Option) *Pipeline {
	p := &Pipeline{
		transcripts: transcripts,
		summarizer:  summarizer,
		prompt:      prompt,
		logger:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Preview resolves the video shown before summarizing. It makes no remote calls.
func (p *Pipeline) Preview(rawURL string) (*models.Video, error) {
	id, err := validation.ValidateInput(rawURL)
	if err != nil {
		return nil, err
	}
	return newVideo(rawURL, id), nil
}

func (p *Pipeline) Run(ctx context.Context, rawURL string) (result *models.Result, err error) {
	const op = "Pipeline.Run"

	if strings.TrimSpace(rawURL) == "" {
		return nil, apperrors.EmptyInput(op)
	}

	start := time.Now()
	videoID, _ := validation.ParseVideoID(rawURL)
	logger := p.logger.WithContext(ctx).WithField("video_id", videoID)

	defer func() {
		p.record(ctx, logger, videoID, time.Since(start), err)
	}()

	text, err := p.transcripts.Fetch(ctx, rawURL)
	if err != nil {
		if errors.Is(err, transcription.ErrMalformedURL) {
			return nil, apperrors.InvalidURL(op, err)
		}
		return nil, ensureKind(op, err, apperrors.KindTranscriptUnavailable)
	}
	if text == "" {
		return nil, apperrors.TranscriptUnavailable(op, errEmptyTranscript)
	}

	summary, err := p.summarizer.Summarize(ctx, text, p.prompt)
	if err != nil {
		return nil, ensureKind(op, err, apperrors.KindSummarizationFailed)
	}

	return &models.Result{
		Video:    newVideo(rawURL, videoID),
		Summary:  summary,
		Model:    p.summarizer.Model(),
		Duration: time.Since(start),
	}, nil
}

func (p *Pipeline) record(ctx context.Context, logger *logrus.Entry, videoID string, elapsed time.Duration, runErr error) {
	run := &models.Run{
		ID:         uuid.New().String(),
		VideoID:    videoID,
		Status:     models.StatusCompleted,
		Model:      p.summarizer.Model(),
		Duration:   elapsed,
		DurationMS: elapsed.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}

	if runErr != nil {
		run.Status = models.StatusFailed
		run.ErrorKind = string(apperrors.KindOf(runErr))
	}

	entry := logger.WithFields(logrus.Fields{"run_id": run.ID, "duration": elapsed})
	switch {
	case run.IsFailed():
		entry.WithError(runErr).Warn("Summarize run failed")
	case run.IsCompleted():
		entry.Info("Summarize run completed")
	}

	if p.recorder == nil {
		return
	}
	if err := p.recorder.RecordRun(context.WithoutCancel(ctx), run); err != nil {
		logger.WithError(err).Error("Failed to record run")
	}
}

// ensureKind keeps err when it already carries kind and wraps it otherwise.
func ensureKind(op string, err error, kind apperrors.Kind) error {
	if apperrors.Is(err, kind) {
		return err
	}
	return apperrors.E(op, kind, err)
}

func newVideo(rawURL, id string) *models.Video {
	return &models.Video{
		ID:           id,
		URL:          strings.TrimSpace(rawURL),
		ThumbnailURL: validation.ThumbnailURL(id),
		WatchURL:     validation.WatchURL(id),
	}
}
