package pipeline

import (
	"context"
	"fmt"
	"testing"

	apperrors "github.com/nijaru/yt-summary/errors"
	"github.com/nijaru/yt-summary/models"
	"github.com/nijaru/yt-summary/transcription"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	segments []transcription.Segment
	err      error
	calls    int
}

func (s *stubSource) Segments(ctx context.Context, videoID string) ([]transcription.Segment, error) {
	s.calls++
	return s.segments, s.err
}

type stubSummarizer struct {
	reply string
	err   error
	calls int
	text  string
}

func (s *stubSummarizer) Summarize(ctx context.Context, text, prompt string) (string, error) {
	s.calls++
	s.text = text
	return s.reply, s.err
}

func (s *stubSummarizer) Model() string { return "stub-model" }

type stubRecorder struct {
	runs []*models.Run
	err  error
}

func (r *stubRecorder) RecordRun(ctx context.Context, run *models.Run) error {
	r.runs = append(r.runs, run)
	return r.err
}

func newTestPipeline(source *stubSource, summarizer *stubSummarizer, recorder *stubRecorder) *Pipeline {
	return New(transcription.NewFetcher(source), summarizer, "P: ", WithRecorder(recorder))
}

func TestRun_Success(t *testing.T) {
	source := &stubSource{segments: []transcription.Segment{{Text: "Hello"}, {Text: "world"}}}
	summarizer := &stubSummarizer{reply: "A greeting."}
	recorder := &stubRecorder{}

	result, err := newTestPipeline(source, summarizer, recorder).Run(context.Background(), "https://youtube.com/watch?v=abc123")
	require.NoError(t, err)

	assert.Equal(t, "A greeting.", result.Summary)
	assert.Equal(t, "stub-model", result.Model)
	assert.Equal(t, "abc123", result.Video.ID)
	assert.Equal(t, "https://img.youtube.com/vi/abc123/0.jpg", result.Video.ThumbnailURL)
	assert.Equal(t, "Hello world", summarizer.text)

	require.Len(t, recorder.runs, 1)
	assert.Equal(t, models.StatusCompleted, recorder.runs[0].Status)
	assert.Equal(t, "abc123", recorder.runs[0].VideoID)
	assert.NotEmpty(t, recorder.runs[0].ID)
}

func TestRun_Failures(t *testing.T) {
	tests := []struct {
		name            string
		url             string
		source          *stubSource
		summarizer      *stubSummarizer
		wantKind        apperrors.Kind
		wantSourceCalls int
		wantSummarize   int
		wantRecorded    int
	}{
		{
			name:       "empty input",
			url:        "   ",
			source:     &stubSource{},
			summarizer: &stubSummarizer{},
			wantKind:   apperrors.KindEmptyInput,
		},
		{
			name:         "no query",
			url:          "https://youtube.com/watch",
			source:       &stubSource{},
			summarizer:   &stubSummarizer{},
			wantKind:     apperrors.KindInvalidURL,
			wantRecorded: 1,
		},
		{
			name:            "transcript fault",
			url:             "https://youtube.com/watch?v=zzz999",
			source:          &stubSource{err: fmt.Errorf("video unavailable")},
			summarizer:      &stubSummarizer{},
			wantKind:        apperrors.KindTranscriptUnavailable,
			wantSourceCalls: 1,
			wantRecorded:    1,
		},
		{
			name:            "empty transcript",
			url:             "https://youtube.com/watch?v=abc123",
			source:          &stubSource{},
			summarizer:      &stubSummarizer{},
			wantKind:        apperrors.KindTranscriptUnavailable,
			wantSourceCalls: 1,
			wantRecorded:    1,
		},
		{
			name:            "summarization fault",
			url:             "https://youtube.com/watch?v=abc123",
			source:          &stubSource{segments: []transcription.Segment{{Text: "T"}}},
			summarizer:      &stubSummarizer{err: fmt.Errorf("401 unauthorized")},
			wantKind:        apperrors.KindSummarizationFailed,
			wantSourceCalls: 1,
			wantSummarize:   1,
			wantRecorded:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := &stubRecorder{}
			result, err := newTestPipeline(tt.source, tt.summarizer, recorder).Run(context.Background(), tt.url)

			assert.Nil(t, result)
			assert.Equal(t, tt.wantKind, apperrors.KindOf(err))
			assert.Equal(t, tt.wantSourceCalls, tt.source.calls)
			assert.Equal(t, tt.wantSummarize, tt.summarizer.calls)

			require.Len(t, recorder.runs, tt.wantRecorded)
			if tt.wantRecorded > 0 {
				assert.Equal(t, models.StatusFailed, recorder.runs[0].Status)
				assert.Equal(t, string(tt.wantKind), recorder.runs[0].ErrorKind)
			}
		})
	}
}

func TestRun_RecorderFailureIsIgnored(t *testing.T) {
	source := &stubSource{segments: []transcription.Segment{{Text: "T"}}}
	recorder := &stubRecorder{err: fmt.Errorf("disk full")}

	result, err := newTestPipeline(source, &stubSummarizer{reply: "S"}, recorder).Run(context.Background(), "https://youtube.com/watch?v=abc123")
	require.NoError(t, err)
	assert.Equal(t, "S", result.Summary)
}

func TestRun_WithoutRecorder(t *testing.T) {
	source := &stubSource{segments: []transcription.Segment{{Text: "T"}}}
	p := New(transcription.NewFetcher(source), &stubSummarizer{reply: "S"}, "P: ")

	_, err := p.Run(context.Background(), "https://youtube.com/watch?v=abc123")
	assert.NoError(t, err)
}

func TestPreview(t *testing.T) {
	p := New(transcription.NewFetcher(&stubSource{}), &stubSummarizer{}, "P: ")

	video, err := p.Preview("https://www.youtube.com/watch?v=abc123&t=5")
	require.NoError(t, err)
	assert.Equal(t, "abc123", video.ID)
	assert.Equal(t, "https://img.youtube.com/vi/abc123/0.jpg", video.ThumbnailURL)

	_, err = p.Preview("https://youtube.com/watch")
	assert.Equal(t, apperrors.KindInvalidURL, apperrors.KindOf(err))

	_, err = p.Preview("")
	assert.Equal(t, apperrors.KindEmptyInput, apperrors.KindOf(err))
}

func TestPreviewAndRunAgreeOnVideoID(t *testing.T) {
	source := &stubSource{segments: []transcription.Segment{{Text: "T"}}}
	p := New(transcription.NewFetcher(source), &stubSummarizer{reply: "S"}, "P: ")
	url := "https://youtube.com/watch?list=L&v=abc123&v=other"

	video, err := p.Preview(url)
	require.NoError(t, err)
	result, err := p.Run(context.Background(), url)
	require.NoError(t, err)
	assert.Equal(t, video.ID, result.Video.ID)
}
