package errors

import (
	"fmt"
	"net/http"

	pkgerrors "github.com/pkg/errors"
)

// Kind classifies a failure by the pipeline stage that produced it.
type Kind string

const (
	KindEmptyInput            Kind = "empty_input"
	KindInvalidURL            Kind = "invalid_url"
	KindTranscriptUnavailable Kind = "transcript_unavailable"
	KindSummarizationFailed   Kind = "summarization_failed"
	KindNotFound              Kind = "not_found"
	KindInternal              Kind = "internal"
)

const (
	MsgEmptyInput            = "Please enter a YouTube video link!"
	MsgInvalidURL            = "Invalid YouTube URL!"
	MsgTranscriptUnavailable = "Transcript not available or could not be fetched."
	MsgSummarizationFailed   = "Error generating summary."
	MsgNotFound              = "Not found"
	MsgInternal              = "Internal server error"
)

type AppError struct {
	Code    int    `json:"-"`
	Kind    Kind   `json:"kind"`
	Message string `json:"error"`
	Op      string `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Detail returns the underlying cause for diagnostics, or "" when there is none.
func (e *AppError) Detail() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// Warning reports whether the error is a user slip rather than a failure.
func (e *AppError) Warning() bool {
	return e.Kind == KindEmptyInput
}

func E(op string, kind Kind, err error) *AppError {
	code, message := defaults(kind)
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

func defaults(kind Kind) (int, string) {
	switch kind {
	case KindEmptyInput:
		return http.StatusBadRequest, MsgEmptyInput
	case KindInvalidURL:
		return http.StatusBadRequest, MsgInvalidURL
	case KindTranscriptUnavailable:
		return http.StatusBadGateway, MsgTranscriptUnavailable
	case KindSummarizationFailed:
		return http.StatusBadGateway, MsgSummarizationFailed
	case KindNotFound:
		return http.StatusNotFound, MsgNotFound
	default:
		return http.StatusInternalServerError, MsgInternal
	}
}

func EmptyInput(op string) *AppError {
	return E(op, KindEmptyInput, nil)
}

func InvalidURL(op string, err error) *AppError {
	return E(op, KindInvalidURL, err)
}

func TranscriptUnavailable(op string, err error) *AppError {
	return E(op, KindTranscriptUnavailable, err)
}

func SummarizationFailed(op string, err error) *AppError {
	return E(op, KindSummarizationFailed, err)
}

func NotFound(op string, err error) *AppError {
	return E(op, KindNotFound, err)
}

func Internal(op string, err error, message string) *AppError {
	appErr := E(op, KindInternal, err)
	if message != "" {
		appErr.Message = message
	}
	return appErr
}

// As returns the outermost AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if pkgerrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the Kind of the outermost AppError in err's chain.
// Errors without one are internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Code returns the HTTP status for err.
func Code(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
