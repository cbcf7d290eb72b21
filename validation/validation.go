package validation

import (
	"net/url"
	"strings"

	"github.com/nijaru/yt-summary/errors"
)

const thumbnailBase = "https://img.youtube.com/vi/"

// ParseVideoID returns the first non-empty value of the "v" query parameter.
// Only the query is inspected, so a bad path, port or fragment does not
// hide an otherwise readable id.
func ParseVideoID(rawURL string) (string, bool) {
	for _, pair := range strings.Split(rawQuery(strings.TrimSpace(rawURL)), "&") {
		key, value, _ := strings.Cut(pair, "=")
		if unescape(key) != "v" {
			continue
		}
		if value = unescape(value); value != "" {
			return value, true
		}
	}
	return "", false
}

// rawQuery returns the text between the first '?' and the fragment.
func rawQuery(s string) string {
	s, _, _ = strings.Cut(s, "#")
	_, query, found := strings.Cut(s, "?")
	if !found {
		return ""
	}
	return query
}

// unescape decodes form encoding. Invalid escapes are kept literally.
func unescape(s string) string {
	s = strings.ReplaceAll(s, "+", " ")
	if decoded, err := url.PathUnescape(s); err == nil {
		return decoded
	}
	return s
}

// ValidateInput distinguishes a missing URL from one without a video ID.
func ValidateInput(rawURL string) (string, error) {
	const op = "validation.ValidateInput"

	if strings.TrimSpace(rawURL) == "" {
		return "", errors.EmptyInput(op)
	}

	id, ok := ParseVideoID(rawURL)
	if !ok {
		return "", errors.InvalidURL(op, nil)
	}
	return id, nil
}

func ThumbnailURL(videoID string) string {
	return thumbnailBase + url.PathEscape(videoID) + "/0.jpg"
}

func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + url.QueryEscape(videoID)
}
