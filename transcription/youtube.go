package transcription

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
)

const (
	playerResponseMarker = "ytInitialPlayerResponse = "
	maxWatchPageSize     = 6 * 1024 * 1024
	maxTimedTextSize     = 2 * 1024 * 1024
	userAgent            = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
}

type playerResponse struct {
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type timedText struct {
	Lines []struct {
		Start string `xml:"start,attr"`
		Dur   string `xml:"dur,attr"`
		Text  string `xml:",chardata"`
	} `xml:"text"`
}

// YouTubeSource scrapes the watch page for caption tracks and downloads the
// best one as timedtext XML.
type YouTubeSource struct {
	client    *http.Client
	baseURL   string
	languages []string
}

func NewYouTubeSource(baseURL string, languages []string, timeout time.Duration) *YouTubeSource {
	if len(languages) == 0 {
		languages = []string{"en"}
	}
	return &YouTubeSource{
		client:    &http.Client{Timeout: timeout},
		baseURL:   strings.TrimRight(baseURL, "/"),
		languages: languages,
	}
}

func (s *YouTubeSource) Segments(ctx context.Context, videoID string) ([]Segment, error) {
	tracks, err := s.captionTracks(ctx, videoID)
	if err != nil {
		return nil, err
	}

	track, ok := pickTrack(tracks, s.languages)
	if !ok {
		available := make([]string, 0, len(tracks))
		for _, t := range tracks {
			available = append(available, t.LanguageCode)
		}
		return nil, errors.Wrapf(ErrNoTranscriptFound, "requested %s, available %s",
			strings.Join(s.languages, ","), strings.Join(available, ","))
	}

	return s.fetchTimedText(ctx, track.BaseURL)
}

func (s *YouTubeSource) captionTracks(ctx context.Context, videoID string) ([]captionTrack, error) {
	body, err := s.get(ctx, s.baseURL+"/watch?v="+url.QueryEscape(videoID))
	if err != nil {
		return nil, errors.Wrap(err, "watch page")
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(body, maxWatchPageSize))
	if err != nil {
		return nil, errors.Wrap(err, "parse watch page")
	}

	var raw []byte
	doc.Find("script").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := sel.Text()
		idx := strings.Index(text, playerResponseMarker)
		if idx < 0 {
			return true
		}
		raw = extractJSON([]byte(text[idx+len(playerResponseMarker):]))
		return raw == nil
	})
	if raw == nil {
		return nil, errors.New("player response not found in watch page")
	}

	var player playerResponse
	if err := json.Unmarshal(raw, &player); err != nil {
		return nil, errors.Wrap(err, "decode player response")
	}

	if ps := player.PlayabilityStatus; ps != nil && ps.Status != "" && ps.Status != "OK" {
		if ps.Reason != "" {
			return nil, errors.Wrap(ErrVideoUnavailable, ps.Reason)
		}
		return nil, errors.Wrap(ErrVideoUnavailable, ps.Status)
	}

	if player.Captions == nil || len(player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks) == 0 {
		return nil, ErrTranscriptsDisabled
	}
	return player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks, nil
}

func (s *YouTubeSource) fetchTimedText(ctx context.Context, baseURL string) ([]Segment, error) {
	trackURL := strings.Replace(baseURL, "&fmt=srv3", "", 1)
	if strings.HasPrefix(trackURL, "/") {
		trackURL = s.baseURL + trackURL
	}

	body, err := s.get(ctx, trackURL)
	if err != nil {
		return nil, errors.Wrap(err, "timedtext")
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxTimedTextSize))
	if err != nil {
		return nil, errors.Wrap(err, "read timedtext")
	}

	var tt timedText
	if err := xml.Unmarshal(data, &tt); err != nil {
		return nil, errors.Wrap(err, "parse timedtext XML")
	}

	segments := make([]Segment, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		if line.Text == "" {
			continue
		}
		start, _ := strconv.ParseFloat(line.Start, 64)
		dur, _ := strconv.ParseFloat(line.Dur, 64)
		segments = append(segments, Segment{
			Text:     cleanText(line.Text),
			Start:    start,
			Duration: dur,
		})
	}
	return segments, nil
}

func (s *YouTubeSource) get(ctx context.Context, target string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", s.languages[0])

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		resp.Body.Close()
		return nil, ErrTooManyRequests
	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		return nil, errors.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// pickTrack prefers a manually created track in language order, then an
// auto-generated one in language order.
func pickTrack(tracks []captionTrack, languages []string) (captionTrack, bool) {
	for _, lang := range languages {
		for _, t := range tracks {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, true
			}
		}
	}
	for _, lang := range languages {
		for _, t := range tracks {
			if t.LanguageCode == lang && t.Kind == "asr" {
				return t, true
			}
		}
	}
	return captionTrack{}, false
}

// cleanText unescapes entities left after XML decoding and drops markup
// such as <font> or <i>.
func cleanText(raw string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return raw
	}
	return doc.Text()
}

// extractJSON returns the JSON object starting at b[0], tracking brace depth
// outside of string literals.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr, escaped := false, false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}
