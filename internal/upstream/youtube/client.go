package youtube

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

type ObserverFunc func(endpoint string, status int, duration time.Duration)

type Option func(*Client)

type Client struct {
	baseURL    string
	httpClient *http.Client
	observer   ObserverFunc
}

const (
	defaultBaseURL = "https://www.youtube.com"
	captionsMarker = `"captions":`
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

func WithObserver(observer ObserverFunc) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

// WithBaseURL points the client at a different host. Used by tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func New(httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: httpClient,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// WebshareProxyURL builds the rotating-residential proxy URL for a Webshare
// account. The "-rotate" suffix makes Webshare hand out a fresh IP per
// connection.
func WebshareProxyURL(username, password string) *url.URL {
	return &url.URL{
		Scheme: "http",
		User:   url.UserPassword(username+"-rotate", password),
		Host:   "p.webshare.io:80",
	}
}

// FetchTranscript lists the video's caption tracks, picks the first one
// matching languages, and fetches it.
func (c *Client) FetchTranscript(ctx context.Context, videoID string, languages []string) ([]Segment, error) {
	list, err := c.ListTranscripts(ctx, videoID)
	if err != nil {
		return nil, err
	}
	track, err := list.FindTranscript(languages...)
	if err != nil {
		return nil, err
	}
	return c.FetchTrack(ctx, track)
}

// ListTranscripts scrapes the watch page and returns every caption track
// YouTube advertises for the video.
func (c *Client) ListTranscripts(ctx context.Context, videoID string) (*TranscriptList, error) {
	pageHTML, err := c.fetchWatchHTML(ctx, videoID)
	if err != nil {
		return nil, err
	}
	return parseTranscriptList(videoID, pageHTML)
}

// FetchTrack downloads one caption track and parses its timed text.
func (c *Client) FetchTrack(ctx context.Context, track Track) ([]Segment, error) {
	body, err := c.get(ctx, "caption_track", track.BaseURL, nil)
	if err != nil {
		return nil, err
	}

	var doc struct {
		XMLName xml.Name `xml:"transcript"`
		Texts   []struct {
			Start float64 `xml:"start,attr"`
			Dur   float64 `xml:"dur,attr"`
			Text  string  `xml:",chardata"`
		} `xml:"text"`
	}
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parse caption track for video %q: %w", track.VideoID, err)
	}

	segments := make([]Segment, 0, len(doc.Texts))
	for _, text := range doc.Texts {
		segments = append(segments, Segment{
			Text:     cleanCaptionText(text.Text),
			Start:    text.Start,
			Duration: text.Dur,
		})
	}
	return segments, nil
}

func (c *Client) fetchWatchHTML(ctx context.Context, videoID string) (string, error) {
	watchURL := c.baseURL + "/watch?v=" + url.QueryEscape(videoID)

	body, err := c.get(ctx, "watch_page", watchURL, nil)
	if err != nil {
		return "", err
	}
	if !isConsentPage(body) {
		return string(body), nil
	}

	// YouTube serves a consent interstitial in some regions. Retrying with
	// the consent cookie set yields the real watch page.
	body, err = c.get(ctx, "watch_page", watchURL, []*http.Cookie{
		{Name: "CONSENT", Value: "YES+", Domain: ".youtube.com"},
	})
	if err != nil {
		return "", err
	}
	if isConsentPage(body) {
		return "", &RequestBlockedError{VideoID: videoID, Reason: "consent cookie rejected"}
	}
	return string(body), nil
}

func (c *Client) get(ctx context.Context, endpoint, rawURL string, cookies []*http.Cookie) ([]byte, error) {
	started := time.Now()
	statusCode := 0
	defer func() {
		c.observe(endpoint, statusCode, time.Since(started))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept-Language", "en-US")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	statusCode = resp.StatusCode

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: truncateBody(string(body))}
	}
	return body, nil
}

func (c *Client) observe(endpoint string, status int, duration time.Duration) {
	if c.observer != nil {
		c.observer(endpoint, status, duration)
	}
}

func isConsentPage(body []byte) bool {
	return strings.Contains(string(body), `action="https://consent.youtube.com`)
}

// parseTranscriptList pulls the caption metadata out of the watch page. The
// page embeds the player response as inline JSON; the captions object sits
// right after the "captions": key, so decoding one JSON value from there
// avoids parsing the whole document.
func parseTranscriptList(videoID, pageHTML string) (*TranscriptList, error) {
	idx := strings.Index(pageHTML, captionsMarker)
	if idx < 0 {
		switch {
		case strings.HasPrefix(videoID, "http://") || strings.HasPrefix(videoID, "https://"):
			return nil, &InvalidVideoIDError{VideoID: videoID}
		case strings.Contains(pageHTML, `class="g-recaptcha"`):
			return nil, &RequestBlockedError{VideoID: videoID, Reason: "captcha required"}
		case !strings.Contains(pageHTML, `"playabilityStatus":`):
			return nil, &VideoUnavailableError{VideoID: videoID}
		default:
			return nil, &TranscriptsDisabledError{VideoID: videoID}
		}
	}

	var captions struct {
		Renderer *struct {
			CaptionTracks []struct {
				BaseURL        string   `json:"baseUrl"`
				Name           runsText `json:"name"`
				LanguageCode   string   `json:"languageCode"`
				Kind           string   `json:"kind"`
				IsTranslatable bool     `json:"isTranslatable"`
			} `json:"captionTracks"`
			TranslationLanguages []struct {
				LanguageCode string   `json:"languageCode"`
				LanguageName runsText `json:"languageName"`
			} `json:"translationLanguages"`
		} `json:"playerCaptionsTracklistRenderer"`
	}
	decoder := json.NewDecoder(strings.NewReader(pageHTML[idx+len(captionsMarker):]))
	if err := decoder.Decode(&captions); err != nil || captions.Renderer == nil {
		return nil, &TranscriptsDisabledError{VideoID: videoID}
	}

	translations := make([]TranslationLanguage, 0, len(captions.Renderer.TranslationLanguages))
	for _, lang := range captions.Renderer.TranslationLanguages {
		translations = append(translations, TranslationLanguage{
			LanguageCode: lang.LanguageCode,
			Language:     lang.LanguageName.Value(),
		})
	}

	list := &TranscriptList{VideoID: videoID}
	for _, track := range captions.Renderer.CaptionTracks {
		t := Track{
			VideoID:        videoID,
			BaseURL:        track.BaseURL,
			Language:       track.Name.Value(),
			LanguageCode:   track.LanguageCode,
			IsGenerated:    track.Kind == "asr",
			IsTranslatable: track.IsTranslatable,
		}
		if t.IsTranslatable {
			t.TranslationLanguages = translations
		}
		list.Tracks = append(list.Tracks, t)
	}
	return list, nil
}

// runsText handles the two shapes YouTube uses for display strings.
type runsText struct {
	SimpleText string `json:"simpleText"`
	Runs       []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

func (t runsText) Value() string {
	if t.SimpleText != "" {
		return t.SimpleText
	}
	var sb strings.Builder
	for _, run := range t.Runs {
		sb.WriteString(run.Text)
	}
	return sb.String()
}

// cleanCaptionText undoes the double HTML escaping in timed-text payloads and
// strips any residual formatting tags.
func cleanCaptionText(s string) string {
	return tagPattern.ReplaceAllString(html.UnescapeString(s), "")
}

func truncateBody(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= 4096 {
		return s
	}
	return s[:4096] + "..."
}
