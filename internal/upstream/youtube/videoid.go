package youtube

import (
	"net/url"
	"regexp"
	"strings"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// pathPrefixes are the URL path shapes that carry a video id directly.
var pathPrefixes = []string{"/embed/", "/shorts/", "/live/", "/v/", "/e/"}

// ExtractVideoID pulls the 11-character video id out of a bare id or any of
// the common YouTube URL shapes (watch, youtu.be, shorts, embed, live). It
// returns "" when no id can be found.
func ExtractVideoID(raw string) string {
	raw = strings.TrimSpace(raw)
	if videoIDPattern.MatchString(raw) {
		return raw
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if host == "youtu.be" {
		return validVideoID(strings.TrimPrefix(u.Path, "/"))
	}
	if !isYouTubeHost(host) {
		return ""
	}
	if id := validVideoID(u.Query().Get("v")); id != "" {
		return id
	}
	for _, prefix := range pathPrefixes {
		if strings.HasPrefix(u.Path, prefix) {
			return validVideoID(strings.TrimPrefix(u.Path, prefix))
		}
	}
	return ""
}

func isYouTubeHost(host string) bool {
	return host == "youtube.com" ||
		strings.HasSuffix(host, ".youtube.com") ||
		host == "youtube-nocookie.com" ||
		strings.HasSuffix(host, ".youtube-nocookie.com")
}

func validVideoID(candidate string) string {
	if i := strings.IndexAny(candidate, "?&#/"); i >= 0 {
		candidate = candidate[:i]
	}
	if videoIDPattern.MatchString(candidate) {
		return candidate
	}
	return ""
}
