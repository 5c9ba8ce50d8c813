package youtube

import (
	"fmt"
	"strings"
)

type TranscriptsDisabledError struct {
	VideoID string
}

func (e *TranscriptsDisabledError) Error() string {
	return fmt.Sprintf("transcripts are disabled for video %q", e.VideoID)
}

type VideoUnavailableError struct {
	VideoID string
}

func (e *VideoUnavailableError) Error() string {
	return fmt.Sprintf("video %q is unavailable", e.VideoID)
}

type NoTranscriptFoundError struct {
	VideoID            string
	RequestedLanguages []string
}

func (e *NoTranscriptFoundError) Error() string {
	return fmt.Sprintf("no transcript found for video %q matching languages [%s]",
		e.VideoID, strings.Join(e.RequestedLanguages, ", "))
}

type NotTranslatableError struct {
	VideoID      string
	LanguageCode string
}

func (e *NotTranslatableError) Error() string {
	return fmt.Sprintf("transcript %q for video %q is not translatable", e.LanguageCode, e.VideoID)
}

type TranslationLanguageNotAvailableError struct {
	VideoID      string
	LanguageCode string
}

func (e *TranslationLanguageNotAvailableError) Error() string {
	return fmt.Sprintf("translation language %q is not available for video %q", e.LanguageCode, e.VideoID)
}

type InvalidVideoIDError struct {
	VideoID string
}

func (e *InvalidVideoIDError) Error() string {
	return fmt.Sprintf("invalid video id %q", e.VideoID)
}

// RequestBlockedError covers captcha and consent interstitials served in
// place of the watch page.
type RequestBlockedError struct {
	VideoID string
	Reason  string
}

func (e *RequestBlockedError) Error() string {
	return fmt.Sprintf("request for video %q was blocked (%s)", e.VideoID, e.Reason)
}

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("youtube request failed with status %d", e.StatusCode)
}
