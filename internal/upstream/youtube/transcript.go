package youtube

import "net/url"

type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

type TranslationLanguage struct {
	LanguageCode string
	Language     string
}

// Track carries everything needed to fetch a caption track later, so values
// stay usable after the listing call that produced them.
type Track struct {
	VideoID              string
	BaseURL              string
	Language             string
	LanguageCode         string
	IsGenerated          bool
	IsTranslatable       bool
	TranslationLanguages []TranslationLanguage
}

// Translate returns a copy of the track that fetches an automatic translation
// into languageCode. The receiver is left untouched.
func (t Track) Translate(languageCode string) (Track, error) {
	if !t.IsTranslatable {
		return Track{}, &NotTranslatableError{VideoID: t.VideoID, LanguageCode: t.LanguageCode}
	}
	var target TranslationLanguage
	found := false
	for _, lang := range t.TranslationLanguages {
		if lang.LanguageCode == languageCode {
			target = lang
			found = true
			break
		}
	}
	if !found {
		return Track{}, &TranslationLanguageNotAvailableError{VideoID: t.VideoID, LanguageCode: languageCode}
	}
	return Track{
		VideoID:      t.VideoID,
		BaseURL:      t.BaseURL + "&tlang=" + url.QueryEscape(target.LanguageCode),
		Language:     target.Language,
		LanguageCode: target.LanguageCode,
		IsGenerated:  t.IsGenerated,
	}, nil
}

type TranscriptList struct {
	VideoID string
	Tracks  []Track
}

// FindTranscript returns the first track matching the given language codes,
// tried in order. Manually created tracks win over generated ones for the
// same language.
func (l *TranscriptList) FindTranscript(languageCodes ...string) (Track, error) {
	for _, code := range languageCodes {
		for _, generated := range []bool{false, true} {
			for _, track := range l.Tracks {
				if track.IsGenerated == generated && track.LanguageCode == code {
					return track, nil
				}
			}
		}
	}
	return Track{}, &NoTranscriptFoundError{
		VideoID:            l.VideoID,
		RequestedLanguages: append([]string(nil), languageCodes...),
	}
}
