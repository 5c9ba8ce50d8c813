package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ytscribe/internal/upstream/youtube"
)

// PriorityLanguages is the order transcripts are searched in. English
// variants only; anything else is reached through translation.
var PriorityLanguages = []string{"en", "en-US", "en-GB"}

// TranslationTarget is the language the translation fallback converts
// foreign-language tracks into.
const TranslationTarget = "en"

var ErrNoVideoID = errors.New("no video_id provided")

type Client interface {
	FetchTranscript(ctx context.Context, videoID string, languages []string) ([]youtube.Segment, error)
	ListTranscripts(ctx context.Context, videoID string) (*youtube.TranscriptList, error)
	FetchTrack(ctx context.Context, track youtube.Track) ([]youtube.Segment, error)
}

// ObserverFunc is called once per fallback stage entered ("list" or
// "translate").
type ObserverFunc func(stage string)

type Option func(*Service)

func WithObserver(observer ObserverFunc) Option {
	return func(s *Service) {
		s.observer = observer
	}
}

type Service struct {
	client   Client
	observer ObserverFunc
}

func New(client Client, opts ...Option) *Service {
	s := &Service{client: client}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Resolve fetches the video's transcript as flattened plain text. It tries
// the priority languages directly, then re-lists the tracks and retries the
// match, then sweeps the translatable tracks translating each into English
// until one yields text. If every stage comes up empty the error from the
// first attempt is returned, so callers see why the direct lookup failed.
func (s *Service) Resolve(ctx context.Context, videoID string) (string, error) {
	if strings.TrimSpace(videoID) == "" {
		return "", ErrNoVideoID
	}

	segments, err := s.client.FetchTranscript(ctx, videoID, PriorityLanguages)
	if err == nil {
		return Flatten(segments), nil
	}
	var notFound *youtube.NoTranscriptFoundError
	if !errors.As(err, &notFound) {
		return "", classify(err)
	}
	baseErr := err

	s.observe("list")
	list, err := s.client.ListTranscripts(ctx, videoID)
	if err != nil {
		return "", classify(err)
	}

	track, err := list.FindTranscript(PriorityLanguages...)
	if err == nil {
		segments, err = s.client.FetchTrack(ctx, track)
		if err == nil {
			return Flatten(segments), nil
		}
		if !errors.As(err, &notFound) {
			return "", classify(err)
		}
	} else if !errors.As(err, &notFound) {
		return "", classify(err)
	}

	s.observe("translate")
	for _, candidate := range list.Tracks {
		if !candidate.IsTranslatable {
			continue
		}
		translated, err := candidate.Translate(TranslationTarget)
		if err != nil {
			continue
		}
		segments, err := s.client.FetchTrack(ctx, translated)
		if err != nil {
			continue
		}
		if text := Flatten(segments); text != "" {
			return text, nil
		}
	}

	return "", baseErr
}

func (s *Service) observe(stage string) {
	if s.observer != nil {
		s.observer(stage)
	}
}

// Flatten joins segment texts into a single line. Each segment is trimmed
// and blank segments are dropped, so the result never carries leading,
// trailing, or doubled spaces.
func Flatten(segments []youtube.Segment) string {
	parts := make([]string, 0, len(segments))
	for _, segment := range segments {
		if text := strings.TrimSpace(segment.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// classify keeps the collaborator's classified failures intact and wraps
// everything else so transports can tell the two apart.
func classify(err error) error {
	if IsClassified(err) {
		return err
	}
	return fmt.Errorf("unexpected error fetching transcript: %w", err)
}

// IsClassified reports whether err is one of the failure kinds transports
// map to a not-found response.
func IsClassified(err error) bool {
	var disabled *youtube.TranscriptsDisabledError
	var unavailable *youtube.VideoUnavailableError
	var notFound *youtube.NoTranscriptFoundError
	return errors.As(err, &disabled) || errors.As(err, &unavailable) || errors.As(err, &notFound)
}
