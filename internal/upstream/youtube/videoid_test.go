package youtube

import "testing"

func TestExtractVideoID(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare id", "dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"bare id with spaces", "  dQw4w9WgXcQ  ", "dQw4w9WgXcQ"},
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch url extra params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s&list=PL1", "dQw4w9WgXcQ"},
		{"no scheme", "www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short link with query", "https://youtu.be/dQw4w9WgXcQ?si=abc123", "dQw4w9WgXcQ"},
		{"shorts", "https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"embed", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"live", "https://www.youtube.com/live/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"mobile host", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"nocookie embed", "https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"trailing path on embed", "https://www.youtube.com/embed/dQw4w9WgXcQ/extra", "dQw4w9WgXcQ"},
		{"wrong host", "https://vimeo.com/watch?v=dQw4w9WgXcQ", ""},
		{"lookalike host", "https://notyoutube.com/watch?v=dQw4w9WgXcQ", ""},
		{"id too short", "abc123", ""},
		{"id with bad characters", "dQw4w9WgXc!", ""},
		{"watch url malformed id", "https://www.youtube.com/watch?v=tooshort", ""},
		{"empty", "", ""},
		{"junk", "not a video at all", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractVideoID(tc.in); got != tc.want {
				t.Fatalf("ExtractVideoID(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
