package utils

import "testing"

func TestExtractTrackID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://open.spotify.com/track/4cOdK2wGLETKBW3PvgPWqT", "4cOdK2wGLETKBW3PvgPWqT"},
		{"https://open.spotify.com/track/4cOdK2wGLETKBW3PvgPWqT?si=abc123", "4cOdK2wGLETKBW3PvgPWqT"},
		{"https://open.spotify.com/intl-de/track/7ouMYWpwJ422jRcDASZB7P", "7ouMYWpwJ422jRcDASZB7P"},
		{"spotify:track:11dFghVXANMlKmJXsNCbNl", "11dFghVXANMlKmJXsNCbNl"},
		{"  11dFghVXANMlKmJXsNCbNl ", "11dFghVXANMlKmJXsNCbNl"},
	}
	for _, tt := range tests {
		got, err := ExtractTrackID(tt.in)
		if err != nil {
			t.Errorf("ExtractTrackID(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ExtractTrackID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractTrackIDInvalid(t *testing.T) {
	for _, in := range []string{"", "   ", "https://open.spotify.com/album/", "not a url at all", "abc"} {
		if id, err := ExtractTrackID(in); err == nil {
			t.Errorf("ExtractTrackID(%q) = %q, expected error", in, id)
		}
	}
}

func TestIsTrackURL(t *testing.T) {
	if !IsTrackURL("https://open.spotify.com/track/4cOdK2wGLETKBW3PvgPWqT") {
		t.Error("Expected share link to be a track URL")
	}
	if IsTrackURL("4cOdK2wGLETKBW3PvgPWqT") {
		t.Error("A bare ID is not a URL")
	}
}
