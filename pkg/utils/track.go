package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	trackPathRe = regexp.MustCompile(`track[/:]([A-Za-z0-9]+)`)
	bareIDRe    = regexp.MustCompile(`^[A-Za-z0-9]{8,64}$`)
)

// ExtractTrackID pulls the alphanumeric track ID out of a share link
// ("https://open.spotify.com/track/<id>?si=..."), a URI ("spotify:track:<id>")
// or a bare ID.
func ExtractTrackID(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", fmt.Errorf("empty track identifier")
	}

	if bareIDRe.MatchString(s) {
		return s, nil
	}

	target := s
	if u, err := url.Parse(s); err == nil && u.Host != "" {
		target = u.Path
	}

	if m := trackPathRe.FindStringSubmatch(target); m != nil {
		return m[1], nil
	}

	return "", fmt.Errorf("unable to extract track ID from: %s", input)
}

// IsTrackURL reports whether s looks like a track share link or URI.
func IsTrackURL(s string) bool {
	_, err := ExtractTrackID(s)
	return err == nil && !bareIDRe.MatchString(strings.TrimSpace(s))
}
