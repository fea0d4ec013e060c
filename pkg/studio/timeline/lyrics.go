package timeline

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/himanishpuri/studiokit/pkg/models"
)

var lyricLineRe = regexp.MustCompile(`^\[(\d\d):(\d\d)\.(\d\d)\](.*)`)

// ParseResult is the outcome of parsing a synced-lyrics payload.
type ParseResult struct {
	Lines []models.LyricLine
	// Skipped counts non-blank lines that did not carry a [mm:ss.cc] tag.
	Skipped int
}

// ParseSyncedLyrics reads one "[mm:ss.cc]text" entry per line. Blank lines are
// ignored, untagged lines are dropped and counted in Skipped. Source order is
// kept as-is. An empty Lines slice is a valid result.
func ParseSyncedLyrics(raw string) ParseResult {
	var res ParseResult
	sc := bufio.NewScanner(strings.NewReader(raw))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		ll, ok := parseLyricLine(line)
		if !ok {
			res.Skipped++
			continue
		}
		res.Lines = append(res.Lines, ll)
	}
	return res
}

func parseLyricLine(line string) (models.LyricLine, bool) {
	m := lyricLineRe.FindStringSubmatch(line)
	if m == nil {
		return models.LyricLine{}, false
	}
	mm, _ := strconv.Atoi(m[1])
	ss, _ := strconv.Atoi(m[2])
	cc, _ := strconv.Atoi(m[3])
	return models.LyricLine{
		TimestampSeconds: float64(mm*60+ss) + float64(cc)/100,
		Text:             strings.TrimSpace(m[4]),
	}, true
}

// FormatTimestamp renders seconds as the [mm:ss.cc] tag used by the parser.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	cs := int(seconds*100 + 0.5)
	return fmt.Sprintf("[%02d:%02d.%02d]", cs/6000, cs/100%60, cs%100)
}
