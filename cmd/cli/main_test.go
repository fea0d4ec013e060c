package main

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/himanishpuri/studiokit/pkg/models"
	"github.com/himanishpuri/studiokit/pkg/studio"
)

func TestSplitArgs(t *testing.T) {
	pos, flags := splitArgs([]string{"doc.pdf", "--method", "ocr", "--copy"})
	if pos != "doc.pdf" || !reflect.DeepEqual(flags, []string{"--method", "ocr", "--copy"}) {
		t.Errorf("Unexpected split: %q %v", pos, flags)
	}

	pos, flags = splitArgs([]string{"--out", "x.txt"})
	if pos != "" || len(flags) != 2 {
		t.Errorf("Flags-only split: %q %v", pos, flags)
	}
}

func TestFormatEvent(t *testing.T) {
	tests := []struct {
		ev   studio.Event
		want string
	}{
		{studio.Event{Stage: studio.StageQueued}, "[queued]"},
		{studio.Event{Stage: studio.StageAssets, Index: 1, Total: 4, Message: "hello"}, "[assets] 2/4 hello"},
		{studio.Event{Stage: studio.StageFailed, Message: "boom"}, "[failed] boom"},
	}
	for _, tt := range tests {
		if got := formatEvent(tt.ev); got != tt.want {
			t.Errorf("formatEvent(%+v) = %q, want %q", tt.ev, got, tt.want)
		}
	}
}

func TestPrintTimeline(t *testing.T) {
	var buf bytes.Buffer
	printTimeline(&buf, &models.Timeline{
		Song: models.SongInfo{SongName: "Song", Artist: "Artist"},
		Segments: []models.Segment{
			{Text: "hello", StartSeconds: 0, DurationSeconds: 2.5},
			{Text: "", StartSeconds: 2.5, DurationSeconds: 2.5},
		},
		TotalDurationSeconds: 5,
		DurationFallback:     true,
		SkippedLines:         1,
	})

	out := buf.String()
	for _, want := range []string{`"Song" by Artist`, "Length: 0m 5s (estimated from lyrics)", "[00:00.00]   2.50s  hello", "[00:02.50]", "1 malformed"} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}
