package video

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/himanishpuri/studiokit/pkg/utils"
	"github.com/lrstanley/go-ytdlp"
)

// AudioQuery is the yt-dlp search used to find a track's audio.
func AudioQuery(artist, song string) string {
	q := strings.TrimSpace(strings.TrimSpace(artist) + " - " + strings.TrimSpace(song))
	q = strings.Trim(q, "- ")
	return "ytsearch1:" + q + " audio"
}

// FetchAudio downloads the best audio match for artist/song as mp3 into dir
// and returns its path.
func FetchAudio(ctx context.Context, artist, song, dir string) (string, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 3*time.Minute)
		defer cancel()
	}

	if err := utils.MakeDir(dir); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	template := filepath.Join(dir, "audio.%(ext)s")
	dl := ytdlp.New().
		ExtractAudio().
		AudioFormat("mp3").
		NoPlaylist().
		NoWarnings().
		Output(template)

	if _, err := dl.Run(ctx, AudioQuery(artist, song)); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("yt-dlp download failed: %w", err)
	}

	path := filepath.Join(dir, "audio.mp3")
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("downloaded audio not found at %s: %w", path, err)
	}
	return path, nil
}
