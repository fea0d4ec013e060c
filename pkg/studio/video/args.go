package video

import (
	"fmt"
	"strconv"
	"strings"
)

// Config controls the output geometry and text styling.
type Config struct {
	Width      int
	Height     int
	FPS        int
	FontFile   string // optional; ffmpeg's default font when empty
	FontSize   int
	FontColor  string
	Background string
	FFmpeg     string
	FFprobe    string
	TempDir    string
}

func DefaultConfig() Config {
	return Config{
		Width:      1280,
		Height:     720,
		FPS:        25,
		FontSize:   56,
		FontColor:  "white",
		Background: "black",
		FFmpeg:     "ffmpeg",
		FFprobe:    "ffprobe",
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Width <= 0 {
		c.Width = d.Width
	}
	if c.Height <= 0 {
		c.Height = d.Height
	}
	if c.FPS <= 0 {
		c.FPS = d.FPS
	}
	if c.FontSize <= 0 {
		c.FontSize = d.FontSize
	}
	if c.FontColor == "" {
		c.FontColor = d.FontColor
	}
	if c.Background == "" {
		c.Background = d.Background
	}
	if c.FFmpeg == "" {
		c.FFmpeg = d.FFmpeg
	}
	if c.FFprobe == "" {
		c.FFprobe = d.FFprobe
	}
	return c
}

// ClipSpec describes one segment clip.
type ClipSpec struct {
	AssetPath string // looping GIF; empty renders a plain background card
	TextFile  string // lyric text for drawtext; empty renders no text
	Duration  float64
	Output    string
}

func seconds(d float64) string {
	return strconv.FormatFloat(d, 'f', 3, 64)
}

// filterQuote escapes a value for use inside a single-quoted filter option.
func filterQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func (c Config) drawText(textFile string) string {
	parts := []string{
		"textfile=" + filterQuote(textFile),
		"fontcolor=" + c.FontColor,
		"fontsize=" + strconv.Itoa(c.FontSize),
		"borderw=3",
		"bordercolor=black",
		"line_spacing=8",
		"x=(w-text_w)/2",
		fmt.Sprintf("y=h-text_h-%d", c.Height/10),
	}
	if c.FontFile != "" {
		parts = append([]string{"fontfile=" + filterQuote(c.FontFile)}, parts...)
	}
	return "drawtext=" + strings.Join(parts, ":")
}

// ClipArgs builds the ffmpeg arguments for one segment clip.
func (c Config) ClipArgs(spec ClipSpec) []string {
	c = c.withDefaults()
	dur := seconds(spec.Duration)
	size := fmt.Sprintf("%dx%d", c.Width, c.Height)

	args := []string{"-y", "-v", "error"}
	var filters []string

	if spec.AssetPath != "" {
		args = append(args, "-ignore_loop", "0", "-i", spec.AssetPath)
		filters = append(filters,
			fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease", c.Width, c.Height),
			fmt.Sprintf("pad=%d:%d:(ow-iw)/2:(oh-ih)/2:color=%s", c.Width, c.Height, c.Background),
		)
	} else {
		args = append(args, "-f", "lavfi", "-i",
			fmt.Sprintf("color=c=%s:s=%s:r=%d:d=%s", c.Background, size, c.FPS, dur))
	}

	filters = append(filters, "fps="+strconv.Itoa(c.FPS))
	if spec.TextFile != "" {
		filters = append(filters, c.drawText(spec.TextFile))
	}
	filters = append(filters, "format=yuv420p")

	return append(args,
		"-vf", strings.Join(filters, ","),
		"-t", dur,
		"-an",
		"-c:v", "libx264",
		"-preset", "veryfast",
		spec.Output,
	)
}

// ConcatList renders an ffmpeg concat-demuxer list for the given clip files.
func ConcatList(paths []string) string {
	var b strings.Builder
	for _, p := range paths {
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(p, "'", `'\''`))
		b.WriteString("'\n")
	}
	return b.String()
}

func (c Config) ConcatArgs(listFile, output string) []string {
	return []string{
		"-y", "-v", "error",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-c", "copy",
		output,
	}
}

// MuxArgs lays an audio track under the video, stopping at the shorter one.
func (c Config) MuxArgs(videoPath, audioPath, output string) []string {
	return []string{
		"-y", "-v", "error",
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", "aac",
		"-shortest",
		output,
	}
}
