package video

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strconv"
	"time"
)

type Metadata struct {
	Filename    string
	DurationSec float64
	Width       int
	Height      int
	VideoCodec  string
	HasAudio    bool
	Format      string
}

type ffprobeOutput struct {
	Format struct {
		Filename string `json:"filename"`
		Duration string `json:"duration"`
		Format   string `json:"format_name"`
	} `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeStream struct {
	CodecType string `json:"codec_type"`
	CodecName string `json:"codec_name"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

func (p *ffprobeOutput) firstStream(kind string) *ffprobeStream {
	for i := range p.Streams {
		if p.Streams[i].CodecType == kind {
			return &p.Streams[i]
		}
	}
	return nil
}

// ProbeArgs are the ffprobe arguments used to inspect a rendered file.
func ProbeArgs(path string) []string {
	return []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	}
}

// Probe reads container and stream info of a rendered video via ffprobe.
func Probe(ctx context.Context, run Runner, ffprobe, path string) (*Metadata, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
	}

	out, err := run(ctx, ffprobe, ProbeArgs(path)...)
	if err != nil {
		return nil, err
	}
	return parseProbe(out, path)
}

func parseProbe(out []byte, path string) (*Metadata, error) {
	var probe ffprobeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return nil, err
	}

	vs := probe.firstStream("video")
	if vs == nil {
		return nil, errors.New("no video stream found")
	}

	duration, _ := strconv.ParseFloat(probe.Format.Duration, 64)

	return &Metadata{
		Filename:    filepath.Base(path),
		DurationSec: duration,
		Width:       vs.Width,
		Height:      vs.Height,
		VideoCodec:  vs.CodecName,
		HasAudio:    probe.firstStream("audio") != nil,
		Format:      probe.Format.Format,
	}, nil
}
