//go:build !js && !wasm

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/dustin/go-humanize"

	"github.com/himanishpuri/studiokit/internal/app"
	"github.com/himanishpuri/studiokit/internal/config"
	"github.com/himanishpuri/studiokit/pkg/logger"
	"github.com/himanishpuri/studiokit/pkg/models"
	"github.com/himanishpuri/studiokit/pkg/studio"
	"github.com/himanishpuri/studiokit/pkg/studio/pdftext"
	"github.com/himanishpuri/studiokit/pkg/studio/timeline"
	"github.com/himanishpuri/studiokit/pkg/utils"
)

// Global flags
var (
	configPath string
	dbPath     string
	tempDir    string
)

func init() {
	flag.StringVar(&configPath, "config", getEnvOrDefault("STUDIO_CONFIG", config.DefaultPath), "Path to YAML config file")
	flag.StringVar(&dbPath, "db", "", "Path to the SQLite database file (overrides config)")
	flag.StringVar(&tempDir, "temp", "", "Directory for temporary files (overrides config)")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// createService loads configuration and builds the studio service
func createService() (studio.Service, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if tempDir != "" {
		cfg.TempDir = tempDir
	}
	return app.NewService(context.Background(), cfg)
}

func mustService() studio.Service {
	svc, err := createService()
	if err != nil {
		fmt.Printf("❌ Failed to create service: %v\n", err)
		logger.Errorf("Service initialization failed: %v", err)
		os.Exit(1)
	}
	return svc
}

func main() {
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	logger.Debugf("Executing command: %s", command)

	switch command {
	case "extract":
		handleExtract(args[1:])
	case "preview":
		handlePreview(args[1:])
	case "extractions":
		handleExtractions(args[1:])
	case "timeline":
		handleTimeline(args[1:])
	case "render":
		handleRender(args[1:])
	case "jobs":
		handleJobs(args[1:])
	case "delete":
		handleDelete(args[1:])
	case "stats":
		handleStats()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// splitArgs separates a leading positional argument from the flags after it.
func splitArgs(args []string) (positional string, flags []string) {
	for i, arg := range args {
		if !strings.HasPrefix(arg, "-") && positional == "" {
			positional = arg
			continue
		}
		flags = append(flags, args[i:]...)
		break
	}
	return positional, flags
}

func handleExtract(args []string) {
	pdfPath, flagArgs := splitArgs(args)

	cmd := flag.NewFlagSet("extract", flag.ExitOnError)
	method := cmd.String("method", "digital", "Extraction method: digital or ocr")
	lang := cmd.String("lang", pdftext.DefaultLanguage, "OCR language: eng, ben, hin or eng+ben")
	dpi := cmd.Int("dpi", 0, "OCR render resolution (default 300)")
	out := cmd.String("out", "", "Write text to this file (use - for stdout)")
	copyText := cmd.Bool("copy", false, "Copy the extracted text to the clipboard")
	cmd.Parse(flagArgs)

	if pdfPath == "" {
		fmt.Println("Usage: studiokit extract <file.pdf> [--method digital|ocr] [--lang eng] [--out file] [--copy]")
		os.Exit(1)
	}

	m, err := pdftext.ParseMethod(*method)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	svc := mustService()
	defer svc.Close()

	fmt.Printf("📄 Extracting %s (%s)...\n", pdfPath, m)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	res, err := svc.ExtractPDF(ctx, pdfPath, "", pdftext.Options{Method: m, Language: *lang, DPI: *dpi}, func(page, total int) {
		fmt.Printf("   %s\n", pdftext.ProgressMessage(page, total))
	})
	if err != nil {
		fmt.Printf("\n❌ Extraction failed: %v\n", err)
		logger.Errorf("ExtractPDF failed: %v", err)
		os.Exit(1)
	}

	if res.Empty() {
		fmt.Printf("\n⚠️  %s\n", pdftext.EmptyWarning)
		return
	}

	fmt.Printf("\n✅ %d page(s), %s characters (%s)\n", res.Pages, humanize.Comma(int64(res.Chars)), humanize.Bytes(uint64(len(res.Text))))

	switch *out {
	case "":
		target := pdftext.DownloadName
		if err := os.WriteFile(target, []byte(res.Text), 0644); err != nil {
			fmt.Printf("❌ Failed to write %s: %v\n", target, err)
			os.Exit(1)
		}
		fmt.Printf("   Saved to %s\n", target)
	case "-":
		fmt.Println()
		fmt.Print(res.Text)
	default:
		if err := os.WriteFile(*out, []byte(res.Text), 0644); err != nil {
			fmt.Printf("❌ Failed to write %s: %v\n", *out, err)
			os.Exit(1)
		}
		fmt.Printf("   Saved to %s\n", *out)
	}

	if *copyText {
		if err := clipboard.WriteAll(res.Text); err != nil {
			fmt.Printf("⚠️  Could not copy to clipboard: %v\n", err)
		} else {
			fmt.Println("📋 Copied to clipboard")
		}
	}
}

func handlePreview(args []string) {
	pdfPath, flagArgs := splitArgs(args)

	cmd := flag.NewFlagSet("preview", flag.ExitOnError)
	out := cmd.String("out", "preview.png", "Output PNG path")
	cmd.Parse(flagArgs)

	if pdfPath == "" {
		fmt.Println("Usage: studiokit preview <file.pdf> [--out preview.png]")
		os.Exit(1)
	}

	svc := mustService()
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	png, err := svc.PreviewPDF(ctx, pdfPath)
	if err != nil {
		fmt.Printf("❌ Preview failed: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, png, 0644); err != nil {
		fmt.Printf("❌ Failed to write %s: %v\n", *out, err)
		os.Exit(1)
	}
	fmt.Printf("🖼️  First page saved to %s (%s)\n", *out, humanize.Bytes(uint64(len(png))))
}

func handleExtractions(args []string) {
	cmd := flag.NewFlagSet("extractions", flag.ExitOnError)
	limit := cmd.Int("limit", 20, "Number of entries to show")
	cmd.Parse(args)

	svc := mustService()
	defer svc.Close()

	list, err := svc.ListExtractions(*limit)
	if err != nil {
		fmt.Printf("❌ Failed to list extractions: %v\n", err)
		os.Exit(1)
	}
	if len(list) == 0 {
		fmt.Println("\n📭 No extractions recorded")
		return
	}

	fmt.Printf("\n📚 %d recent extraction(s):\n\n", len(list))
	for i, e := range list {
		fmt.Printf("%d. %s [%s/%s] %d page(s), %s chars, %s\n",
			i+1, e.FileName, e.Method, e.Language, e.Pages, humanize.Comma(int64(e.Chars)), humanize.Time(e.CreatedAt))
	}
}

func handleTimeline(args []string) {
	cmd := flag.NewFlagSet("timeline", flag.ExitOnError)
	track := cmd.String("track", "", "Track URL or ID (required)")
	cmd.Parse(args)

	if *track == "" {
		fmt.Println("Usage: studiokit timeline --track <url>")
		os.Exit(1)
	}
	if !utils.IsTrackURL(*track) {
		logger.Debugf("Treating %q as a bare track ID", *track)
	}

	svc := mustService()
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	tl, err := svc.BuildTimeline(ctx, *track)
	if err != nil {
		fmt.Printf("❌ Failed to build timeline: %v\n", err)
		logger.Errorf("BuildTimeline failed: %v", err)
		os.Exit(1)
	}
	printTimeline(os.Stdout, tl)
}

// printTimeline writes a human-readable timeline table.
func printTimeline(w io.Writer, tl *models.Timeline) {
	fmt.Fprintf(w, "\n🎵 \"%s\" by %s", tl.Song.SongName, tl.Song.Artist)
	if tl.Song.AlbumName != "" {
		fmt.Fprintf(w, " (%s)", tl.Song.AlbumName)
	}
	fmt.Fprintln(w)

	length := timeline.FormatDuration(int(tl.TotalDurationSeconds + 0.5))
	if tl.DurationFallback {
		length += " (estimated from lyrics)"
	}
	fmt.Fprintf(w, "   Length: %s, %d segment(s)\n\n", length, len(tl.Segments))

	for _, seg := range tl.Segments {
		text := seg.Text
		if text == "" {
			text = "♪"
		}
		fmt.Fprintf(w, "%s %6.2fs  %s\n", timeline.FormatTimestamp(seg.StartSeconds), seg.DurationSeconds, text)
	}
	if tl.SkippedLines > 0 {
		fmt.Fprintf(w, "\n⚠️  %d malformed lyric line(s) skipped\n", tl.SkippedLines)
	}
}

func handleRender(args []string) {
	cmd := flag.NewFlagSet("render", flag.ExitOnError)
	track := cmd.String("track", "", "Track URL or ID (required)")
	out := cmd.String("out", "", "Output MP4 path (default <output_dir>/<job>.mp4)")
	withAudio := cmd.Bool("audio", false, "Download and mux the song audio")
	giphyKey := cmd.String("giphy-key", "", "Giphy API key (overrides config)")
	cmd.Parse(args)

	if *track == "" {
		fmt.Println("Usage: studiokit render --track <url> [--out video.mp4] [--audio] [--giphy-key key]")
		os.Exit(1)
	}

	svc := mustService()
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	fmt.Println("🎬 Rendering lyrics video...")
	job, err := svc.GenerateVideo(ctx, studio.VideoRequest{
		TrackURL:    *track,
		GiphyAPIKey: *giphyKey,
		WithAudio:   *withAudio,
		Output:      *out,
	}, func(ev studio.Event) {
		fmt.Println("   " + formatEvent(ev))
	})
	if err != nil {
		fmt.Printf("\n❌ Render failed: %v\n", err)
		logger.Errorf("GenerateVideo failed: %v", err)
		os.Exit(1)
	}

	fmt.Println("\n✅ Video ready!")
	fmt.Printf("   File:     %s\n", job.OutputPath)
	fmt.Printf("   Size:     %s\n", humanize.Bytes(uint64(job.SizeBytes)))
	fmt.Printf("   Length:   %.1fs\n", job.DurationSeconds)
	fmt.Printf("   Segments: %d (%d with GIFs)\n", job.SegmentCount, job.BoundCount)
}

// formatEvent renders a progress event as one line.
func formatEvent(ev studio.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", ev.Stage)
	if ev.Total > 0 {
		fmt.Fprintf(&b, " %d/%d", ev.Index+1, ev.Total)
	}
	if ev.Message != "" {
		b.WriteString(" " + ev.Message)
	}
	return b.String()
}

func handleJobs(args []string) {
	cmd := flag.NewFlagSet("jobs", flag.ExitOnError)
	limit := cmd.Int("limit", 20, "Number of jobs to show")
	cmd.Parse(args)

	svc := mustService()
	defer svc.Close()

	jobs, err := svc.ListJobs(*limit)
	if err != nil {
		fmt.Printf("❌ Failed to list jobs: %v\n", err)
		os.Exit(1)
	}
	if len(jobs) == 0 {
		fmt.Println("\n📭 No render jobs")
		return
	}

	fmt.Printf("\n🎞️  %d job(s):\n\n", len(jobs))
	for i, j := range jobs {
		fmt.Printf("%d. %s  %-9s %s\n", i+1, j.ID, j.Status, humanize.Time(j.CreatedAt))
		if j.SongName != "" {
			fmt.Printf("   \"%s\" by %s\n", j.SongName, j.Artist)
		}
		switch j.Status {
		case models.JobSucceeded:
			fmt.Printf("   %s (%s)\n", j.OutputPath, humanize.Bytes(uint64(j.SizeBytes)))
		case models.JobFailed:
			fmt.Printf("   error: %s\n", j.Error)
		}
	}
}

func handleDelete(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: studiokit delete <job_id>")
		os.Exit(1)
	}
	id := args[0]

	svc := mustService()
	defer svc.Close()

	job, err := svc.GetJob(id)
	if err != nil {
		fmt.Printf("❌ Job not found (ID: %s)\n", id)
		logger.Warnf("Job %s not found: %v", id, err)
		os.Exit(1)
	}

	if err := svc.DeleteJob(id); err != nil {
		fmt.Printf("❌ Failed to delete job: %v\n", err)
		logger.Errorf("DeleteJob failed: %v", err)
		os.Exit(1)
	}

	fmt.Printf("\n✅ Deleted job %s\n", job.ID)
	if job.SongName != "" {
		fmt.Printf("   \"%s\" by %s\n", job.SongName, job.Artist)
	}
	if job.OutputPath != "" {
		fmt.Printf("   Removed %s\n", job.OutputPath)
	}
}

func handleStats() {
	svc := mustService()
	defer svc.Close()

	stats, err := svc.Stats()
	if err != nil {
		fmt.Printf("❌ Failed to read stats: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Jobs:        %s\n", humanize.Comma(stats.Jobs))
	fmt.Printf("Extractions: %s\n", humanize.Comma(stats.Extractions))
}

func printUsage() {
	fmt.Println("studiokit - PDF text extraction and lyrics videos")
	fmt.Println("\nGlobal Options:")
	fmt.Println("  --config <path>    YAML config file (env: STUDIO_CONFIG, default: studiokit.yaml)")
	fmt.Println("  --db <path>        SQLite database (overrides config / STUDIO_DB_PATH)")
	fmt.Println("  --temp <dir>       Temporary directory (overrides config / STUDIO_TEMP_DIR)")
	fmt.Println("\nUsage:")
	fmt.Println("  studiokit [global-options] extract <file.pdf> [--method digital|ocr] [--lang eng|ben|hin|eng+ben] [--out file|-] [--copy]")
	fmt.Println("  studiokit [global-options] preview <file.pdf> [--out preview.png]")
	fmt.Println("  studiokit [global-options] extractions [--limit n]")
	fmt.Println("  studiokit [global-options] timeline --track <url>")
	fmt.Println("  studiokit [global-options] render --track <url> [--out video.mp4] [--audio] [--giphy-key key]")
	fmt.Println("  studiokit [global-options] jobs [--limit n]")
	fmt.Println("  studiokit [global-options] delete <job_id>")
	fmt.Println("  studiokit [global-options] stats")
	fmt.Println("\nExamples:")
	fmt.Println("  # OCR a scanned Bengali document and copy the text")
	fmt.Println("  studiokit extract scan.pdf --method ocr --lang ben --copy")
	fmt.Println()
	fmt.Println("  # Render a lyrics video with audio")
	fmt.Println("  GIPHY_API_KEY=... studiokit render --track https://open.spotify.com/track/4cOdK2wGLETKBW3PvgPWqT --audio")
}
