// Package main provides the CLI entry point for editsurface.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/editsurface/pkg/adapters/logger"
	"github.com/user/editsurface/pkg/adapters/mp4probe"
	"github.com/user/editsurface/pkg/config"
	"github.com/user/editsurface/pkg/export"
	"github.com/user/editsurface/pkg/ports"
	"github.com/user/editsurface/pkg/summarizer"
	"github.com/user/editsurface/pkg/thumbnails"
)

var version = "dev"

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	sizeFlags := []cli.Flag{
		&cli.IntFlag{Name: "width", Aliases: []string{"W"}, Value: 800, Usage: l10n.T("Surface width in pixels")},
		&cli.IntFlag{Name: "height", Aliases: []string{"H"}, Value: 600, Usage: l10n.T("Surface height in pixels")},
	}

	return &cli.App{
		Name:    "editsurface",
		Usage:   l10n.T("Render, play and grade images and videos on an editing surface"),
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("YAML configuration file")},
			&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Usage: l10n.T("Log level (debug, info, warn, error)")},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Usage: l10n.T("Suppress all log output")},
		},
		Commands: []*cli.Command{
			{
				Name:      "probe",
				Usage:     l10n.T("Show the metadata of a video file"),
				ArgsUsage: "<video>",
				Action:    runProbe,
			},
			{
				Name:      "play",
				Usage:     l10n.T("Play a file on an offscreen surface"),
				ArgsUsage: "<file>",
				Flags: append([]cli.Flag{
					&cli.DurationFlag{Name: "for", Value: 2 * time.Second, Usage: l10n.T("How long to play")},
					&cli.StringFlag{Name: "snapshot", Aliases: []string{"s"}, Usage: l10n.T("Write the last presented frame as PNG")},
					&cli.StringFlag{Name: "filter", Usage: l10n.T("LUT filter name to apply")},
				}, sizeFlags...),
				Action: runPlay,
			},
			{
				Name:      "histogram",
				Usage:     l10n.T("Render the histogram of a file as PNG"),
				ArgsUsage: "<file>",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: l10n.T("Output PNG file path (required)")},
				}, sizeFlags...),
				Action: runHistogram,
			},
			{
				Name:      "thumbs",
				Usage:     l10n.T("Generate thumbnails for a folder"),
				ArgsUsage: "<dir>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: l10n.T("Output directory (required)")},
				},
				Action: runThumbs,
			},
			{
				Name:      "export",
				Usage:     l10n.T("Export an image or the frames of a video"),
				ArgsUsage: "<file>",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: l10n.T("Output file path (required)")},
					&cli.StringFlag{Name: "filter", Usage: l10n.T("LUT filter name to apply")},
					&cli.Float64Flag{Name: "exposure", Usage: l10n.T("Exposure in stops")},
					&cli.BoolFlag{Name: "dry-run", Usage: l10n.T("Render every frame without writing files")},
					&cli.StringFlag{Name: "summary", Usage: l10n.T("Write a Markdown summary of the export")},
				}, sizeFlags...),
				Action: runExport,
			},
			{
				Name:      "watch",
				Usage:     l10n.T("Play a file interactively in the terminal"),
				ArgsUsage: "<file>",
				Flags:     sizeFlags,
				Action:    runWatch,
			},
			{
				Name:      "synth",
				Usage:     l10n.T("Write a synthetic MP4 clip for testing"),
				ArgsUsage: "<output.mp4>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "width", Aliases: []string{"W"}, Value: 640, Usage: l10n.T("Clip width in pixels")},
					&cli.IntFlag{Name: "height", Aliases: []string{"H"}, Value: 360, Usage: l10n.T("Clip height in pixels")},
					&cli.IntFlag{Name: "fps", Value: 30, Usage: l10n.T("Frames per second")},
					&cli.IntFlag{Name: "frames", Value: 90, Usage: l10n.T("Number of frames")},
				},
				Action: runSynth,
			},
			{
				Name:  "version",
				Usage: l10n.T("Show version information"),
				Action: func(c *cli.Context) error {
					fmt.Println(l10n.F("editsurface version %s", version))
					return nil
				},
			},
		},
	}
}

// setup loads the configuration, builds the logger and returns a context
// cancelled on SIGINT or SIGTERM.
func setup(c *cli.Context) (context.Context, context.CancelFunc, config.Config, ports.Logger, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return nil, nil, cfg, nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if level := c.String("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, cfg, nil, err
	}

	var log ports.Logger
	if c.Bool("quiet") {
		log = logger.NewNoop()
	} else {
		log = logger.NewConsole(cfg.Level())
	}

	ctx, cancel := context.WithCancel(c.Context)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel, cfg, log, nil
}

func argument(c *cli.Context, what string) (string, error) {
	if c.NArg() < 1 {
		return "", cli.Exit(l10n.F("%s argument is required", what), 2)
	}
	return c.Args().First(), nil
}

func runProbe(c *cli.Context) error {
	path, err := argument(c, "video")
	if err != nil {
		return err
	}
	info, err := mp4probe.ProbeFile(path)
	if err != nil {
		return err
	}
	fmt.Println(l10n.F("File: %s", filepath.Base(path)))
	fmt.Println(l10n.F("Format: %s, codec %s", info.Format, info.Codec))
	fmt.Println(l10n.F("Size: %dx%d", info.Width, info.Height))
	fmt.Println(l10n.F("Frames: %d at %.3f fps (%.2fs)", info.TotalFrames, info.FrameRate, float64(info.DurationMicros)/1e6))
	fmt.Println(l10n.F("Fragmented: %t, audio: %t", info.Fragmented, info.HasAudio))
	return nil
}

func runPlay(c *cli.Context) error {
	path, err := argument(c, "file")
	if err != nil {
		return err
	}
	ctx, cancel, cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	defer cancel()

	s, err := newSession(ctx, cfg, log, sessionOptions{})
	if err != nil {
		return err
	}
	defer s.close()
	if err := s.open(path, c.Int("width"), c.Int("height")); err != nil {
		return err
	}
	if name := c.String("filter"); name != "" {
		if err := s.call(func() error { return s.editor.SelectFilter(name) }); err != nil {
			return err
		}
	}

	select {
	case <-time.After(c.Duration("for")):
	case <-ctx.Done():
	}

	var presented uint64
	var timeText string
	s.call(func() error {
		presented = s.editor.Presented()
		timeText = s.editor.TimeText()
		return nil
	})
	log.Info("Presented %d frames (%s)", presented, timeText)

	if out := c.String("snapshot"); out != "" {
		frame := s.frame()
		if frame == nil {
			return fmt.Errorf("snapshot: %w", ports.ErrResourceUnavailable)
		}
		if err := s.writePNG(out, frame); err != nil {
			return err
		}
		log.Info("Output saved to %s", out)
	}
	return nil
}

func runHistogram(c *cli.Context) error {
	path, err := argument(c, "file")
	if err != nil {
		return err
	}
	ctx, cancel, cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	defer cancel()

	s, err := newSession(ctx, cfg, log, sessionOptions{})
	if err != nil {
		return err
	}
	defer s.close()
	if err := s.open(path, c.Int("width"), c.Int("height")); err != nil {
		return err
	}
	s.call(func() error {
		s.editor.RefreshHistogram()
		return nil
	})

	out := c.String("output")
	if err := s.writePNG(out, s.chart.Image()); err != nil {
		return err
	}
	log.Info("Histogram with %d bars saved to %s", s.chart.Bars(), out)
	return nil
}

func runThumbs(c *cli.Context) error {
	dir, err := argument(c, "dir")
	if err != nil {
		return err
	}
	ctx, cancel, cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	defer cancel()

	s, err := newSession(ctx, cfg, log, sessionOptions{})
	if err != nil {
		return err
	}
	defer s.close()

	gen := s.editor.Thumbnails()
	entries, err := gen.ScanFolder(dir)
	if err != nil {
		return err
	}

	out := c.String("output")
	if err := s.fs.MkdirAll(out); err != nil {
		return err
	}
	written, placeholders := 0, 0
	var writeErr error
	err = gen.Generate(ctx, entries, func(t thumbnails.Thumbnail) {
		if t.Image == nil || writeErr != nil {
			return
		}
		if t.Placeholder {
			placeholders++
		}
		name := t.Name[:len(t.Name)-len(filepath.Ext(t.Name))] + ".png"
		if writeErr = s.writePNG(filepath.Join(out, name), t.Image); writeErr == nil {
			written++
		}
	})
	// Results still queued on the loop run before this returns.
	s.call(func() error { return nil })
	if err != nil {
		return err
	}
	if writeErr != nil {
		return writeErr
	}
	log.Info("Wrote %d thumbnails (%d placeholders) to %s", written, placeholders, out)
	return nil
}

func runExport(c *cli.Context) error {
	path, err := argument(c, "file")
	if err != nil {
		return err
	}
	var formatter summarizer.Formatter
	summaryPath := c.String("summary")
	if summaryPath != "" {
		formatter, err = summarizer.FormatterFor(summaryPath,
			summarizer.WithTranslator(l10n.T),
			summarizer.WithVersion(version),
		)
		if err != nil {
			return cli.Exit(err.Error(), 2)
		}
	}

	ctx, cancel, cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	defer cancel()

	s, err := newSession(ctx, cfg, log, sessionOptions{DryRun: c.Bool("dry-run")})
	if err != nil {
		return err
	}
	defer s.close()
	if err := s.open(path, c.Int("width"), c.Int("height")); err != nil {
		return err
	}

	out := c.String("output")
	started := time.Now()
	report := summarizer.NewBuilder()
	var isVideo bool
	updates := make(chan export.Job, 16)
	finished := make(chan export.Job, 1)
	err = s.call(func() error {
		if name := c.String("filter"); name != "" {
			if err := s.editor.SelectFilter(name); err != nil {
				return err
			}
		}
		if c.IsSet("exposure") {
			if err := s.editor.SetAdjustment("exposure", c.Float64("exposure")); err != nil {
				return err
			}
		}
		f := s.editor.Filters()
		report.WithLook(f.Selected(), f.Intensity(), f.Changed())

		isVideo = s.editor.IsVideo()
		if !isVideo {
			report.WithImage(path)
			return s.editor.ExportImage(out)
		}
		meta, _ := s.editor.Metadata()
		report.WithVideo(path, meta)
		s.editor.OnExportUpdate(func(j export.Job) {
			if j.Done() {
				select {
				case finished <- j:
				default:
				}
				return
			}
			select {
			case updates <- j:
			default:
			}
		})
		_, err := s.editor.StartVideoExport(out)
		return err
	})
	if err != nil {
		return err
	}

	output := summarizer.OutputInfo{
		Path:    out,
		Quality: cfg.Export.Quality,
		DryRun:  c.Bool("dry-run"),
	}
	if isVideo {
		job, err := waitExport(ctx, s, log, updates, finished)
		if err != nil {
			return err
		}
		output.FramesDir = s.framesDir(out)
		output.Frames = job.TotalFrames
		output.Format, _ = cfg.FrameFormat()
	} else {
		log.Info("Output saved to %s", out)
		output.Format = export.FormatFor(out)
	}

	if formatter == nil {
		return nil
	}
	output.Elapsed = time.Since(started)
	if err := summarizer.NewWriter(formatter, s.fs).Write(summaryPath, report.WithOutput(output).Build()); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	log.Info("Summary saved to %s", summaryPath)
	return nil
}

// waitExport reports progress until the job finishes or ctx is cancelled.
func waitExport(ctx context.Context, s *session, log ports.Logger, updates, finished <-chan export.Job) (export.Job, error) {
	lastDecile := -1
	for {
		select {
		case <-ctx.Done():
			s.call(func() error {
				if err := s.editor.CancelExport(); err != nil && !errors.Is(err, ports.ErrNoExport) {
					return err
				}
				return nil
			})
			return export.Job{}, ctx.Err()
		case job := <-updates:
			if d := int(job.Fraction * 10); d != lastDecile {
				lastDecile = d
				log.Info("Exporting %d/%d frames (%.0f%%)", job.CurrentFrame+1, job.TotalFrames, job.Fraction*100)
			}
		case job := <-finished:
			if job.State != export.StateCompleted {
				return job, fmt.Errorf("export %s: %s", job.Path, job.State)
			}
			log.Info("Frames saved to %s", s.framesDir(job.Path))
			return job, nil
		}
	}
}

func runSynth(c *cli.Context) error {
	path, err := argument(c, "output")
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	opts := mp4probe.ClipOptions{
		Width:  c.Int("width"),
		Height: c.Int("height"),
		FPS:    c.Int("fps"),
		Frames: c.Int("frames"),
	}
	if err := mp4probe.WriteClip(f, opts); err != nil {
		return err
	}
	fmt.Println(l10n.F("Wrote %d frames at %dx%d to %s", opts.Frames, opts.Width, opts.Height, path))
	return nil
}
