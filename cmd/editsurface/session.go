package main

import (
	"context"
	"fmt"
	"image"
	"path/filepath"

	"github.com/user/editsurface/pkg/adapters/filesink"
	"github.com/user/editsurface/pkg/adapters/ggrenderer"
	"github.com/user/editsurface/pkg/adapters/nullsink"
	"github.com/user/editsurface/pkg/adapters/osfilesystem"
	"github.com/user/editsurface/pkg/adapters/presenter"
	"github.com/user/editsurface/pkg/adapters/softbackend"
	"github.com/user/editsurface/pkg/config"
	"github.com/user/editsurface/pkg/editor"
	"github.com/user/editsurface/pkg/ports"
	"github.com/user/editsurface/pkg/uiloop"
)

// session is one editor running on its own UI loop goroutine.
type session struct {
	cfg       config.Config
	log       ports.Logger
	fs        *osfilesystem.FileSystem
	renderer  *ggrenderer.Renderer
	loop      *uiloop.Loop
	backend   *softbackend.Backend
	presenter *presenter.Presenter
	chart     *ggrenderer.Chart
	editor    *editor.Editor

	cancelLoop context.CancelFunc
	loopDone   chan struct{}
}

type sessionOptions struct {
	// DryRun discards exported frames.
	DryRun bool
	// View replaces the chart as the histogram view.
	View ports.HistogramView
}

// newSession wires the adapters and starts the UI loop. ctx cancels the
// editor; the loop itself keeps running until close.
func newSession(ctx context.Context, cfg config.Config, log ports.Logger, opts sessionOptions) (*session, error) {
	format, err := cfg.FrameFormat()
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:      cfg,
		log:      log,
		fs:       osfilesystem.New(),
		renderer: ggrenderer.New(),
		loop:     uiloop.New(log),
		loopDone: make(chan struct{}),
	}

	newSink := func(path string) (ports.FrameSink, error) {
		if opts.DryRun {
			return nullsink.New(), nil
		}
		return filesink.New(s.framesDir(path), s.fs, s.renderer, format, cfg.Export.Quality), nil
	}
	s.backend = softbackend.New(log, softbackend.Options{
		FileSystem: s.fs,
		Renderer:   s.renderer,
		NewSink:    newSink,
	})
	s.presenter = presenter.New(s.backend, log)

	view := opts.View
	if view == nil {
		s.chart = ggrenderer.NewChart(cfg.HistogramWidth, cfg.HistogramHeight, config.ParseColor(cfg.HistogramBackground))
		view = s.chart
	}

	s.editor = editor.New(editor.Deps{
		Backend:    s.backend,
		Compositor: s.presenter,
		Clock:      s.loop,
		Poster:     s.loop,
		FileSystem: s.fs,
		Renderer:   s.renderer,
		View:       view,
		Logger:     log,
	}, cfg.EditorOptions())

	loopCtx, cancel := context.WithCancel(context.Background())
	s.cancelLoop = cancel
	go func() {
		defer close(s.loopDone)
		s.loop.Run(loopCtx)
	}()

	if err := s.call(func() error { return s.editor.Start(ctx) }); err != nil {
		s.close()
		return nil, err
	}
	return s, nil
}

// call runs fn on the UI loop and returns its error.
func (s *session) call(fn func() error) error {
	var err error
	if !s.loop.Call(func() { err = fn() }) {
		return fmt.Errorf("ui loop: %w", ports.ErrResourceUnavailable)
	}
	return err
}

// open lays the surface out and loads path.
func (s *session) open(path string, width, height int) error {
	return s.call(func() error {
		if err := s.editor.Layout(width, height); err != nil {
			return err
		}
		return s.editor.Load(path)
	})
}

// framesDir is where the frames of a video exported to path are written.
func (s *session) framesDir(path string) string {
	dir := filesink.FramesDir(path)
	if s.cfg.Export.FramesDir != "" {
		dir = filepath.Join(s.cfg.Export.FramesDir, filepath.Base(dir))
	}
	return dir
}

// frame returns the last presented picture.
func (s *session) frame() image.Image {
	return s.presenter.Front()
}

// close shuts the editor down on the loop, then stops the loop.
func (s *session) close() {
	s.loop.Call(s.editor.Shutdown)
	s.cancelLoop()
	<-s.loopDone
}

// writePNG encodes img to path.
func (s *session) writePNG(path string, img image.Image) error {
	data, err := s.renderer.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := s.fs.MkdirAll(dir); err != nil {
			return err
		}
	}
	return s.fs.WriteFile(path, data)
}
