// Package editor wires the editing surface components into one façade. Every
// method must be called on the UI loop.
package editor

import (
	"context"
	"fmt"
	"time"

	"github.com/user/editsurface/pkg/export"
	"github.com/user/editsurface/pkg/filters"
	"github.com/user/editsurface/pkg/histogram"
	"github.com/user/editsurface/pkg/lifecycle"
	"github.com/user/editsurface/pkg/playback"
	"github.com/user/editsurface/pkg/ports"
	"github.com/user/editsurface/pkg/resize"
	"github.com/user/editsurface/pkg/scheduler"
	"github.com/user/editsurface/pkg/surface"
	"github.com/user/editsurface/pkg/thumbnails"
	"github.com/user/editsurface/pkg/zoom"
)

// Fallback surface size used when the first layout reports no area.
const (
	FallbackWidth  = 800
	FallbackHeight = 600
)

// Deps are the collaborators the editor drives.
type Deps struct {
	Backend    ports.Backend
	Compositor ports.Compositor
	Clock      ports.Clock
	Poster     ports.Poster
	FileSystem ports.FileSystem
	Renderer   ports.Renderer
	// View is optional; without it no histogram is computed.
	View   ports.HistogramView
	Logger ports.Logger
}

// Options tunes the components.
type Options struct {
	Scheduler      scheduler.Options
	Playback       playback.Options
	Zoom           zoom.Options
	Export         export.Options
	Thumbnails     thumbnails.Options
	LUTDirs        []string
	FallbackWidth  int
	FallbackHeight int
	// ExportPoll is how often a running video export is checked for completion.
	ExportPoll time.Duration
}

// Editor is the editing surface session.
type Editor struct {
	backend ports.Backend
	poster  ports.Poster
	logger  ports.Logger
	opts    Options

	machine    *lifecycle.Machine
	target     *surface.Target
	scheduler  *scheduler.Scheduler
	playback   *playback.Controller
	zoom       *zoom.Controller
	histogram  *histogram.Aggregator
	resize     *resize.Coordinator
	exports    *export.Tracker
	thumbnails *thumbnails.Generator
	filters    *filters.Controller
	exportPoll ports.Timer

	initErr  error
	laidOut  bool
	early    *[2]int
	width    int
	height   int
	closed   bool
	onExport func(export.Job)
}

// New builds an editor. Nothing touches the backend until Start.
func New(deps Deps, opts Options) *Editor {
	if opts.FallbackWidth < 1 {
		opts.FallbackWidth = FallbackWidth
	}
	if opts.FallbackHeight < 1 {
		opts.FallbackHeight = FallbackHeight
	}
	if opts.ExportPoll <= 0 {
		opts.ExportPoll = playback.DefaultProgressInterval
	}

	e := &Editor{
		backend: deps.Backend,
		poster:  deps.Poster,
		logger:  deps.Logger.WithComponent("editor"),
		opts:    opts,
		machine: lifecycle.New(),
	}
	e.target = surface.New(deps.Backend, deps.Compositor, deps.Logger)
	e.scheduler = scheduler.New(deps.Clock, deps.Backend, e.target, e.machine, deps.Logger, opts.Scheduler)
	e.playback = playback.New(deps.Clock, deps.Backend, deps.FileSystem, e.target, e.machine, e.scheduler, deps.Logger, opts.Playback)
	e.scheduler.SetPlayback(e.playback)
	e.zoom = zoom.New(deps.Backend, e.target, e.scheduler, deps.Logger, opts.Zoom)
	if deps.View != nil {
		e.histogram = histogram.New(deps.Backend, e.target, e.playback, deps.View, deps.Logger)
		e.scheduler.SetSampler(e.histogram)
	}
	e.resize = resize.New(deps.Backend, e.target, e.machine, e.playback, e.zoom, deps.Poster, deps.Logger)
	e.exports = export.New(deps.Backend, e.target, e.playback, deps.Poster, deps.Logger, opts.Export)
	e.exports.OnUpdate(e.exportUpdated)
	e.thumbnails = thumbnails.New(deps.Backend, deps.Renderer, deps.FileSystem, deps.Poster, deps.Logger, opts.Thumbnails)
	catalog := filters.LoadCatalog(deps.FileSystem, opts.LUTDirs, deps.Logger)
	e.filters = filters.NewController(deps.Backend, e.target, catalog, e.scheduler, deps.Logger)
	e.exportPoll = deps.Clock.NewTimer(opts.ExportPoll, e.pollExport)
	return e
}

// Start initializes the backend and starts presentation. A failed init is
// reported once; later calls return the same error without retrying. When
// ctx is cancelled the session shuts down on the UI loop.
func (e *Editor) Start(ctx context.Context) error {
	if e.initErr != nil {
		return e.initErr
	}
	if !e.machine.TryBeginInit() {
		return nil
	}
	if err := e.backend.Init(); err != nil {
		e.machine.EndInit(false)
		e.initErr = fmt.Errorf("%w: %w", ports.ErrBackendInit, err)
		e.logger.Error("Backend initialization failed: %v", err)
		return e.initErr
	}
	e.scheduler.Start()
	e.logger.Debug("Editor started")

	if e.early != nil {
		size := *e.early
		e.early = nil
		if err := e.Layout(size[0], size[1]); err != nil {
			e.logger.Debug("Layout after start failed: %v", err)
		}
	}

	if ctx != nil && ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			e.poster.Post(e.Shutdown)
		}()
	}
	return nil
}

// Layout reports the size of the display area. The first call creates the
// surface and ends initialization; later calls resize it. A layout before
// Start is applied once the backend is ready.
func (e *Editor) Layout(width, height int) error {
	if e.closed || e.initErr != nil {
		return nil
	}
	if e.machine.Phase() == lifecycle.PhaseUninitialized {
		e.early = &[2]int{width, height}
		return nil
	}
	if e.histogram != nil {
		e.histogram.LayoutChanged()
	}
	if !e.laidOut {
		e.laidOut = true
		if width < 1 || height < 1 {
			width, height = e.opts.FallbackWidth, e.opts.FallbackHeight
		}
		e.width, e.height = width, height
		err := e.target.Create(width, height)
		e.machine.EndInit(true)
		if err != nil {
			e.logger.Warn("Surface creation failed: %v", err)
			return err
		}
		return nil
	}

	if width >= 1 && height >= 1 {
		e.width, e.height = width, height
	}
	if !e.target.Exists() {
		return e.recreate()
	}
	e.resize.OnSizeChanged(width, height)
	return nil
}

// recreate allocates a new surface at the last known size.
func (e *Editor) recreate() error {
	if err := e.target.Create(e.width, e.height); err != nil {
		e.logger.Warn("Surface creation failed: %v", err)
		return err
	}
	if err := e.zoom.Reapply(); err != nil {
		e.logger.Warn("Zoom reapply failed: %v", err)
	}
	e.scheduler.Refresh()
	return nil
}

// Load opens path as an image or a video. An unusable surface is recreated
// first. During a resize the load runs once the resize has been restored,
// and its error is logged.
func (e *Editor) Load(path string) error {
	if e.closed {
		return fmt.Errorf("load: %w", ports.ErrResourceUnavailable)
	}
	if e.machine.Resizing() {
		e.logger.Debug("Load of %s deferred until resize completes", path)
		e.machine.WhenIdle(func() {
			if err := e.Load(path); err != nil {
				e.logger.Warn("Deferred load failed: %v", err)
			}
		})
		return nil
	}
	if e.laidOut && !e.target.Usable() && !e.machine.Busy() {
		if _, err := e.playback.Resolve(path); err != nil {
			return err
		}
		if err := e.recreate(); err != nil {
			return fmt.Errorf("load: %w", err)
		}
	}
	return e.playback.Load(path)
}

// Close releases the open video, if any.
func (e *Editor) Close() {
	e.playback.Close()
}

// TogglePlayPause flips the play state of the open video.
func (e *Editor) TogglePlayPause() bool {
	return e.playback.TogglePlayPause()
}

// BeginSeek starts a seek gesture.
func (e *Editor) BeginSeek() {
	e.playback.BeginSeek()
}

// EndSeek finishes a seek gesture at fraction of the duration.
func (e *Editor) EndSeek(fraction float64) error {
	return e.playback.EndSeek(fraction)
}

// SeekTo is a complete seek gesture.
func (e *Editor) SeekTo(fraction float64) error {
	e.playback.BeginSeek()
	return e.playback.EndSeek(fraction)
}

func (e *Editor) ZoomIn()  { e.zoom.ZoomIn() }
func (e *Editor) ZoomOut() { e.zoom.ZoomOut() }
func (e *Editor) ZoomFit() { e.zoom.Fit() }

// SetZoom sets the zoom factor, clamped to the configured bounds.
func (e *Editor) SetZoom(factor float64) { e.zoom.Set(factor) }

// Pan sets the pan offset in surface pixels.
func (e *Editor) Pan(x, y float64) { e.zoom.Pan(x, y) }

func (e *Editor) Zoom() float64    { return e.zoom.Factor() }
func (e *Editor) ZoomText() string { return e.zoom.Text() }

func (e *Editor) CurrentPath() string               { return e.playback.CurrentPath() }
func (e *Editor) IsVideo() bool                     { return e.playback.IsVideo() }
func (e *Editor) IsPlaying() bool                   { return e.playback.IsPlayingVideo() }
func (e *Editor) Progress() playback.Progress       { return e.playback.Progress() }
func (e *Editor) TimeText() string                  { return e.playback.TimeText() }
func (e *Editor) Media() playback.MediaState        { return e.playback.State() }
func (e *Editor) Phase() lifecycle.Phase            { return e.machine.Phase() }
func (e *Editor) Presented() uint64                 { return e.scheduler.Presented() }
func (e *Editor) Usable() bool                      { return e.target.Usable() }
func (e *Editor) Size() (int, int)                  { return e.target.Size() }
func (e *Editor) Filters() *filters.Controller      { return e.filters }
func (e *Editor) Thumbnails() *thumbnails.Generator { return e.thumbnails }
func (e *Editor) Resizes() int                      { return e.resize.Resizes() }

// Metadata returns the metadata of the open video.
func (e *Editor) Metadata() (ports.VideoMetadata, bool) {
	return e.playback.Metadata()
}

// OnProgress registers the transport bar observer.
func (e *Editor) OnProgress(fn func(playback.Progress)) {
	e.playback.OnProgress(fn)
}

// OnResize registers the observer of finished resize cycles.
func (e *Editor) OnResize(fn func(resize.Session, error)) {
	e.resize.OnDone(fn)
}

// OnExportUpdate registers the observer of export job changes.
func (e *Editor) OnExportUpdate(fn func(export.Job)) {
	e.onExport = fn
}

// RefreshHistogram recomputes the histogram immediately.
func (e *Editor) RefreshHistogram() {
	if e.histogram != nil {
		e.histogram.Trigger()
	}
}

// HistogramLayoutChanged retries a histogram draw deferred for lack of layout.
func (e *Editor) HistogramLayoutChanged() {
	if e.histogram != nil {
		e.histogram.LayoutChanged()
	}
}

// ExportImage writes the displayed picture to path.
func (e *Editor) ExportImage(path string) error {
	return e.exports.ExportImage(path)
}

// StartVideoExport begins exporting the open video and polls it until done.
func (e *Editor) StartVideoExport(path string) (export.Job, error) {
	job, err := e.exports.StartVideo(path)
	if err != nil {
		return job, err
	}
	e.exportPoll.Start()
	return job, nil
}

// CancelExport stops the running video export without waiting.
func (e *Editor) CancelExport() error {
	return e.exports.Cancel()
}

// Export returns the current or last export job.
func (e *Editor) Export() (export.Job, bool) {
	return e.exports.Current()
}

func (e *Editor) pollExport() {
	if job, ok := e.exports.Poll(); !ok || job.Done() {
		e.exportPoll.Stop()
	}
}

func (e *Editor) exportUpdated(job export.Job) {
	if job.Done() {
		e.exportPoll.Stop()
	}
	if e.onExport != nil {
		e.onExport(job)
	}
}

// SelectFilter activates a LUT by catalog name; "None" removes it.
func (e *Editor) SelectFilter(name string) error {
	return e.filters.Select(name)
}

// SetFilterIntensity sets the LUT blend in percent.
func (e *Editor) SetFilterIntensity(percent float64) error {
	return e.filters.SetIntensity(percent)
}

// SetAdjustment sets one named adjustment.
func (e *Editor) SetAdjustment(name string, value float64) error {
	return e.filters.SetAdjustment(name, value)
}

// ResetAdjustments restores neutral adjustments.
func (e *Editor) ResetAdjustments() error {
	return e.filters.ResetAdjustments()
}

// Shutdown ends the session. It is safe to call more than once.
func (e *Editor) Shutdown() {
	if e.closed {
		return
	}
	e.closed = true
	e.scheduler.Stop()
	e.exportPoll.Stop()
	if e.exports.Exporting() {
		if err := e.exports.Cancel(); err != nil {
			e.logger.Debug("Export cancel on shutdown: %v", err)
		}
	}
	e.playback.Close()
	e.target.Destroy()
	e.machine.Close()
	if e.initErr == nil {
		e.backend.Shutdown()
	}
	e.logger.Debug("Editor shut down")
}

// Closed reports whether Shutdown has run.
func (e *Editor) Closed() bool {
	return e.closed
}
