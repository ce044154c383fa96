// Package playback owns the MediaState and the video transport controls.
package playback

import (
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/user/editsurface/pkg/lifecycle"
	"github.com/user/editsurface/pkg/ports"
)

// DefaultProgressInterval is the cadence of progress updates, independent of presentation.
const DefaultProgressInterval = 100 * time.Millisecond

// Surface is the part of the render target the controller needs.
type Surface interface {
	Handle() ports.SurfaceHandle
	Usable() bool
	Invalidate()
}

// Cadence retunes the presentation scheduler.
type Cadence interface {
	SetFrameRate(fps float64)
	ResetCadence()
}

// Options configures the controller.
type Options struct {
	ProgressInterval time.Duration
}

// Controller is the state machine over empty, image, playing, paused and
// seeking. It runs on the UI loop.
type Controller struct {
	backend ports.Backend
	fs      ports.FileSystem
	surface Surface
	machine *lifecycle.Machine
	cadence Cadence
	logger  ports.Logger
	timer   ports.Timer

	state       MediaState
	progress    Progress
	confirmedTs int64
	seekGen     uint64
	failing     bool
	onProgress  func(Progress)
}

// New creates a controller with MediaState Empty.
func New(clock ports.Clock, backend ports.Backend, fs ports.FileSystem, surface Surface, machine *lifecycle.Machine, cadence Cadence, logger ports.Logger, opts Options) *Controller {
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = DefaultProgressInterval
	}
	c := &Controller{
		backend: backend,
		fs:      fs,
		surface: surface,
		machine: machine,
		cadence: cadence,
		logger:  logger.WithComponent("playback"),
	}
	c.timer = clock.NewTimer(opts.ProgressInterval, c.progressTick)
	return c
}

// OnProgress registers the observer of displayed progress. It runs on the UI loop.
func (c *Controller) OnProgress(fn func(Progress)) {
	c.onProgress = fn
}

// Resolve makes path absolute and checks that it exists.
func (c *Controller) Resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("load: empty path: %w", ports.ErrFileNotFound)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	exists, err := c.fs.Exists(path)
	if err != nil || !exists {
		c.logger.Warn("File not found: %s", path)
		return "", fmt.Errorf("load %s: %w", path, ports.ErrFileNotFound)
	}
	return path, nil
}

// Load classifies path and opens it as a video or loads it as an image.
func (c *Controller) Load(path string) error {
	if !c.surface.Usable() {
		return fmt.Errorf("load: %w", ports.ErrResourceUnavailable)
	}
	path, err := c.Resolve(path)
	if err != nil {
		return err
	}

	isVideo, err := c.backend.ProbeIsVideo(path)
	if err != nil {
		c.logger.Debug("Probe failed, treating %s as an image: %v", path, err)
		isVideo = false
	}
	if isVideo {
		return c.loadVideo(path)
	}
	return c.loadImage(path)
}

func (c *Controller) loadVideo(path string) error {
	c.Close()
	h := c.surface.Handle()

	if err := c.backend.OpenVideo(h, path); err != nil {
		c.logger.Warn("Failed to open video %s: %v", path, err)
		return &ports.BackendError{Op: "open video", Path: path, Err: err}
	}
	meta, err := c.backend.VideoMetadata(h)
	if err != nil {
		c.backend.CloseVideo(h)
		c.logger.Warn("Failed to read video metadata %s: %v", path, err)
		return &ports.BackendError{Op: "video metadata", Path: path, Err: err}
	}

	c.state = MediaState{
		Kind:  KindVideo,
		Path:  path,
		Video: &VideoState{Metadata: meta, Playing: true},
	}
	c.confirmedTs = 0
	c.failing = false
	c.seekGen++

	if err := c.backend.RenderNextVideoFrame(h); err != nil {
		c.logger.Warn("Frame render failed: %v", err)
	} else {
		c.surface.Invalidate()
	}
	c.readPosition()
	c.publish()

	c.timer.Start()
	c.cadence.SetFrameRate(meta.FrameRate)

	c.logger.Info("Video loaded: %s (%dx%d, %.2f fps, %d frames)",
		filepath.Base(path), meta.Width, meta.Height, meta.FrameRate, meta.TotalFrames)
	return nil
}

func (c *Controller) loadImage(path string) error {
	h := c.surface.Handle()
	if err := c.backend.LoadImage(h, path); err != nil {
		c.logger.Warn("Failed to load image %s: %v", path, err)
		return fmt.Errorf("%w: %w", ports.ErrFileUnreadable, &ports.BackendError{Op: "load image", Path: path, Err: err})
	}

	next := MediaState{Kind: KindImage, Path: path}
	if !c.closeVideo(next) {
		c.state = next
		c.publish()
	}

	if err := c.backend.RenderStatic(h); err != nil {
		c.logger.Warn("Frame render failed: %v", err)
	} else {
		c.surface.Invalidate()
	}
	c.logger.Info("Image loaded: %s", filepath.Base(path))
	return nil
}

// Close releases the open video. It does nothing when no video is open.
func (c *Controller) Close() {
	c.closeVideo(MediaState{Kind: KindEmpty})
}

// closeVideo switches from an open video to next and reports whether a video was open.
func (c *Controller) closeVideo(next MediaState) bool {
	if c.state.Kind != KindVideo {
		return false
	}
	c.timer.Stop()
	if h := c.surface.Handle(); h != 0 {
		c.backend.CloseVideo(h)
	}
	closed := c.state.Path
	c.state = next
	c.confirmedTs = 0
	c.seekGen++
	c.machine.EndSeek()
	c.cadence.ResetCadence()
	c.publish()
	c.logger.Debug("Video closed: %s", filepath.Base(closed))
	return true
}

// TogglePlayPause flips between playing and paused. It has no effect
// unless a video is open and returns the resulting playing flag.
func (c *Controller) TogglePlayPause() bool {
	if c.state.Kind != KindVideo {
		return false
	}
	c.state.Video.Playing = !c.state.Video.Playing
	c.logger.Debug("Playing: %t", c.state.Video.Playing)
	return c.state.Video.Playing
}

// BeginSeek hands the displayed position to the user's drag gesture.
func (c *Controller) BeginSeek() {
	if c.state.Kind != KindVideo {
		return
	}
	c.machine.BeginSeek()
}

// EndSeek seeks to fraction of the duration and renders the frame there.
// A backend failure reverts the displayed position to the last confirmed one.
func (c *Controller) EndSeek(fraction float64) error {
	defer c.machine.EndSeek()
	if c.state.Kind != KindVideo {
		return nil
	}
	if math.IsNaN(fraction) || fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}

	v := c.state.Video
	duration := v.Metadata.DurationMicros
	if duration <= 0 {
		c.publish()
		return nil
	}
	if !c.surface.Usable() {
		c.publish()
		return fmt.Errorf("seek: %w", ports.ErrResourceUnavailable)
	}

	target := int64(float64(duration) * fraction)
	c.seekGen++
	gen := c.seekGen
	h := c.surface.Handle()

	if err := c.backend.SeekByTimestamp(h, target); err != nil {
		c.logger.Warn("Seek to %d us failed: %v", target, err)
		v.CurrentTimestamp = c.confirmedTs
		c.publish()
		return &ports.BackendError{Op: "seek", Err: err}
	}
	if err := c.backend.RenderNextVideoFrame(h); err != nil {
		c.logger.Warn("Frame render failed: %v", err)
	} else {
		c.surface.Invalidate()
	}
	if gen != c.seekGen || c.state.Video != v {
		return fmt.Errorf("seek to %d us: %w", target, ports.ErrStaleSeek)
	}

	ts, err := c.backend.CurrentTimestamp(h)
	if err != nil {
		ts = target
	}
	v.CurrentTimestamp = ts
	if frame, err := c.backend.CurrentFrame(h); err == nil {
		v.CurrentFrame = frame
	}
	c.confirmedTs = ts
	c.publish()
	return nil
}

func (c *Controller) progressTick() {
	if c.state.Kind != KindVideo || !c.machine.CanReportProgress() || !c.surface.Usable() {
		return
	}
	if !c.readPosition() {
		return
	}
	c.publish()
}

// readPosition refreshes the video position from the backend.
func (c *Controller) readPosition() bool {
	h := c.surface.Handle()
	ts, err := c.backend.CurrentTimestamp(h)
	if err != nil {
		if !c.failing {
			c.logger.Warn("Playback position unavailable: %v", err)
		}
		c.failing = true
		return false
	}
	c.failing = false
	v := c.state.Video
	v.CurrentTimestamp = ts
	if frame, err := c.backend.CurrentFrame(h); err == nil {
		v.CurrentFrame = frame
	}
	c.confirmedTs = ts
	return true
}

// publish recomputes the displayed progress from MediaState.
func (c *Controller) publish() {
	if c.state.Kind != KindVideo {
		c.progress = Progress{}
	} else {
		v := c.state.Video
		c.progress = Progress{
			Percent:   percent(v.CurrentTimestamp, v.Metadata.DurationMicros),
			TimeText:  FormatTime(v.CurrentTimestamp, v.Metadata.DurationMicros),
			Timestamp: v.CurrentTimestamp,
			Frame:     v.CurrentFrame,
		}
	}
	if c.onProgress != nil {
		c.onProgress(c.progress)
	}
}

// Snapshot captures the media part of a resize session. The video
// position comes from the backend's current frame.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{Kind: c.state.Kind, Path: c.state.Path}
	if c.state.Kind != KindVideo {
		return s
	}
	v := c.state.Video
	s.Playing = v.Playing
	s.Frame = v.CurrentFrame
	s.Timestamp = v.CurrentTimestamp
	if h := c.surface.Handle(); h != 0 {
		if frame, err := c.backend.CurrentFrame(h); err == nil {
			s.Frame = frame
		}
	}
	return s
}

// Restore re-arms playback after a resize session. When the media changed
// since the snapshot, only the cadence is matched to what is loaded now.
func (c *Controller) Restore(s Snapshot) {
	if c.state.Kind != KindVideo {
		c.cadence.ResetCadence()
		return
	}
	v := c.state.Video
	if s.Kind != KindVideo || s.Path != c.state.Path {
		c.cadence.SetFrameRate(v.Metadata.FrameRate)
		return
	}
	v.Playing = s.Playing
	v.CurrentFrame = s.Frame
	c.cadence.SetFrameRate(v.Metadata.FrameRate)
	if !c.timer.Running() {
		c.timer.Start()
	}
}

// State returns a copy of the MediaState.
func (c *Controller) State() MediaState {
	return c.state.clone()
}

// Progress returns the displayed progress.
func (c *Controller) Progress() Progress {
	return c.progress
}

// TimeText returns the displayed "mm:ss / mm:ss" pair, empty without a video.
func (c *Controller) TimeText() string {
	return c.progress.TimeText
}

// CurrentPath returns the path of the loaded media, empty when nothing is loaded.
func (c *Controller) CurrentPath() string {
	return c.state.Path
}

// IsVideo reports whether a video is open.
func (c *Controller) IsVideo() bool {
	return c.state.Kind == KindVideo
}

// HasMedia reports whether an image or video is loaded.
func (c *Controller) HasMedia() bool {
	return c.state.Kind != KindEmpty
}

// IsPlayingVideo reports whether a video is open and playing.
func (c *Controller) IsPlayingVideo() bool {
	return c.state.Kind == KindVideo && c.state.Video.Playing
}

// Metadata returns the open video's metadata.
func (c *Controller) Metadata() (ports.VideoMetadata, bool) {
	if c.state.Kind != KindVideo {
		return ports.VideoMetadata{}, false
	}
	return c.state.Video.Metadata, true
}
