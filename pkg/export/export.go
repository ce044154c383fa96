// Package export writes the displayed image to disk and tracks video export jobs.
package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/user/editsurface/pkg/ports"
)

// DefaultQuality is the JPEG quality used for image exports.
const DefaultQuality = 90

// State is the lifecycle state of a video export job.
type State int

const (
	StateRunning State = iota
	StateCompleted
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Job is a snapshot of a video export.
type Job struct {
	ID           string
	Path         string
	Fraction     float64
	CurrentFrame int64
	TotalFrames  int64
	State        State
	Err          error
}

// Done reports whether the job reached a final state.
func (j Job) Done() bool {
	return j.State != StateRunning
}

// Surface is the part of the render target exports read from.
type Surface interface {
	Handle() ports.SurfaceHandle
	Usable() bool
}

// Media reports what is loaded.
type Media interface {
	HasMedia() bool
	IsVideo() bool
}

// Options configures the tracker.
type Options struct {
	Quality int
}

// Tracker owns at most one running video export. All methods run on the UI loop.
type Tracker struct {
	backend ports.Backend
	surface Surface
	media   Media
	poster  ports.Poster
	logger  ports.Logger
	quality int

	job      *Job
	stopSeen bool
	onUpdate func(Job)
}

// New creates a tracker.
func New(backend ports.Backend, surface Surface, media Media, poster ports.Poster, logger ports.Logger, opts Options) *Tracker {
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = DefaultQuality
	}
	return &Tracker{
		backend: backend,
		surface: surface,
		media:   media,
		poster:  poster,
		logger:  logger.WithComponent("export"),
		quality: opts.Quality,
	}
}

// OnUpdate registers the observer of job changes.
func (t *Tracker) OnUpdate(fn func(Job)) {
	t.onUpdate = fn
}

// FormatFor picks the image format from the file extension.
func FormatFor(path string) ports.ImageFormat {
	if strings.EqualFold(filepath.Ext(path), ".png") {
		return ports.FormatPNG
	}
	return ports.FormatJPEG
}

// ExportImage writes the displayed frame, adjustments included, to path.
func (t *Tracker) ExportImage(path string) error {
	if !t.surface.Usable() {
		return fmt.Errorf("export image: %w", ports.ErrResourceUnavailable)
	}
	if !t.media.HasMedia() {
		return fmt.Errorf("export image: nothing loaded: %w", ports.ErrResourceUnavailable)
	}
	format := FormatFor(path)
	if err := t.backend.ExportImage(t.surface.Handle(), path, format, t.quality); err != nil {
		t.logger.Warn("Image export failed: %v", err)
		return &ports.BackendError{Op: "export image", Path: path, Err: err}
	}
	t.logger.Info("Image exported: %s (%s)", path, format)
	return nil
}

// StartVideo begins exporting the open video to path.
func (t *Tracker) StartVideo(path string) (Job, error) {
	if t.job != nil && !t.job.Done() {
		return *t.job, fmt.Errorf("start export: %w", ports.ErrExportInProgress)
	}
	if !t.surface.Usable() {
		return Job{}, fmt.Errorf("start export: %w", ports.ErrResourceUnavailable)
	}
	if !t.media.IsVideo() {
		return Job{}, fmt.Errorf("start export: no video open: %w", ports.ErrResourceUnavailable)
	}

	job := &Job{ID: uuid.NewString(), Path: path, State: StateRunning}
	err := t.backend.StartVideoExport(t.surface.Handle(), path, func(p ports.ExportProgress) {
		t.poster.Post(func() { t.progress(job, p) })
	})
	if err != nil {
		t.logger.Warn("Video export failed to start: %v", err)
		return Job{}, &ports.BackendError{Op: "start export", Path: path, Err: err}
	}
	t.job = job
	t.stopSeen = false
	t.logger.Info("Video export started: %s (job %s)", path, job.ID)
	t.notify()
	return *job, nil
}

// progress applies a backend report. Reports for a replaced or finished job are dropped.
func (t *Tracker) progress(job *Job, p ports.ExportProgress) {
	if t.job != job || job.Done() {
		return
	}
	job.Fraction = clamp01(p.Fraction)
	job.CurrentFrame = p.CurrentFrame
	job.TotalFrames = p.TotalFrames
	if job.Fraction >= 1 {
		t.complete(job)
	}
	t.notify()
}

// Poll checks a running job against the backend. A job whose backend
// stopped before reporting the last frame is given one more poll for
// progress still queued on the loop, then marked failed.
func (t *Tracker) Poll() (Job, bool) {
	if t.job == nil {
		return Job{}, false
	}
	job := t.job
	if job.Done() || t.backend.IsExporting(t.surface.Handle()) {
		return *job, true
	}
	switch {
	case job.Fraction >= 1:
		t.complete(job)
	case !t.stopSeen:
		t.stopSeen = true
		return *job, true
	default:
		t.fail(job)
	}
	t.notify()
	return *job, true
}

// Cancel requests cancellation without waiting for the backend.
func (t *Tracker) Cancel() error {
	if t.job == nil || t.job.Done() {
		return fmt.Errorf("cancel export: %w", ports.ErrNoExport)
	}
	if h := t.surface.Handle(); h != 0 {
		t.backend.CancelExport(h)
	}
	t.job.State = StateCancelled
	t.logger.Info("Video export cancelled: %s", t.job.Path)
	t.notify()
	return nil
}

// Exporting reports whether a job is running.
func (t *Tracker) Exporting() bool {
	return t.job != nil && !t.job.Done()
}

// Current returns the most recent job.
func (t *Tracker) Current() (Job, bool) {
	if t.job == nil {
		return Job{}, false
	}
	return *t.job, true
}

func (t *Tracker) complete(job *Job) {
	job.State = StateCompleted
	job.Fraction = 1
	t.logger.Info("Video export completed: %s", job.Path)
}

func (t *Tracker) fail(job *Job) {
	job.State = StateFailed
	job.Err = fmt.Errorf("export %s stopped at %.0f%%: %w", job.Path, job.Fraction*100, ports.ErrBackendCallFailed)
	t.logger.Warn("Video export failed: %v", job.Err)
}

func (t *Tracker) notify() {
	if t.onUpdate != nil && t.job != nil {
		t.onUpdate(*t.job)
	}
}

func clamp01(f float64) float64 {
	if f != f || f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
