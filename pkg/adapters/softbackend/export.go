package softbackend

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/user/editsurface/pkg/ports"
)

// StartVideoExport renders every frame of the open video with the current
// look into a sink created for path. Adjustments made after the start do not
// affect the running export. onProgress is called from the export goroutine.
func (b *Backend) StartVideoExport(h ports.SurfaceHandle, path string, onProgress func(ports.ExportProgress)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, v, err := b.openVideo(h)
	if err != nil {
		return err
	}
	if s.exporting() {
		return ports.ErrExportInProgress
	}
	sink, err := b.newSink(path)
	if err != nil {
		return fmt.Errorf("create sink for %s: %w", path, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	job := &exportJob{cancel: cancel, done: make(chan struct{})}
	s.export = job

	clip := *v
	lk := s.look
	w, hgt := fitWithin(clip.info.Width, clip.info.Height, b.maxSize, b.maxSize)
	b.logger.Debug("Exporting %d frames of %s at %dx%d", clip.frames(), filepath.Base(clip.path), w, hgt)

	go func() {
		defer close(job.done)
		defer cancel()
		b.runExport(ctx, &clip, lk, w, hgt, sink, onProgress)
	}()
	return nil
}

func (b *Backend) runExport(ctx context.Context, clip *video, lk look, w, h int, sink ports.FrameSink, onProgress func(ports.ExportProgress)) {
	total := clip.frames()
	var written int64
	for i := int64(0); i < total; i++ {
		if ctx.Err() != nil {
			b.logger.Debug("Export cancelled after %d frames", written)
			break
		}
		frame := graded(b.drawFrame(clip, i, w, h), lk)
		if err := sink.WriteFrame(i, frame); err != nil {
			b.logger.Error("Export frame %d failed: %v", i, err)
			break
		}
		written++
		if onProgress != nil {
			onProgress(ports.ExportProgress{
				Fraction:     float64(i+1) / float64(total),
				CurrentFrame: i,
				TotalFrames:  total,
			})
		}
	}
	if err := sink.Close(); err != nil {
		b.logger.Error("Export sink close failed: %v", err)
	}
}

// IsExporting reports whether an export is still running on the surface.
func (b *Backend) IsExporting(h ports.SurfaceHandle) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, err := b.lookup(h)
	if err != nil {
		return false
	}
	return s.exporting()
}

// CancelExport asks the running export to stop. It does not wait.
func (b *Backend) CancelExport(h ports.SurfaceHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, err := b.lookup(h); err == nil {
		s.cancelExport()
	}
}

// WaitExport blocks until the export on h has finished.
func (b *Backend) WaitExport(h ports.SurfaceHandle) {
	b.mu.Lock()
	s, err := b.lookup(h)
	if err != nil || s.export == nil {
		b.mu.Unlock()
		return
	}
	done := s.export.done
	b.mu.Unlock()
	<-done
}
