package softbackend

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/user/editsurface/pkg/adapters/logger"
	"github.com/user/editsurface/pkg/adapters/mp4probe"
	"github.com/user/editsurface/pkg/mocks"
	"github.com/user/editsurface/pkg/ports"
)

type fixture struct {
	backend *Backend
	fs      *mocks.FileSystem
	sink    *mocks.FrameSink
	surface ports.SurfaceHandle
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{fs: mocks.NewFileSystem(), sink: mocks.NewFrameSink()}
	f.backend = New(logger.NewNoop(), Options{
		FileSystem: f.fs,
		NewSink: func(path string) (ports.FrameSink, error) {
			return f.sink, nil
		},
	})
	if err := f.backend.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	h, err := f.backend.CreateSurface(800, 600)
	if err != nil {
		t.Fatalf("CreateSurface failed: %v", err)
	}
	f.surface = h
	t.Cleanup(f.backend.Shutdown)
	return f
}

func (f *fixture) addImage(t *testing.T, path string, w, h int, c color.RGBA) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(w, h, c)); err != nil {
		t.Fatal(err)
	}
	f.fs.WriteFile(path, buf.Bytes())
}

func (f *fixture) addClip(t *testing.T, path string, frames int) {
	t.Helper()
	var buf bytes.Buffer
	if err := mp4probe.WriteClip(&buf, mp4probe.ClipOptions{Width: 640, Height: 360, FPS: 30, Frames: frames}); err != nil {
		t.Fatal(err)
	}
	f.fs.WriteFile(path, buf.Bytes())
}

func (f *fixture) frame(t *testing.T) *image.RGBA {
	t.Helper()
	shared, err := f.backend.SharedHandle(f.surface)
	if err != nil {
		t.Fatalf("SharedHandle failed: %v", err)
	}
	img, err := f.backend.Frame(shared)
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	return img.(*image.RGBA)
}

func TestBackend_RequiresInit(t *testing.T) {
	b := New(logger.NewNoop(), Options{FileSystem: mocks.NewFileSystem()})

	if _, err := b.CreateSurface(10, 10); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}

	if err := b.Init(); err != nil {
		t.Fatal(err)
	}
	b.Shutdown()
	if _, err := b.CreateSurface(10, 10); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized after Shutdown, got %v", err)
	}
}

func TestBackend_SurfaceSizeLimits(t *testing.T) {
	f := newFixture(t)

	for _, size := range [][2]int{{0, 10}, {10, -1}, {9000, 10}} {
		if _, err := f.backend.CreateSurface(size[0], size[1]); err == nil {
			t.Errorf("expected %dx%d to be rejected", size[0], size[1])
		}
	}
	if err := f.backend.ResizeSurface(f.surface, 0, 0); err == nil {
		t.Error("expected resize to 0x0 to fail")
	}
}

func TestBackend_SharedHandleRevokedOnResize(t *testing.T) {
	f := newFixture(t)

	old, err := f.backend.SharedHandle(f.surface)
	if err != nil {
		t.Fatalf("SharedHandle failed: %v", err)
	}
	if err := f.backend.ResizeSurface(f.surface, 1024, 768); err != nil {
		t.Fatalf("ResizeSurface failed: %v", err)
	}

	if _, err := f.backend.Frame(old); !errors.Is(err, ErrUnknownSurface) {
		t.Errorf("expected old token to stop resolving, got %v", err)
	}
	img := f.frame(t)
	if img.Bounds().Dx() != 1024 || img.Bounds().Dy() != 768 {
		t.Errorf("expected 1024x768, got %v", img.Bounds())
	}
}

func TestBackend_DestroySurface(t *testing.T) {
	f := newFixture(t)
	shared, _ := f.backend.SharedHandle(f.surface)

	f.backend.DestroySurface(f.surface)
	f.backend.DestroySurface(f.surface)

	if _, err := f.backend.Frame(shared); !errors.Is(err, ErrUnknownSurface) {
		t.Errorf("expected token of a destroyed surface to fail, got %v", err)
	}
	if err := f.backend.RenderStatic(f.surface); !errors.Is(err, ErrUnknownSurface) {
		t.Errorf("expected ErrUnknownSurface, got %v", err)
	}
}

func TestBackend_LoadImageFitsAndLetterboxes(t *testing.T) {
	f := newFixture(t)
	f.addImage(t, "/media/red.png", 200, 100, color.RGBA{255, 0, 0, 255})

	if err := f.backend.LoadImage(f.surface, "/media/red.png"); err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}
	if err := f.backend.RenderStatic(f.surface); err != nil {
		t.Fatalf("RenderStatic failed: %v", err)
	}

	img := f.frame(t)
	if got := img.RGBAAt(400, 300); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("expected red content, got %v", got)
	}
	if got := img.RGBAAt(10, 10); got != letterbox {
		t.Errorf("expected letterbox above the image, got %v", got)
	}
}

func TestBackend_FailedLoadKeepsImage(t *testing.T) {
	f := newFixture(t)
	f.addImage(t, "/media/red.png", 20, 20, color.RGBA{255, 0, 0, 255})
	f.fs.WriteFile("/media/broken.png", []byte("not an image"))

	if err := f.backend.LoadImage(f.surface, "/media/red.png"); err != nil {
		t.Fatal(err)
	}
	if err := f.backend.LoadImage(f.surface, "/media/broken.png"); err == nil {
		t.Fatal("expected decode failure")
	}
	if err := f.backend.LoadImage(f.surface, "/media/missing.png"); err == nil {
		t.Fatal("expected read failure")
	}
	if err := f.backend.RenderStatic(f.surface); err != nil {
		t.Errorf("expected previous image to remain renderable, got %v", err)
	}
}

func TestBackend_RenderStaticWithoutContent(t *testing.T) {
	f := newFixture(t)

	if err := f.backend.RenderStatic(f.surface); err != nil {
		t.Fatalf("RenderStatic failed: %v", err)
	}
	if got := f.frame(t).RGBAAt(400, 300); got != letterbox {
		t.Errorf("expected an empty surface cleared to the letterbox, got %v", got)
	}
}

func TestBackend_AdjustmentsApplyOnRender(t *testing.T) {
	f := newFixture(t)
	f.addImage(t, "/media/gray.png", 40, 30, color.RGBA{64, 64, 64, 255})
	if err := f.backend.LoadImage(f.surface, "/media/gray.png"); err != nil {
		t.Fatal(err)
	}

	params := ports.DefaultAdjustParams()
	params.Exposure = 1
	if err := f.backend.SetAdjustParams(f.surface, params); err != nil {
		t.Fatal(err)
	}
	if err := f.backend.RenderStatic(f.surface); err != nil {
		t.Fatal(err)
	}
	if got := f.frame(t).RGBAAt(400, 300).R; got != 128 {
		t.Errorf("expected exposure to brighten to 128, got %d", got)
	}

	if err := f.backend.ResetAdjustParams(f.surface); err != nil {
		t.Fatal(err)
	}
	if err := f.backend.RenderStatic(f.surface); err != nil {
		t.Fatal(err)
	}
	if got := f.frame(t).RGBAAt(400, 300).R; got != 64 {
		t.Errorf("expected reset to restore 64, got %d", got)
	}
}

func TestBackend_LoadFilterLUT(t *testing.T) {
	f := newFixture(t)
	f.addImage(t, "/media/black.png", 40, 30, color.RGBA{0, 0, 0, 255})
	f.fs.WriteFile("/luts/invert.cube", cube("", invertCube))
	f.fs.WriteFile("/luts/bad.cube", []byte("LUT_3D_SIZE 2\n"))
	if err := f.backend.LoadImage(f.surface, "/media/black.png"); err != nil {
		t.Fatal(err)
	}

	if err := f.backend.LoadFilterLUT(f.surface, "/luts/bad.cube"); !errors.Is(err, ErrInvalidCube) {
		t.Errorf("expected ErrInvalidCube, got %v", err)
	}
	if err := f.backend.LoadFilterLUT(f.surface, "/luts/invert.cube"); err != nil {
		t.Fatalf("LoadFilterLUT failed: %v", err)
	}
	if err := f.backend.SetFilterIntensity(f.surface, 0.5); err != nil {
		t.Fatal(err)
	}
	if err := f.backend.RenderStatic(f.surface); err != nil {
		t.Fatal(err)
	}
	if got := f.frame(t).RGBAAt(400, 300).R; got != 128 {
		t.Errorf("expected half inverted black to be 128, got %d", got)
	}

	// The filter survives a resize.
	if err := f.backend.ResizeSurface(f.surface, 640, 480); err != nil {
		t.Fatal(err)
	}
	if err := f.backend.RenderStatic(f.surface); err != nil {
		t.Fatal(err)
	}
	if got := f.frame(t).RGBAAt(320, 240).R; got != 128 {
		t.Errorf("expected filter after resize, got %d", got)
	}

	if err := f.backend.RemoveFilter(f.surface); err != nil {
		t.Fatal(err)
	}
	if err := f.backend.RenderStatic(f.surface); err != nil {
		t.Fatal(err)
	}
	if got := f.frame(t).RGBAAt(320, 240).R; got != 0 {
		t.Errorf("expected filter removed, got %d", got)
	}
}

func TestBackend_SetZoom(t *testing.T) {
	f := newFixture(t)
	f.addImage(t, "/media/red.png", 200, 100, color.RGBA{255, 0, 0, 255})
	if err := f.backend.LoadImage(f.surface, "/media/red.png"); err != nil {
		t.Fatal(err)
	}

	if err := f.backend.SetZoom(f.surface, 0, 0, 0); err == nil {
		t.Error("expected zoom 0 to be rejected")
	}
	if err := f.backend.SetZoom(f.surface, 2, 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := f.backend.RenderStatic(f.surface); err != nil {
		t.Fatal(err)
	}
	if got := f.frame(t).RGBAAt(10, 10); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("expected zoomed image to cover the corner, got %v", got)
	}
}

func TestBackend_Histogram(t *testing.T) {
	f := newFixture(t)
	f.addImage(t, "/media/red.png", 200, 100, color.RGBA{255, 0, 0, 255})

	empty, err := f.backend.Histogram(f.surface)
	if err != nil {
		t.Fatal(err)
	}
	if empty != (ports.HistogramSnapshot{}) {
		t.Error("expected empty bins before the first render")
	}

	if err := f.backend.LoadImage(f.surface, "/media/red.png"); err != nil {
		t.Fatal(err)
	}
	if err := f.backend.RenderStatic(f.surface); err != nil {
		t.Fatal(err)
	}
	snap, err := f.backend.Histogram(f.surface)
	if err != nil {
		t.Fatalf("Histogram failed: %v", err)
	}

	const pixels = 800 * 400
	if snap[ports.ChannelRed][255] != pixels {
		t.Errorf("expected %d red pixels at 255, got %d", pixels, snap[ports.ChannelRed][255])
	}
	if snap[ports.ChannelGreen][0] != pixels || snap[ports.ChannelBlue][0] != pixels {
		t.Error("expected green and blue at 0")
	}
	if snap[ports.ChannelLuminance][76] != pixels {
		t.Errorf("expected luminance bin 76, got %d", snap[ports.ChannelLuminance][76])
	}
}

func TestBackend_ExportImage(t *testing.T) {
	f := newFixture(t)
	f.addImage(t, "/media/red.png", 200, 100, color.RGBA{255, 0, 0, 255})

	if err := f.backend.ExportImage(f.surface, "/out/none.png", ports.FormatPNG, 0); !errors.Is(err, ErrNoImage) {
		t.Errorf("expected ErrNoImage, got %v", err)
	}
	if err := f.backend.LoadImage(f.surface, "/media/red.png"); err != nil {
		t.Fatal(err)
	}
	if err := f.backend.ExportImage(f.surface, "/out/red.png", ports.FormatPNG, 0); err != nil {
		t.Fatalf("ExportImage failed: %v", err)
	}

	data, ok := f.fs.GetFile("/out/red.png")
	if !ok {
		t.Fatal("expected exported file")
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("exported file is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 200 || img.Bounds().Dy() != 100 {
		t.Errorf("expected export at source resolution 200x100, got %v", img.Bounds())
	}
}

func TestBackend_ProbeIsVideo(t *testing.T) {
	f := newFixture(t)
	f.addClip(t, "/media/clip.mp4", 30)
	f.fs.WriteFile("/media/fake.mov", []byte("nope"))

	ok, err := f.backend.ProbeIsVideo("/media/clip.mp4")
	if err != nil || !ok {
		t.Errorf("expected clip.mp4 to be a video, got %v, %v", ok, err)
	}
	if ok, err := f.backend.ProbeIsVideo("/media/photo.png"); ok || err != nil {
		t.Errorf("expected png to be a non-video without error, got %v, %v", ok, err)
	}
	if _, err := f.backend.ProbeIsVideo("/media/movie.avi"); !errors.Is(err, ports.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat for avi, got %v", err)
	}
	if ok, err := f.backend.ProbeIsVideo("/media/fake.mov"); ok || err == nil {
		t.Errorf("expected broken mov to fail, got %v, %v", ok, err)
	}
}

func TestBackend_VideoPlayback(t *testing.T) {
	f := newFixture(t)
	f.addClip(t, "/media/clip.mp4", 60)

	if err := f.backend.OpenVideo(f.surface, "/media/clip.mp4"); err != nil {
		t.Fatalf("OpenVideo failed: %v", err)
	}
	meta, err := f.backend.VideoMetadata(f.surface)
	if err != nil {
		t.Fatal(err)
	}
	if meta.TotalFrames != 60 || meta.Width != 640 || meta.Format != ports.VideoFormatMP4 {
		t.Errorf("unexpected metadata %+v", meta)
	}

	for i := 0; i < 3; i++ {
		if err := f.backend.RenderNextVideoFrame(f.surface); err != nil {
			t.Fatalf("RenderNextVideoFrame failed: %v", err)
		}
	}
	if frame, _ := f.backend.CurrentFrame(f.surface); frame != 2 {
		t.Errorf("expected frame 2, got %d", frame)
	}
	ts, _ := f.backend.CurrentTimestamp(f.surface)
	if ts < 66_600 || ts > 66_700 {
		t.Errorf("expected about 66667us, got %d", ts)
	}

	if err := f.backend.SeekByTimestamp(f.surface, 1_000_000); err != nil {
		t.Fatal(err)
	}
	if err := f.backend.RenderNextVideoFrame(f.surface); err != nil {
		t.Fatal(err)
	}
	if frame, _ := f.backend.CurrentFrame(f.surface); frame != 30 {
		t.Errorf("expected frame 30 after seeking to 1s, got %d", frame)
	}
	if err := f.backend.SeekByTimestamp(f.surface, -1); err == nil {
		t.Error("expected a negative timestamp to fail")
	}
}

func TestBackend_VideoSeekClampsAndLoops(t *testing.T) {
	f := newFixture(t)
	f.addClip(t, "/media/clip.mp4", 60)
	if err := f.backend.OpenVideo(f.surface, "/media/clip.mp4"); err != nil {
		t.Fatal(err)
	}

	if err := f.backend.SeekByFrame(f.surface, 1000); err != nil {
		t.Fatal(err)
	}
	if err := f.backend.RenderNextVideoFrame(f.surface); err != nil {
		t.Fatal(err)
	}
	if frame, _ := f.backend.CurrentFrame(f.surface); frame != 59 {
		t.Errorf("expected clamp to last frame 59, got %d", frame)
	}

	if err := f.backend.RenderNextVideoFrame(f.surface); err != nil {
		t.Fatal(err)
	}
	if frame, _ := f.backend.CurrentFrame(f.surface); frame != 0 {
		t.Errorf("expected playback to wrap to 0, got %d", frame)
	}
}

func TestBackend_PausedVideoRendersStatic(t *testing.T) {
	f := newFixture(t)
	f.addClip(t, "/media/clip.mp4", 10)
	if err := f.backend.OpenVideo(f.surface, "/media/clip.mp4"); err != nil {
		t.Fatal(err)
	}

	if err := f.backend.RenderStatic(f.surface); err != nil {
		t.Fatalf("expected the first frame to render statically, got %v", err)
	}
	if got := f.frame(t).RGBAAt(400, 300); got == letterbox {
		t.Error("expected video content in the middle of the surface")
	}
}

func TestBackend_ImageReplacesVideo(t *testing.T) {
	f := newFixture(t)
	f.addClip(t, "/media/clip.mp4", 10)
	f.addImage(t, "/media/red.png", 20, 20, color.RGBA{255, 0, 0, 255})
	if err := f.backend.OpenVideo(f.surface, "/media/clip.mp4"); err != nil {
		t.Fatal(err)
	}

	if err := f.backend.LoadImage(f.surface, "/media/red.png"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.backend.CurrentFrame(f.surface); !errors.Is(err, ErrNoVideo) {
		t.Errorf("expected ErrNoVideo, got %v", err)
	}
}

func TestBackend_VideoCallsWithoutVideo(t *testing.T) {
	f := newFixture(t)

	if err := f.backend.RenderNextVideoFrame(f.surface); !errors.Is(err, ErrNoVideo) {
		t.Errorf("expected ErrNoVideo, got %v", err)
	}
	if err := f.backend.SeekByFrame(f.surface, 1); !errors.Is(err, ErrNoVideo) {
		t.Errorf("expected ErrNoVideo, got %v", err)
	}
	if _, err := f.backend.VideoMetadata(f.surface); !errors.Is(err, ErrNoVideo) {
		t.Errorf("expected ErrNoVideo, got %v", err)
	}
	f.backend.CloseVideo(f.surface)
}

func TestBackend_ExtractThumbnailFrame(t *testing.T) {
	f := newFixture(t)
	f.addClip(t, "/media/clip.mp4", 10)

	img, err := f.backend.ExtractThumbnailFrame("/media/clip.mp4", 200, 200)
	if err != nil {
		t.Fatalf("ExtractThumbnailFrame failed: %v", err)
	}
	if img.Bounds().Dx() != 200 || img.Bounds().Dy() != 112 {
		t.Errorf("expected 200x112, got %v", img.Bounds())
	}
	if _, err := f.backend.ExtractThumbnailFrame("/media/missing.mp4", 200, 200); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestBackend_VideoExport(t *testing.T) {
	f := newFixture(t)
	f.addClip(t, "/media/clip.mp4", 10)
	if err := f.backend.OpenVideo(f.surface, "/media/clip.mp4"); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var progress []ports.ExportProgress
	err := f.backend.StartVideoExport(f.surface, "/out/clip.mp4", func(p ports.ExportProgress) {
		mu.Lock()
		defer mu.Unlock()
		progress = append(progress, p)
	})
	if err != nil {
		t.Fatalf("StartVideoExport failed: %v", err)
	}
	f.backend.WaitExport(f.surface)

	if f.sink.Count() != 10 || !f.sink.IsClosed() {
		t.Errorf("expected 10 frames and a closed sink, got %d closed=%v", f.sink.Count(), f.sink.IsClosed())
	}
	if f.backend.IsExporting(f.surface) {
		t.Error("expected export to be finished")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(progress) != 10 {
		t.Fatalf("expected 10 progress reports, got %d", len(progress))
	}
	if last := progress[9]; last.Fraction != 1 || last.CurrentFrame != 9 || last.TotalFrames != 10 {
		t.Errorf("unexpected final progress %+v", last)
	}
}

func TestBackend_VideoExportCancel(t *testing.T) {
	f := newFixture(t)
	f.addClip(t, "/media/clip.mp4", 10)
	if err := f.backend.OpenVideo(f.surface, "/media/clip.mp4"); err != nil {
		t.Fatal(err)
	}
	release := make(chan struct{})
	f.sink.WriteFrameFunc = func(index int64, img image.Image) error {
		<-release
		return nil
	}

	if err := f.backend.StartVideoExport(f.surface, "/out/clip.mp4", nil); err != nil {
		t.Fatal(err)
	}
	if !f.backend.IsExporting(f.surface) {
		t.Error("expected export to be running")
	}
	if err := f.backend.StartVideoExport(f.surface, "/out/again.mp4", nil); !errors.Is(err, ports.ErrExportInProgress) {
		t.Errorf("expected ErrExportInProgress, got %v", err)
	}

	f.backend.CancelExport(f.surface)
	close(release)
	f.backend.WaitExport(f.surface)

	if f.sink.Count() >= 10 {
		t.Errorf("expected cancel to stop the export early, got %d frames", f.sink.Count())
	}
	if !f.sink.IsClosed() {
		t.Error("expected sink closed after cancel")
	}
}

func TestBackend_VideoExportRequiresVideo(t *testing.T) {
	f := newFixture(t)

	if err := f.backend.StartVideoExport(f.surface, "/out/clip.mp4", nil); !errors.Is(err, ErrNoVideo) {
		t.Errorf("expected ErrNoVideo, got %v", err)
	}
	if f.backend.IsExporting(f.surface) {
		t.Error("expected no export")
	}
}
