package ports

import (
	"image"
)

// SurfaceHandle identifies a render surface owned by the backend.
// The zero value means "no surface".
type SurfaceHandle uintptr

// SharedHandle is the exported token a compositor uses to display a surface.
// The zero value means "not exported".
type SharedHandle uintptr

// VideoFormat is the container format of an opened video.
type VideoFormat int

const (
	VideoFormatUnknown VideoFormat = iota
	VideoFormatMP4
	VideoFormatMOV
	VideoFormatAVI
	VideoFormatMKV
)

// String returns the lowercase container name.
func (f VideoFormat) String() string {
	switch f {
	case VideoFormatMP4:
		return "mp4"
	case VideoFormatMOV:
		return "mov"
	case VideoFormatAVI:
		return "avi"
	case VideoFormatMKV:
		return "mkv"
	default:
		return "unknown"
	}
}

// VideoMetadata describes an opened video. It does not change while the video stays open.
type VideoMetadata struct {
	Width          int
	Height         int
	FrameRate      float64
	TotalFrames    int64
	DurationMicros int64
	HasAudio       bool
	Format         VideoFormat
}

// AdjustParams is the full set of tonal and color adjustments applied on render.
type AdjustParams struct {
	Exposure       float64 // EV, -5..5
	Contrast       float64 // -100..100
	Highlights     float64 // -100..100
	Shadows        float64 // -100..100
	Whites         float64 // -100..100
	Blacks         float64 // -100..100
	Temperature    float64 // Kelvin, 2000..50000
	Tint           float64 // -150..150
	Vibrance       float64 // -100..100
	Saturation     float64 // -100..100
	Sharpness      float64 // 0..150
	NoiseReduction float64 // 0..100
	Vignette       float64 // -100..100
	Grain          float64 // 0..100
}

// DefaultAdjustParams returns neutral adjustments.
func DefaultAdjustParams() AdjustParams {
	return AdjustParams{Temperature: 5500}
}

// Histogram channel indices.
const (
	ChannelRed = iota
	ChannelGreen
	ChannelBlue
	ChannelLuminance
)

// HistogramSnapshot holds 256 bins for each of R, G, B and luminance.
type HistogramSnapshot [4][256]uint32

// ExportProgress is delivered by the backend while a video export runs.
type ExportProgress struct {
	Fraction     float64
	CurrentFrame int64
	TotalFrames  int64
}

// Backend abstracts the rendering and decoding service behind the editing surface.
// Every call is synchronous from the caller's perspective.
type Backend interface {
	// Init prepares the backend. A failure here is fatal for the session.
	Init() error

	// Shutdown releases everything the backend still holds.
	Shutdown()

	// CreateSurface allocates a render surface.
	CreateSurface(width, height int) (SurfaceHandle, error)

	// ResizeSurface recreates the surface storage at a new size.
	// Loaded media and render parameters stay attached to the handle.
	ResizeSurface(h SurfaceHandle, width, height int) error

	// DestroySurface frees the surface.
	DestroySurface(h SurfaceHandle)

	// SharedHandle exports the surface for the compositor.
	// The token changes every time the surface storage is recreated.
	SharedHandle(h SurfaceHandle) (SharedHandle, error)

	LoadImage(h SurfaceHandle, path string) error
	RenderStatic(h SurfaceHandle) error
	ExportImage(h SurfaceHandle, path string, format ImageFormat, quality int) error

	SetAdjustParams(h SurfaceHandle, params AdjustParams) error
	ResetAdjustParams(h SurfaceHandle) error
	LoadFilterLUT(h SurfaceHandle, path string) error
	SetFilterIntensity(h SurfaceHandle, intensity float64) error
	RemoveFilter(h SurfaceHandle) error
	SetZoom(h SurfaceHandle, factor, panX, panY float64) error

	ProbeIsVideo(path string) (bool, error)
	OpenVideo(h SurfaceHandle, path string) error
	CloseVideo(h SurfaceHandle)
	VideoMetadata(h SurfaceHandle) (VideoMetadata, error)

	// RenderNextVideoFrame renders the frame at the decode position and advances it.
	RenderNextVideoFrame(h SurfaceHandle) error

	// SeekByTimestamp moves the decode position so the next rendered frame is at micros.
	SeekByTimestamp(h SurfaceHandle, micros int64) error

	// SeekByFrame moves the decode position so the next rendered frame is index.
	SeekByFrame(h SurfaceHandle, index int64) error

	// CurrentFrame returns the index of the most recently rendered frame.
	CurrentFrame(h SurfaceHandle) (int64, error)

	// CurrentTimestamp returns the timestamp of the most recently rendered frame.
	CurrentTimestamp(h SurfaceHandle) (int64, error)

	// ExtractThumbnailFrame decodes one representative frame fitted into maxW x maxH.
	// It does not need a surface and may be called from any goroutine.
	ExtractThumbnailFrame(path string, maxW, maxH int) (image.Image, error)

	// StartVideoExport begins an asynchronous export. onProgress may be called
	// from any goroutine.
	StartVideoExport(h SurfaceHandle, path string, onProgress func(ExportProgress)) error
	IsExporting(h SurfaceHandle) bool

	// CancelExport requests cancellation and returns without waiting for it.
	CancelExport(h SurfaceHandle)

	// Histogram computes channel histograms of the current surface content.
	Histogram(h SurfaceHandle) (HistogramSnapshot, error)
}
