package mocks

import (
	"image"
	"sync"

	"github.com/user/editsurface/pkg/ports"
)

// Backend is a mock implementation of ports.Backend.
//
// Without overrides it behaves like a small working backend: handles and
// shared tokens are handed out sequentially, seeks move the frame position
// and rendering a video frame advances it. Every call is recorded by name.
type Backend struct {
	mu sync.Mutex

	InitFunc                  func() error
	CreateSurfaceFunc         func(width, height int) (ports.SurfaceHandle, error)
	ResizeSurfaceFunc         func(h ports.SurfaceHandle, width, height int) error
	SharedHandleFunc          func(h ports.SurfaceHandle) (ports.SharedHandle, error)
	LoadImageFunc             func(h ports.SurfaceHandle, path string) error
	RenderStaticFunc          func(h ports.SurfaceHandle) error
	ExportImageFunc           func(h ports.SurfaceHandle, path string, format ports.ImageFormat, quality int) error
	SetAdjustParamsFunc       func(h ports.SurfaceHandle, params ports.AdjustParams) error
	LoadFilterLUTFunc         func(h ports.SurfaceHandle, path string) error
	SetZoomFunc               func(h ports.SurfaceHandle, factor, panX, panY float64) error
	ProbeIsVideoFunc          func(path string) (bool, error)
	OpenVideoFunc             func(h ports.SurfaceHandle, path string) error
	VideoMetadataFunc         func(h ports.SurfaceHandle) (ports.VideoMetadata, error)
	RenderNextVideoFrameFunc  func(h ports.SurfaceHandle) error
	SeekByTimestampFunc       func(h ports.SurfaceHandle, micros int64) error
	SeekByFrameFunc           func(h ports.SurfaceHandle, index int64) error
	CurrentTimestampFunc      func(h ports.SurfaceHandle) (int64, error)
	ExtractThumbnailFrameFunc func(path string, maxW, maxH int) (image.Image, error)
	StartVideoExportFunc      func(h ports.SurfaceHandle, path string, onProgress func(ports.ExportProgress)) error
	IsExportingFunc           func(h ports.SurfaceHandle) bool
	HistogramFunc             func(h ports.SurfaceHandle) (ports.HistogramSnapshot, error)

	// Metadata is returned by VideoMetadata when no override is set.
	Metadata ports.VideoMetadata

	Calls           []string
	SeekTimestamps  []int64
	SeekFrames      []int64
	Zooms           []float64
	Adjustments     []ports.AdjustParams
	Intensities     []float64
	LoadedLUTs      []string
	OnProgress      func(ports.ExportProgress)
	Destroyed       []ports.SurfaceHandle
	nextHandle      ports.SurfaceHandle
	nextShared      ports.SharedHandle
	frame           int64
	renderedFrame   int64
	videoOpen       bool
	exporting       bool
	cancelRequested bool
}

// NewBackend creates a mock backend with a 30 fps, 10 second video as default metadata.
func NewBackend() *Backend {
	return &Backend{
		Metadata: ports.VideoMetadata{
			Width:          1920,
			Height:         1080,
			FrameRate:      30,
			TotalFrames:    300,
			DurationMicros: 10_000_000,
			Format:         ports.VideoFormatMP4,
		},
		renderedFrame: -1,
	}
}

func (m *Backend) record(name string) {
	m.Calls = append(m.Calls, name)
}

func (m *Backend) Init() error {
	m.mu.Lock()
	m.record("Init")
	m.mu.Unlock()
	if m.InitFunc != nil {
		return m.InitFunc()
	}
	return nil
}

func (m *Backend) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Shutdown")
}

func (m *Backend) CreateSurface(width, height int) (ports.SurfaceHandle, error) {
	m.mu.Lock()
	m.record("CreateSurface")
	m.mu.Unlock()
	if m.CreateSurfaceFunc != nil {
		return m.CreateSurfaceFunc(width, height)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextHandle++
	return m.nextHandle, nil
}

func (m *Backend) ResizeSurface(h ports.SurfaceHandle, width, height int) error {
	m.mu.Lock()
	m.record("ResizeSurface")
	m.mu.Unlock()
	if m.ResizeSurfaceFunc != nil {
		return m.ResizeSurfaceFunc(h, width, height)
	}
	return nil
}

func (m *Backend) DestroySurface(h ports.SurfaceHandle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("DestroySurface")
	m.Destroyed = append(m.Destroyed, h)
}

func (m *Backend) SharedHandle(h ports.SurfaceHandle) (ports.SharedHandle, error) {
	m.mu.Lock()
	m.record("SharedHandle")
	m.mu.Unlock()
	if m.SharedHandleFunc != nil {
		return m.SharedHandleFunc(h)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextShared++
	return m.nextShared + 100, nil
}

func (m *Backend) LoadImage(h ports.SurfaceHandle, path string) error {
	m.mu.Lock()
	m.record("LoadImage")
	m.mu.Unlock()
	if m.LoadImageFunc != nil {
		return m.LoadImageFunc(h, path)
	}
	return nil
}

func (m *Backend) RenderStatic(h ports.SurfaceHandle) error {
	m.mu.Lock()
	m.record("RenderStatic")
	m.mu.Unlock()
	if m.RenderStaticFunc != nil {
		return m.RenderStaticFunc(h)
	}
	return nil
}

func (m *Backend) ExportImage(h ports.SurfaceHandle, path string, format ports.ImageFormat, quality int) error {
	m.mu.Lock()
	m.record("ExportImage")
	m.mu.Unlock()
	if m.ExportImageFunc != nil {
		return m.ExportImageFunc(h, path, format, quality)
	}
	return nil
}

func (m *Backend) SetAdjustParams(h ports.SurfaceHandle, params ports.AdjustParams) error {
	m.mu.Lock()
	m.record("SetAdjustParams")
	m.Adjustments = append(m.Adjustments, params)
	m.mu.Unlock()
	if m.SetAdjustParamsFunc != nil {
		return m.SetAdjustParamsFunc(h, params)
	}
	return nil
}

func (m *Backend) ResetAdjustParams(h ports.SurfaceHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ResetAdjustParams")
	return nil
}

func (m *Backend) LoadFilterLUT(h ports.SurfaceHandle, path string) error {
	m.mu.Lock()
	m.record("LoadFilterLUT")
	m.LoadedLUTs = append(m.LoadedLUTs, path)
	m.mu.Unlock()
	if m.LoadFilterLUTFunc != nil {
		return m.LoadFilterLUTFunc(h, path)
	}
	return nil
}

func (m *Backend) SetFilterIntensity(h ports.SurfaceHandle, intensity float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("SetFilterIntensity")
	m.Intensities = append(m.Intensities, intensity)
	return nil
}

func (m *Backend) RemoveFilter(h ports.SurfaceHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("RemoveFilter")
	return nil
}

func (m *Backend) SetZoom(h ports.SurfaceHandle, factor, panX, panY float64) error {
	m.mu.Lock()
	m.record("SetZoom")
	m.Zooms = append(m.Zooms, factor)
	m.mu.Unlock()
	if m.SetZoomFunc != nil {
		return m.SetZoomFunc(h, factor, panX, panY)
	}
	return nil
}

func (m *Backend) ProbeIsVideo(path string) (bool, error) {
	m.mu.Lock()
	m.record("ProbeIsVideo")
	m.mu.Unlock()
	if m.ProbeIsVideoFunc != nil {
		return m.ProbeIsVideoFunc(path)
	}
	return false, nil
}

func (m *Backend) OpenVideo(h ports.SurfaceHandle, path string) error {
	m.mu.Lock()
	m.record("OpenVideo")
	m.mu.Unlock()
	if m.OpenVideoFunc != nil {
		if err := m.OpenVideoFunc(h, path); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.videoOpen = true
	m.frame = 0
	m.renderedFrame = -1
	return nil
}

func (m *Backend) CloseVideo(h ports.SurfaceHandle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CloseVideo")
	m.videoOpen = false
}

func (m *Backend) VideoMetadata(h ports.SurfaceHandle) (ports.VideoMetadata, error) {
	m.mu.Lock()
	m.record("VideoMetadata")
	m.mu.Unlock()
	if m.VideoMetadataFunc != nil {
		return m.VideoMetadataFunc(h)
	}
	return m.Metadata, nil
}

func (m *Backend) RenderNextVideoFrame(h ports.SurfaceHandle) error {
	m.mu.Lock()
	m.record("RenderNextVideoFrame")
	m.mu.Unlock()
	if m.RenderNextVideoFrameFunc != nil {
		if err := m.RenderNextVideoFrameFunc(h); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renderedFrame = m.frame
	m.frame++
	return nil
}

func (m *Backend) SeekByTimestamp(h ports.SurfaceHandle, micros int64) error {
	m.mu.Lock()
	m.record("SeekByTimestamp")
	m.SeekTimestamps = append(m.SeekTimestamps, micros)
	m.mu.Unlock()
	if m.SeekByTimestampFunc != nil {
		if err := m.SeekByTimestampFunc(h, micros); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frame = m.frameAt(micros)
	return nil
}

func (m *Backend) SeekByFrame(h ports.SurfaceHandle, index int64) error {
	m.mu.Lock()
	m.record("SeekByFrame")
	m.SeekFrames = append(m.SeekFrames, index)
	m.mu.Unlock()
	if m.SeekByFrameFunc != nil {
		if err := m.SeekByFrameFunc(h, index); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frame = index
	return nil
}

func (m *Backend) CurrentFrame(h ports.SurfaceHandle) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CurrentFrame")
	if m.renderedFrame < 0 {
		return 0, nil
	}
	return m.renderedFrame, nil
}

func (m *Backend) CurrentTimestamp(h ports.SurfaceHandle) (int64, error) {
	m.mu.Lock()
	m.record("CurrentTimestamp")
	m.mu.Unlock()
	if m.CurrentTimestampFunc != nil {
		return m.CurrentTimestampFunc(h)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.renderedFrame < 0 || m.Metadata.FrameRate <= 0 {
		return 0, nil
	}
	return int64(float64(m.renderedFrame) * 1e6 / m.Metadata.FrameRate), nil
}

func (m *Backend) ExtractThumbnailFrame(path string, maxW, maxH int) (image.Image, error) {
	m.mu.Lock()
	m.record("ExtractThumbnailFrame")
	m.mu.Unlock()
	if m.ExtractThumbnailFrameFunc != nil {
		return m.ExtractThumbnailFrameFunc(path, maxW, maxH)
	}
	return image.NewRGBA(image.Rect(0, 0, maxW, maxH)), nil
}

func (m *Backend) StartVideoExport(h ports.SurfaceHandle, path string, onProgress func(ports.ExportProgress)) error {
	m.mu.Lock()
	m.record("StartVideoExport")
	m.OnProgress = onProgress
	m.mu.Unlock()
	if m.StartVideoExportFunc != nil {
		if err := m.StartVideoExportFunc(h, path, onProgress); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exporting = true
	m.cancelRequested = false
	return nil
}

func (m *Backend) IsExporting(h ports.SurfaceHandle) bool {
	if m.IsExportingFunc != nil {
		return m.IsExportingFunc(h)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exporting
}

func (m *Backend) CancelExport(h ports.SurfaceHandle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CancelExport")
	m.cancelRequested = true
}

func (m *Backend) Histogram(h ports.SurfaceHandle) (ports.HistogramSnapshot, error) {
	m.mu.Lock()
	m.record("Histogram")
	m.mu.Unlock()
	if m.HistogramFunc != nil {
		return m.HistogramFunc(h)
	}
	return ports.HistogramSnapshot{}, nil
}

// FinishExport simulates the backend finishing (or abandoning) the running export.
func (m *Backend) FinishExport() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exporting = false
}

// CancelRequested reports whether CancelExport was called since the last export start.
func (m *Backend) CancelRequested() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancelRequested
}

// Count returns how many times the named method was called.
func (m *Backend) Count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c == name {
			n++
		}
	}
	return n
}

// ResetCalls forgets the recorded call names.
func (m *Backend) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
}

// SetFrame places the decode position as if frame index had just been rendered.
func (m *Backend) SetFrame(index int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renderedFrame = index
	m.frame = index + 1
}

// VideoOpen reports whether a video is open.
func (m *Backend) VideoOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.videoOpen
}

func (m *Backend) frameAt(micros int64) int64 {
	if m.Metadata.FrameRate <= 0 {
		return 0
	}
	return int64(float64(micros) * m.Metadata.FrameRate / 1e6)
}

var _ ports.Backend = (*Backend)(nil)
