package filesink

import (
	"errors"
	"image"
	"path/filepath"
	"testing"

	"github.com/user/editsurface/pkg/mocks"
	"github.com/user/editsurface/pkg/ports"
)

var testDir = filepath.Join("out", "clip_frames")

func TestFramesDir(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{filepath.Join("out", "clip.mp4"), filepath.Join("out", "clip_frames")},
		{"movie.final.mov", "movie.final_frames"},
		{"noext", "noext_frames"},
	}
	for _, tt := range tests {
		if got := FramesDir(tt.path); got != tt.want {
			t.Errorf("FramesDir(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestSink_WriteFrame(t *testing.T) {
	fs := mocks.NewFileSystem()
	var formats []ports.ImageFormat
	renderer := &mocks.Renderer{
		EncodeImageFunc: func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
			formats = append(formats, format)
			return []byte("png"), nil
		},
	}
	sink := New(testDir, fs, renderer, ports.FormatAuto, 0)

	for i := int64(0); i < 3; i++ {
		if err := sink.WriteFrame(i, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
			t.Fatalf("WriteFrame(%d) failed: %v", i, err)
		}
	}

	if sink.Written() != 3 {
		t.Errorf("expected 3 frames written, got %d", sink.Written())
	}
	if exists, _ := fs.Exists(testDir); !exists {
		t.Error("expected output directory to be created")
	}
	if _, ok := fs.GetFile(filepath.Join(testDir, "frame-00002.png")); !ok {
		t.Error("expected frame-00002.png")
	}
	for _, f := range formats {
		if f != ports.FormatPNG {
			t.Errorf("expected auto format to resolve to PNG, got %v", f)
		}
	}
}

func TestSink_JPEGFrames(t *testing.T) {
	sink := New(testDir, mocks.NewFileSystem(), &mocks.Renderer{}, ports.FormatJPEG, 85)

	if got := sink.FramePath(7); got != filepath.Join(testDir, "frame-00007.jpg") {
		t.Errorf("unexpected frame path %q", got)
	}
}

func TestSink_EncodeError(t *testing.T) {
	fs := mocks.NewFileSystem()
	renderer := &mocks.Renderer{
		EncodeImageFunc: func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
			return nil, errors.New("boom")
		},
	}
	sink := New(testDir, fs, renderer, ports.FormatPNG, 0)

	if err := sink.WriteFrame(0, image.NewRGBA(image.Rect(0, 0, 1, 1))); err == nil {
		t.Fatal("expected encode error")
	}
	if sink.Written() != 0 {
		t.Errorf("expected nothing written, got %d", sink.Written())
	}
}

func TestSink_WriteAfterClose(t *testing.T) {
	sink := New(testDir, mocks.NewFileSystem(), &mocks.Renderer{}, ports.FormatPNG, 0)

	if err := sink.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	err := sink.WriteFrame(0, image.NewRGBA(image.Rect(0, 0, 1, 1)))
	if !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}
