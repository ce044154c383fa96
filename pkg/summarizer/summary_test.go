package summarizer

import (
	"testing"
	"time"

	"github.com/user/editsurface/pkg/filters"
	"github.com/user/editsurface/pkg/ports"
)

func TestNewSummary(t *testing.T) {
	before := time.Now()
	summary := NewSummary()
	after := time.Now()

	if summary.GeneratedAt.Before(before) || summary.GeneratedAt.After(after) {
		t.Errorf("GeneratedAt should be between %v and %v, got %v",
			before, after, summary.GeneratedAt)
	}
}

func TestBuilder_WithImage(t *testing.T) {
	summary := NewBuilder().
		WithImage("/media/photo.jpg").
		Build()

	if summary.Source.Path != "/media/photo.jpg" {
		t.Errorf("expected path '/media/photo.jpg', got '%s'", summary.Source.Path)
	}
	if summary.Source.IsVideo {
		t.Error("expected an image source")
	}
}

func TestBuilder_WithVideo(t *testing.T) {
	meta := ports.VideoMetadata{Width: 640, Height: 360, FrameRate: 30, TotalFrames: 90}
	summary := NewBuilder().
		WithVideo("/media/clip.mp4", meta).
		Build()

	if !summary.Source.IsVideo {
		t.Error("expected a video source")
	}
	if summary.Source.Video != meta {
		t.Errorf("expected metadata %+v, got %+v", meta, summary.Source.Video)
	}
}

func TestBuilder_WithLook(t *testing.T) {
	changed := []filters.Setting{{Name: "exposure", Value: 0.5}}
	summary := NewBuilder().
		WithLook("Warm", 0.8, changed).
		Build()

	if summary.Look.Filter != "Warm" || summary.Look.Intensity != 0.8 {
		t.Errorf("unexpected look %+v", summary.Look)
	}
	if len(summary.Look.Changed) != 1 {
		t.Errorf("expected 1 changed adjustment, got %d", len(summary.Look.Changed))
	}
}

func TestBuilder_Chaining(t *testing.T) {
	summary := NewBuilder().
		WithImage("/media/photo.jpg").
		WithLook(filters.None, 1, nil).
		WithOutput(OutputInfo{Path: "/out/photo.jpg", Format: ports.FormatJPEG, Quality: 90}).
		Build()

	if summary.Output.Path != "/out/photo.jpg" || summary.Output.Quality != 90 {
		t.Errorf("unexpected output %+v", summary.Output)
	}
	if summary.GeneratedAt.IsZero() {
		t.Error("expected GeneratedAt to be set")
	}
}
