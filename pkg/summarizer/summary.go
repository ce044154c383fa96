// Package summarizer provides the report written after an export.
package summarizer

import (
	"time"

	"github.com/user/editsurface/pkg/filters"
	"github.com/user/editsurface/pkg/ports"
)

// Summary contains what was exported, with which look, and where it went.
type Summary struct {
	GeneratedAt time.Time

	Source SourceInfo
	Look   LookInfo
	Output OutputInfo
}

// SourceInfo describes the loaded file.
type SourceInfo struct {
	Path    string
	IsVideo bool

	// Video only
	Video ports.VideoMetadata
}

// LookInfo is the filter and adjustments the export was rendered with.
type LookInfo struct {
	Filter    string
	Intensity float64 // 0..1
	Changed   []filters.Setting
}

// OutputInfo describes the export result.
type OutputInfo struct {
	Path      string
	FramesDir string // empty for image exports
	Format    ports.ImageFormat
	Quality   int
	Frames    int64
	Elapsed   time.Duration
	DryRun    bool
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithImage sets an image source.
func (b *Builder) WithImage(path string) *Builder {
	b.summary.Source = SourceInfo{Path: path}
	return b
}

// WithVideo sets a video source.
func (b *Builder) WithVideo(path string, meta ports.VideoMetadata) *Builder {
	b.summary.Source = SourceInfo{
		Path:    path,
		IsVideo: true,
		Video:   meta,
	}
	return b
}

// WithLook sets the filter state.
func (b *Builder) WithLook(filter string, intensity float64, changed []filters.Setting) *Builder {
	b.summary.Look = LookInfo{
		Filter:    filter,
		Intensity: intensity,
		Changed:   changed,
	}
	return b
}

// WithOutput sets export output information.
func (b *Builder) WithOutput(output OutputInfo) *Builder {
	b.summary.Output = output
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
