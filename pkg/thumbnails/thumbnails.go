// Package thumbnails lists supported media in a folder and renders thumbnails
// for them on a worker pool.
package thumbnails

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/user/editsurface/pkg/ports"
)

// DefaultSize is the edge of the square thumbnails are fitted into.
const DefaultSize = 200

var (
	imageExts = map[string]bool{
		"jpg": true, "jpeg": true, "png": true, "bmp": true,
		"tiff": true, "tif": true, "gif": true, "webp": true,
	}
	rawExts = map[string]bool{
		"raw": true, "cr2": true, "cr3": true, "nef": true, "nrw": true,
		"arw": true, "srf": true, "dng": true, "orf": true, "raf": true,
		"rw2": true, "pef": true, "ptx": true, "x3f": true, "3fr": true,
		"fff": true, "mef": true, "mos": true,
	}
	videoExts = map[string]bool{
		"mp4": true, "mov": true, "avi": true, "mkv": true,
	}
)

var (
	placeholderBackground = color.RGBA{40, 40, 40, 255}
	placeholderTile       = color.RGBA{60, 60, 60, 255}
	placeholderBorder     = color.RGBA{90, 90, 90, 255}
	placeholderTriangle   = color.RGBA{150, 150, 150, 255}
)

func ext(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// IsSupported reports whether name has an image, RAW or video extension.
func IsSupported(name string) bool {
	e := ext(name)
	return imageExts[e] || rawExts[e] || videoExts[e]
}

// IsVideoFile reports whether name has a video extension.
func IsVideoFile(name string) bool {
	return videoExts[ext(name)]
}

// IsRawFile reports whether name has a camera RAW extension.
func IsRawFile(name string) bool {
	return rawExts[ext(name)]
}

// Entry is one browsable file.
type Entry struct {
	Path    string
	Name    string
	IsVideo bool
}

// Thumbnail is a rendered entry. Err is set when no image could be produced.
type Thumbnail struct {
	Entry
	Image       image.Image
	Placeholder bool
	Err         error
}

// Options configures the generator.
type Options struct {
	Size    int
	Workers int
}

// Generator renders thumbnails.
type Generator struct {
	backend  ports.Backend
	renderer ports.Renderer
	fs       ports.FileSystem
	poster   ports.Poster
	logger   ports.Logger
	size     int
	workers  int
}

// New creates a generator.
func New(backend ports.Backend, renderer ports.Renderer, fs ports.FileSystem, poster ports.Poster, logger ports.Logger, opts Options) *Generator {
	if opts.Size <= 0 {
		opts.Size = DefaultSize
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &Generator{
		backend:  backend,
		renderer: renderer,
		fs:       fs,
		poster:   poster,
		logger:   logger.WithComponent("thumbnails"),
		size:     opts.Size,
		workers:  opts.Workers,
	}
}

// ScanFolder lists the supported files in dir sorted by name.
func (g *Generator) ScanFolder(dir string) ([]Entry, error) {
	names, err := g.fs.ListFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		if !IsSupported(name) {
			continue
		}
		entries = append(entries, Entry{
			Path:    filepath.Join(dir, name),
			Name:    name,
			IsVideo: IsVideoFile(name),
		})
	}
	g.logger.Debug("Found %d media files in %s", len(entries), dir)
	return entries, nil
}

// Generate renders thumbnails for entries on the worker pool. Each result is
// posted to the UI loop, where onReady runs. It returns once every worker has
// stopped.
func (g *Generator) Generate(ctx context.Context, entries []Entry, onReady func(Thumbnail)) error {
	if len(entries) == 0 {
		return nil
	}
	workers := g.workers
	if workers > len(entries) {
		workers = len(entries)
	}
	g.logger.Debug("Generating %d thumbnails with %d workers", len(entries), workers)

	jobs := make(chan Entry, len(entries))
	for _, e := range entries {
		jobs <- e
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go g.worker(ctx, &wg, jobs, onReady)
	}
	wg.Wait()
	return ctx.Err()
}

func (g *Generator) worker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan Entry, onReady func(Thumbnail)) {
	defer wg.Done()

	for e := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		thumb := g.Render(e)
		if !g.poster.Post(func() { onReady(thumb) }) {
			return
		}
	}
}

// Render produces the thumbnail for one entry.
func (g *Generator) Render(e Entry) Thumbnail {
	if e.IsVideo {
		return g.renderVideo(e)
	}
	return g.renderImage(e)
}

func (g *Generator) renderVideo(e Entry) Thumbnail {
	img, err := g.backend.ExtractThumbnailFrame(e.Path, g.size, g.size)
	if err != nil || img == nil {
		g.logger.Debug("Video thumbnail unavailable for %s: %v", e.Name, err)
		return Thumbnail{Entry: e, Image: g.Placeholder(), Placeholder: true}
	}
	return Thumbnail{Entry: e, Image: g.fit(img)}
}

func (g *Generator) renderImage(e Entry) Thumbnail {
	data, err := g.fs.ReadFile(e.Path)
	if err != nil {
		g.logger.Warn("Thumbnail failed for %s: %v", e.Name, err)
		return Thumbnail{Entry: e, Err: fmt.Errorf("read %s: %w", e.Path, ports.ErrFileUnreadable)}
	}
	img, err := g.renderer.DecodeImage(data, ports.FormatAuto)
	if err != nil {
		g.logger.Warn("Thumbnail failed for %s: %v", e.Name, err)
		return Thumbnail{Entry: e, Err: fmt.Errorf("decode %s: %w: %w", e.Path, ports.ErrFileUnreadable, err)}
	}
	return Thumbnail{Entry: e, Image: g.fit(img)}
}

func (g *Generator) fit(img image.Image) image.Image {
	b := img.Bounds()
	w, h := Fit(b.Dx(), b.Dy(), g.size)
	if w == b.Dx() && h == b.Dy() {
		return img
	}
	return g.renderer.ResizeImage(img, w, h)
}

// Placeholder draws the stand-in used when a video frame cannot be extracted:
// a play triangle on a rounded tile inside a dark square.
func (g *Generator) Placeholder() image.Image {
	canvas := g.renderer.CreateCanvas(g.size, g.size, placeholderBackground)
	scale := func(v int) int { return v * g.size / DefaultSize }
	canvas.DrawRectStroke(0, 0, g.size, g.size, placeholderBorder, 2)
	canvas.DrawRoundedRect(scale(20), scale(20), scale(160), scale(160), scale(16), placeholderTile)
	canvas.FillPolygon([]image.Point{
		{scale(60), scale(50)},
		{scale(60), scale(150)},
		{scale(140), scale(100)},
	}, placeholderTriangle)
	return canvas.ToImage()
}

// Fit scales w x h to fit in an edge x edge square, preserving aspect ratio.
// Images already inside the square are left as is.
func Fit(w, h, edge int) (int, int) {
	if w <= 0 || h <= 0 {
		return edge, edge
	}
	if w <= edge && h <= edge {
		return w, h
	}
	if w >= h {
		nh := h * edge / w
		if nh < 1 {
			nh = 1
		}
		return edge, nh
	}
	nw := w * edge / h
	if nw < 1 {
		nw = 1
	}
	return nw, edge
}
