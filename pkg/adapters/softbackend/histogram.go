package softbackend

import (
	"math"

	"github.com/user/editsurface/pkg/ports"
)

// Histogram bins the displayed content of the surface. The letterbox is not
// counted. A surface that has not rendered yet yields empty bins.
func (b *Backend) Histogram(h ports.SurfaceHandle) (ports.HistogramSnapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, err := b.lookup(h)
	if err != nil {
		return ports.HistogramSnapshot{}, err
	}

	var snap ports.HistogramSnapshot
	r := s.content
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := s.pixels.Pix[s.pixels.PixOffset(r.Min.X, y):]
		for x := 0; x < r.Dx(); x++ {
			px := row[x*4 : x*4+3]
			snap[ports.ChannelRed][px[0]]++
			snap[ports.ChannelGreen][px[1]]++
			snap[ports.ChannelBlue][px[2]]++
			lum := math.Round(luminance(float64(px[0]), float64(px[1]), float64(px[2])))
			snap[ports.ChannelLuminance][min(int(lum), 255)]++
		}
	}
	return snap, nil
}
