package softbackend

import (
	"image"
	"math"

	"github.com/user/editsurface/pkg/ports"
)

func clamp01(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func luminance(r, g, b float64) float64 {
	return 0.299*r + 0.587*g + 0.114*b
}

func smoothstep(x float64) float64 {
	x = clamp01(x)
	return x * x * (3 - 2*x)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// rgb is a color with channels in 0..1.
type rgb struct{ r, g, b float64 }

func (c rgb) scale(f float64) rgb {
	return rgb{c.r * f, c.g * f, c.b * f}
}

func (c rgb) lerp(o rgb, t float64) rgb {
	return rgb{lerp(c.r, o.r, t), lerp(c.g, o.g, t), lerp(c.b, o.b, t)}
}

func (c rgb) clamp() rgb {
	return rgb{clamp01(c.r), clamp01(c.g), clamp01(c.b)}
}

// grader holds per-frame constants derived from a look.
type grader struct {
	p         ports.AdjustParams
	lut       *LUT
	intensity float64
	contrast  float64
	tempGain  rgb
	applyTemp bool
}

func newGrader(l look) grader {
	g := grader{p: l.params, lut: l.lut, intensity: l.intensity}
	if math.Abs(l.params.Contrast) > 0.001 {
		c := l.params.Contrast / 100 * 255
		g.contrast = (259 * (c + 255)) / (255 * (259 - c))
	}
	t := l.params.Temperature
	if math.Abs(t-5500) > 0.1 && t >= 1500 && t <= 11500 {
		ref := kelvinToRGB(6500)
		want := kelvinToRGB(t)
		g.tempGain = rgb{ref.r / want.r, ref.g / want.g, ref.b / want.b}
		g.applyTemp = true
	}
	return g
}

// grade applies adjustments, the LUT and the finishing effects to r in place.
func grade(img *image.RGBA, r image.Rectangle, l look) {
	if l.identity() || r.Empty() {
		return
	}
	g := newGrader(l)
	cx := float64(r.Min.X+r.Max.X) / 2
	cy := float64(r.Min.Y+r.Max.Y) / 2
	maxDist := math.Hypot(float64(r.Dx())/2, float64(r.Dy())/2)

	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := img.Pix[img.PixOffset(r.Min.X, y):]
		for x := 0; x < r.Dx(); x++ {
			px := row[x*4 : x*4+4]
			c := rgb{float64(px[0]) / 255, float64(px[1]) / 255, float64(px[2]) / 255}
			c = g.color(c)
			c = g.finish(c, float64(r.Min.X+x), float64(y), cx, cy, maxDist)
			px[0] = uint8(math.Round(c.r * 255))
			px[1] = uint8(math.Round(c.g * 255))
			px[2] = uint8(math.Round(c.b * 255))
		}
	}
}

// color runs the per-pixel tone and color chain.
func (g grader) color(c rgb) rgb {
	p := g.p
	if g.applyTemp {
		c = rgb{
			linearToSRGB(clamp01(srgbToLinear(c.r) * g.tempGain.r)),
			linearToSRGB(clamp01(srgbToLinear(c.g) * g.tempGain.g)),
			linearToSRGB(clamp01(srgbToLinear(c.b) * g.tempGain.b)),
		}
	}
	if math.Abs(p.Tint) > 0.1 {
		c.g *= 1 - p.Tint/300
		c = c.clamp()
	}
	if math.Abs(p.Exposure) > 0.001 {
		c = c.scale(math.Pow(2, p.Exposure)).clamp()
	}
	if math.Abs(p.Highlights) > 0.1 {
		c = highlights(c, p.Highlights/100)
	}
	if math.Abs(p.Shadows) > 0.1 {
		c = shadows(c, p.Shadows/100)
	}
	if math.Abs(p.Whites) > 0.1 {
		c = whites(c, p.Whites/100)
	}
	if math.Abs(p.Blacks) > 0.1 {
		c = blacks(c, p.Blacks/100)
	}
	if g.contrast != 0 {
		c = rgb{
			g.contrast*(c.r-0.5) + 0.5,
			g.contrast*(c.g-0.5) + 0.5,
			g.contrast*(c.b-0.5) + 0.5,
		}.clamp()
	}
	if math.Abs(p.Vibrance) > 0.001 {
		c = vibrance(c, p.Vibrance/100)
	}
	if math.Abs(p.Saturation) > 0.001 {
		c = saturate(c, math.Max(0, 1+p.Saturation/50))
	}
	if g.lut != nil && g.intensity > 0 {
		c = c.lerp(g.lut.Apply(c), g.intensity)
	}
	return c
}

// finish applies the position dependent effects.
func (g grader) finish(c rgb, x, y, cx, cy, maxDist float64) rgb {
	if v := g.p.Vignette; math.Abs(v) > 0.1 && maxDist > 0 {
		d := math.Hypot(x-cx, y-cy) / maxDist
		w := smoothstep((d - 0.4) / 0.6)
		c = c.scale(1 - v/100*w).clamp()
	}
	if n := g.p.Grain; n > 0.1 {
		offset := (noise(int(x), int(y)) - 0.5) * n / 100 * 0.2
		c = rgb{c.r + offset, c.g + offset, c.b + offset}.clamp()
	}
	return c
}

func highlights(c rgb, amount float64) rgb {
	lum := luminance(c.r, c.g, c.b)
	if lum <= 0.4 {
		return c
	}
	curve := smoothstep((lum - 0.4) / 0.6)
	if amount < 0 {
		return c.scale(clamp01(1 + amount*curve*1.5)).clamp()
	}
	return c.lerp(c.scale(1+amount*curve*0.8), curve).clamp()
}

func shadows(c rgb, amount float64) rgb {
	lum := luminance(c.r, c.g, c.b)
	if lum >= 0.6 {
		return c
	}
	curve := smoothstep((0.6 - lum) / 0.6)
	if amount > 0 {
		return c.lerp(c.scale(1+amount*curve*1.5), curve).clamp()
	}
	return c.scale(clamp01(1 + amount*curve*1.2)).clamp()
}

func whites(c rgb, amount float64) rgb {
	lum := luminance(c.r, c.g, c.b)
	if lum <= 0.7 {
		return c
	}
	w := (lum - 0.7) / 0.3
	curve := w * w
	if amount > 0 {
		return c.lerp(c.scale(1+amount*curve*0.3), curve).clamp()
	}
	return c.scale(1 + amount*curve*0.5).clamp()
}

func blacks(c rgb, amount float64) rgb {
	lum := luminance(c.r, c.g, c.b)
	if lum >= 0.3 {
		return c
	}
	w := (0.3 - lum) / 0.3
	curve := w * w
	if amount > 0 {
		return c.lerp(c.scale(1+amount*curve*0.5), curve).clamp()
	}
	return c.scale(1 + amount*curve).clamp()
}

func saturate(c rgb, factor float64) rgb {
	lum := luminance(c.r, c.g, c.b)
	return rgb{
		lum + (c.r-lum)*factor,
		lum + (c.g-lum)*factor,
		lum + (c.b-lum)*factor,
	}.clamp()
}

// vibrance boosts muted colors more than saturated ones.
func vibrance(c rgb, amount float64) rgb {
	hi := math.Max(c.r, math.Max(c.g, c.b))
	lo := math.Min(c.r, math.Min(c.g, c.b))
	sat := hi - lo
	return saturate(c, 1+amount*(1-sat))
}

func srgbToLinear(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

func linearToSRGB(v float64) float64 {
	if v <= 0.0031308 {
		return v * 12.92
	}
	return 1.055*math.Pow(v, 1/2.4) - 0.055
}

// kelvinToRGB approximates the color of a black body, channels in 0..1.
func kelvinToRGB(kelvin float64) rgb {
	t := kelvin / 100
	var c rgb
	if t <= 66 {
		c.r = 1
		c.g = (99.4708025861*math.Log(t) - 161.1195681661) / 255
	} else {
		c.r = 329.698727446 * math.Pow(t-60, -0.1332047592) / 255
		c.g = 288.1221695283 * math.Pow(t-60, -0.0755148492) / 255
	}
	switch {
	case t >= 66:
		c.b = 1
	case t <= 19:
		c.b = 0
	default:
		c.b = (138.5177312231*math.Log(t-10) - 305.0447927307) / 255
	}
	const floor = 1e-5
	return rgb{math.Max(clamp01(c.r), floor), math.Max(clamp01(c.g), floor), math.Max(clamp01(c.b), floor)}
}

// noise is a deterministic hash of a pixel position in 0..1.
func noise(x, y int) float64 {
	h := uint32(x)*374761393 + uint32(y)*668265263
	h = (h ^ (h >> 13)) * 1274126177
	h ^= h >> 16
	return float64(h&0xffff) / 0xffff
}
