package softbackend

import (
	"image"
	"image/color"
	"testing"

	"github.com/user/editsurface/pkg/ports"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func defaultLook() look {
	return look{params: ports.DefaultAdjustParams(), intensity: 1}
}

func gradeOne(c color.RGBA, l look) color.RGBA {
	img := solid(1, 1, c)
	grade(img, img.Bounds(), l)
	return img.RGBAAt(0, 0)
}

func TestGrade_DefaultLookIsIdentity(t *testing.T) {
	in := color.RGBA{12, 140, 250, 255}
	if got := gradeOne(in, defaultLook()); got != in {
		t.Errorf("expected %v unchanged, got %v", in, got)
	}
}

func TestGrade_Exposure(t *testing.T) {
	l := defaultLook()
	l.params.Exposure = 1

	got := gradeOne(color.RGBA{64, 64, 64, 255}, l)
	if got.R != 128 || got.G != 128 || got.B != 128 {
		t.Errorf("expected +1 EV to double 64 to 128, got %v", got)
	}
}

func TestGrade_FullDesaturation(t *testing.T) {
	l := defaultLook()
	l.params.Saturation = -50

	got := gradeOne(color.RGBA{200, 100, 50, 255}, l)
	if got.R != got.G || got.G != got.B {
		t.Errorf("expected gray, got %v", got)
	}
	if got.R != 124 {
		t.Errorf("expected luminance 124, got %d", got.R)
	}
}

func TestGrade_SaturationFactorNeverInverts(t *testing.T) {
	l := defaultLook()
	l.params.Saturation = -100

	got := gradeOne(color.RGBA{200, 100, 50, 255}, l)
	if got.R != got.G || got.G != got.B {
		t.Errorf("expected gray at the lower bound, got %v", got)
	}
}

func TestGrade_ContrastSpreadsTones(t *testing.T) {
	l := defaultLook()
	l.params.Contrast = 50

	dark := gradeOne(color.RGBA{80, 80, 80, 255}, l)
	light := gradeOne(color.RGBA{180, 180, 180, 255}, l)
	if dark.R >= 80 || light.R <= 180 {
		t.Errorf("expected darker darks and lighter lights, got %d and %d", dark.R, light.R)
	}
}

func TestGrade_LowTemperatureCools(t *testing.T) {
	l := defaultLook()
	l.params.Temperature = 3000

	got := gradeOne(color.RGBA{128, 128, 128, 255}, l)
	if got.B <= got.R {
		t.Errorf("expected blue to exceed red, got %v", got)
	}
}

func TestGrade_NeutralTemperatureSkipped(t *testing.T) {
	g := newGrader(defaultLook())
	if g.applyTemp {
		t.Error("expected 5500K to leave white balance alone")
	}

	l := defaultLook()
	l.params.Temperature = 20000
	if newGrader(l).applyTemp {
		t.Error("expected temperatures outside 1500..11500 to be ignored")
	}
}

func TestGrade_FilterIntensity(t *testing.T) {
	lut, err := ParseCube(cube("", invertCube))
	if err != nil {
		t.Fatalf("ParseCube failed: %v", err)
	}
	black := color.RGBA{0, 0, 0, 255}

	full := defaultLook()
	full.lut = lut
	if got := gradeOne(black, full); got.R != 255 {
		t.Errorf("expected full intensity to invert, got %v", got)
	}

	half := full
	half.intensity = 0.5
	if got := gradeOne(black, half); got.R != 128 {
		t.Errorf("expected half intensity to blend to 128, got %v", got)
	}

	off := full
	off.intensity = 0
	if got := gradeOne(black, off); got != black {
		t.Errorf("expected zero intensity to leave color, got %v", got)
	}
}

func TestGrade_Vignette(t *testing.T) {
	l := defaultLook()
	l.params.Vignette = 100
	img := solid(101, 101, color.RGBA{128, 128, 128, 255})

	grade(img, img.Bounds(), l)

	center := img.RGBAAt(50, 50)
	corner := img.RGBAAt(0, 0)
	if center.R != 128 {
		t.Errorf("expected center untouched, got %d", center.R)
	}
	if corner.R >= center.R {
		t.Errorf("expected corner darker than center, got %d vs %d", corner.R, center.R)
	}
}

func TestGrade_GrainIsDeterministic(t *testing.T) {
	l := defaultLook()
	l.params.Grain = 100
	a := solid(16, 16, color.RGBA{128, 128, 128, 255})
	b := solid(16, 16, color.RGBA{128, 128, 128, 255})

	grade(a, a.Bounds(), l)
	grade(b, b.Bounds(), l)

	varied := false
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatal("expected the same noise for the same pixels")
		}
		if i%4 == 0 && a.Pix[i] != 128 {
			varied = true
		}
	}
	if !varied {
		t.Error("expected grain to change some pixels")
	}
}

func TestGrade_OnlyTouchesRect(t *testing.T) {
	l := defaultLook()
	l.params.Exposure = 1
	img := solid(10, 10, color.RGBA{64, 64, 64, 255})

	grade(img, image.Rect(0, 0, 5, 10), l)

	if img.RGBAAt(2, 2).R != 128 || img.RGBAAt(7, 2).R != 64 {
		t.Errorf("expected only the left half graded, got %d and %d", img.RGBAAt(2, 2).R, img.RGBAAt(7, 2).R)
	}
}

func TestPlacement(t *testing.T) {
	src := image.Rect(0, 0, 200, 100)
	dst := image.Rect(0, 0, 800, 600)
	tests := []struct {
		name       string
		zoom       float64
		panX, panY float64
		want       image.Rectangle
	}{
		{"fit", 1, 0, 0, image.Rect(0, 100, 800, 500)},
		{"zoomed", 2, 0, 0, image.Rect(-400, -100, 1200, 700)},
		{"panned", 1, 10, 20, image.Rect(10, 120, 810, 520)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := placement(src, dst, tt.zoom, tt.panX, tt.panY); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}

	if got := placement(image.Rectangle{}, dst, 1, 0, 0); !got.Empty() {
		t.Errorf("expected empty placement for an empty source, got %v", got)
	}
}
