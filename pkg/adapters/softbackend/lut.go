package softbackend

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidCube is returned for malformed .cube files.
var ErrInvalidCube = errors.New("invalid cube file")

// LUT is a 3D color lookup table. Data holds Size^3 RGB triples with the red
// index varying fastest.
type LUT struct {
	Title string
	Size  int
	Data  []float64
}

// ParseCube reads an Adobe .cube 3D LUT. When both DOMAIN_MIN and DOMAIN_MAX
// are present the entries are normalized to 0..1 and clamped.
func ParseCube(data []byte) (*LUT, error) {
	lut := &LUT{}
	var domainMin, domainMax []float64

	sc := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		switch strings.ToUpper(fields[0]) {
		case "TITLE":
			lut.Title = strings.Trim(strings.TrimSpace(text[len(fields[0]):]), `"`)
			continue
		case "LUT_3D_SIZE":
			if len(fields) != 2 {
				return nil, fmt.Errorf("line %d: %w: LUT_3D_SIZE", line, ErrInvalidCube)
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil || n < 2 || n > 256 {
				return nil, fmt.Errorf("line %d: %w: size %q", line, ErrInvalidCube, fields[1])
			}
			lut.Size = n
			lut.Data = make([]float64, 0, n*n*n*3)
			continue
		case "LUT_1D_SIZE":
			return nil, fmt.Errorf("line %d: %w: 1D LUTs are not supported", line, ErrInvalidCube)
		case "DOMAIN_MIN":
			v, err := triple(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: DOMAIN_MIN: %w", line, err)
			}
			domainMin = v
			continue
		case "DOMAIN_MAX":
			v, err := triple(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: DOMAIN_MAX: %w", line, err)
			}
			domainMax = v
			continue
		}

		v, err := triple(fields)
		if err != nil {
			// Unknown keywords are skipped.
			if _, numErr := strconv.ParseFloat(fields[0], 64); numErr != nil {
				continue
			}
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if lut.Size == 0 {
			return nil, fmt.Errorf("line %d: %w: data before LUT_3D_SIZE", line, ErrInvalidCube)
		}
		lut.Data = append(lut.Data, v...)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read cube: %w", err)
	}

	if lut.Size == 0 {
		return nil, fmt.Errorf("%w: missing LUT_3D_SIZE", ErrInvalidCube)
	}
	if want := lut.Size * lut.Size * lut.Size * 3; len(lut.Data) != want {
		return nil, fmt.Errorf("%w: expected %d values, got %d", ErrInvalidCube, want, len(lut.Data))
	}

	if domainMin != nil && domainMax != nil {
		for i := range lut.Data {
			ch := i % 3
			span := domainMax[ch] - domainMin[ch]
			if span <= 0 {
				return nil, fmt.Errorf("%w: empty domain", ErrInvalidCube)
			}
			lut.Data[i] = clamp01((lut.Data[i] - domainMin[ch]) / span)
		}
	}
	return lut, nil
}

func triple(fields []string) ([]float64, error) {
	if len(fields) != 3 {
		return nil, fmt.Errorf("%w: expected 3 values, got %d", ErrInvalidCube, len(fields))
	}
	out := make([]float64, 3)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCube, f)
		}
		out[i] = v
	}
	return out, nil
}

func (l *LUT) at(r, g, b int) rgb {
	i := ((b*l.Size+g)*l.Size + r) * 3
	return rgb{l.Data[i], l.Data[i+1], l.Data[i+2]}
}

// Apply maps c through the table with trilinear interpolation.
func (l *LUT) Apply(c rgb) rgb {
	n := float64(l.Size - 1)
	fr, fg, fb := clamp01(c.r)*n, clamp01(c.g)*n, clamp01(c.b)*n
	r0, g0, b0 := int(fr), int(fg), int(fb)
	r1, g1, b1 := min(r0+1, l.Size-1), min(g0+1, l.Size-1), min(b0+1, l.Size-1)
	dr, dg, db := fr-math.Floor(fr), fg-math.Floor(fg), fb-math.Floor(fb)

	c00 := l.at(r0, g0, b0).lerp(l.at(r1, g0, b0), dr)
	c10 := l.at(r0, g1, b0).lerp(l.at(r1, g1, b0), dr)
	c01 := l.at(r0, g0, b1).lerp(l.at(r1, g0, b1), dr)
	c11 := l.at(r0, g1, b1).lerp(l.at(r1, g1, b1), dr)
	return c00.lerp(c10, dg).lerp(c01.lerp(c11, dg), db)
}
