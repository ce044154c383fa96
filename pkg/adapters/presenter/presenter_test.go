package presenter

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/user/editsurface/pkg/adapters/logger"
	"github.com/user/editsurface/pkg/ports"
)

type sourceFunc func(shared ports.SharedHandle) (image.Image, error)

func (f sourceFunc) Frame(shared ports.SharedHandle) (image.Image, error) { return f(shared) }

func frameOf(c color.Gray) image.Image {
	img := image.NewGray(image.Rect(0, 0, 2, 2))
	for i := range img.Pix {
		img.Pix[i] = c.Y
	}
	return img
}

func TestPresenter_AttachDoesNotPresent(t *testing.T) {
	calls := 0
	p := New(sourceFunc(func(ports.SharedHandle) (image.Image, error) {
		calls++
		return frameOf(color.Gray{1}), nil
	}), logger.NewNoop())

	if err := p.Attach(101); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	if calls != 0 || p.Front() != nil {
		t.Error("expected attach to leave the front buffer alone")
	}
	if p.Attached() != 101 {
		t.Errorf("expected handle 101, got %d", p.Attached())
	}
}

func TestPresenter_AttachZero(t *testing.T) {
	p := New(sourceFunc(nil), logger.NewNoop())

	if err := p.Attach(0); !errors.Is(err, ports.ErrResourceUnavailable) {
		t.Errorf("expected ErrResourceUnavailable, got %v", err)
	}
}

func TestPresenter_Invalidate(t *testing.T) {
	var presented []image.Image
	p := New(sourceFunc(func(shared ports.SharedHandle) (image.Image, error) {
		return frameOf(color.Gray{uint8(shared)}), nil
	}), logger.NewNoop())
	p.OnPresent(func(img image.Image) { presented = append(presented, img) })

	p.Invalidate()
	if p.Presents() != 0 {
		t.Fatal("expected nothing presented while detached")
	}

	if err := p.Attach(7); err != nil {
		t.Fatal(err)
	}
	p.Invalidate()
	p.Invalidate()

	if p.Presents() != 2 || len(presented) != 2 {
		t.Errorf("expected 2 presents, got %d (%d callbacks)", p.Presents(), len(presented))
	}
	if got := p.Front().(*image.Gray).Pix[0]; got != 7 {
		t.Errorf("expected front from handle 7, got %d", got)
	}
}

func TestPresenter_DetachKeepsLastFrame(t *testing.T) {
	p := New(sourceFunc(func(ports.SharedHandle) (image.Image, error) {
		return frameOf(color.Gray{42}), nil
	}), logger.NewNoop())
	if err := p.Attach(1); err != nil {
		t.Fatal(err)
	}
	p.Invalidate()

	p.Detach()
	p.Invalidate()

	if p.Attached() != 0 {
		t.Error("expected detached")
	}
	if p.Front() == nil || p.Front().(*image.Gray).Pix[0] != 42 {
		t.Error("expected the last frame to stay on screen")
	}
	if p.Presents() != 1 {
		t.Errorf("expected 1 present, got %d", p.Presents())
	}
}

func TestPresenter_SourceErrorKeepsFront(t *testing.T) {
	fail := false
	p := New(sourceFunc(func(ports.SharedHandle) (image.Image, error) {
		if fail {
			return nil, errors.New("revoked")
		}
		return frameOf(color.Gray{9}), nil
	}), logger.NewNoop())
	if err := p.Attach(3); err != nil {
		t.Fatal(err)
	}
	p.Invalidate()

	fail = true
	p.Invalidate()

	if p.Presents() != 1 || p.Front().(*image.Gray).Pix[0] != 9 {
		t.Error("expected a failed present to keep the previous frame")
	}
}
