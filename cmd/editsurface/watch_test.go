package main

import (
	"strings"
	"testing"

	"github.com/user/editsurface/pkg/ports"
)

func TestTextHistogram_Render(t *testing.T) {
	h := newTextHistogram(4, 2)

	h.Present([]ports.Bar{
		{Channel: ports.ChannelLuminance, X: 0, Height: 2},
		{Channel: ports.ChannelLuminance, X: 2.5, Height: 1.5},
		{Channel: ports.ChannelRed, X: 3, Height: 2},
	})

	want := "█ ▄ \n█ █ "
	if got := h.Render(); got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestTextHistogram_ClearIsBlank(t *testing.T) {
	h := newTextHistogram(3, 2)
	h.Present([]ports.Bar{{Channel: ports.ChannelLuminance, X: 1, Height: 2}})

	h.Clear()

	if got := h.Render(); strings.TrimSpace(got) != "" || strings.Count(got, "\n") != 1 {
		t.Errorf("expected a blank 3x2 chart, got %q", got)
	}
}
