package mp4probe

import (
	"fmt"
	"io"

	"github.com/Eyevinn/mp4ff/av1"
	"github.com/Eyevinn/mp4ff/mp4"
)

// ClipOptions describes a placeholder clip.
type ClipOptions struct {
	Width     int
	Height    int
	FPS       int
	Frames    int
	WithAudio bool
}

// WriteClip writes a fragmented MP4 with an av01 video track. Each sample
// carries its big-endian frame index instead of coded picture data.
func WriteClip(w io.Writer, opts ClipOptions) error {
	if opts.Width < 1 || opts.Height < 1 || opts.FPS < 1 || opts.Frames < 1 {
		return fmt.Errorf("write clip: invalid options %+v", opts)
	}
	timescale := uint32(opts.FPS * 1000)
	trackID := uint32(1)

	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(timescale, "video", "en")
	trak := init.Moov.Trak

	av1C := &mp4.Av1CBox{
		CodecConfRec: av1.CodecConfRec{
			Version:            1,
			SeqLevelIdx0:       8,
			ChromaSubsamplingX: 1,
			ChromaSubsamplingY: 1,
		},
	}
	trak.Mdia.Minf.Stbl.Stsd.AddChild(mp4.CreateVisualSampleEntryBox("av01", uint16(opts.Width), uint16(opts.Height), av1C))
	trak.Tkhd.Width = mp4.Fixed32(opts.Width << 16)
	trak.Tkhd.Height = mp4.Fixed32(opts.Height << 16)

	if opts.WithAudio {
		init.AddEmptyTrack(48000, "audio", "en")
	}

	frag, err := mp4.CreateFragment(1, trackID)
	if err != nil {
		return fmt.Errorf("create fragment: %w", err)
	}
	dur := timescale / uint32(opts.FPS)
	for i := 0; i < opts.Frames; i++ {
		flags := mp4.NonSyncSampleFlags
		if i%opts.FPS == 0 {
			flags = mp4.SyncSampleFlags
		}
		data := []byte{byte(i >> 24), byte(i >> 16), byte(i >> 8), byte(i)}
		frag.AddFullSample(mp4.FullSample{
			Sample: mp4.Sample{
				Flags: flags,
				Size:  uint32(len(data)),
				Dur:   dur,
			},
			DecodeTime: uint64(i) * uint64(dur),
			Data:       data,
		})
	}

	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso2", "av01", "mp41"})
	if err := ftyp.Encode(w); err != nil {
		return fmt.Errorf("encode ftyp: %w", err)
	}
	if err := init.Moov.Encode(w); err != nil {
		return fmt.Errorf("encode moov: %w", err)
	}
	if err := frag.Encode(w); err != nil {
		return fmt.Errorf("encode fragment: %w", err)
	}
	return nil
}
