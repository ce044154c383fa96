// Package mp4probe reads video metadata from MP4 and QuickTime containers.
package mp4probe

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/user/editsurface/pkg/ports"
)

// ErrNoVideoTrack is returned for containers without a video track.
var ErrNoVideoTrack = errors.New("no video track found")

// Codec names the video codec of the first video track.
type Codec string

const (
	CodecH264    Codec = "h264"
	CodecHEVC    Codec = "hevc"
	CodecAV1     Codec = "av1"
	CodecUnknown Codec = "unknown"
)

// Info is the metadata of a probed file.
type Info struct {
	Width          int
	Height         int
	Timescale      uint32
	TotalFrames    int64
	DurationMicros int64
	FrameRate      float64
	HasAudio       bool
	Fragmented     bool
	Codec          Codec
	Format         ports.VideoFormat
}

// Metadata converts Info to the backend's metadata record.
func (i Info) Metadata() ports.VideoMetadata {
	return ports.VideoMetadata{
		Width:          i.Width,
		Height:         i.Height,
		FrameRate:      i.FrameRate,
		TotalFrames:    i.TotalFrames,
		DurationMicros: i.DurationMicros,
		HasAudio:       i.HasAudio,
		Format:         i.Format,
	}
}

// FormatFromPath maps a file extension to a container format.
func FormatFromPath(path string) ports.VideoFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".m4v":
		return ports.VideoFormatMP4
	case ".mov":
		return ports.VideoFormatMOV
	case ".avi":
		return ports.VideoFormatAVI
	case ".mkv":
		return ports.VideoFormatMKV
	default:
		return ports.VideoFormatUnknown
	}
}

// ProbeFile probes the video at path.
func ProbeFile(path string) (Info, error) {
	switch FormatFromPath(path) {
	case ports.VideoFormatAVI, ports.VideoFormatMKV:
		return Info{}, fmt.Errorf("probe %s: %w", filepath.Base(path), ports.ErrUnsupportedFormat)
	}

	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	info, err := ProbeReader(f)
	if err != nil {
		return Info{}, err
	}
	if format := FormatFromPath(path); format != ports.VideoFormatUnknown {
		info.Format = format
	}
	return info, nil
}

// ProbeBytes probes an in-memory MP4.
func ProbeBytes(data []byte) (Info, error) {
	return ProbeReader(bytes.NewReader(data))
}

// ProbeReader probes an MP4 from r and rewinds it afterwards.
func ProbeReader(r io.ReadSeeker) (Info, error) {
	file, err := mp4.DecodeFile(r)
	if err != nil {
		return Info{}, fmt.Errorf("decode mp4: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return Info{}, fmt.Errorf("seek: %w", err)
	}
	return probe(file)
}

func probe(file *mp4.File) (Info, error) {
	moov := file.Moov
	if file.IsFragmented() && file.Init != nil && file.Init.Moov != nil {
		moov = file.Init.Moov
	}
	if moov == nil {
		return Info{}, ErrNoVideoTrack
	}

	info := Info{Format: ports.VideoFormatMP4, Fragmented: file.IsFragmented()}
	if file.Ftyp != nil && file.Ftyp.MajorBrand() == "qt  " {
		info.Format = ports.VideoFormatMOV
	}

	var video *mp4.TrakBox
	for _, trak := range moov.Traks {
		if trak.Mdia == nil || trak.Mdia.Hdlr == nil {
			continue
		}
		switch trak.Mdia.Hdlr.HandlerType {
		case "vide":
			if video == nil {
				video = trak
			}
		case "soun":
			info.HasAudio = true
		}
	}
	if video == nil {
		return Info{}, ErrNoVideoTrack
	}

	info.Timescale = 1000
	if video.Mdia.Mdhd != nil && video.Mdia.Mdhd.Timescale > 0 {
		info.Timescale = video.Mdia.Mdhd.Timescale
	}
	info.Codec = trackCodec(video)
	info.Width, info.Height = trackSize(video)

	var ticks uint64
	if info.Fragmented {
		frames, t, err := fragmentedSamples(file, moov, video.Tkhd.TrackID)
		if err != nil {
			return Info{}, err
		}
		info.TotalFrames, ticks = frames, t
	} else {
		info.TotalFrames, ticks = progressiveSamples(video)
	}
	info.DurationMicros = int64(ticks * 1_000_000 / uint64(info.Timescale))

	if info.DurationMicros > 0 && info.TotalFrames > 0 {
		info.FrameRate = float64(info.TotalFrames) * 1e6 / float64(info.DurationMicros)
	}
	return info, nil
}

func trackCodec(trak *mp4.TrakBox) Codec {
	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return CodecUnknown
	}
	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		switch child.Type() {
		case "avc1", "avc3":
			return CodecH264
		case "hvc1", "hev1":
			return CodecHEVC
		case "av01":
			return CodecAV1
		}
	}
	return CodecUnknown
}

// trackSize prefers the track header and falls back to the sample entry.
func trackSize(trak *mp4.TrakBox) (int, int) {
	if trak.Tkhd != nil {
		w, h := int(trak.Tkhd.Width>>16), int(trak.Tkhd.Height>>16)
		if w > 0 && h > 0 {
			return w, h
		}
	}
	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return 0, 0
	}
	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		if vse, ok := child.(*mp4.VisualSampleEntryBox); ok {
			return int(vse.Width), int(vse.Height)
		}
	}
	return 0, 0
}

func fragmentedSamples(file *mp4.File, moov *mp4.MoovBox, trackID uint32) (int64, uint64, error) {
	var trex *mp4.TrexBox
	if moov.Mvex != nil {
		for _, t := range moov.Mvex.Trexs {
			if t.TrackID == trackID {
				trex = t
				break
			}
		}
	}

	var frames int64
	var ticks uint64
	for _, seg := range file.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil {
				continue
			}
			for _, traf := range frag.Moof.Trafs {
				if traf.Tfhd.TrackID != trackID {
					continue
				}
				samples, err := frag.GetFullSamples(trex)
				if err != nil {
					return 0, 0, fmt.Errorf("get samples: %w", err)
				}
				for _, s := range samples {
					frames++
					ticks += uint64(s.Dur)
				}
			}
		}
	}
	return frames, ticks, nil
}

func progressiveSamples(trak *mp4.TrakBox) (int64, uint64) {
	var ticks uint64
	if trak.Mdia.Mdhd != nil {
		ticks = trak.Mdia.Mdhd.Duration
	}
	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsz == nil {
		return 0, ticks
	}
	return int64(trak.Mdia.Minf.Stbl.Stsz.SampleNumber), ticks
}
