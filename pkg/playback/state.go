package playback

import (
	"fmt"

	"github.com/user/editsurface/pkg/ports"
)

// Kind tags the loaded media.
type Kind int

const (
	KindEmpty Kind = iota
	KindImage
	KindVideo
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	default:
		return "empty"
	}
}

// VideoState is the variant data of an open video.
type VideoState struct {
	Metadata         ports.VideoMetadata
	CurrentFrame     int64
	CurrentTimestamp int64
	Playing          bool
}

// MediaState is the single live description of what the surface shows.
type MediaState struct {
	Kind  Kind
	Path  string
	Video *VideoState
}

func (s MediaState) clone() MediaState {
	if s.Video != nil {
		v := *s.Video
		s.Video = &v
	}
	return s
}

// Snapshot is the media part of a resize session.
type Snapshot struct {
	Kind      Kind
	Path      string
	Playing   bool
	Frame     int64
	Timestamp int64
}

// Progress is what the transport bar displays.
type Progress struct {
	Percent   float64
	TimeText  string
	Timestamp int64
	Frame     int64
}

// FormatTime renders "mm:ss / mm:ss" for a position and a duration in microseconds.
func FormatTime(positionMicros, durationMicros int64) string {
	return clock(positionMicros) + " / " + clock(durationMicros)
}

func clock(micros int64) string {
	if micros < 0 {
		micros = 0
	}
	total := micros / 1_000_000
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// percent returns position/duration*100 clamped to [0, 100].
func percent(positionMicros, durationMicros int64) float64 {
	if durationMicros <= 0 {
		return 0
	}
	p := float64(positionMicros) / float64(durationMicros) * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
