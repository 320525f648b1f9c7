package testsupport

import "bdpl/internal/model"

// Ticks converts seconds to 45 kHz ticks.
func Ticks(seconds float64) uint32 {
	return uint32(seconds * 45000)
}

// NewPlayItem builds a minimal play item spanning [startS, endS) seconds.
func NewPlayItem(clipID string, startS, endS float64) model.PlayItem {
	return model.PlayItem{
		ClipID:  clipID,
		M2TS:    clipID + ".m2ts",
		InTime:  Ticks(startS),
		OutTime: Ticks(endS),
		Label:   model.LabelUnknown,
	}
}

// NewPlaylist builds a playlist from play items.
func NewPlaylist(mpls string, items ...model.PlayItem) *model.Playlist {
	return &model.Playlist{MPLS: mpls, Version: "0200", PlayItems: items}
}

// WithStreams returns a copy of the item carrying the given streams.
func WithStreams(pi model.PlayItem, streams ...model.Stream) model.PlayItem {
	pi.Streams = streams
	return pi
}

// AudioStream builds an audio stream with the given PID.
func AudioStream(pid uint16, lang string) model.Stream {
	codec, _ := model.CodecFromCodingType(0x81)
	return model.Stream{PID: pid, CodingType: 0x81, Codec: codec, Lang: lang}
}

// SubtitleStream builds a PGS subtitle stream with the given PID.
func SubtitleStream(pid uint16, lang string) model.Stream {
	codec, _ := model.CodecFromCodingType(0x90)
	return model.Stream{PID: pid, CodingType: 0x90, Codec: codec, Lang: lang}
}

// VideoStream builds an H.264 video stream with the given PID.
func VideoStream(pid uint16) model.Stream {
	codec, _ := model.CodecFromCodingType(0x1B)
	return model.Stream{PID: pid, CodingType: 0x1B, Codec: codec}
}
