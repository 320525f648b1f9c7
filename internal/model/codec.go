package model

// Codec identifies the elementary-stream format carried by a PID.
type Codec string

const (
	CodecMPEG1Video Codec = "MPEG-1 Video"
	CodecMPEG2Video Codec = "MPEG-2 Video"
	CodecH264       Codec = "H.264/AVC"
	CodecHEVC       Codec = "HEVC"
	CodecVC1        Codec = "VC-1"
	CodecMPEG1Audio Codec = "MPEG-1 Audio"
	CodecMPEG2Audio Codec = "MPEG-2 Audio"
	CodecLPCM       Codec = "LPCM"
	CodecAC3        Codec = "AC-3"
	CodecDTS        Codec = "DTS"
	CodecTrueHD     Codec = "TrueHD"
	CodecEAC3       Codec = "E-AC-3"
	CodecDTSHDHR    Codec = "DTS-HD HR"
	CodecDTSHDMA    Codec = "DTS-HD MA"
	CodecEAC3Sec    Codec = "DD+ Secondary"
	CodecDTSHDSec   Codec = "DTS-HD Secondary"
	CodecPGS        Codec = "PGS"
	CodecIG         Codec = "IG"
	CodecTextSub    Codec = "Text Subtitle"
	CodecUnknown    Codec = "UNKNOWN"
)

var codingTypes = map[byte]Codec{
	0x01: CodecMPEG1Video,
	0x02: CodecMPEG2Video,
	0x1B: CodecH264,
	0x24: CodecHEVC,
	0xEA: CodecVC1,
	0x03: CodecMPEG1Audio,
	0x04: CodecMPEG2Audio,
	0x80: CodecLPCM,
	0x81: CodecAC3,
	0x82: CodecDTS,
	0x83: CodecTrueHD,
	0x84: CodecEAC3,
	0x85: CodecDTSHDHR,
	0x86: CodecDTSHDMA,
	0xA1: CodecEAC3Sec,
	0xA2: CodecDTSHDSec,
	0x90: CodecPGS,
	0x91: CodecIG,
	0x92: CodecTextSub,
}

// CodecFromCodingType maps a raw stream_coding_type byte to a Codec. Unknown
// coding types map to CodecUnknown with ok=false; they never fail a parse.
func CodecFromCodingType(raw byte) (Codec, bool) {
	if c, ok := codingTypes[raw]; ok {
		return c, true
	}
	return CodecUnknown, false
}

// IsVideoCodingType reports whether raw is a primary or secondary video type.
func IsVideoCodingType(raw byte) bool {
	switch raw {
	case 0x01, 0x02, 0x1B, 0x24, 0xEA:
		return true
	}
	return false
}

// IsAudioCodingType reports whether raw is an audio stream type.
func IsAudioCodingType(raw byte) bool {
	switch raw {
	case 0x03, 0x04, 0x80, 0x81, 0x82, 0x83, 0x84, 0x85, 0x86, 0xA1, 0xA2:
		return true
	}
	return false
}

// IsGraphicsCodingType reports whether raw is a PG, IG, or text subtitle type.
func IsGraphicsCodingType(raw byte) bool {
	switch raw {
	case 0x90, 0x91, 0x92:
		return true
	}
	return false
}

// IsSubtitleCodingType reports whether raw carries subtitles (PG or text).
func IsSubtitleCodingType(raw byte) bool {
	return raw == 0x90 || raw == 0x92
}
