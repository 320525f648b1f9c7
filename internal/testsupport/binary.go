package testsupport

import "encoding/binary"

// buffer is a tiny big-endian byte assembler for fixture construction.
type buffer struct {
	data []byte
}

func (b *buffer) u8(v byte) *buffer {
	b.data = append(b.data, v)
	return b
}

func (b *buffer) u16(v uint16) *buffer {
	b.data = binary.BigEndian.AppendUint16(b.data, v)
	return b
}

func (b *buffer) u32(v uint32) *buffer {
	b.data = binary.BigEndian.AppendUint32(b.data, v)
	return b
}

func (b *buffer) ascii(s string) *buffer {
	b.data = append(b.data, s...)
	return b
}

func (b *buffer) raw(v []byte) *buffer {
	b.data = append(b.data, v...)
	return b
}

func (b *buffer) pad(n int) *buffer {
	b.data = append(b.data, make([]byte, n)...)
	return b
}

func (b *buffer) padTo(offset int) *buffer {
	for len(b.data) < offset {
		b.data = append(b.data, 0)
	}
	return b
}

// StreamSpec describes one elementary stream in a fixture.
type StreamSpec struct {
	CodingType byte
	PID        uint16
	Lang       string
}

// streamAttrs renders the length-prefixed attributes block for a stream.
func streamAttrs(s StreamSpec) []byte {
	var body buffer
	body.u8(s.CodingType)
	lang := s.Lang
	if lang == "" {
		lang = "und"
	}
	switch {
	case s.CodingType == 0x92:
		body.u8(0x01).ascii(lang)
	case isAudio(s.CodingType):
		body.u8(0x31).ascii(lang)
	case isGraphics(s.CodingType):
		body.ascii(lang)
	default: // video and unknown types carry a packed format byte
		body.u8(0x10)
	}
	var out buffer
	out.u8(byte(len(body.data))).raw(body.data)
	return out.data
}

func isAudio(t byte) bool {
	switch t {
	case 0x03, 0x04, 0x80, 0x81, 0x82, 0x83, 0x84, 0x85, 0x86, 0xA1, 0xA2:
		return true
	}
	return false
}

func isGraphics(t byte) bool {
	return t == 0x90 || t == 0x91
}
