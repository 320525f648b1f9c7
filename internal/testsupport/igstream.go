package testsupport

// IGButtonSpec is one menu button with its navigation commands.
type IGButtonSpec struct {
	ButtonID int
	Commands []CommandSpec
}

// IGPageSpec is one page of an interactive menu.
type IGPageSpec struct {
	PageID  int
	Buttons []IGButtonSpec
}

// BuildICSBody renders an Interactive Composition Segment body (the bytes
// after the 3-byte segment header).
func BuildICSBody(pages ...IGPageSpec) []byte {
	var body buffer
	body.u16(1920).u16(1080).u8(0x10) // video_descriptor
	body.pad(4)                       // composition + sequence descriptors
	body.pad(3)                       // interactive_composition_data_length
	body.u8(0x80)                     // stream_model=1: no composition PTS block
	body.pad(3)                       // user_timeout_duration
	body.u8(byte(len(pages)))
	for _, page := range pages {
		body.u8(byte(page.PageID))
		body.u8(0)  // page_version
		body.pad(8) // UO mask table
		for i := 0; i < 2; i++ {
			body.u8(0) // effect windows
			body.u8(0) // effects
		}
		body.u8(0)          // animation_frame_rate_code
		body.u16(0).u16(0)  // default selected / activated button
		body.u8(0)          // palette_id_ref
		body.u8(1)          // number_of_BOGs
		body.u16(0)         // bog default_valid_button
		body.u8(byte(len(page.Buttons)))
		for _, btn := range page.Buttons {
			body.u16(uint16(btn.ButtonID))
			body.u16(0)        // numeric_select_value
			body.u8(0)         // flags
			body.u16(0).u16(0) // x, y
			body.pad(8)        // neighbor buttons
			body.pad(5)        // normal state
			body.pad(6)        // selected state
			body.pad(5)        // activated state
			body.u16(uint16(len(btn.Commands)))
			for _, cmd := range btn.Commands {
				body.raw(cmd.encode())
			}
		}
	}
	return body.data
}

// BuildIGStream wraps an ICS body into PES payload and packs it into
// 192-byte m2ts transport packets on the given IG PID.
func BuildIGStream(pid uint16, icsBody []byte) []byte {
	var segment buffer
	segment.u8(0x18) // ICS segment type
	segment.u16(uint16(len(icsBody)))
	segment.raw(icsBody)

	var pes buffer
	pes.raw([]byte{0x00, 0x00, 0x01, 0xBD}) // PES start code + private stream id
	pes.u16(uint16(len(segment.data) + 3))  // PES packet length
	pes.u8(0x80).u8(0x00)                   // flags
	pes.u8(0)                               // PES_header_data_length
	pes.raw(segment.data)

	var out buffer
	payload := pes.data
	first := true
	for len(payload) > 0 {
		out.pad(4) // TP_extra_header
		out.u8(0x47)
		flags := pid
		if first {
			flags |= 0x4000 // payload_unit_start_indicator
		}
		out.u16(flags)
		out.u8(0x10) // payload only
		chunk := payload
		if len(chunk) > 184 {
			chunk = chunk[:184]
		}
		out.raw(chunk)
		payload = payload[len(chunk):]
		for len(out.data)%192 != 0 {
			out.u8(0xFF)
		}
		first = false
	}
	return out.data
}
