package testsupport

// PlayItemSpec describes one play item of an MPLS fixture.
type PlayItemSpec struct {
	ClipID     string
	InSeconds  float64
	OutSeconds float64
	Streams    []StreamSpec

	// RawBody, when set, replaces the generated item body entirely. The
	// declared item length still matches len(RawBody), so the surrounding
	// playlist stays well-formed while this item is garbage.
	RawBody []byte
}

// MarkSpec describes one PlayListMark entry.
type MarkSpec struct {
	Type    byte
	RefItem int
	Seconds float64
}

// MPLSSpec describes a whole MPLS fixture.
type MPLSSpec struct {
	Version string
	Items   []PlayItemSpec
	Marks   []MarkSpec
}

// BuildMPLS assembles an MPLS buffer in the layout the parser reads.
func BuildMPLS(spec MPLSSpec) []byte {
	version := spec.Version
	if version == "" {
		version = "0200"
	}

	var items buffer
	for _, item := range spec.Items {
		body := playItemBody(item)
		items.u16(uint16(len(body))).raw(body)
	}

	var playlistSection buffer
	playlistSection.u16(0)                       // reserved
	playlistSection.u16(uint16(len(spec.Items))) // number_of_PlayItems
	playlistSection.u16(0)                       // number_of_SubPaths
	playlistSection.raw(items.data)

	var markSection buffer
	markSection.u16(uint16(len(spec.Marks)))
	for _, mark := range spec.Marks {
		markSection.u8(0) // reserved
		markSection.u8(mark.Type)
		markSection.u16(uint16(mark.RefItem))
		markSection.u32(Ticks(mark.Seconds))
		markSection.u16(0) // entry_ES_PID
		markSection.u32(0) // duration
	}

	const playlistStart = 40
	markStart := playlistStart + 4 + len(playlistSection.data)

	var out buffer
	out.ascii("MPLS").ascii(version)
	out.u32(playlistStart)
	out.u32(uint32(markStart))
	out.u32(0) // ExtensionData
	out.padTo(playlistStart)
	out.u32(uint32(len(playlistSection.data)))
	out.raw(playlistSection.data)
	out.u32(uint32(len(markSection.data)))
	out.raw(markSection.data)
	return out.data
}

func playItemBody(item PlayItemSpec) []byte {
	if item.RawBody != nil {
		return item.RawBody
	}
	var body buffer
	body.ascii(item.ClipID)
	body.ascii("M2TS")
	body.u16(0x0001) // connection_condition=1, no multi-angle
	body.u8(0)       // ref_to_STC_id
	body.u32(Ticks(item.InSeconds))
	body.u32(Ticks(item.OutSeconds))
	body.pad(8) // UO_mask_table
	body.u8(0)  // random_access_flag
	body.u8(0)  // still_mode
	body.pad(2)
	body.raw(stnTable(item.Streams))
	return body.data
}

func stnTable(streams []StreamSpec) []byte {
	if len(streams) == 0 {
		var out buffer
		out.u16(0)
		return out.data
	}

	var video, audio, pg, ig int
	for _, s := range streams {
		switch {
		case isAudio(s.CodingType):
			audio++
		case s.CodingType == 0x90 || s.CodingType == 0x92:
			pg++
		case s.CodingType == 0x91:
			ig++
		default:
			video++
		}
	}

	var body buffer
	body.pad(2) // reserved
	body.u8(byte(video)).u8(byte(audio)).u8(byte(pg)).u8(byte(ig))
	body.u8(0).u8(0).u8(0) // secondary audio/video, PiP PG
	body.pad(5)            // reserved
	for _, s := range streams {
		var entry buffer
		entry.u8(0x01).u16(s.PID).pad(6) // type 1: play-item stream entry
		body.u8(byte(len(entry.data))).raw(entry.data)
		body.raw(streamAttrs(s))
	}

	var out buffer
	out.u16(uint16(len(body.data))).raw(body.data)
	return out.data
}
