package testsupport

// CommandSpec is one raw 12-byte navigation command for fixtures.
type CommandSpec struct {
	B0, B1   byte
	Operand1 uint32
	Operand2 uint32
}

func (c CommandSpec) encode() []byte {
	var out buffer
	out.u8(c.B0).u8(c.B1).pad(2)
	out.u32(c.Operand1).u32(c.Operand2)
	return out.data
}

// PlayPLCommand plays a playlist by number.
func PlayPLCommand(playlist int) CommandSpec {
	return CommandSpec{B0: 0x02, B1: 0x80, Operand1: uint32(playlist)}
}

// PlayPLAtMarkCommand plays a playlist from a given playlist mark.
func PlayPLAtMarkCommand(playlist, mark int) CommandSpec {
	return CommandSpec{B0: 0x02, B1: 0xC2, Operand1: uint32(playlist), Operand2: uint32(mark)}
}

// PlayPLAtChapterCommand plays a playlist from a given chapter index.
func PlayPLAtChapterCommand(playlist, chapter int) CommandSpec {
	return CommandSpec{B0: 0x02, B1: 0xC1, Operand1: uint32(playlist), Operand2: uint32(chapter)}
}

// JumpTitleCommand jumps to a title.
func JumpTitleCommand(title int) CommandSpec {
	return CommandSpec{B0: 0x01, B1: 0x81, Operand1: uint32(title)}
}

// SetRegisterCommand assigns an immediate value to a GPR.
func SetRegisterCommand(register, value uint32) CommandSpec {
	return CommandSpec{B0: 0x10, B1: 0x41, Operand1: register, Operand2: value}
}

// UnknownCommand uses the reserved instruction group.
func UnknownCommand() CommandSpec {
	return CommandSpec{B0: 0x1F, B1: 0x0F}
}

// BuildMovieObject assembles a MovieObject.bdmv buffer; each element of
// objects becomes one movie object holding those commands.
func BuildMovieObject(objects ...[]CommandSpec) []byte {
	var section buffer
	section.u32(0) // reserved
	section.u16(uint16(len(objects)))
	for _, commands := range objects {
		section.u8(0x80) // resume_intention
		section.u8(0)    // reserved
		section.u16(uint16(len(commands)))
		for _, cmd := range commands {
			section.raw(cmd.encode())
		}
	}

	var out buffer
	out.ascii("MOBJ").ascii("0200")
	out.padTo(40)
	out.u32(uint32(len(section.data)))
	out.raw(section.data)
	return out.data
}

// IndexTitleSpec is one title entry for an index.bdmv fixture.
type IndexTitleSpec struct {
	MovieObjectID int
}

// BuildIndex assembles an index.bdmv buffer with HDMV First Playback and Top
// Menu entries plus the given titles.
func BuildIndex(firstPlayObj, topMenuObj int, titles ...IndexTitleSpec) []byte {
	hdmvEntry := func(objID int) []byte {
		var e buffer
		e.u8(0x40) // object_type=HDMV
		e.pad(3)
		e.u16(0) // hdmv_playback_type
		e.u16(uint16(objID))
		e.pad(4)
		return e.data
	}

	var section buffer
	section.raw(hdmvEntry(firstPlayObj))
	section.raw(hdmvEntry(topMenuObj))
	section.u16(uint16(len(titles)))
	for _, t := range titles {
		section.raw(hdmvEntry(t.MovieObjectID))
	}

	const indexesStart = 40
	var out buffer
	out.ascii("INDX").ascii("0200")
	out.u32(indexesStart)
	out.u32(0) // ExtensionData
	out.padTo(indexesStart)
	out.u32(uint32(len(section.data)))
	out.raw(section.data)
	return out.data
}
