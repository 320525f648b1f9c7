package testsupport

// BuildCLPI assembles a CLPI buffer whose ProgramInfo section carries the
// given streams in one program.
func BuildCLPI(streams []StreamSpec) []byte {
	var program buffer
	program.u8(0) // reserved
	program.u8(1) // number_of_program_sequences
	program.u32(0)                      // SPN_program_sequence_start
	program.u16(0x0100)                 // program_map_PID
	program.u8(byte(len(streams)))      // number_of_streams_in_ps
	program.u8(0)                       // number_of_groups
	for _, s := range streams {
		program.u16(s.PID)
		program.raw(streamAttrs(s))
	}

	const programInfoStart = 40
	var out buffer
	out.ascii("HDMV").ascii("0200")
	out.u32(0)                       // SequenceInfo
	out.u32(programInfoStart)        // ProgramInfo
	out.u32(0).u32(0).u32(0)         // CPI, ClipMark, ExtensionData
	out.padTo(programInfoStart)
	out.u32(uint32(len(program.data)))
	out.raw(program.data)
	return out.data
}
