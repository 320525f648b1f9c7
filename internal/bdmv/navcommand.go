package bdmv

import (
	"encoding/binary"
	"fmt"
)

// NavCommandSize is the fixed encoding size of one HDMV navigation command.
const NavCommandSize = 12

// Navigation command bit layout (12 bytes per command):
//
//	byte 0:  [operand_count(3)][group(2)][sub_group(3)]
//	byte 1:  [imm_op1(1)][imm_op2(1)][reserved(2)][op_code(4)]
//	bytes 2-3:   reserved / additional flags
//	bytes 4-7:   operand1 (big-endian u32)
//	bytes 8-11:  operand2 (big-endian u32)
//
// Branch group (group=0):
//
//	sub_group=0 Goto: 0=nop, 1=goto, 2=break
//	sub_group=1 Jump: 0=jump_object, 1=jump_title, 2=call_object, 3=call_title, 4=resume
//	sub_group=2 Play: 0=play_pl, 1=play_pl_pi, 2=play_pl_pm, 5=play_pl_still, 6=link_pi, 7=link_mk
const (
	navGroupBranch  = 0
	navGroupCompare = 1
	navGroupSet     = 2

	navSubJump = 1
	navSubPlay = 2
)

// NavCommand is a single decoded HDMV navigation instruction.
type NavCommand struct {
	Raw      [NavCommandSize]byte
	Group    byte
	SubGroup byte
	OpCode   byte
	ImmOp1   bool
	ImmOp2   bool
	Operand1 uint32
	Operand2 uint32
}

// DecodeNavCommand decodes one 12-byte instruction record.
func DecodeNavCommand(raw []byte) (NavCommand, error) {
	var cmd NavCommand
	if len(raw) != NavCommandSize {
		return cmd, fmt.Errorf("nav command is %d bytes, want %d", len(raw), NavCommandSize)
	}
	copy(cmd.Raw[:], raw)
	cmd.Group = (raw[0] >> 3) & 0x03
	cmd.SubGroup = raw[0] & 0x07
	cmd.ImmOp1 = (raw[1]>>7)&1 == 1
	cmd.ImmOp2 = (raw[1]>>6)&1 == 1
	cmd.OpCode = raw[1] & 0x0F
	cmd.Operand1 = binary.BigEndian.Uint32(raw[4:8])
	cmd.Operand2 = binary.BigEndian.Uint32(raw[8:12])
	return cmd, nil
}

// IsPlayPlaylist reports whether this is a PlayPL, PlayPL_PI, or PlayPL_PM
// command from the branch play sub-group.
func (c NavCommand) IsPlayPlaylist() bool {
	return c.Group == navGroupBranch && c.SubGroup == navSubPlay && c.OpCode <= 2
}

// IsPlayAtChapter reports a PlayPL_PI command (play from a chapter index).
func (c NavCommand) IsPlayAtChapter() bool {
	return c.Group == navGroupBranch && c.SubGroup == navSubPlay && c.OpCode == 1
}

// IsPlayAtMark reports a PlayPL_PM command (play from a playlist mark).
func (c NavCommand) IsPlayAtMark() bool {
	return c.Group == navGroupBranch && c.SubGroup == navSubPlay && c.OpCode == 2
}

// IsJumpTitle reports a JumpTitle command.
func (c NavCommand) IsJumpTitle() bool {
	return c.Group == navGroupBranch && c.SubGroup == navSubJump && c.OpCode == 1
}

// IsSetRegister reports a SET/MOV register assignment.
func (c NavCommand) IsSetRegister() bool {
	return c.Group == navGroupSet && c.SubGroup == 0
}

// IsKnown reports whether the group encodes a defined command family.
// Group 3 is reserved in the instruction set.
func (c NavCommand) IsKnown() bool {
	return c.Group <= navGroupSet
}

// PlaylistNumber returns the playlist number referenced by a play command.
func (c NavCommand) PlaylistNumber() (int, bool) {
	if !c.IsPlayPlaylist() {
		return 0, false
	}
	return int(c.Operand1), true
}

// PlaylistStem renders a playlist number as its zero-padded five-digit
// filename stem, e.g. 2 -> "00002".
func PlaylistStem(number int) string {
	return fmt.Sprintf("%05d", number)
}
