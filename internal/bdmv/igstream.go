package bdmv

import (
	"fmt"
	"sort"

	"bdpl/internal/model"
)

// IG stream PIDs per BD-ROM: 0x1400-0x141F.
const (
	igPIDMin = 0x1400
	igPIDMax = 0x141F
)

const (
	tsPacketSize   = 188
	m2tsPacketSize = 192 // 4-byte TP_extra_header + TS packet
	tsSyncByte     = 0x47

	segTypeICS = 0x18 // Interactive Composition Segment

	// DefaultIGPacketLimit bounds the transport-packet scan per file so a
	// malformed stream cannot make the scan quadratic.
	DefaultIGPacketLimit = 200000
)

// IGTargetKind names what an IG button action does.
type IGTargetKind string

const (
	TargetPlayPL          IGTargetKind = "PlayPL"
	TargetPlayPLAtMark    IGTargetKind = "PlayPLAtMark"
	TargetPlayPLAtChapter IGTargetKind = "PlayPLAtChapter"
	TargetSetRegister     IGTargetKind = "SetRegister"
	TargetJumpTitle       IGTargetKind = "JumpTitle"
	TargetOther           IGTargetKind = "other"
)

// IGButtonAction is one actionable navigation command found on a menu button.
type IGButtonAction struct {
	PageID   int
	ButtonID int
	Kind     IGTargetKind
	Playlist int // playlist number for play kinds, -1 otherwise
	Mark     int // mark / chapter index, -1 when absent
	Title    int // target title for JumpTitle, -1 otherwise
	Register uint32
	Value    uint32
}

// MenuScan is the result of scanning one candidate menu stream.
type MenuScan struct {
	Source       string
	PID          int
	Actions      []IGButtonAction
	ChapterMarks []int
	Truncated    bool
}

// ScanIGStream scans a menu transport stream for Interactive Composition
// Segments and extracts button navigation commands. It is defensive end to
// end: packets that cannot be demultiplexed are dropped without a warning,
// malformed segments are skipped with a warning, and the scan stops after
// packetLimit transport packets. It never fails the pipeline.
func ScanIGStream(source string, data []byte, packetLimit int) (*MenuScan, []model.Warning) {
	if packetLimit <= 0 {
		packetLimit = DefaultIGPacketLimit
	}
	scan := &MenuScan{Source: source, PID: -1}
	var warnings []model.Warning

	pesData, pid, truncated := demuxIGPayload(data, packetLimit)
	scan.PID = pid
	if truncated {
		scan.Truncated = true
		warnings = append(warnings, model.NewWarning(model.WarnIGScanTruncated,
			fmt.Sprintf("%s: IG scan stopped after %d transport packets", source, packetLimit),
			"file", source))
	}
	if len(pesData) == 0 {
		return scan, warnings
	}

	unknownOpcodes := 0
	markSet := make(map[int]struct{})

	for _, body := range extractSegments(pesData, segTypeICS) {
		actions, unknown, err := parseICS(body)
		if err != nil {
			warnings = append(warnings, model.NewWarning(model.WarnMalformedSection,
				fmt.Sprintf("%s: skipped malformed ICS segment: %v", source, err),
				"file", source))
		}
		unknownOpcodes += unknown
		for _, a := range actions {
			scan.Actions = append(scan.Actions, a)
			if a.Mark >= 0 {
				markSet[a.Mark] = struct{}{}
			}
		}
	}

	if unknownOpcodes > 0 {
		warnings = append(warnings, model.NewWarning(model.WarnUnknownOpcode,
			fmt.Sprintf("%s: %d IG button command(s) with unknown opcode group", source, unknownOpcodes),
			"file", source))
	}

	for mark := range markSet {
		scan.ChapterMarks = append(scan.ChapterMarks, mark)
	}
	sort.Ints(scan.ChapterMarks)
	return scan, warnings
}

// demuxIGPayload walks transport packets, auto-detecting 192-byte m2ts
// framing versus plain 188-byte packets, and concatenates the PES payloads of
// the first PID found in the IG range.
func demuxIGPayload(data []byte, packetLimit int) (payload []byte, foundPID int, truncated bool) {
	stride, skip := detectPacketFraming(data)
	if stride == 0 {
		return nil, -1, false
	}

	foundPID = -1
	packets := 0
	for pos := 0; pos+stride <= len(data); pos += stride {
		if packets >= packetLimit {
			truncated = true
			break
		}
		packets++

		ts := data[pos+skip : pos+stride]
		if ts[0] != tsSyncByte {
			continue
		}
		pid := int(ts[1]&0x1F)<<8 | int(ts[2])
		if foundPID == -1 && pid >= igPIDMin && pid <= igPIDMax {
			foundPID = pid
		}
		if pid != foundPID || foundPID == -1 {
			continue
		}

		pusi := ts[1]&0x40 != 0
		adapt := (ts[3] >> 4) & 0x03
		offset := 4
		if adapt == 2 || adapt == 3 {
			offset = 5 + int(ts[4])
		}
		if adapt == 2 || offset >= len(ts) {
			continue
		}
		body := ts[offset:]
		if pusi {
			// Strip the PES header: start code + stream id + length +
			// flags + header data.
			if len(body) < 9 || body[0] != 0 || body[1] != 0 || body[2] != 1 {
				continue
			}
			headerEnd := 9 + int(body[8])
			if headerEnd > len(body) {
				continue
			}
			payload = append(payload, body[headerEnd:]...)
		} else {
			payload = append(payload, body...)
		}
	}
	return payload, foundPID, truncated
}

// detectPacketFraming probes sync bytes to choose between m2ts 192-byte
// packets (with a 4-byte TP_extra_header) and bare 188-byte TS packets.
func detectPacketFraming(data []byte) (stride, skip int) {
	if len(data) >= 2*m2tsPacketSize && data[4] == tsSyncByte && data[4+m2tsPacketSize] == tsSyncByte {
		return m2tsPacketSize, 4
	}
	if len(data) >= 2*tsPacketSize && data[0] == tsSyncByte && data[tsPacketSize] == tsSyncByte {
		return tsPacketSize, 0
	}
	if len(data) >= m2tsPacketSize && data[4] == tsSyncByte {
		return m2tsPacketSize, 4
	}
	if len(data) >= tsPacketSize && data[0] == tsSyncByte {
		return tsPacketSize, 0
	}
	return 0, 0
}

// extractSegments walks the concatenated PES payload and returns the bodies
// of all segments of the wanted type. Each segment is a type byte followed by
// a 16-bit length.
func extractSegments(pesData []byte, wantType byte) [][]byte {
	var bodies [][]byte
	pos := 0
	for pos+3 <= len(pesData) {
		segType := pesData[pos]
		segLen := int(pesData[pos+1])<<8 | int(pesData[pos+2])
		end := pos + 3 + segLen
		if end > len(pesData) {
			break
		}
		if segType == wantType {
			bodies = append(bodies, pesData[pos+3:end:end])
		}
		if segLen == 0 {
			break
		}
		pos = end
	}
	return bodies
}

// parseICS decodes an Interactive Composition Segment body: pages containing
// button-overlap groups containing buttons, each with a navigation command
// list. Returns the actionable commands found plus a count of commands whose
// opcode group is unknown.
func parseICS(body []byte) ([]IGButtonAction, int, error) {
	r := NewReader(body)

	// video_descriptor(5) + composition_descriptor(3) + sequence_descriptor(1)
	if err := r.Skip(9); err != nil {
		return nil, 0, err
	}
	// interactive_composition_data_length (24 bits)
	if err := r.Skip(3); err != nil {
		return nil, 0, err
	}
	modelByte, err := r.U8()
	if err != nil {
		return nil, 0, err
	}
	streamModel := (modelByte >> 7) & 1
	if streamModel == 0 {
		// composition_timeout_PTS + selection_timeout_PTS
		if err := r.Skip(10); err != nil {
			return nil, 0, err
		}
	}
	if err := r.Skip(3); err != nil { // user_timeout_duration
		return nil, 0, err
	}

	numPages, err := r.U8()
	if err != nil {
		return nil, 0, err
	}

	var actions []IGButtonAction
	unknownOpcodes := 0

	for p := 0; p < int(numPages); p++ {
		pageID, err := r.U8()
		if err != nil {
			return actions, unknownOpcodes, err
		}
		if err := r.Skip(9); err != nil { // page_version + UO mask table
			return actions, unknownOpcodes, err
		}
		for e := 0; e < 2; e++ { // in_effects, out_effects
			if err := skipEffectSequence(r); err != nil {
				return actions, unknownOpcodes, err
			}
		}
		// animation_frame_rate_code + default_selected + default_activated +
		// palette_id_ref
		if err := r.Skip(6); err != nil {
			return actions, unknownOpcodes, err
		}
		numBOGs, err := r.U8()
		if err != nil {
			return actions, unknownOpcodes, err
		}
		for b := 0; b < int(numBOGs); b++ {
			if err := r.Skip(2); err != nil { // default_valid_button
				return actions, unknownOpcodes, err
			}
			numButtons, err := r.U8()
			if err != nil {
				return actions, unknownOpcodes, err
			}
			for btn := 0; btn < int(numButtons); btn++ {
				buttonActions, unknown, err := parseICSButton(r, int(pageID))
				unknownOpcodes += unknown
				actions = append(actions, buttonActions...)
				if err != nil {
					return actions, unknownOpcodes, err
				}
			}
		}
	}
	return actions, unknownOpcodes, nil
}

func skipEffectSequence(r *Reader) error {
	numWindows, err := r.U8()
	if err != nil {
		return err
	}
	if err := r.Skip(int(numWindows) * 9); err != nil {
		return err
	}
	numEffects, err := r.U8()
	if err != nil {
		return err
	}
	for i := 0; i < int(numEffects); i++ {
		if err := r.Skip(4); err != nil { // duration(24) + palette_id_ref
			return err
		}
		numObjects, err := r.U8()
		if err != nil {
			return err
		}
		for o := 0; o < int(numObjects); o++ {
			if err := r.Skip(3); err != nil { // object_id + window_id
				return err
			}
			flags, err := r.U8()
			if err != nil {
				return err
			}
			if err := r.Skip(4); err != nil { // x, y
				return err
			}
			if (flags>>7)&1 == 1 { // cropped: rectangle follows
				if err := r.Skip(8); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func parseICSButton(r *Reader, pageID int) ([]IGButtonAction, int, error) {
	buttonID, err := r.U16()
	if err != nil {
		return nil, 0, err
	}
	// numeric_select_value(2) + flags(1) + x(2) + y(2) + neighbors(8)
	if err := r.Skip(15); err != nil {
		return nil, 0, err
	}
	// Button state blocks: normal(5) + selected(6) + activated(5).
	if err := r.Skip(16); err != nil {
		return nil, 0, err
	}

	numCommands, err := r.U16()
	if err != nil {
		return nil, 0, err
	}
	var commands []NavCommand
	unknownOpcodes := 0
	for c := 0; c < int(numCommands); c++ {
		raw, err := r.Bytes(NavCommandSize)
		if err != nil {
			return nil, unknownOpcodes, err
		}
		cmd, err := DecodeNavCommand(raw)
		if err != nil {
			continue
		}
		if !cmd.IsKnown() {
			unknownOpcodes++
		}
		commands = append(commands, cmd)
	}
	return buttonActions(pageID, int(buttonID), commands), unknownOpcodes, nil
}

// buttonActions converts a button's command list into actionable records.
func buttonActions(pageID, buttonID int, commands []NavCommand) []IGButtonAction {
	var actions []IGButtonAction
	for _, cmd := range commands {
		action := IGButtonAction{
			PageID:   pageID,
			ButtonID: buttonID,
			Playlist: -1,
			Mark:     -1,
			Title:    -1,
		}
		switch {
		case cmd.IsPlayAtMark():
			action.Kind = TargetPlayPLAtMark
			action.Playlist = int(cmd.Operand1)
			action.Mark = int(cmd.Operand2)
		case cmd.IsPlayAtChapter():
			action.Kind = TargetPlayPLAtChapter
			action.Playlist = int(cmd.Operand1)
			action.Mark = int(cmd.Operand2)
		case cmd.IsPlayPlaylist():
			action.Kind = TargetPlayPL
			action.Playlist = int(cmd.Operand1)
		case cmd.IsJumpTitle():
			action.Kind = TargetJumpTitle
			action.Title = int(cmd.Operand1)
		case cmd.IsSetRegister() && cmd.ImmOp2 && cmd.Operand1 < 0x1000:
			action.Kind = TargetSetRegister
			action.Register = cmd.Operand1
			action.Value = cmd.Operand2
		default:
			continue
		}
		actions = append(actions, action)
	}
	return actions
}
