package bdmv

import (
	"fmt"

	"bdpl/internal/model"
)

const clpiMagic = "HDMV"

// ParseCLPI parses one *.clpi buffer. Only the ProgramInfo section is needed:
// it carries the stream PIDs, codecs, and language tags for the clip.
func ParseCLPI(clipID string, data []byte) (*model.Clip, []model.Warning, error) {
	r := NewReader(data)

	magic, err := r.ASCII(4)
	if err != nil {
		return nil, nil, err
	}
	if magic != clpiMagic {
		return nil, nil, &MagicMismatch{Expected: clpiMagic, Got: magic}
	}
	if _, err := r.ASCII(4); err != nil { // version
		return nil, nil, err
	}

	// Header offsets: SequenceInfo, ProgramInfo, CPI, ClipMark, ExtensionData.
	// ClipInfo itself sits at the fixed offset 40.
	if _, err := r.U32(); err != nil {
		return nil, nil, err
	}
	programInfoStart, err := r.U32()
	if err != nil {
		return nil, nil, err
	}

	if err := r.Seek(int(programInfoStart)); err != nil {
		return nil, nil, fmt.Errorf("ProgramInfo section: %w", err)
	}
	streams, warnings, err := parseProgramInfo(r, clipID)
	if err != nil {
		return nil, nil, err
	}

	return &model.Clip{ClipID: clipID, Streams: streams}, warnings, nil
}

func parseProgramInfo(r *Reader, clipID string) ([]model.Stream, []model.Warning, error) {
	sectionLen, err := r.U32()
	if err != nil {
		return nil, nil, fmt.Errorf("ProgramInfo section: %w", err)
	}
	if sectionLen == 0 {
		return nil, nil, nil
	}
	if int(sectionLen) > r.Remaining() {
		return nil, nil, &LengthOverflow{Section: "ProgramInfo", Declared: int(sectionLen), Remaining: r.Remaining()}
	}

	if err := r.Skip(1); err != nil { // reserved
		return nil, nil, err
	}
	numPrograms, err := r.U8()
	if err != nil {
		return nil, nil, err
	}

	var (
		streams  []model.Stream
		warnings []model.Warning
	)
	for p := 0; p < int(numPrograms); p++ {
		if err := r.Skip(4); err != nil { // SPN_program_sequence_start
			return streams, warnings, err
		}
		if err := r.Skip(2); err != nil { // program_map_PID
			return streams, warnings, err
		}
		numStreams, err := r.U8()
		if err != nil {
			return streams, warnings, err
		}
		if err := r.Skip(1); err != nil { // number_of_groups
			return streams, warnings, err
		}

		for i := 0; i < int(numStreams); i++ {
			pid, err := r.U16()
			if err != nil {
				return streams, warnings, err
			}
			stream, err := parseStreamAttributes(r)
			if err != nil {
				warnings = append(warnings, model.NewWarning(model.WarnMalformedSection,
					fmt.Sprintf("%s.clpi: skipped malformed stream %d in program %d", clipID, i, p),
					"clip", clipID))
				continue
			}
			stream.PID = pid
			streams = append(streams, stream)
		}
	}
	return streams, warnings, nil
}
