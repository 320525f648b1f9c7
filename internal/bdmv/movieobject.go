package bdmv

import (
	"fmt"
	"sort"

	"bdpl/internal/model"
)

const mobjMagic = "MOBJ"

// MovieObject is one navigation object: a flags word and an ordered sequence
// of HDMV instructions.
type MovieObject struct {
	ID              int
	ResumeIntention bool
	MenuCallMask    bool
	TitleSearchMask bool
	Commands        []NavCommand
}

// ReferencedPlaylists returns the zero-padded filename stems of playlists
// referenced by play commands, in instruction order.
func (o MovieObject) ReferencedPlaylists() []string {
	var stems []string
	for _, cmd := range o.Commands {
		if n, ok := cmd.PlaylistNumber(); ok {
			stems = append(stems, PlaylistStem(n))
		}
	}
	return stems
}

// ReferencedTitles returns title numbers referenced by JumpTitle commands.
func (o MovieObject) ReferencedTitles() []int {
	var titles []int
	for _, cmd := range o.Commands {
		if cmd.IsJumpTitle() {
			titles = append(titles, int(cmd.Operand1))
		}
	}
	return titles
}

// MovieObjectFile holds the parsed contents of MovieObject.bdmv.
type MovieObjectFile struct {
	Version string
	Objects []MovieObject
}

// ObjectByID returns the movie object with the given id, or nil.
func (f *MovieObjectFile) ObjectByID(id int) *MovieObject {
	if id < 0 || id >= len(f.Objects) {
		return nil
	}
	return &f.Objects[id]
}

// PlaylistToObjects maps each referenced playlist stem to the sorted ids of
// the movie objects that play it.
func (f *MovieObjectFile) PlaylistToObjects() map[string][]int {
	result := make(map[string][]int)
	for _, obj := range f.Objects {
		for _, stem := range obj.ReferencedPlaylists() {
			result[stem] = append(result[stem], obj.ID)
		}
	}
	for stem, ids := range result {
		sort.Ints(ids)
		result[stem] = ids
	}
	return result
}

// ParseMovieObject parses a MovieObject.bdmv buffer. Unknown opcodes are
// preserved in the command list and reported as warnings, never as failures.
func ParseMovieObject(data []byte) (*MovieObjectFile, []model.Warning, error) {
	r := NewReader(data)

	magic, err := r.ASCII(4)
	if err != nil {
		return nil, nil, err
	}
	if magic != mobjMagic {
		return nil, nil, &MagicMismatch{Expected: mobjMagic, Got: magic}
	}
	version, err := r.ASCII(4)
	if err != nil {
		return nil, nil, err
	}

	// The movie-objects section starts after the fixed 40-byte header.
	if err := r.Seek(40); err != nil {
		return nil, nil, fmt.Errorf("MovieObjects section: %w", err)
	}
	sectionLen, err := r.U32()
	if err != nil {
		return nil, nil, err
	}
	if int(sectionLen) > r.Remaining() {
		return nil, nil, &LengthOverflow{Section: "MovieObjects", Declared: int(sectionLen), Remaining: r.Remaining()}
	}
	if err := r.Skip(4); err != nil { // reserved
		return nil, nil, err
	}
	numObjects, err := r.U16()
	if err != nil {
		return nil, nil, err
	}

	file := &MovieObjectFile{Version: version}
	var warnings []model.Warning
	unknownOpcodes := 0

	for idx := 0; idx < int(numObjects); idx++ {
		flags, err := r.U8()
		if err != nil {
			return nil, nil, fmt.Errorf("movie object %d: %w", idx, err)
		}
		if err := r.Skip(1); err != nil { // reserved
			return nil, nil, fmt.Errorf("movie object %d: %w", idx, err)
		}
		numCommands, err := r.U16()
		if err != nil {
			return nil, nil, fmt.Errorf("movie object %d: %w", idx, err)
		}

		obj := MovieObject{
			ID:              idx,
			ResumeIntention: (flags>>7)&1 == 1,
			MenuCallMask:    (flags>>6)&1 == 1,
			TitleSearchMask: (flags>>5)&1 == 1,
		}
		for c := 0; c < int(numCommands); c++ {
			raw, err := r.Bytes(NavCommandSize)
			if err != nil {
				return nil, nil, fmt.Errorf("movie object %d command %d: %w", idx, c, err)
			}
			cmd, err := DecodeNavCommand(raw)
			if err != nil {
				continue
			}
			if !cmd.IsKnown() {
				unknownOpcodes++
			}
			obj.Commands = append(obj.Commands, cmd)
		}
		file.Objects = append(file.Objects, obj)
	}

	if unknownOpcodes > 0 {
		warnings = append(warnings, model.NewWarning(model.WarnUnknownOpcode,
			fmt.Sprintf("MovieObject.bdmv: %d command(s) with unknown opcode group preserved uninterpreted", unknownOpcodes),
			"count", fmt.Sprint(unknownOpcodes)))
	}
	return file, warnings, nil
}
