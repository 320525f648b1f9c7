package bdmv

import (
	"fmt"

	"bdpl/internal/model"
)

const mplsMagic = "MPLS"

// ParseMPLS parses one *.mpls buffer into a Playlist. Malformed play items
// and stream tables are skipped using their declared lengths and reported as
// warnings; a corrupt header or PlayList section overflow fails the whole
// file, while a broken PlayListMark section costs only the chapters.
func ParseMPLS(name string, data []byte) (*model.Playlist, []model.Warning, error) {
	r := NewReader(data)

	magic, err := r.ASCII(4)
	if err != nil {
		return nil, nil, err
	}
	if magic != mplsMagic {
		return nil, nil, &MagicMismatch{Expected: mplsMagic, Got: magic}
	}
	version, err := r.ASCII(4)
	if err != nil {
		return nil, nil, err
	}

	playlistStart, err := r.U32()
	if err != nil {
		return nil, nil, err
	}
	markStart, err := r.U32()
	if err != nil {
		return nil, nil, err
	}
	if _, err := r.U32(); err != nil { // ExtensionData start, may be zero
		return nil, nil, err
	}

	pl := &model.Playlist{MPLS: name, Version: version}
	var warnings []model.Warning

	if err := r.Seek(int(playlistStart)); err != nil {
		return nil, nil, fmt.Errorf("PlayList section: %w", err)
	}
	items, multiAngle, itemWarnings, err := parsePlayListSection(r, name)
	if err != nil {
		return nil, nil, err
	}
	pl.PlayItems = items
	pl.MultiAngle = multiAngle
	warnings = append(warnings, itemWarnings...)

	chapters, markWarnings := parseMarkSection(r, name, int(markStart))
	pl.Chapters = chapters
	warnings = append(warnings, markWarnings...)

	return pl, warnings, nil
}

func parsePlayListSection(r *Reader, name string) ([]model.PlayItem, bool, []model.Warning, error) {
	sectionLen, err := r.U32()
	if err != nil {
		return nil, false, nil, fmt.Errorf("PlayList section: %w", err)
	}
	if int(sectionLen) > r.Remaining() {
		return nil, false, nil, &LengthOverflow{Section: "PlayList", Declared: int(sectionLen), Remaining: r.Remaining()}
	}
	if err := r.Skip(2); err != nil { // reserved
		return nil, false, nil, err
	}
	numItems, err := r.U16()
	if err != nil {
		return nil, false, nil, err
	}
	if _, err := r.U16(); err != nil { // number_of_SubPaths
		return nil, false, nil, err
	}

	var (
		items      []model.PlayItem
		multiAngle bool
		warnings   []model.Warning
	)
	for idx := 0; idx < int(numItems); idx++ {
		itemLen, err := r.U16()
		if err != nil {
			warnings = append(warnings, model.NewWarning(model.WarnMalformedSection,
				fmt.Sprintf("%s: play item %d truncated", name, idx),
				"file", name, "item", fmt.Sprint(idx)))
			break
		}
		if int(itemLen) > r.Remaining() {
			warnings = append(warnings, model.NewWarning(model.WarnMalformedSection,
				fmt.Sprintf("%s: play item %d declares %d bytes with %d remaining", name, idx, itemLen, r.Remaining()),
				"file", name, "item", fmt.Sprint(idx)))
			break
		}
		body, err := r.Slice(r.Tell(), int(itemLen))
		if err != nil {
			return nil, false, warnings, err
		}
		// Always advance past the item by its declared length, whatever
		// happens inside.
		if err := r.Skip(int(itemLen)); err != nil {
			return nil, false, warnings, err
		}

		item, angle, stnErr, err := parsePlayItem(body)
		if err != nil {
			warnings = append(warnings, model.NewWarning(model.WarnMalformedSection,
				fmt.Sprintf("%s: skipped malformed play item %d: %v", name, idx, err),
				"file", name, "item", fmt.Sprint(idx)))
			continue
		}
		if stnErr != nil {
			warnings = append(warnings, model.NewWarning(model.WarnMalformedSection,
				fmt.Sprintf("%s: play item %d: skipped malformed stream table: %v", name, idx, stnErr),
				"file", name, "item", fmt.Sprint(idx)))
		}
		multiAngle = multiAngle || angle
		items = append(items, item)
	}
	return items, multiAngle, warnings, nil
}

func parsePlayItem(r *Reader) (model.PlayItem, bool, error, error) {
	var pi model.PlayItem

	clipID, err := r.ASCII(5)
	if err != nil {
		return pi, false, nil, err
	}
	if _, err := r.ASCII(4); err != nil { // clip_codec_identifier, "M2TS"
		return pi, false, nil, err
	}

	flags, err := r.U16()
	if err != nil {
		return pi, false, nil, err
	}
	multiAngle := (flags>>4)&1 == 1
	connection := byte(flags & 0x0F)

	if err := r.Skip(1); err != nil { // ref_to_STC_id
		return pi, false, nil, err
	}
	inTime, err := r.U32()
	if err != nil {
		return pi, false, nil, err
	}
	outTime, err := r.U32()
	if err != nil {
		return pi, false, nil, err
	}
	if outTime < inTime {
		return pi, false, nil, fmt.Errorf("out time %d before in time %d", outTime, inTime)
	}
	if err := r.Skip(8); err != nil { // UO_mask_table
		return pi, false, nil, err
	}
	if err := r.Skip(1); err != nil { // random_access_flag + reserved
		return pi, false, nil, err
	}
	if err := r.Skip(1); err != nil { // still_mode
		return pi, false, nil, err
	}
	if err := r.Skip(2); err != nil { // still_time when mode 1, reserved otherwise
		return pi, false, nil, err
	}

	if multiAngle {
		angleCount, err := r.U8()
		if err != nil {
			return pi, false, nil, err
		}
		if err := r.Skip(1); err != nil { // is_different_audios + is_seamless_angle_change
			return pi, false, nil, err
		}
		// Each additional angle repeats clip_name(5) + codec_id(4) + STC_id(1).
		if angleCount > 0 {
			if err := r.Skip(10 * (int(angleCount) - 1)); err != nil {
				return pi, false, nil, err
			}
		}
	}

	// A broken stream table costs only stream metadata, never the item.
	streams, stnErr := parseSTNTable(r)
	if stnErr != nil {
		streams = nil
	}

	pi = model.PlayItem{
		ClipID:              clipID,
		M2TS:                clipID + ".m2ts",
		InTime:              inTime,
		OutTime:             outTime,
		ConnectionCondition: connection,
		Streams:             streams,
		Label:               model.LabelUnknown,
	}
	return pi, multiAngle, stnErr, nil
}

func parseSTNTable(r *Reader) ([]model.Stream, error) {
	stnLen, err := r.U16()
	if err != nil {
		return nil, err
	}
	if stnLen == 0 {
		return nil, nil
	}
	if int(stnLen) > r.Remaining() {
		return nil, &LengthOverflow{Section: "STN_table", Declared: int(stnLen), Remaining: r.Remaining()}
	}
	stn, err := r.Slice(r.Tell(), int(stnLen))
	if err != nil {
		return nil, err
	}

	if err := stn.Skip(2); err != nil { // reserved
		return nil, err
	}
	counts := make([]byte, 7)
	for i := range counts {
		c, err := stn.U8()
		if err != nil {
			return nil, err
		}
		counts[i] = c
	}
	if err := stn.Skip(5); err != nil { // reserved
		return nil, err
	}

	total := 0
	for _, c := range counts {
		total += int(c)
	}

	var streams []model.Stream
	for i := 0; i < total; i++ {
		pid, err := parseStreamEntry(stn)
		if err != nil {
			return streams, err
		}
		stream, err := parseStreamAttributes(stn)
		if err != nil {
			return streams, err
		}
		stream.PID = pid
		streams = append(streams, stream)
	}
	return streams, nil
}

// parseStreamEntry reads one length-prefixed stream entry and returns its PID.
func parseStreamEntry(r *Reader) (uint16, error) {
	entryLen, err := r.U8()
	if err != nil {
		return 0, err
	}
	entry, err := r.Slice(r.Tell(), int(entryLen))
	if err != nil {
		return 0, err
	}
	if err := r.Skip(int(entryLen)); err != nil {
		return 0, err
	}

	streamType, err := entry.U8()
	if err != nil {
		return 0, err
	}
	switch streamType {
	case 0x01, 0x02: // play item / sub-path ref carry the PID first
		return entry.U16()
	case 0x03, 0x04: // in-mux or out-of-mux sub-path: sub_path_id precedes the PID
		if err := entry.Skip(1); err != nil {
			return 0, err
		}
		return entry.U16()
	}
	return 0, nil
}

// parseStreamAttributes reads one length-prefixed attributes block.
func parseStreamAttributes(r *Reader) (model.Stream, error) {
	var s model.Stream
	attrLen, err := r.U8()
	if err != nil {
		return s, err
	}
	attr, err := r.Slice(r.Tell(), int(attrLen))
	if err != nil {
		return s, err
	}
	if err := r.Skip(int(attrLen)); err != nil {
		return s, err
	}

	codingType, err := attr.U8()
	if err != nil {
		return s, err
	}
	s.CodingType = codingType
	s.Codec, _ = model.CodecFromCodingType(codingType)

	switch {
	case model.IsVideoCodingType(codingType):
		// video_format(4) + frame_rate(4), not needed downstream
	case model.IsAudioCodingType(codingType):
		if err := attr.Skip(1); err != nil { // audio_format + sample_rate
			return s, nil
		}
		if lang, err := attr.ASCII(3); err == nil {
			s.Lang = lang
		}
	case codingType == 0x92: // text subtitle: character code precedes the language
		if err := attr.Skip(1); err != nil {
			return s, nil
		}
		if lang, err := attr.ASCII(3); err == nil {
			s.Lang = lang
		}
	case model.IsGraphicsCodingType(codingType):
		if lang, err := attr.ASCII(3); err == nil {
			s.Lang = lang
		}
	}
	return s, nil
}

// parseMarkSection parses PlayListMark entries. A broken mark section costs
// only the chapters, never the playlist.
func parseMarkSection(r *Reader, name string, markStart int) ([]model.ChapterMark, []model.Warning) {
	malformed := func(detail string) []model.Warning {
		return []model.Warning{model.NewWarning(model.WarnMalformedSection,
			fmt.Sprintf("%s: PlayListMark section: %s", name, detail), "file", name)}
	}

	if err := r.Seek(markStart); err != nil {
		return nil, malformed(err.Error())
	}
	sectionLen, err := r.U32()
	if err != nil {
		return nil, malformed(err.Error())
	}
	if int(sectionLen) > r.Remaining() {
		return nil, malformed(fmt.Sprintf("declared length %d exceeds %d remaining", sectionLen, r.Remaining()))
	}
	count, err := r.U16()
	if err != nil {
		return nil, malformed(err.Error())
	}

	var marks []model.ChapterMark
	for i := 0; i < int(count); i++ {
		if err := r.Skip(1); err != nil { // reserved
			return marks, malformed(fmt.Sprintf("mark %d truncated", i))
		}
		markType, err := r.U8()
		if err != nil {
			return marks, malformed(fmt.Sprintf("mark %d truncated", i))
		}
		refItem, err := r.U16()
		if err != nil {
			return marks, malformed(fmt.Sprintf("mark %d truncated", i))
		}
		timestamp, err := r.U32()
		if err != nil {
			return marks, malformed(fmt.Sprintf("mark %d truncated", i))
		}
		esPID, err := r.U16()
		if err != nil {
			return marks, malformed(fmt.Sprintf("mark %d truncated", i))
		}
		duration, err := r.U32()
		if err != nil {
			return marks, malformed(fmt.Sprintf("mark %d truncated", i))
		}
		marks = append(marks, model.ChapterMark{
			ID:          i,
			Type:        markType,
			PlayItemRef: int(refItem),
			Timestamp:   timestamp,
			EntryESPID:  esPID,
			Duration:    duration,
		})
	}
	return marks, nil
}
