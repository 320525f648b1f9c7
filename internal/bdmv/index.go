package bdmv

import (
	"fmt"

	"bdpl/internal/model"
)

const indexMagic = "INDX"

// IndexFile holds the parsed contents of index.bdmv.
type IndexFile struct {
	Version           string
	FirstPlayObjectID int // -1 when no First Playback object is present
	TopMenuObjectID   int // -1 when no Top Menu object is present
	Titles            []model.TitleEntry
}

// ParseIndex parses an index.bdmv buffer into the title table.
func ParseIndex(data []byte) (*IndexFile, error) {
	r := NewReader(data)

	magic, err := r.ASCII(4)
	if err != nil {
		return nil, err
	}
	if magic != indexMagic {
		return nil, &MagicMismatch{Expected: indexMagic, Got: magic}
	}
	version, err := r.ASCII(4)
	if err != nil {
		return nil, err
	}
	if version != "0100" && version != "0200" && version != "0300" {
		return nil, &UnsupportedVersion{Got: version}
	}

	indexesStart, err := r.U32()
	if err != nil {
		return nil, err
	}
	if err := r.Seek(int(indexesStart)); err != nil {
		return nil, fmt.Errorf("Indexes section: %w", err)
	}
	sectionLen, err := r.U32()
	if err != nil {
		return nil, err
	}
	if int(sectionLen) > r.Remaining() {
		return nil, &LengthOverflow{Section: "Indexes", Declared: int(sectionLen), Remaining: r.Remaining()}
	}

	idx := &IndexFile{Version: version, FirstPlayObjectID: -1, TopMenuObjectID: -1}

	// First Playback and Top Menu are fixed 12-byte entries ahead of the
	// title table.
	if objType, objID, _, err := parseIndexEntry(r); err != nil {
		return nil, fmt.Errorf("First Playback entry: %w", err)
	} else if objType != "" {
		idx.FirstPlayObjectID = objID
	}
	if objType, objID, _, err := parseIndexEntry(r); err != nil {
		return nil, fmt.Errorf("Top Menu entry: %w", err)
	} else if objType != "" {
		idx.TopMenuObjectID = objID
	}

	numTitles, err := r.U16()
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(numTitles); i++ {
		objType, objID, accessType, err := parseIndexEntry(r)
		if err != nil {
			return nil, fmt.Errorf("title entry %d: %w", i, err)
		}
		if objType == "" {
			continue
		}
		idx.Titles = append(idx.Titles, model.TitleEntry{
			TitleNumber:   i + 1,
			ObjectType:    objType,
			MovieObjectID: objID,
			AccessType:    accessType,
		})
	}
	return idx, nil
}

// parseIndexEntry reads a 12-byte index entry and returns the object type
// ("hdmv", "bdj", or "" when absent), the movie object id, and access type.
func parseIndexEntry(r *Reader) (string, int, byte, error) {
	flags, err := r.U8()
	if err != nil {
		return "", 0, 0, err
	}
	objectType := (flags >> 6) & 0x03
	accessType := (flags >> 2) & 0x0F
	if err := r.Skip(3); err != nil { // remaining flag / reserved bytes
		return "", 0, 0, err
	}

	switch objectType {
	case 0x01: // HDMV object
		if err := r.Skip(2); err != nil { // hdmv_playback_type
			return "", 0, 0, err
		}
		objID, err := r.U16()
		if err != nil {
			return "", 0, 0, err
		}
		if err := r.Skip(4); err != nil { // reserved
			return "", 0, 0, err
		}
		return "hdmv", int(objID), accessType, nil
	case 0x02: // BD-J object: 5-char name + padding
		if err := r.Skip(8); err != nil {
			return "", 0, 0, err
		}
		return "bdj", 0, accessType, nil
	}
	if err := r.Skip(8); err != nil {
		return "", 0, 0, err
	}
	return "", 0, 0, nil
}
