package model

import (
	"fmt"
	"strings"
)

// Stream describes one elementary stream referenced by a play item or clip.
type Stream struct {
	PID        uint16
	CodingType byte
	Codec      Codec
	Lang       string
}

// SegmentLabel is the heuristic role assigned to a play item by the classifier.
type SegmentLabel string

const (
	LabelLegal   SegmentLabel = "LEGAL"
	LabelOP      SegmentLabel = "OP"
	LabelBody    SegmentLabel = "BODY"
	LabelED      SegmentLabel = "ED"
	LabelPreview SegmentLabel = "PREVIEW"
	LabelUnknown SegmentLabel = "UNKNOWN"
)

// SegmentKey is the canonical identity of a reused segment across playlists:
// the clip id plus in/out times quantized to the loose tolerance. Values are
// whole milliseconds, so SegmentKey is directly usable as a map key.
type SegmentKey struct {
	ClipID string
	InMS   int64
	OutMS  int64
}

func (k SegmentKey) String() string {
	return fmt.Sprintf("%s@%d-%d", k.ClipID, k.InMS, k.OutMS)
}

// PlayItem is one entry of a playlist: a clip reference with a time range.
type PlayItem struct {
	ClipID              string
	M2TS                string
	InTime              uint32
	OutTime             uint32
	ConnectionCondition byte
	Streams             []Stream
	Label               SegmentLabel
}

// DurationTicks returns out minus in. Parsers guarantee out >= in.
func (pi PlayItem) DurationTicks() uint32 {
	if pi.OutTime < pi.InTime {
		return 0
	}
	return pi.OutTime - pi.InTime
}

func (pi PlayItem) DurationMS() float64 { return TicksToMS(pi.DurationTicks()) }

func (pi PlayItem) DurationSeconds() float64 { return pi.DurationMS() / 1000.0 }

// SegmentKey computes the quantized identity of this item's segment.
func (pi PlayItem) SegmentKey(quantMS int) SegmentKey {
	return SegmentKey{
		ClipID: pi.ClipID,
		InMS:   QuantizeMS(TicksToMS(pi.InTime), quantMS),
		OutMS:  QuantizeMS(TicksToMS(pi.OutTime), quantMS),
	}
}

// ChapterMark is one PlayListMark entry, ordered by ID.
type ChapterMark struct {
	ID          int
	Type        byte
	PlayItemRef int
	Timestamp   uint32
	EntryESPID  uint16
	Duration    uint32
}

// PlaylistClass categorizes a whole playlist.
type PlaylistClass string

const (
	ClassEpisode          PlaylistClass = "episode"
	ClassPlayAll          PlaylistClass = "play_all"
	ClassBumper           PlaylistClass = "bumper"
	ClassCreditlessOP     PlaylistClass = "creditless_op"
	ClassCreditlessED     PlaylistClass = "creditless_ed"
	ClassExtra            PlaylistClass = "extra"
	ClassDuplicateVariant PlaylistClass = "duplicate_variant"
	ClassDigitalArchive   PlaylistClass = "digital_archive"
)

// Playlist is one parsed MPLS file.
type Playlist struct {
	MPLS           string
	Version        string
	PlayItems      []PlayItem
	Chapters       []ChapterMark
	MultiAngle     bool
	Classification PlaylistClass
}

// DurationTicks is the sum of all play item durations.
func (pl *Playlist) DurationTicks() uint64 {
	var total uint64
	for _, pi := range pl.PlayItems {
		total += uint64(pi.DurationTicks())
	}
	return total
}

func (pl *Playlist) DurationMS() float64 { return float64(pl.DurationTicks()) / TicksPerMS }

func (pl *Playlist) DurationSeconds() float64 { return pl.DurationMS() / 1000.0 }

// ClipIDs returns the clip ids of all play items in order.
func (pl *Playlist) ClipIDs() []string {
	ids := make([]string, len(pl.PlayItems))
	for i, pi := range pl.PlayItems {
		ids[i] = pi.ClipID
	}
	return ids
}

// SignatureExact identifies the playlist by its raw (clip, in, out) triples.
func (pl *Playlist) SignatureExact() string {
	var b strings.Builder
	for i, pi := range pl.PlayItems {
		if i > 0 {
			b.WriteByte('|')
		}
		fmt.Fprintf(&b, "%s:%d:%d", pi.ClipID, pi.InTime, pi.OutTime)
	}
	return b.String()
}

// SignatureLoose returns the ordered quantized segment keys.
func (pl *Playlist) SignatureLoose(quantMS int) []SegmentKey {
	keys := make([]SegmentKey, len(pl.PlayItems))
	for i, pi := range pl.PlayItems {
		keys[i] = pi.SegmentKey(quantMS)
	}
	return keys
}

// LooseKey renders the loose signature as a single comparable string.
func (pl *Playlist) LooseKey(quantMS int) string {
	keys := pl.SignatureLoose(quantMS)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.String()
	}
	return strings.Join(parts, "|")
}

// Clip is one parsed CLPI file.
type Clip struct {
	ClipID  string
	Streams []Stream
}

// TitleEntry maps a title number to its movie object, from index.bdmv.
type TitleEntry struct {
	TitleNumber   int
	ObjectType    string
	MovieObjectID int
	AccessType    byte
}

// SegmentRef is a play-item reference carried by an inferred episode.
type SegmentRef struct {
	Key        SegmentKey
	ClipID     string
	InMS       float64
	OutMS      float64
	DurationMS float64
	Label      SegmentLabel
}

// Episode is one inferred episode, numbered 1..N in produced order.
type Episode struct {
	Number     int
	Playlist   string
	DurationMS float64
	Confidence float64
	Segments   []SegmentRef
	Alternates []string
}

// DiscHints collects navigation evidence from index.bdmv, MovieObject.bdmv,
// and the experimental IG menu scan.
type DiscHints struct {
	// TitlePlaylists maps a title number to the mpls stems its movie object
	// plays, e.g. 1 -> ["00001"].
	TitlePlaylists map[int][]string
	IGChapterMarks []int
	IGDirectPlay   []string
}

// DiscAnalysis is the single aggregate result of a disc scan.
type DiscAnalysis struct {
	AnalysisID      string
	Path            string
	Playlists       []*Playlist
	Clips           map[string]*Clip
	Episodes        []Episode
	Warnings        []Warning
	DuplicateGroups [][]string
	PlayAll         []string
	Hints           DiscHints
}

// Classifications returns the mpls -> class map of every playlist that has a
// classification.
func (da *DiscAnalysis) Classifications() map[string]PlaylistClass {
	out := make(map[string]PlaylistClass, len(da.Playlists))
	for _, pl := range da.Playlists {
		if pl.Classification != "" {
			out[pl.MPLS] = pl.Classification
		}
	}
	return out
}

// PlaylistByName returns the playlist with the given mpls filename, or nil.
func (da *DiscAnalysis) PlaylistByName(mpls string) *Playlist {
	for _, pl := range da.Playlists {
		if pl.MPLS == mpls {
			return pl
		}
	}
	return nil
}
