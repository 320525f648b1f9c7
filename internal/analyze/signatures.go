package analyze

import (
	"sort"

	"bdpl/internal/model"
)

// DupGroup is a set of playlists sharing one loose signature. Exactly one is
// the representative; the rest become its alternates.
type DupGroup struct {
	Representative *model.Playlist
	Alternates     []*model.Playlist
}

// Members returns the group in representative-first order.
func (g DupGroup) Members() []*model.Playlist {
	out := make([]*model.Playlist, 0, 1+len(g.Alternates))
	out = append(out, g.Representative)
	out = append(out, g.Alternates...)
	return out
}

// Names returns the mpls filenames of all members, representative first.
func (g DupGroup) Names() []string {
	names := make([]string, 0, 1+len(g.Alternates))
	names = append(names, g.Representative.MPLS)
	for _, alt := range g.Alternates {
		names = append(names, alt.MPLS)
	}
	return names
}

// FindDuplicates groups playlists whose loose signatures are equal and picks
// a representative per group. Groups are ordered by the representative's mpls
// filename; empty playlists never group.
func FindDuplicates(playlists []*model.Playlist, clips map[string]*model.Clip, quantMS int) []DupGroup {
	bySig := make(map[string][]*model.Playlist)
	var order []string
	for _, pl := range playlists {
		if len(pl.PlayItems) == 0 {
			continue
		}
		sig := pl.LooseKey(quantMS)
		if _, seen := bySig[sig]; !seen {
			order = append(order, sig)
		}
		bySig[sig] = append(bySig[sig], pl)
	}

	var groups []DupGroup
	for _, sig := range order {
		members := bySig[sig]
		if len(members) < 2 {
			continue
		}
		rep := pickRepresentative(members, clips)
		group := DupGroup{Representative: rep}
		for _, pl := range members {
			if pl != rep {
				group.Alternates = append(group.Alternates, pl)
			}
		}
		sort.Slice(group.Alternates, func(i, j int) bool {
			return group.Alternates[i].MPLS < group.Alternates[j].MPLS
		})
		groups = append(groups, group)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Representative.MPLS < groups[j].Representative.MPLS
	})
	return groups
}

// Representatives returns the deduplicated working set in mpls order: every
// group representative plus every playlist that is in no group.
func Representatives(playlists []*model.Playlist, groups []DupGroup) []*model.Playlist {
	alternate := make(map[string]bool)
	for _, g := range groups {
		for _, alt := range g.Alternates {
			alternate[alt.MPLS] = true
		}
	}
	var reps []*model.Playlist
	for _, pl := range playlists {
		if !alternate[pl.MPLS] {
			reps = append(reps, pl)
		}
	}
	sort.Slice(reps, func(i, j int) bool { return reps[i].MPLS < reps[j].MPLS })
	return reps
}

// pickRepresentative prefers, in order: more audio streams, more subtitle
// streams, presence of chapters, and finally the lower mpls filename.
func pickRepresentative(members []*model.Playlist, clips map[string]*model.Clip) *model.Playlist {
	best := members[0]
	bestAudio, bestSubs := streamCounts(best, clips)
	for _, pl := range members[1:] {
		audio, subs := streamCounts(pl, clips)
		switch {
		case audio != bestAudio:
			if audio > bestAudio {
				best, bestAudio, bestSubs = pl, audio, subs
			}
		case subs != bestSubs:
			if subs > bestSubs {
				best, bestAudio, bestSubs = pl, audio, subs
			}
		case (len(pl.Chapters) > 0) != (len(best.Chapters) > 0):
			if len(pl.Chapters) > 0 {
				best, bestAudio, bestSubs = pl, audio, subs
			}
		case pl.MPLS < best.MPLS:
			best, bestAudio, bestSubs = pl, audio, subs
		}
	}
	return best
}

// streamCounts counts audio and subtitle streams on the first play item,
// falling back to the clip's program info when the playlist carries no
// stream table.
func streamCounts(pl *model.Playlist, clips map[string]*model.Clip) (audio, subs int) {
	if len(pl.PlayItems) == 0 {
		return 0, 0
	}
	streams := pl.PlayItems[0].Streams
	if len(streams) == 0 && clips != nil {
		if clip, ok := clips[pl.PlayItems[0].ClipID]; ok {
			streams = clip.Streams
		}
	}
	for _, s := range streams {
		switch {
		case model.IsAudioCodingType(s.CodingType):
			audio++
		case model.IsSubtitleCodingType(s.CodingType):
			subs++
		}
	}
	return audio, subs
}
