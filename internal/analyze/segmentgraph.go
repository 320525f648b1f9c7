package analyze

import (
	"sort"

	"bdpl/internal/model"
)

// SegmentFrequency counts, per quantized segment key, how many playlists
// contain the segment.
func SegmentFrequency(playlists []*model.Playlist, quantMS int) map[model.SegmentKey]int {
	freq := make(map[model.SegmentKey]int)
	for _, pl := range playlists {
		seen := make(map[model.SegmentKey]bool)
		for _, pi := range pl.PlayItems {
			key := pi.SegmentKey(quantMS)
			if !seen[key] {
				seen[key] = true
				freq[key]++
			}
		}
	}
	return freq
}

// PlayAllCoverage maps each play-all playlist to the sorted names of the
// playlists it covers.
type PlayAllCoverage map[string][]string

// Names returns the play-all playlist names in sorted order.
func (c PlayAllCoverage) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DetectPlayAll identifies playlists whose play items concatenate other
// playlists' contents. P is a play-all superset of Q when Q's ordered loose
// signature appears as a contiguous (or nearly contiguous, up to one missing
// segment) subsequence of P's. A long multi-part playlist with two or more
// episode-length items also qualifies, covering discs that ship only the
// concatenation.
func DetectPlayAll(playlists []*model.Playlist, opts Options) PlayAllCoverage {
	sigs := make(map[string][]model.SegmentKey, len(playlists))
	for _, pl := range playlists {
		sigs[pl.MPLS] = pl.SignatureLoose(opts.QuantMS)
	}

	coverage := make(PlayAllCoverage)
	for _, pl := range playlists {
		if len(pl.PlayItems) < 2 {
			continue
		}
		mine := sigs[pl.MPLS]

		var covered []string
		for _, other := range playlists {
			if other.MPLS == pl.MPLS || len(other.PlayItems) == 0 {
				continue
			}
			theirs := sigs[other.MPLS]
			if len(theirs) >= len(mine) {
				continue
			}
			if containsSubsequence(mine, theirs, 1) {
				covered = append(covered, other.MPLS)
			}
		}

		longItems := 0
		for _, pi := range pl.PlayItems {
			if pi.DurationSeconds() >= opts.BodyMinSeconds {
				longItems++
			}
		}

		if len(covered) >= 2 || longItems >= 2 {
			sort.Strings(covered)
			coverage[pl.MPLS] = covered
		}
	}
	return coverage
}

// containsSubsequence reports whether needle appears inside haystack in
// order, consuming consecutive haystack elements, with up to maxMissing
// needle elements absent from the matched window.
func containsSubsequence(haystack, needle []model.SegmentKey, maxMissing int) bool {
	if len(needle) == 0 {
		return false
	}
	for start := 0; start < len(haystack); start++ {
		if matchFrom(haystack, needle, start, maxMissing) {
			return true
		}
	}
	return false
}

func matchFrom(haystack, needle []model.SegmentKey, start, allowedMissing int) bool {
	h := start
	for n := 0; n < len(needle); n++ {
		if h < len(haystack) && haystack[h] == needle[n] {
			h++
			continue
		}
		if allowedMissing > 0 {
			allowedMissing--
			continue
		}
		return false
	}
	// A window that consumed no haystack element matched nothing.
	return h > start
}
