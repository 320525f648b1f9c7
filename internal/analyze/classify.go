package analyze

import (
	"bdpl/internal/model"
)

// digital-archive shape: many ultra-short one-image clips.
const (
	archiveMinItems      = 20
	archiveMaxTotalS     = 300
	archiveMaxAvgItemS   = 0.5
	archiveMinUniqueFrac = 0.8
)

// LabelSegments assigns heuristic roles to every play item, keyed by quantized
// segment identity so a segment carries the same label wherever it is reused.
// Frequency and position statistics come from the episode-length candidates.
func LabelSegments(playlists []*model.Playlist, candidates []*model.Playlist, opts Options) {
	n := len(candidates)

	// Per-candidate presence and positional counts.
	presence := make(map[model.SegmentKey]int)
	firstCount := make(map[model.SegmentKey]int)
	prefixCount := make(map[model.SegmentKey]int)
	suffixCount := make(map[model.SegmentKey]int)
	bodySized := make(map[model.SegmentKey]bool)

	for _, pl := range candidates {
		seen := make(map[model.SegmentKey]bool)
		items := pl.PlayItems
		for idx, pi := range items {
			key := pi.SegmentKey(opts.QuantMS)
			if !seen[key] {
				seen[key] = true
				presence[key]++
			}
			if idx == 0 {
				firstCount[key]++
			}
			if idx <= 1 {
				prefixCount[key]++
			}
			if idx >= len(items)-2 {
				suffixCount[key]++
			}
			if pi.DurationSeconds() >= opts.BodyMinSeconds {
				bodySized[key] = true
			}
		}
	}

	labelFor := func(pi model.PlayItem) model.SegmentLabel {
		key := pi.SegmentKey(opts.QuantMS)
		durS := pi.DurationSeconds()

		if n > 0 {
			if durS <= opts.LegalMaxSeconds &&
				float64(presence[key]) >= 0.6*float64(n) && firstCount[key] > 0 {
				return model.LabelLegal
			}
			if durS >= opts.OPMinSeconds && durS <= opts.OPMaxSeconds &&
				float64(prefixCount[key]) >= 0.5*float64(n) {
				return model.LabelOP
			}
			if durS >= opts.EDMinSeconds && durS <= opts.EDMaxSeconds &&
				float64(suffixCount[key]) >= 0.5*float64(n) {
				return model.LabelED
			}
		}
		if bodySized[key] {
			return model.LabelBody
		}
		return model.LabelUnknown
	}

	for _, pl := range playlists {
		sawED := false
		for idx := range pl.PlayItems {
			pi := &pl.PlayItems[idx]
			pi.Label = labelFor(*pi)
			if pi.Label == model.LabelED {
				sawED = true
				continue
			}
			// A short trailing segment after the ED is the next-episode
			// preview.
			if sawED && pi.Label == model.LabelUnknown &&
				pi.DurationSeconds() <= opts.PreviewMaxSeconds {
				pi.Label = model.LabelPreview
			}
		}
	}
}

// ClassifyPlaylists assigns a PlaylistClass to every playlist. Rules are
// evaluated in a fixed order; the first match wins.
func ClassifyPlaylists(
	playlists []*model.Playlist,
	groups []DupGroup,
	playAll PlayAllCoverage,
	cluster ClusterResult,
	opts Options,
) {
	alternate := make(map[string]bool)
	for _, g := range groups {
		for _, alt := range g.Alternates {
			alternate[alt.MPLS] = true
		}
	}

	for _, pl := range playlists {
		pl.Classification = classifyPlaylist(pl, alternate, playAll, cluster, opts)
	}
}

func classifyPlaylist(
	pl *model.Playlist,
	alternate map[string]bool,
	playAll PlayAllCoverage,
	cluster ClusterResult,
	opts Options,
) model.PlaylistClass {
	if alternate[pl.MPLS] {
		return model.ClassDuplicateVariant
	}
	if _, ok := playAll[pl.MPLS]; ok {
		return model.ClassPlayAll
	}
	if isDigitalArchive(pl) {
		return model.ClassDigitalArchive
	}

	durS := pl.DurationSeconds()
	if len(pl.PlayItems) == 1 && durS <= opts.BumperSeconds {
		return model.ClassBumper
	}
	if len(pl.PlayItems) == 1 {
		label := pl.PlayItems[0].Label
		if label == model.LabelOP && durS >= opts.OPMinSeconds && durS <= opts.OPMaxSeconds {
			return model.ClassCreditlessOP
		}
		if label == model.LabelED && durS >= opts.EDMinSeconds && durS <= opts.EDMaxSeconds {
			return model.ClassCreditlessED
		}
	}
	if cluster.IsCandidate(pl.MPLS) {
		for _, pi := range pl.PlayItems {
			if pi.Label == model.LabelBody {
				return model.ClassEpisode
			}
		}
	}
	return model.ClassExtra
}

// isDigitalArchive reports playlists shaped like a still-image gallery:
// dozens of sub-second items over mostly unique clips.
func isDigitalArchive(pl *model.Playlist) bool {
	count := len(pl.PlayItems)
	if count < archiveMinItems {
		return false
	}
	totalS := pl.DurationSeconds()
	if totalS > archiveMaxTotalS {
		return false
	}
	if totalS/float64(count) > archiveMaxAvgItemS {
		return false
	}
	unique := make(map[string]bool, count)
	for _, pi := range pl.PlayItems {
		unique[pi.ClipID] = true
	}
	return float64(len(unique)) >= archiveMinUniqueFrac*float64(count)
}
