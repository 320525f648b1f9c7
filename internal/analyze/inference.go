package analyze

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"bdpl/internal/model"
)

// InferenceStrategy names how the episode list was produced.
type InferenceStrategy string

const (
	StrategyIndividual   InferenceStrategy = "individual"
	StrategyPlayAll      InferenceStrategy = "play_all_decomposition"
	StrategyChapterSplit InferenceStrategy = "chapter_split"
	StrategyNone         InferenceStrategy = "none"
)

// InferenceResult is the ordered episode list plus how it was derived.
type InferenceResult struct {
	Strategy InferenceStrategy
	Episodes []model.Episode
	Warnings []model.Warning
}

// InferEpisodes selects an inference strategy and produces the ordered,
// numbered episode list with confidence scores.
//
// Strategies, in preference order: individual episode playlists; play-all
// decomposition; chapter split of a single long playlist; none.
func InferEpisodes(
	reps []*model.Playlist,
	groups []DupGroup,
	playAll PlayAllCoverage,
	hints model.DiscHints,
	opts Options,
) InferenceResult {
	var result InferenceResult

	var episodePlaylists []*model.Playlist
	for _, pl := range reps {
		if pl.Classification == model.ClassEpisode {
			episodePlaylists = append(episodePlaylists, pl)
		}
	}

	switch {
	case len(episodePlaylists) >= 2:
		result.Strategy = StrategyIndividual
		result.Episodes = episodesFromIndividual(episodePlaylists, groups, hints, opts)

	case len(playAll) > 0:
		result.Strategy = StrategyPlayAll
		pa := longestPlayAll(reps, playAll)
		result.Episodes = episodesFromPlayAll(pa, hints, opts)
		result.Warnings = append(result.Warnings, model.NewWarning(model.WarnPlayAllOnly,
			fmt.Sprintf("episodes inferred by decomposing play-all playlist %s; no individual episode playlists found", pa.MPLS),
			"play_all", pa.MPLS))

	default:
		if pl := chapterSplitCandidate(reps, opts); pl != nil {
			result.Strategy = StrategyChapterSplit
			result.Episodes = episodesFromChapters(pl, hints, opts)
		}
	}

	if len(result.Episodes) == 0 {
		result.Strategy = StrategyNone
		result.Warnings = append(result.Warnings, model.NewWarning(model.WarnNoEpisodesFound,
			"could not identify any episodes on this disc"))
		return result
	}

	lowConfidence := true
	for _, ep := range result.Episodes {
		if ep.Confidence >= 0.7 {
			lowConfidence = false
			break
		}
	}
	if lowConfidence {
		result.Warnings = append(result.Warnings, model.NewWarning(model.WarnLowConfidence,
			"episode order inferred with low confidence; verify before remuxing"))
	}
	return result
}

// titleHintSet returns the mpls stems referenced by navigation titles.
func titleHintSet(hints model.DiscHints) map[string]bool {
	stems := make(map[string]bool)
	for _, list := range hints.TitlePlaylists {
		for _, stem := range list {
			stems[stem] = true
		}
	}
	for _, stem := range hints.IGDirectPlay {
		stems[stem] = true
	}
	return stems
}

func hintBoost(stems map[string]bool, mpls string) float64 {
	stem := strings.TrimSuffix(mpls, ".mpls")
	if stems[stem] || stems[mpls] {
		return 0.1
	}
	return 0
}

// capConfidence rounds to two decimals (so additive boosts stay exact in the
// serialized output) and clamps at 1.0.
func capConfidence(c float64) float64 {
	return math.Min(math.Round(c*100)/100, 1.0)
}

func makeSegmentRef(pi model.PlayItem, quantMS int) model.SegmentRef {
	return model.SegmentRef{
		Key:        pi.SegmentKey(quantMS),
		ClipID:     pi.ClipID,
		InMS:       model.TicksToMS(pi.InTime),
		OutMS:      model.TicksToMS(pi.OutTime),
		DurationMS: pi.DurationMS(),
		Label:      pi.Label,
	}
}

// episodesFromIndividual orders episode playlists by the clip id of their
// first BODY segment, tie-broken by mpls filename.
func episodesFromIndividual(
	playlists []*model.Playlist,
	groups []DupGroup,
	hints model.DiscHints,
	opts Options,
) []model.Episode {
	bodyClip := func(pl *model.Playlist) string {
		for _, pi := range pl.PlayItems {
			if pi.Label == model.LabelBody {
				return pi.ClipID
			}
		}
		if len(pl.PlayItems) > 0 {
			return pl.PlayItems[0].ClipID
		}
		return ""
	}

	ordered := make([]*model.Playlist, len(playlists))
	copy(ordered, playlists)
	sort.Slice(ordered, func(i, j int) bool {
		a, b := bodyClip(ordered[i]), bodyClip(ordered[j])
		if a != b {
			return a < b
		}
		return ordered[i].MPLS < ordered[j].MPLS
	})

	alternates := make(map[string][]string)
	for _, g := range groups {
		for _, alt := range g.Alternates {
			alternates[g.Representative.MPLS] = append(alternates[g.Representative.MPLS], alt.MPLS)
		}
	}
	stems := titleHintSet(hints)

	episodes := make([]model.Episode, 0, len(ordered))
	for i, pl := range ordered {
		segments := make([]model.SegmentRef, 0, len(pl.PlayItems))
		for _, pi := range pl.PlayItems {
			segments = append(segments, makeSegmentRef(pi, opts.QuantMS))
		}
		episodes = append(episodes, model.Episode{
			Number:     i + 1,
			Playlist:   pl.MPLS,
			DurationMS: pl.DurationMS(),
			Confidence: capConfidence(0.9 + hintBoost(stems, pl.MPLS)),
			Segments:   segments,
			Alternates: alternates[pl.MPLS],
		})
	}
	return episodes
}

func longestPlayAll(reps []*model.Playlist, playAll PlayAllCoverage) *model.Playlist {
	var best *model.Playlist
	for _, pl := range reps {
		if _, ok := playAll[pl.MPLS]; !ok {
			continue
		}
		if best == nil || pl.DurationMS() > best.DurationMS() ||
			(pl.DurationMS() == best.DurationMS() && pl.MPLS < best.MPLS) {
			best = pl
		}
	}
	return best
}

// episodesFromPlayAll decomposes a play-all playlist: each episode-length
// play item becomes one episode in playlist order.
func episodesFromPlayAll(pa *model.Playlist, hints model.DiscHints, opts Options) []model.Episode {
	stems := titleHintSet(hints)
	confidence := capConfidence(0.7 + hintBoost(stems, pa.MPLS))

	var episodes []model.Episode
	for _, pi := range pa.PlayItems {
		if pi.DurationSeconds() < opts.BodyMinSeconds {
			continue
		}
		episodes = append(episodes, model.Episode{
			Number:     len(episodes) + 1,
			Playlist:   pa.MPLS,
			DurationMS: pi.DurationMS(),
			Confidence: confidence,
			Segments:   []model.SegmentRef{makeSegmentRef(pi, opts.QuantMS)},
		})
	}
	return episodes
}

// chapterSplitCandidate returns the single long, chaptered playlist when the
// disc offers exactly one, or nil.
func chapterSplitCandidate(reps []*model.Playlist, opts Options) *model.Playlist {
	var found *model.Playlist
	for _, pl := range reps {
		if pl.DurationSeconds() < opts.ChapterSplitMinSeconds || len(pl.Chapters) < 2 {
			continue
		}
		if found != nil {
			return nil
		}
		found = pl
	}
	return found
}

// chapterPiece is one run of adjacent chapters merged toward the target
// episode length.
type chapterPiece struct {
	startChapter int
	startTicks   uint32
	endTicks     uint32
}

// episodesFromChapters partitions one long playlist along its chapter marks,
// merging adjacent chapters until each piece lands within +-20% of the
// target episode length.
func episodesFromChapters(pl *model.Playlist, hints model.DiscHints, opts Options) []model.Episode {
	marks := append([]model.ChapterMark(nil), pl.Chapters...)
	sort.Slice(marks, func(i, j int) bool { return marks[i].Timestamp < marks[j].Timestamp })

	endTicks := playlistEndTicks(pl)
	targetMS := chapterTargetMS(marks, hints, opts)

	pieces := mergeChapters(marks, endTicks, targetMS)
	if len(pieces) == 0 {
		return nil
	}

	confidence := 0.6
	if igMarksAgree(pieces, hints.IGChapterMarks) {
		confidence += 0.1
	}
	stems := titleHintSet(hints)
	confidence = capConfidence(confidence + hintBoost(stems, pl.MPLS))

	item := pl.PlayItems[0]
	episodes := make([]model.Episode, 0, len(pieces))
	for i, piece := range pieces {
		inMS := model.TicksToMS(piece.startTicks)
		outMS := model.TicksToMS(piece.endTicks)
		seg := model.SegmentRef{
			Key: model.SegmentKey{
				ClipID: item.ClipID,
				InMS:   model.QuantizeMS(inMS, opts.QuantMS),
				OutMS:  model.QuantizeMS(outMS, opts.QuantMS),
			},
			ClipID:     item.ClipID,
			InMS:       inMS,
			OutMS:      outMS,
			DurationMS: outMS - inMS,
			Label:      model.LabelBody,
		}
		episodes = append(episodes, model.Episode{
			Number:     i + 1,
			Playlist:   pl.MPLS,
			DurationMS: seg.DurationMS,
			Confidence: confidence,
			Segments:   []model.SegmentRef{seg},
		})
	}
	return episodes
}

func playlistEndTicks(pl *model.Playlist) uint32 {
	if len(pl.PlayItems) == 0 {
		return 0
	}
	return pl.PlayItems[len(pl.PlayItems)-1].OutTime
}

// chapterTargetMS prefers spacing implied by IG-reported chapter marks over
// the configured default episode length.
func chapterTargetMS(marks []model.ChapterMark, hints model.DiscHints, opts Options) float64 {
	igMarks := hints.IGChapterMarks
	if len(igMarks) >= 2 {
		var spans []float64
		for i := 0; i+1 < len(igMarks); i++ {
			a, b := igMarks[i], igMarks[i+1]
			if a >= 0 && b > a && b < len(marks) {
				spans = append(spans, model.TicksToMS(marks[b].Timestamp)-model.TicksToMS(marks[a].Timestamp))
			}
		}
		if len(spans) > 0 {
			sort.Float64s(spans)
			return spans[len(spans)/2]
		}
	}
	return opts.DefaultEpisodeMinutes * 60 * 1000
}

// mergeChapters greedily accumulates chapter intervals until a piece reaches
// at least 80% of the target; the trailing remainder folds into the last
// piece when it is too short to stand alone.
func mergeChapters(marks []model.ChapterMark, endTicks uint32, targetMS float64) []chapterPiece {
	if len(marks) < 2 || targetMS <= 0 {
		return nil
	}
	boundaries := make([]uint32, 0, len(marks)+1)
	for _, m := range marks {
		boundaries = append(boundaries, m.Timestamp)
	}
	if endTicks > boundaries[len(boundaries)-1] {
		boundaries = append(boundaries, endTicks)
	}

	var pieces []chapterPiece
	pieceStart := 0
	for i := 0; i+1 < len(boundaries); i++ {
		spanMS := model.TicksToMS(boundaries[i+1]) - model.TicksToMS(boundaries[pieceStart])
		if spanMS >= 0.8*targetMS {
			pieces = append(pieces, chapterPiece{
				startChapter: pieceStart,
				startTicks:   boundaries[pieceStart],
				endTicks:     boundaries[i+1],
			})
			pieceStart = i + 1
		}
	}
	if pieceStart < len(boundaries)-1 {
		tailMS := model.TicksToMS(boundaries[len(boundaries)-1]) - model.TicksToMS(boundaries[pieceStart])
		if tailMS >= 0.8*targetMS || len(pieces) == 0 {
			pieces = append(pieces, chapterPiece{
				startChapter: pieceStart,
				startTicks:   boundaries[pieceStart],
				endTicks:     boundaries[len(boundaries)-1],
			})
		} else {
			pieces[len(pieces)-1].endTicks = boundaries[len(boundaries)-1]
		}
	}
	return pieces
}

// igMarksAgree reports whether every inferred split start sits within one
// chapter index of an IG-reported chapter mark.
func igMarksAgree(pieces []chapterPiece, igMarks []int) bool {
	if len(igMarks) < 2 {
		return false
	}
	for _, piece := range pieces {
		matched := false
		for _, mark := range igMarks {
			if abs(mark-piece.startChapter) <= 1 {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
