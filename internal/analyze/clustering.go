package analyze

import (
	"math"
	"sort"

	"bdpl/internal/model"
)

// ClusterResult is the outcome of the duration histogram.
type ClusterResult struct {
	// Candidates are the members of the dominant duration bucket: the
	// playlists most likely to be individual episodes, in mpls order.
	Candidates []*model.Playlist

	// Short holds playlists below the short threshold; they are extras, not
	// episodes.
	Short []*model.Playlist

	// BucketWidthMS is the effective histogram bucket width.
	BucketWidthMS float64
}

// IsCandidate reports whether the named playlist is in the dominant bucket.
func (c ClusterResult) IsCandidate(mpls string) bool {
	for _, pl := range c.Candidates {
		if pl.MPLS == mpls {
			return true
		}
	}
	return false
}

// ClusterByDuration histograms representative playlists by duration and
// selects the dominant bucket as the episode-length cluster. Buckets are
// max(30 s, 5% of the median duration) wide; ties are broken by total member
// duration, then by mean duration.
func ClusterByDuration(playlists []*model.Playlist, opts Options) ClusterResult {
	var result ClusterResult
	var eligible []*model.Playlist
	for _, pl := range playlists {
		if pl.DurationSeconds() < opts.ShortSeconds {
			result.Short = append(result.Short, pl)
			continue
		}
		eligible = append(eligible, pl)
	}
	if len(eligible) == 0 {
		return result
	}

	durations := make([]float64, len(eligible))
	for i, pl := range eligible {
		durations[i] = pl.DurationMS()
	}
	sort.Float64s(durations)
	median := durations[len(durations)/2]
	if len(durations)%2 == 0 {
		median = (durations[len(durations)/2-1] + durations[len(durations)/2]) / 2
	}

	width := math.Max(opts.ClusterMinBucketSeconds*1000, 0.05*median)
	result.BucketWidthMS = width

	// Buckets are centered with round-to-nearest so a cluster sitting on a
	// bucket edge is not split in half.
	buckets := make(map[int][]*model.Playlist)
	for _, pl := range eligible {
		idx := int(math.Round(pl.DurationMS() / width))
		buckets[idx] = append(buckets[idx], pl)
	}

	indexes := make([]int, 0, len(buckets))
	for idx := range buckets {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	bestIdx := indexes[0]
	for _, idx := range indexes[1:] {
		if betterBucket(buckets[idx], buckets[bestIdx]) {
			bestIdx = idx
		}
	}

	candidates := buckets[bestIdx]
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].MPLS < candidates[j].MPLS })
	result.Candidates = candidates
	return result
}

// betterBucket orders buckets by member count, then total duration, then
// mean duration.
func betterBucket(a, b []*model.Playlist) bool {
	if len(a) != len(b) {
		return len(a) > len(b)
	}
	totalA, totalB := totalDuration(a), totalDuration(b)
	if totalA != totalB {
		return totalA > totalB
	}
	return totalA/float64(len(a)) > totalB/float64(len(b))
}

func totalDuration(playlists []*model.Playlist) float64 {
	var total float64
	for _, pl := range playlists {
		total += pl.DurationMS()
	}
	return total
}
