package analyze

// Options carries the heuristic thresholds of the analysis pipeline. The
// zero value is not useful; start from DefaultOptions.
type Options struct {
	// QuantMS is the quantization step for loose segment keys.
	QuantMS int

	// ShortSeconds is the minimum duration for a playlist to take part in
	// duration clustering; anything shorter is a short extra, not an episode.
	ShortSeconds float64

	// BumperSeconds is the maximum duration of a bumper playlist.
	BumperSeconds float64

	// LegalMaxSeconds is the maximum duration of a legal/licensing segment.
	LegalMaxSeconds float64

	OPMinSeconds      float64
	OPMaxSeconds      float64
	EDMinSeconds      float64
	EDMaxSeconds      float64
	PreviewMaxSeconds float64

	// BodyMinSeconds is the minimum duration for a BODY segment and for a
	// play item to count as one episode during play-all decomposition.
	BodyMinSeconds float64

	// ChapterSplitMinSeconds is the minimum playlist duration for the
	// chapter-split strategy to apply.
	ChapterSplitMinSeconds float64

	// DefaultEpisodeMinutes is the chapter-split target length used when no
	// IG chapter hints are available.
	DefaultEpisodeMinutes float64

	// ClusterMinBucketSeconds is the floor of the duration histogram bucket
	// width; the effective width is max(this, 5% of the median duration).
	ClusterMinBucketSeconds float64
}

// DefaultOptions returns the tuned thresholds described in the config docs.
func DefaultOptions() Options {
	return Options{
		QuantMS:                250,
		ShortSeconds:           180,
		BumperSeconds:          10,
		LegalMaxSeconds:        8,
		OPMinSeconds:           60,
		OPMaxSeconds:           150,
		EDMinSeconds:           60,
		EDMaxSeconds:           180,
		PreviewMaxSeconds:      60,
		BodyMinSeconds:         600,
		ChapterSplitMinSeconds: 2400,
		DefaultEpisodeMinutes:  22,
		ClusterMinBucketSeconds: 30,
	}
}
