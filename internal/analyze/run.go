package analyze

import (
	"log/slog"
	"sort"
	"strconv"

	"bdpl/internal/logging"
	"bdpl/internal/model"
)

// Input bundles the parsed artifacts the pipeline consumes. Playlists carry
// whatever parse order the scanner used; Run re-sorts them by mpls filename.
type Input struct {
	Path      string
	Playlists []*model.Playlist
	Clips     map[string]*model.Clip
	Hints     model.DiscHints
	Warnings  []model.Warning
}

// Run executes the full analysis pipeline: signatures -> dedup -> duration
// clustering -> segment graph -> classification -> episode inference. It
// never fails; parse- and analysis-level problems surface as warnings on the
// returned aggregate.
func Run(in Input, opts Options, logger *slog.Logger) *model.DiscAnalysis {
	logger = logging.NewComponentLogger(logger, "analyze")

	playlists := append([]*model.Playlist(nil), in.Playlists...)
	sort.Slice(playlists, func(i, j int) bool { return playlists[i].MPLS < playlists[j].MPLS })

	da := &model.DiscAnalysis{
		Path:      in.Path,
		Playlists: playlists,
		Clips:     in.Clips,
		Hints:     in.Hints,
		Warnings:  append([]model.Warning(nil), in.Warnings...),
	}

	if len(playlists) == 0 {
		da.Warnings = append(da.Warnings, model.NewWarning(model.WarnNoEpisodesFound,
			"no readable playlists found"))
		return da
	}

	groups := FindDuplicates(playlists, in.Clips, opts.QuantMS)
	if len(groups) > 0 {
		names := make([][]string, len(groups))
		total := 0
		for i, g := range groups {
			names[i] = g.Names()
			total += len(g.Alternates)
		}
		da.DuplicateGroups = names
		da.Warnings = append(da.Warnings, model.NewWarning(model.WarnDuplicateVariants,
			"near-duplicate playlist variants detected",
			"groups", strconv.Itoa(len(groups)), "variants", strconv.Itoa(total)))
		logger.Debug("deduplicated playlists",
			logging.Int("groups", len(groups)),
			logging.Int("variants", total))
	}
	reps := Representatives(playlists, groups)

	cluster := ClusterByDuration(reps, opts)
	logger.Debug("duration clustering",
		logging.Int("candidates", len(cluster.Candidates)),
		logging.Int("short", len(cluster.Short)),
		logging.Float64("bucket_width_ms", cluster.BucketWidthMS))

	playAll := DetectPlayAll(reps, opts)
	da.PlayAll = playAll.Names()

	LabelSegments(playlists, cluster.Candidates, opts)
	ClassifyPlaylists(playlists, groups, playAll, cluster, opts)

	inference := InferEpisodes(reps, groups, playAll, in.Hints, opts)
	da.Episodes = inference.Episodes
	da.Warnings = append(da.Warnings, inference.Warnings...)

	logger.Info("disc analysis complete",
		logging.String("strategy", string(inference.Strategy)),
		logging.Int("playlists", len(playlists)),
		logging.Int("episodes", len(da.Episodes)),
		logging.Int("warnings", len(da.Warnings)))
	return da
}
