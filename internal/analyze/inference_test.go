package analyze

import (
	"fmt"
	"testing"

	"bdpl/internal/model"
	"bdpl/internal/testsupport"
)

func runClassification(playlists []*model.Playlist, opts Options) ([]DupGroup, PlayAllCoverage, []*model.Playlist) {
	groups := FindDuplicates(playlists, nil, opts.QuantMS)
	reps := Representatives(playlists, groups)
	cluster := ClusterByDuration(reps, opts)
	playAll := DetectPlayAll(reps, opts)
	LabelSegments(playlists, cluster.Candidates, opts)
	ClassifyPlaylists(playlists, groups, playAll, cluster, opts)
	return groups, playAll, reps
}

func TestInferIndividualEpisodes(t *testing.T) {
	// Three episode playlists sharing OP/ED with unique bodies 00007..00009,
	// authored out of filename order so body clip id drives episode order.
	op := testsupport.NewPlayItem("00001", 0, 89.9)
	ed := testsupport.NewPlayItem("00002", 0, 89.5)
	bodies := []string{"00009", "00007", "00008"}

	var playlists []*model.Playlist
	for i, body := range bodies {
		playlists = append(playlists, testsupport.NewPlaylist(
			fmt.Sprintf("%05d.mpls", i+1),
			op, testsupport.NewPlayItem(body, 0, 1440), ed))
	}
	playlists = append(playlists,
		testsupport.NewPlaylist("00090.mpls", testsupport.NewPlayItem("00090", 0, 5)),
		testsupport.NewPlaylist("00091.mpls", testsupport.NewPlayItem("00091", 0, 95)),
		testsupport.NewPlaylist("00092.mpls", testsupport.NewPlayItem("00092", 0, 110)),
	)

	opts := DefaultOptions()
	groups, playAll, reps := runClassification(playlists, opts)
	result := InferEpisodes(reps, groups, playAll, model.DiscHints{}, opts)

	if result.Strategy != StrategyIndividual {
		t.Fatalf("strategy = %s, want individual", result.Strategy)
	}
	if len(result.Episodes) != 3 {
		t.Fatalf("episodes = %d, want 3", len(result.Episodes))
	}
	// Ordered by body clip id: 00007 (00002.mpls), 00008 (00003.mpls),
	// 00009 (00001.mpls).
	wantOrder := []string{"00002.mpls", "00003.mpls", "00001.mpls"}
	for i, ep := range result.Episodes {
		if ep.Number != i+1 {
			t.Errorf("episode %d numbered %d", i, ep.Number)
		}
		if ep.Playlist != wantOrder[i] {
			t.Errorf("episode %d playlist = %s, want %s", ep.Number, ep.Playlist, wantOrder[i])
		}
		if ep.Confidence < 0.9 || ep.Confidence > 1.0 {
			t.Errorf("episode %d confidence = %v", ep.Number, ep.Confidence)
		}
		if len(ep.Segments) != 3 {
			t.Errorf("episode %d segments = %d, want 3", ep.Number, len(ep.Segments))
		}
	}
}

func TestInferIndividualTitleHintBoost(t *testing.T) {
	op := testsupport.NewPlayItem("00001", 0, 89.9)
	var playlists []*model.Playlist
	for i := 0; i < 2; i++ {
		playlists = append(playlists, testsupport.NewPlaylist(
			fmt.Sprintf("%05d.mpls", i+1),
			op, testsupport.NewPlayItem(fmt.Sprintf("%05d", 7+i), 0, 1440)))
	}

	opts := DefaultOptions()
	groups, playAll, reps := runClassification(playlists, opts)
	hints := model.DiscHints{TitlePlaylists: map[int][]string{1: {"00001"}}}
	result := InferEpisodes(reps, groups, playAll, hints, opts)

	if len(result.Episodes) != 2 {
		t.Fatalf("episodes = %d, want 2", len(result.Episodes))
	}
	if result.Episodes[0].Confidence != 1.0 {
		t.Errorf("hinted episode confidence = %v, want 1.0", result.Episodes[0].Confidence)
	}
	if result.Episodes[1].Confidence != 0.9 {
		t.Errorf("unhinted episode confidence = %v, want 0.9", result.Episodes[1].Confidence)
	}
}

func TestInferPlayAllDecomposition(t *testing.T) {
	// One play-all concatenation of four episode-length items; everything
	// else on the disc is short.
	playAll := testsupport.NewPlaylist("00002.mpls",
		testsupport.NewPlayItem("00011", 0, 1560),
		testsupport.NewPlayItem("00012", 0, 1575),
		testsupport.NewPlayItem("00013", 0, 1636),
		testsupport.NewPlayItem("00014", 0, 1642),
	)
	playlists := []*model.Playlist{
		playAll,
		testsupport.NewPlaylist("00003.mpls", testsupport.NewPlayItem("00090", 0, 8)),
		testsupport.NewPlaylist("00004.mpls", testsupport.NewPlayItem("00091", 0, 95)),
		testsupport.NewPlaylist("00005.mpls", testsupport.NewPlayItem("00092", 0, 100)),
		testsupport.NewPlaylist("00006.mpls", testsupport.NewPlayItem("00093", 0, 110)),
	}

	opts := DefaultOptions()
	groups, coverage, reps := runClassification(playlists, opts)
	if playAll.Classification != model.ClassPlayAll {
		t.Fatalf("play-all classified as %s", playAll.Classification)
	}

	result := InferEpisodes(reps, groups, coverage, model.DiscHints{}, opts)
	if result.Strategy != StrategyPlayAll {
		t.Fatalf("strategy = %s, want play_all_decomposition", result.Strategy)
	}
	if len(result.Episodes) != 4 {
		t.Fatalf("episodes = %d, want 4", len(result.Episodes))
	}
	for i, ep := range result.Episodes {
		if ep.Number != i+1 || ep.Playlist != "00002.mpls" {
			t.Errorf("episode %d = %+v", i, ep)
		}
		if ep.Confidence != 0.7 {
			t.Errorf("episode %d confidence = %v, want 0.7", ep.Number, ep.Confidence)
		}
	}
	if !hasWarningCode(result.Warnings, model.WarnPlayAllOnly) {
		t.Fatalf("warnings = %v, want PLAY_ALL_ONLY", result.Warnings)
	}
}

func TestInferPlayAllTitleHintRaisesConfidence(t *testing.T) {
	playAll := testsupport.NewPlaylist("00002.mpls",
		testsupport.NewPlayItem("00011", 0, 1560),
		testsupport.NewPlayItem("00012", 0, 1575),
	)
	playlists := []*model.Playlist{playAll}

	opts := DefaultOptions()
	groups, coverage, reps := runClassification(playlists, opts)
	hints := model.DiscHints{TitlePlaylists: map[int][]string{1: {"00002"}}}
	result := InferEpisodes(reps, groups, coverage, hints, opts)

	if len(result.Episodes) != 2 {
		t.Fatalf("episodes = %d, want 2", len(result.Episodes))
	}
	for _, ep := range result.Episodes {
		if ep.Confidence != 0.8 {
			t.Errorf("confidence = %v, want 0.8", ep.Confidence)
		}
	}
}

func TestInferChapterSplit(t *testing.T) {
	// A single 110-minute playlist with chapter marks every 11 minutes:
	// pieces merge pairwise toward the 22-minute default target.
	var marks []model.ChapterMark
	for i := 0; i < 10; i++ {
		marks = append(marks, model.ChapterMark{
			ID:        i,
			Type:      1,
			Timestamp: testsupport.Ticks(float64(i) * 660),
		})
	}
	long := testsupport.NewPlaylist("00001.mpls", testsupport.NewPlayItem("00001", 0, 6600))
	long.Chapters = marks
	playlists := []*model.Playlist{long}

	opts := DefaultOptions()
	groups, coverage, reps := runClassification(playlists, opts)
	result := InferEpisodes(reps, groups, coverage, model.DiscHints{}, opts)

	if result.Strategy != StrategyChapterSplit {
		t.Fatalf("strategy = %s, want chapter_split", result.Strategy)
	}
	if len(result.Episodes) != 5 {
		t.Fatalf("episodes = %d, want 5", len(result.Episodes))
	}
	for i, ep := range result.Episodes {
		if ep.Number != i+1 {
			t.Errorf("episode numbering broken at %d", i)
		}
		if ep.Confidence != 0.6 {
			t.Errorf("episode %d confidence = %v, want 0.6", ep.Number, ep.Confidence)
		}
		minutes := ep.DurationMS / 60000
		if minutes < 17.6 || minutes > 26.4 {
			t.Errorf("episode %d duration = %.1f min, outside +-20%% of 22", ep.Number, minutes)
		}
	}
	// Pieces must tile the playlist without overlap.
	for i := 0; i+1 < len(result.Episodes); i++ {
		cur := result.Episodes[i].Segments[0]
		next := result.Episodes[i+1].Segments[0]
		if cur.OutMS != next.InMS {
			t.Errorf("piece %d ends at %v but piece %d starts at %v", i+1, cur.OutMS, i+2, next.InMS)
		}
	}
	if !hasWarningCode(result.Warnings, model.WarnLowConfidence) {
		t.Fatalf("warnings = %v, want LOW_CONFIDENCE_ORDER", result.Warnings)
	}
}

func TestInferChapterSplitIGBoost(t *testing.T) {
	var marks []model.ChapterMark
	for i := 0; i < 10; i++ {
		marks = append(marks, model.ChapterMark{ID: i, Type: 1, Timestamp: testsupport.Ticks(float64(i) * 660)})
	}
	long := testsupport.NewPlaylist("00001.mpls", testsupport.NewPlayItem("00001", 0, 6600))
	long.Chapters = marks
	playlists := []*model.Playlist{long}

	opts := DefaultOptions()
	groups, coverage, reps := runClassification(playlists, opts)
	hints := model.DiscHints{IGChapterMarks: []int{0, 2, 4, 6, 8}}
	result := InferEpisodes(reps, groups, coverage, hints, opts)

	if len(result.Episodes) != 5 {
		t.Fatalf("episodes = %d, want 5", len(result.Episodes))
	}
	for _, ep := range result.Episodes {
		if ep.Confidence != 0.7 {
			t.Errorf("confidence = %v, want 0.7 with IG agreement", ep.Confidence)
		}
	}
	if hasWarningCode(result.Warnings, model.WarnLowConfidence) {
		t.Fatalf("LOW_CONFIDENCE_ORDER should clear at 0.7: %v", result.Warnings)
	}
}

func TestInferNoEpisodes(t *testing.T) {
	playlists := []*model.Playlist{
		testsupport.NewPlaylist("00090.mpls", testsupport.NewPlayItem("00090", 0, 5)),
		testsupport.NewPlaylist("00091.mpls", testsupport.NewPlayItem("00091", 0, 95)),
	}
	opts := DefaultOptions()
	groups, coverage, reps := runClassification(playlists, opts)
	result := InferEpisodes(reps, groups, coverage, model.DiscHints{}, opts)

	if result.Strategy != StrategyNone || len(result.Episodes) != 0 {
		t.Fatalf("result = %+v, want none", result)
	}
	if !hasWarningCode(result.Warnings, model.WarnNoEpisodesFound) {
		t.Fatalf("warnings = %v, want NO_EPISODES_FOUND", result.Warnings)
	}
}

func TestInferDuplicateAlternatesAttached(t *testing.T) {
	op := testsupport.NewPlayItem("00001", 0, 89.9)
	rich := testsupport.NewPlaylist("00001.mpls", testsupport.WithStreams(
		testsupport.NewPlayItem("00007", 0, 1440),
		testsupport.VideoStream(0x1011),
		testsupport.AudioStream(0x1100, "jpn"),
		testsupport.AudioStream(0x1101, "eng"),
		testsupport.SubtitleStream(0x1200, "eng"),
		testsupport.SubtitleStream(0x1201, "jpn"),
	))
	poor := testsupport.NewPlaylist("00005.mpls", testsupport.WithStreams(
		testsupport.NewPlayItem("00007", 0, 1440),
		testsupport.VideoStream(0x1011),
		testsupport.AudioStream(0x1100, "jpn"),
		testsupport.SubtitleStream(0x1200, "eng"),
	))
	other := testsupport.NewPlaylist("00002.mpls", op, testsupport.NewPlayItem("00008", 0, 1350.1))

	playlists := []*model.Playlist{rich, poor, other}
	opts := DefaultOptions()
	groups, coverage, reps := runClassification(playlists, opts)
	result := InferEpisodes(reps, groups, coverage, model.DiscHints{}, opts)

	if len(result.Episodes) != 2 {
		t.Fatalf("episodes = %d, want 2: %+v", len(result.Episodes), result.Episodes)
	}
	var hinted *model.Episode
	for i := range result.Episodes {
		if result.Episodes[i].Playlist == "00001.mpls" {
			hinted = &result.Episodes[i]
		}
	}
	if hinted == nil {
		t.Fatalf("representative 00001.mpls missing from episodes: %+v", result.Episodes)
	}
	if len(hinted.Alternates) != 1 || hinted.Alternates[0] != "00005.mpls" {
		t.Fatalf("alternates = %v, want [00005.mpls]", hinted.Alternates)
	}
}

func hasWarningCode(warnings []model.Warning, code model.WarningCode) bool {
	for _, w := range warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}
