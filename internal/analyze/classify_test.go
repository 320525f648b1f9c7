package analyze

import (
	"fmt"
	"testing"

	"bdpl/internal/model"
	"bdpl/internal/testsupport"
)

// threeEpisodeDisc builds the canonical share-structure disc: three episode
// playlists with a common OP/ED and unique bodies, plus short extras.
func threeEpisodeDisc() []*model.Playlist {
	op := testsupport.NewPlayItem("00001", 0, 89.9)
	ed := testsupport.NewPlayItem("00002", 0, 89.5)

	var playlists []*model.Playlist
	for i := 0; i < 3; i++ {
		body := testsupport.NewPlayItem(fmt.Sprintf("%05d", 7+i), 0, 1440)
		preview := testsupport.NewPlayItem(fmt.Sprintf("%05d", 30+i), 0, 15)
		playlists = append(playlists, testsupport.NewPlaylist(
			fmt.Sprintf("%05d.mpls", i+1), op, body, ed, preview))
	}
	playlists = append(playlists,
		testsupport.NewPlaylist("00090.mpls", testsupport.NewPlayItem("00090", 0, 5)),
		testsupport.NewPlaylist("00091.mpls", testsupport.NewPlayItem("00091", 0, 100)),
	)
	return playlists
}

func TestLabelSegments(t *testing.T) {
	playlists := threeEpisodeDisc()
	opts := DefaultOptions()
	cluster := ClusterByDuration(playlists, opts)
	if len(cluster.Candidates) != 3 {
		t.Fatalf("candidates = %d, want 3", len(cluster.Candidates))
	}

	LabelSegments(playlists, cluster.Candidates, opts)

	ep := playlists[0]
	if got := ep.PlayItems[0].Label; got != model.LabelOP {
		t.Fatalf("shared prefix label = %s, want OP", got)
	}
	if got := ep.PlayItems[1].Label; got != model.LabelBody {
		t.Fatalf("body label = %s, want BODY", got)
	}
	if got := ep.PlayItems[2].Label; got != model.LabelED {
		t.Fatalf("shared suffix label = %s, want ED", got)
	}
	if got := ep.PlayItems[3].Label; got != model.LabelPreview {
		t.Fatalf("trailing short label = %s, want PREVIEW", got)
	}
}

func TestLabelSegmentsLegal(t *testing.T) {
	legal := testsupport.NewPlayItem("00000", 0, 4)
	var playlists []*model.Playlist
	for i := 0; i < 3; i++ {
		body := testsupport.NewPlayItem(fmt.Sprintf("%05d", 7+i), 0, 1440)
		playlists = append(playlists, testsupport.NewPlaylist(
			fmt.Sprintf("%05d.mpls", i+1), legal, body))
	}

	opts := DefaultOptions()
	cluster := ClusterByDuration(playlists, opts)
	LabelSegments(playlists, cluster.Candidates, opts)

	if got := playlists[0].PlayItems[0].Label; got != model.LabelLegal {
		t.Fatalf("legal label = %s, want LEGAL", got)
	}
}

func TestClassifyPlaylists(t *testing.T) {
	playlists := threeEpisodeDisc()
	opts := DefaultOptions()
	groups := FindDuplicates(playlists, nil, opts.QuantMS)
	reps := Representatives(playlists, groups)
	cluster := ClusterByDuration(reps, opts)
	playAll := DetectPlayAll(reps, opts)
	LabelSegments(playlists, cluster.Candidates, opts)
	ClassifyPlaylists(playlists, groups, playAll, cluster, opts)

	want := map[string]model.PlaylistClass{
		"00001.mpls": model.ClassEpisode,
		"00002.mpls": model.ClassEpisode,
		"00003.mpls": model.ClassEpisode,
		"00090.mpls": model.ClassBumper,
		"00091.mpls": model.ClassExtra,
	}
	for _, pl := range playlists {
		if pl.Classification != want[pl.MPLS] {
			t.Errorf("%s = %s, want %s", pl.MPLS, pl.Classification, want[pl.MPLS])
		}
	}
}

func TestClassifyCreditlessOP(t *testing.T) {
	op := testsupport.NewPlayItem("00001", 0, 89.9)
	var playlists []*model.Playlist
	for i := 0; i < 2; i++ {
		body := testsupport.NewPlayItem(fmt.Sprintf("%05d", 7+i), 0, 1440)
		playlists = append(playlists, testsupport.NewPlaylist(
			fmt.Sprintf("%05d.mpls", i+1), op, body))
	}
	// A standalone playlist reusing the OP segment: the creditless OP.
	creditless := testsupport.NewPlaylist("00050.mpls", op)
	playlists = append(playlists, creditless)

	opts := DefaultOptions()
	cluster := ClusterByDuration(playlists, opts)
	playAll := DetectPlayAll(playlists, opts)
	LabelSegments(playlists, cluster.Candidates, opts)
	ClassifyPlaylists(playlists, nil, playAll, cluster, opts)

	if creditless.Classification != model.ClassCreditlessOP {
		t.Fatalf("creditless OP classified as %s", creditless.Classification)
	}
}

func TestClassifyDuplicateVariant(t *testing.T) {
	a := testsupport.NewPlaylist("00001.mpls", testsupport.WithStreams(
		testsupport.NewPlayItem("00010", 0, 1420),
		testsupport.VideoStream(0x1011),
		testsupport.AudioStream(0x1100, "jpn"),
		testsupport.AudioStream(0x1101, "eng"),
	))
	b := testsupport.NewPlaylist("00002.mpls", testsupport.WithStreams(
		testsupport.NewPlayItem("00010", 0, 1420),
		testsupport.VideoStream(0x1011),
		testsupport.AudioStream(0x1100, "jpn"),
	))
	playlists := []*model.Playlist{a, b}

	opts := DefaultOptions()
	groups := FindDuplicates(playlists, nil, opts.QuantMS)
	reps := Representatives(playlists, groups)
	cluster := ClusterByDuration(reps, opts)
	playAll := DetectPlayAll(reps, opts)
	LabelSegments(playlists, cluster.Candidates, opts)
	ClassifyPlaylists(playlists, groups, playAll, cluster, opts)

	if b.Classification != model.ClassDuplicateVariant {
		t.Fatalf("alternate classified as %s, want duplicate_variant", b.Classification)
	}
	if a.Classification == model.ClassDuplicateVariant {
		t.Fatalf("representative classified as duplicate_variant")
	}
}

func TestClassifyDigitalArchive(t *testing.T) {
	var items []model.PlayItem
	for i := 0; i < 30; i++ {
		items = append(items, testsupport.NewPlayItem(fmt.Sprintf("%05d", 100+i), 0, 0.4))
	}
	archive := &model.Playlist{MPLS: "00070.mpls", PlayItems: items}
	playlists := []*model.Playlist{archive}

	opts := DefaultOptions()
	cluster := ClusterByDuration(playlists, opts)
	LabelSegments(playlists, cluster.Candidates, opts)
	ClassifyPlaylists(playlists, nil, nil, cluster, opts)

	if archive.Classification != model.ClassDigitalArchive {
		t.Fatalf("archive classified as %s", archive.Classification)
	}
}
