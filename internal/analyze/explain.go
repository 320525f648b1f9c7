package analyze

import (
	"fmt"
	"sort"
	"strings"

	"bdpl/internal/model"
)

// FormatDuration renders milliseconds as H:MM:SS or M:SS.
func FormatDuration(ms float64) string {
	totalS := int(ms / 1000)
	h := totalS / 3600
	m := (totalS % 3600) / 60
	s := totalS % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Explain renders a deterministic, human-auditable account of the analysis:
// disc summary, per-playlist classification, episode list, warnings, and the
// navigation hints that influenced confidence. It renders only; no decision
// is taken here.
func Explain(da *model.DiscAnalysis) string {
	var b strings.Builder

	clipIDs := make(map[string]bool)
	for _, pl := range da.Playlists {
		for _, pi := range pl.PlayItems {
			clipIDs[pi.ClipID] = true
		}
	}

	fmt.Fprintf(&b, "Disc: %s\n", da.Path)
	fmt.Fprintf(&b, "Playlists: %d  Clips: %d  Episodes: %d\n\n", len(da.Playlists), len(clipIDs), len(da.Episodes))

	if len(da.Playlists) > 0 {
		b.WriteString("Playlists:\n")
		for _, pl := range da.Playlists {
			class := string(pl.Classification)
			if class == "" {
				class = "unclassified"
			}
			fmt.Fprintf(&b, "  %-14s %10s  %3d item(s)  %s\n",
				pl.MPLS, FormatDuration(pl.DurationMS()), len(pl.PlayItems), class)
		}
		b.WriteString("\n")
	}

	if len(da.Episodes) > 0 {
		b.WriteString("Episodes:\n")
		for _, ep := range da.Episodes {
			clips := make([]string, len(ep.Segments))
			labels := make([]string, len(ep.Segments))
			for i, seg := range ep.Segments {
				clips[i] = seg.ClipID
				labels[i] = string(seg.Label)
			}
			fmt.Fprintf(&b, "  Episode %2d  %10s  confidence=%.2f  playlist=%s  clips=[%s]  labels=[%s]\n",
				ep.Number, FormatDuration(ep.DurationMS), ep.Confidence, ep.Playlist,
				strings.Join(clips, ", "), strings.Join(labels, ", "))
			if len(ep.Alternates) > 0 {
				fmt.Fprintf(&b, "              alternates: %s\n", strings.Join(ep.Alternates, ", "))
			}
		}
		b.WriteString("\n")
	}

	if len(da.DuplicateGroups) > 0 {
		b.WriteString("Duplicate groups:\n")
		for _, group := range da.DuplicateGroups {
			fmt.Fprintf(&b, "  %s\n", strings.Join(group, ", "))
		}
		b.WriteString("\n")
	}

	if len(da.PlayAll) > 0 {
		fmt.Fprintf(&b, "Play-all playlists: %s\n\n", strings.Join(da.PlayAll, ", "))
	}

	if len(da.Warnings) > 0 {
		b.WriteString("Warnings:\n")
		for _, w := range da.Warnings {
			fmt.Fprintf(&b, "  [%s] %s\n", w.Code, w.Message)
		}
		b.WriteString("\n")
	}

	writeHints(&b, da.Hints)
	return b.String()
}

func writeHints(b *strings.Builder, hints model.DiscHints) {
	hasTitles := len(hints.TitlePlaylists) > 0
	hasIG := len(hints.IGChapterMarks) > 0 || len(hints.IGDirectPlay) > 0
	if !hasTitles && !hasIG {
		return
	}

	b.WriteString("Hints:\n")
	if hasTitles {
		titles := make([]int, 0, len(hints.TitlePlaylists))
		for t := range hints.TitlePlaylists {
			titles = append(titles, t)
		}
		sort.Ints(titles)
		for _, t := range titles {
			stems := hints.TitlePlaylists[t]
			names := make([]string, len(stems))
			for i, stem := range stems {
				names[i] = stem + ".mpls"
			}
			fmt.Fprintf(b, "  Title %d -> %s\n", t, strings.Join(names, ", "))
		}
	}
	if len(hints.IGDirectPlay) > 0 {
		fmt.Fprintf(b, "  IG direct play: %s\n", strings.Join(hints.IGDirectPlay, ", "))
	}
	if len(hints.IGChapterMarks) > 0 {
		marks := make([]string, len(hints.IGChapterMarks))
		for i, m := range hints.IGChapterMarks {
			marks[i] = fmt.Sprint(m)
		}
		fmt.Fprintf(b, "  IG chapter marks: [%s]\n", strings.Join(marks, ", "))
	}
	b.WriteString("\n")
}
