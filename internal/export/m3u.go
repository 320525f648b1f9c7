package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bdpl/internal/model"
)

// WriteM3U generates one .m3u debug playlist per episode under outDir and
// returns the created paths. Each entry references the m2ts file with VLC
// start/stop options so an episode can be previewed without remuxing.
func WriteM3U(da *model.DiscAnalysis, outDir string) ([]string, error) {
	if len(da.Episodes) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return nil, err
	}
	streamDir := filepath.Join(da.Path, "STREAM")

	// VLC normalizes m2ts PTS to start at zero, so seek positions are
	// relative to each clip's earliest referenced in-time.
	ptsBase := clipPTSBase(da)

	var created []string
	for _, ep := range da.Episodes {
		name := fmt.Sprintf("Episode_%02d.m3u", ep.Number)
		path := filepath.Join(absOut, name)

		lines := []string{"#EXTM3U"}
		for _, seg := range ep.Segments {
			durS := seg.DurationMS / 1000.0
			m2ts := filepath.Join(streamDir, seg.ClipID+".m2ts")
			rel, err := filepath.Rel(absOut, m2ts)
			if err != nil {
				rel = m2ts
			}
			base, ok := ptsBase[seg.ClipID]
			if !ok {
				base = seg.InMS
			}
			startS := (seg.InMS - base) / 1000.0
			stopS := startS + durS

			lines = append(lines, fmt.Sprintf("#EXTINF:%.3f,%s (%s)", durS, seg.ClipID, seg.Label))
			if startS > 0.5 {
				lines = append(lines, fmt.Sprintf("#EXTVLCOPT:start-time=%.3f", startS))
			}
			lines = append(lines, fmt.Sprintf("#EXTVLCOPT:stop-time=%.3f", stopS))
			lines = append(lines, rel)
		}
		if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
			return created, fmt.Errorf("write %s: %w", name, err)
		}
		created = append(created, path)
	}
	return created, nil
}

func clipPTSBase(da *model.DiscAnalysis) map[string]float64 {
	base := make(map[string]float64)
	for _, pl := range da.Playlists {
		for _, pi := range pl.PlayItems {
			ms := model.TicksToMS(pi.InTime)
			if existing, ok := base[pi.ClipID]; !ok || ms < existing {
				base[pi.ClipID] = ms
			}
		}
	}
	return base
}
