package disc

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"bdpl/internal/analyze"
	"bdpl/internal/bdmv"
	"bdpl/internal/logging"
	"bdpl/internal/model"
)

// gatherHints collects navigation evidence: the title table from index.bdmv,
// playlist references from MovieObject.bdmv, and (when enabled) button
// actions from menu IG streams. Hints are advisory; nothing here can fail
// the scan.
func (s *Scanner) gatherHints(ctx context.Context, root string, input *analyze.Input, logger *slog.Logger) {
	index := s.parseIndexFile(root, logger)
	mobj := s.parseMovieObjectFile(root, input, logger)

	hints := model.DiscHints{}
	if index != nil && mobj != nil {
		hints.TitlePlaylists = make(map[int][]string)
		for _, title := range index.Titles {
			if title.ObjectType != "hdmv" {
				continue
			}
			obj := mobj.ObjectByID(title.MovieObjectID)
			if obj == nil {
				continue
			}
			stems := uniqueSorted(obj.ReferencedPlaylists())
			if len(stems) > 0 {
				hints.TitlePlaylists[title.TitleNumber] = stems
			}
		}
	}

	if s.cfg.Analysis.IGScanEnabled {
		s.scanMenuStreams(ctx, root, input, &hints, logger)
	}
	input.Hints = hints
}

func (s *Scanner) parseIndexFile(root string, logger *slog.Logger) *bdmv.IndexFile {
	data, err := os.ReadFile(filepath.Join(root, "index.bdmv"))
	if err != nil {
		return nil
	}
	index, err := bdmv.ParseIndex(data)
	if err != nil {
		logger.Warn("index.bdmv unparseable", logging.Error(err))
		return nil
	}
	logger.Debug("parsed index.bdmv", logging.Int("titles", len(index.Titles)))
	return index
}

func (s *Scanner) parseMovieObjectFile(root string, input *analyze.Input, logger *slog.Logger) *bdmv.MovieObjectFile {
	data, err := os.ReadFile(filepath.Join(root, "MovieObject.bdmv"))
	if err != nil {
		return nil
	}
	mobj, warnings, err := bdmv.ParseMovieObject(data)
	input.Warnings = append(input.Warnings, warnings...)
	if err != nil {
		logger.Warn("MovieObject.bdmv unparseable", logging.Error(err))
		return nil
	}
	logger.Debug("parsed MovieObject.bdmv", logging.Int("objects", len(mobj.Objects)))
	return mobj
}

// scanMenuStreams finds clips whose program info carries an IG stream and
// scans the matching m2ts files for button navigation commands.
func (s *Scanner) scanMenuStreams(ctx context.Context, root string, input *analyze.Input, hints *model.DiscHints, logger *slog.Logger) {
	var menuClips []string
	for clipID, clip := range input.Clips {
		for _, stream := range clip.Streams {
			if stream.CodingType == 0x91 {
				menuClips = append(menuClips, clipID)
				break
			}
		}
	}
	sort.Strings(menuClips)

	markSet := make(map[int]struct{})
	directSet := make(map[string]struct{})

	for _, clipID := range menuClips {
		if ctx.Err() != nil {
			return
		}
		path := filepath.Join(root, "STREAM", clipID+".m2ts")
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		scan, warnings := bdmv.ScanIGStream(clipID+".m2ts", data, s.cfg.Analysis.IGPacketLimit)
		input.Warnings = append(input.Warnings, warnings...)
		for _, mark := range scan.ChapterMarks {
			markSet[mark] = struct{}{}
		}
		for _, action := range scan.Actions {
			if action.Playlist >= 0 {
				directSet[bdmv.PlaylistStem(action.Playlist)] = struct{}{}
			}
		}
		logger.Debug("scanned menu stream",
			logging.String("clip", clipID),
			logging.Int("actions", len(scan.Actions)),
			logging.Bool("truncated", scan.Truncated))
	}

	for mark := range markSet {
		hints.IGChapterMarks = append(hints.IGChapterMarks, mark)
	}
	sort.Ints(hints.IGChapterMarks)
	for stem := range directSet {
		hints.IGDirectPlay = append(hints.IGDirectPlay, stem)
	}
	sort.Strings(hints.IGDirectPlay)
}

func uniqueSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
