package disc

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"bdpl/internal/analyze"
	"bdpl/internal/bdmv"
	"bdpl/internal/config"
	"bdpl/internal/logging"
	"bdpl/internal/model"
)

// Scanner reads one BDMV tree and produces its analysis.
type Scanner struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewScanner constructs a scanner. A nil config uses defaults.
func NewScanner(cfg *config.Config, logger *slog.Logger) *Scanner {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	return &Scanner{cfg: cfg, logger: logging.NewComponentLogger(logger, "disc")}
}

// Scan parses every metadata file under the BDMV root and runs the analysis
// pipeline. Playlist and clip info files that cannot be read or parsed become
// MALFORMED_SECTION warnings; navigation files that fail only cost their
// hints. The errors returned are an unusable path, an unlistable PLAYLIST or
// CLIPINF directory, and cancellation of ctx.
func (s *Scanner) Scan(ctx context.Context, path string) (*model.DiscAnalysis, error) {
	root, err := ResolveBDMVRoot(path)
	if err != nil {
		return nil, err
	}
	logger := s.logger.With(logging.String("disc", root))

	input := analyze.Input{
		Path:  root,
		Clips: make(map[string]*model.Clip),
	}

	if err := s.parsePlaylists(ctx, root, &input, logger); err != nil {
		return nil, err
	}
	if err := s.parseClips(ctx, root, &input, logger); err != nil {
		return nil, err
	}
	s.gatherHints(ctx, root, &input, logger)

	da := analyze.Run(input, s.options(), s.logger)
	da.AnalysisID = uuid.NewString()
	return da, nil
}

func (s *Scanner) options() analyze.Options {
	a := s.cfg.Analysis
	opts := analyze.DefaultOptions()
	opts.QuantMS = a.QuantizeMS
	opts.ShortSeconds = a.ShortPlaylistSeconds
	opts.BumperSeconds = a.BumperSeconds
	opts.LegalMaxSeconds = a.LegalMaxSeconds
	opts.OPMinSeconds = a.OPMinSeconds
	opts.OPMaxSeconds = a.OPMaxSeconds
	opts.EDMinSeconds = a.EDMinSeconds
	opts.EDMaxSeconds = a.EDMaxSeconds
	opts.PreviewMaxSeconds = a.PreviewMaxSeconds
	opts.BodyMinSeconds = a.BodyMinSeconds
	opts.ChapterSplitMinSeconds = a.ChapterSplitMinSeconds
	opts.DefaultEpisodeMinutes = a.DefaultEpisodeMinutes
	opts.ClusterMinBucketSeconds = a.ClusterBucketSeconds
	return opts
}

func (s *Scanner) parsePlaylists(ctx context.Context, root string, input *analyze.Input, logger *slog.Logger) error {
	names, err := listFiles(filepath.Join(root, "PLAYLIST"), ".mpls")
	if err != nil {
		return fmt.Errorf("list PLAYLIST: %w", err)
	}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := os.ReadFile(filepath.Join(root, "PLAYLIST", name))
		if err != nil {
			input.Warnings = append(input.Warnings, model.NewWarning(model.WarnMalformedSection,
				fmt.Sprintf("%s: %v", name, err), "file", name))
			continue
		}
		pl, warnings, err := bdmv.ParseMPLS(name, data)
		input.Warnings = append(input.Warnings, warnings...)
		if err != nil {
			logger.Warn("skipping unparseable playlist",
				logging.String("file", name), logging.Error(err))
			input.Warnings = append(input.Warnings, model.NewWarning(model.WarnMalformedSection,
				fmt.Sprintf("%s: %v", name, err), "file", name))
			continue
		}
		if len(pl.PlayItems) == 0 {
			logger.Debug("playlist has no play items", logging.String("file", name))
			continue
		}
		input.Playlists = append(input.Playlists, pl)
	}
	logger.Debug("parsed playlists",
		logging.Int("found", len(names)), logging.Int("parsed", len(input.Playlists)))
	return nil
}

func (s *Scanner) parseClips(ctx context.Context, root string, input *analyze.Input, logger *slog.Logger) error {
	names, err := listFiles(filepath.Join(root, "CLIPINF"), ".clpi")
	if err != nil {
		return fmt.Errorf("list CLIPINF: %w", err)
	}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := os.ReadFile(filepath.Join(root, "CLIPINF", name))
		if err != nil {
			input.Warnings = append(input.Warnings, model.NewWarning(model.WarnMalformedSection,
				fmt.Sprintf("%s: %v", name, err), "file", name))
			continue
		}
		clipID := strings.TrimSuffix(name, ".clpi")
		clip, warnings, err := bdmv.ParseCLPI(clipID, data)
		input.Warnings = append(input.Warnings, warnings...)
		if err != nil {
			logger.Warn("skipping unparseable clip info",
				logging.String("file", name), logging.Error(err))
			input.Warnings = append(input.Warnings, model.NewWarning(model.WarnMalformedSection,
				fmt.Sprintf("%s: %v", name, err), "file", name))
			continue
		}
		input.Clips[clip.ClipID] = clip
	}
	if len(input.Clips) == 0 {
		input.Warnings = append(input.Warnings, model.NewWarning(model.WarnNoCLPIFound,
			"no readable clip info files under CLIPINF/"))
	}
	return nil
}

// listFiles returns the lexicographically sorted names of regular files with
// the given extension. A missing directory yields an empty list.
func listFiles(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
