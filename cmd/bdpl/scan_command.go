package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"bdpl/internal/disc"
	"bdpl/internal/export"
	"bdpl/internal/logging"
	"bdpl/internal/scancache"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var (
		output  string
		compact bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "scan <bdmv-path>",
		Short: "Analyze a BDMV directory and emit the episode mapping as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			root, err := disc.ResolveBDMVRoot(args[0])
			if err != nil {
				return err
			}

			useCache := cfg.Cache.Enabled && !noCache && cfg.Paths.CacheDir != ""
			var fingerprint string
			if useCache {
				fingerprint, err = scancache.Fingerprint(root)
				if err != nil {
					logger.Warn("fingerprint failed; bypassing cache", logging.Error(err))
					useCache = false
				}
			}

			if useCache {
				if doc, ok := lookupCached(cmd, cfg.Paths.CacheDir, fingerprint, logger); ok {
					return emitDocument(cmd, doc, output)
				}
			}

			scanner := disc.NewScanner(cfg, logger)
			analysis, err := scanner.Scan(cmd.Context(), root)
			if err != nil {
				return err
			}

			doc, err := export.MarshalJSON(analysis, !compact, time.Now())
			if err != nil {
				return err
			}

			if useCache {
				storeCached(cmd, cfg.Paths.CacheDir, fingerprint, root, doc, logger)
			}
			return emitDocument(cmd, doc, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write JSON to a file instead of stdout")
	cmd.Flags().BoolVar(&compact, "compact", false, "Emit compact JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the scan result cache")
	return cmd
}

func lookupCached(cmd *cobra.Command, cacheDir, fingerprint string, logger *slog.Logger) ([]byte, bool) {
	store, err := scancache.Open(cacheDir, logger)
	if err != nil {
		logger.Warn("cache unavailable", logging.Error(err))
		return nil, false
	}
	defer store.Close()
	doc, ok, err := store.Lookup(cmd.Context(), fingerprint)
	if err != nil {
		logger.Warn("cache lookup failed", logging.Error(err))
		return nil, false
	}
	return doc, ok
}

func storeCached(cmd *cobra.Command, cacheDir, fingerprint, root string, doc []byte, logger *slog.Logger) {
	store, err := scancache.Open(cacheDir, logger)
	if err != nil {
		logger.Warn("cache unavailable", logging.Error(err))
		return
	}
	defer store.Close()
	if err := store.Put(cmd.Context(), fingerprint, root, doc); err != nil {
		logger.Warn("cache store failed", logging.Error(err))
	}
}

func emitDocument(cmd *cobra.Command, doc []byte, output string) error {
	if output == "" {
		fmt.Fprintln(cmd.OutOrStdout(), string(doc))
		return nil
	}
	if err := os.WriteFile(output, append(doc, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote: %s\n", output)
	return nil
}
