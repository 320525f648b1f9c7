package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bdpl/internal/disc"
	"bdpl/internal/export"
)

func newPlaylistCommand(ctx *commandContext) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "playlist <bdmv-path>",
		Short: "Generate .m3u debug playlists for quick episode preview",
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

			scanner := disc.NewScanner(cfg, logger)
			analysis, err := scanner.Scan(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			created, err := export.WriteM3U(analysis, outDir)
			if err != nil {
				return err
			}
			if len(created) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "No episodes found; no playlists generated.")
				return nil
			}
			for _, path := range created {
				fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "./Playlists", "Output directory for .m3u files")
	return cmd
}
