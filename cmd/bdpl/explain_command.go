package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"bdpl/internal/analyze"
	"bdpl/internal/disc"
	"bdpl/internal/model"
)

func newExplainCommand(ctx *commandContext) *cobra.Command {
	var playlistFlag string

	cmd := &cobra.Command{
		Use:   "explain <bdmv-path>",
		Short: "Explain why playlists were classified and episodes chosen",
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

			if playlistFlag != "" {
				return explainPlaylist(cmd, analysis, playlistFlag)
			}

			out := cmd.OutOrStdout()
			if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
				fmt.Fprintln(out, renderPlaylistTable(analysis))
				fmt.Fprintln(out)
			}
			fmt.Fprint(out, analyze.Explain(analysis))
			return nil
		},
	}

	cmd.Flags().StringVarP(&playlistFlag, "playlist", "p", "", "Show detail for one playlist (e.g. 00001.mpls)")
	return cmd
}

func explainPlaylist(cmd *cobra.Command, analysis *model.DiscAnalysis, name string) error {
	pl := analysis.PlaylistByName(name)
	if pl == nil {
		pl = analysis.PlaylistByName(name + ".mpls")
	}
	if pl == nil {
		return fmt.Errorf("playlist not found: %s", name)
	}

	out := cmd.OutOrStdout()
	class := string(pl.Classification)
	if class == "" {
		class = "unclassified"
	}
	fmt.Fprintf(out, "Playlist: %s\n", pl.MPLS)
	fmt.Fprintf(out, "Duration: %s (%.0f ms)\n", analyze.FormatDuration(pl.DurationMS()), pl.DurationMS())
	fmt.Fprintf(out, "Items:    %d\n", len(pl.PlayItems))
	fmt.Fprintf(out, "Chapters: %d\n", len(pl.Chapters))
	fmt.Fprintf(out, "Class:    %s\n\n", class)
	for i, pi := range pl.PlayItems {
		fmt.Fprintf(out, "  [%d] %s (%s)  %s  [%s]\n",
			i, pi.ClipID, pi.M2TS, analyze.FormatDuration(pi.DurationMS()), pi.Label)
	}
	return nil
}

func renderPlaylistTable(analysis *model.DiscAnalysis) string {
	headers := []string{"Playlist", "Duration", "Items", "Chapters", "Class"}
	rows := make([][]string, 0, len(analysis.Playlists))
	for _, pl := range analysis.Playlists {
		rows = append(rows, []string{
			pl.MPLS,
			analyze.FormatDuration(pl.DurationMS()),
			fmt.Sprint(len(pl.PlayItems)),
			fmt.Sprint(len(pl.Chapters)),
			string(pl.Classification),
		})
	}
	return renderTable(headers, rows, []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignLeft})
}
