package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"subfetch/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var fingerprint string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent fetch decisions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()

			var decisions []history.Decision
			if fingerprint != "" {
				d, found, err := store.LastForFingerprint(cmd.Context(), fingerprint)
				if err != nil {
					return err
				}
				if found {
					decisions = append(decisions, d)
				}
			} else {
				decisions, err = store.Recent(cmd.Context(), limit)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if len(decisions) == 0 {
				fmt.Fprintln(out, "No history recorded")
				return nil
			}
			rows := make([][]string, 0, len(decisions))
			for _, d := range decisions {
				downloads := ""
				if d.SubtitleFile != "" {
					downloads = strconv.Itoa(d.DownloadCount)
				}
				rows = append(rows, []string{
					d.CreatedAt.Local().Format(time.DateTime),
					filepath.Base(d.VideoPath),
					d.Outcome,
					d.SubtitleFile,
					d.MatchedBy,
					downloads,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"When", "Video", "Outcome", "Subtitle", "Matched by", "Downloads"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of decisions to show")
	cmd.Flags().StringVar(&fingerprint, "fingerprint", "", "Show the last decision for a content fingerprint")
	return cmd
}
