package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"subfetch/internal/fingerprint"
	"subfetch/internal/release"
)

func newHashCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "hash <file>...",
		Short:       "Print the content fingerprint and inferred episode of video files",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, len(args))
			for _, path := range args {
				info, err := os.Stat(path)
				if err != nil {
					return fmt.Errorf("stat %s: %w", path, err)
				}
				hash, ok := fingerprint.Compute(path)
				if !ok {
					hash = "too small"
				}
				episode := ""
				if meta, ok := release.Infer(path); ok {
					episode = fmt.Sprintf("%s S%02dE%02d", meta.Series, meta.Season, meta.Episode)
				}
				rows = append(rows, []string{path, fmt.Sprintf("%d", info.Size()), hash, episode})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"File", "Bytes", "Fingerprint", "Episode"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
}
