package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"subfetch/internal/language"
)

func newLanguagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "languages",
		Short:       "List subtitle languages and their codes",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := language.Entries()
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.Name, e.Code, language.ISO2(e.Code)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Language", "Code", "ISO 639-1"}, rows, nil))
			return nil
		},
	}
}
