package main

import (
	"fmt"
	"strings"

	"github.com/meghashyamc/rabbit/services/search"
	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Print the paths of the files matching a query",
		Long: `Runs a query against the committed index and prints up to the configured
limit of matching paths, best match first. The query supports terms,
"quoted phrases", +required and -excluded terms, and field:value.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.openStores(); err != nil {
				return err
			}

			results, err := search.New(a.logger, a.searchDB, a.cfg.GetSearchLimit()).Search(strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			for _, result := range results {
				fmt.Fprintln(cmd.OutOrStdout(), result.FilePath)
			}
			return nil
		},
	}
}
