package main

import (
	"github.com/spf13/cobra"
)

var env string

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rabbit",
		Short: "Incremental full-text search over local files",
		Long: `rabbit indexes the text of the files below a directory and answers
full-text queries against that index. Unchanged files are skipped on
later runs, so re-indexing a large tree only converts what changed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&env, "env", "", "config environment to load (config/config.<env>.yaml)")

	rootCmd.AddCommand(
		newIndexCmd(),
		newSearchCmd(),
		newStatusCmd(),
		newServeCmd(),
	)

	return rootCmd
}
