package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/meghashyamc/rabbit/services/index"
	"github.com/spf13/cobra"
)

func newIndexCmd() *cobra.Command {
	var (
		workers        int
		commitInterval int
		excludes       []string
		quiet          bool
	)

	cmd := &cobra.Command{
		Use:   "index <dir>",
		Short: "Index new and changed files below a directory",
		Long: `Walks the directory, converts every new or modified supported file and
commits the result to the index in one step. Hidden files and directories
are skipped. Interrupting the run leaves the index as it was.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.openStores(); err != nil {
				return err
			}

			patterns := append(a.cfg.GetExcludePatterns(), excludes...)
			walker, err := index.NewWalker(patterns)
			if err != nil {
				return err
			}

			opts := index.Options{
				Workers:        a.cfg.GetWorkers(),
				CommitInterval: a.cfg.GetCommitInterval(),
			}
			if cmd.Flags().Changed("workers") {
				opts.Workers = workers
			}
			if cmd.Flags().Changed("commit-interval") {
				opts.CommitInterval = commitInterval
			}
			progress := newProgressReporter(cmd.ErrOrStderr(), quiet)
			opts.Progress = progress

			report, err := a.indexService(ctx, walker, opts).Run(ctx, args[0])
			progress.Finish()
			if err != nil {
				if report.Scanned > 0 {
					fmt.Fprintln(cmd.OutOrStdout(), report.String())
				}
				return fmt.Errorf("indexing %s failed: %w", args[0], err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), report.String())
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "number of files converted concurrently")
	cmd.Flags().IntVar(&commitInterval, "commit-interval", 0, "commit after this many documents (0 commits once at the end)")
	cmd.Flags().StringSliceVarP(&excludes, "exclude", "e", nil, "glob of files or directories to skip, in addition to the configured ones")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not show progress")

	return cmd
}
