package main

import (
	"context"
	"fmt"

	"github.com/meghashyamc/rabbit/services/index"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [dir]",
		Short: "Show the summary of the last successful run over a directory, or list every indexed directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.openStores(); err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			service := a.indexService(ctx, nil, index.Options{})

			count, err := a.searchDB.GetDocCount()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				reports, err := service.Reports()
				if err != nil {
					return err
				}
				for _, report := range reports {
					fmt.Fprintf(out, "%s\t%s\n", report.Root, report.String())
				}
				fmt.Fprintf(out, "documents in index: %d\n", count)
				return nil
			}

			report, err := service.LastReport(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "root: %s\n", report.Root)
			fmt.Fprintf(out, "last run: %s\n", report.StartedAt.Format("2006-01-02 15:04:05"))
			fmt.Fprintln(out, report.String())
			fmt.Fprintf(out, "documents in index: %d\n", count)
			return nil
		},
	}
}
