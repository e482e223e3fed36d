package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"svc/internal/branch"
	"svc/internal/engine"
	"svc/internal/repo"
	"svc/internal/watch"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Report changes to the working tree as they happen",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}
		r, err := repo.Discover(dir, repo.Options{Logger: logger.Logger})
		if err != nil {
			return err
		}
		defer r.Close()

		w, err := watch.New(r.Root, logger.Logger)
		if err != nil {
			return err
		}
		defer w.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		errc := make(chan error, 1)
		go func() { errc <- w.Run(ctx) }()

		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s\n", r.Root)
		tracked := color.New(color.FgYellow).SprintFunc()
		for ev := range w.Events() {
			label := "untracked"
			r.View(func(e *engine.Engine) error {
				for _, fd := range e.Roster() {
					if fd.Path == ev.Path && fd.State != branch.Deleted {
						label = tracked(fd.State.String())
					}
				}
				return nil
			})
			fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s (%s)\n", ev.Kind, ev.Path, label)
		}

		if err := <-errc; err != nil && err != context.Canceled {
			return err
		}
		return nil
	},
}
