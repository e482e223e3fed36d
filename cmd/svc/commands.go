package main

import (
	"context"
	"fmt"
	"strings"

	"svc/internal/errors"
	shared "svc/shared/types"

	"github.com/spf13/cobra"
)

func newCommands() []*cobra.Command {
	var addCmd = &cobra.Command{
		Use:   "add <paths...>",
		Short: "Stage files for the next commit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(ctx context.Context, b backend) error {
				for _, path := range args {
					hash, err := b.Add(ctx, path)
					if err != nil {
						return fmt.Errorf("adding %s: %w", path, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "staged %s [%d]\n", path, hash)
				}
				return nil
			})
		},
	}

	var rmCmd = &cobra.Command{
		Use:   "rm <paths...>",
		Short: "Stop tracking files; the working tree is left alone",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(ctx context.Context, b backend) error {
				for _, path := range args {
					if _, err := b.Remove(ctx, path); err != nil {
						return fmt.Errorf("removing %s: %w", path, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", path)
				}
				return nil
			})
		},
	}

	var commitCmd = &cobra.Command{
		Use:   "commit",
		Short: "Record the changes of the active branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			message, _ := cmd.Flags().GetString("message")
			if message == "" {
				return fmt.Errorf("commit message is required (-m)")
			}
			return withBackend(cmd, func(ctx context.Context, b backend) error {
				id, err := b.Commit(ctx, message)
				if err != nil {
					return err
				}
				if id == "" {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing to commit")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			})
		},
	}
	commitCmd.Flags().StringP("message", "m", "", "commit message")

	var showCmd = &cobra.Command{
		Use:   "show <commit-id>",
		Short: "Print a commit, its changes and its tracked files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(ctx context.Context, b backend) error {
				c, err := b.GetCommit(ctx, args[0])
				if errors.Is(err, errors.ErrorTypeNotFound) || (err == nil && c == nil) {
					return fmt.Errorf("Invalid commit id")
				}
				if err != nil {
					return err
				}
				printCommit(cmd.OutOrStdout(), c)
				return nil
			})
		},
	}

	var logCmd = &cobra.Command{
		Use:   "log [branch]",
		Short: "List commits reachable through first parents",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			branch := ""
			if len(args) == 1 {
				branch = args[0]
			}
			return withBackend(cmd, func(ctx context.Context, b backend) error {
				commits, err := b.Log(ctx, branch)
				if err != nil {
					return err
				}
				printLog(cmd.OutOrStdout(), commits)
				return nil
			})
		},
	}

	var branchCmd = &cobra.Command{
		Use:   "branch [name]",
		Short: "List branches, or create one from the active branch",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(ctx context.Context, b backend) error {
				if len(args) == 1 {
					return b.CreateBranch(ctx, args[0])
				}
				branches, err := b.ListBranches(ctx)
				if err != nil {
					return err
				}
				printBranches(cmd.OutOrStdout(), branches)
				return nil
			})
		},
	}

	var checkoutCmd = &cobra.Command{
		Use:   "checkout <branch>",
		Short: "Switch branches and restore their files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(ctx context.Context, b backend) error {
				if err := b.Checkout(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Switched to branch %s\n", args[0])
				return nil
			})
		},
	}

	var resetCmd = &cobra.Command{
		Use:   "reset <commit-id>",
		Short: "Point the active branch at a commit and restore its files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(ctx context.Context, b backend) error {
				return b.Reset(ctx, args[0])
			})
		},
	}

	var mergeCmd = &cobra.Command{
		Use:   "merge <branch>",
		Short: "Merge a branch into the active branch",
		Long: `Merge stages every file of the branch's head that the active branch does
not know, applies each --resolve file=resolved pair (an empty resolved
file deletes the file) and commits "Merged branch <branch>".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, _ := cmd.Flags().GetStringArray("resolve")
			resolutions, err := parseResolutions(pairs)
			if err != nil {
				return err
			}
			return withBackend(cmd, func(ctx context.Context, b backend) error {
				id, err := b.Merge(ctx, args[0], resolutions)
				if err != nil {
					return err
				}
				if id == "" {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing to commit")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Merge successful\n%s\n", id)
				return nil
			})
		},
	}
	mergeCmd.Flags().StringArray("resolve", nil, "conflict resolution as file=resolved_file")

	var statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show the roster of the active branch against the working tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(ctx context.Context, b backend) error {
				st, err := b.Status(ctx)
				if err != nil {
					return err
				}
				printStatus(cmd.OutOrStdout(), st)
				return nil
			})
		},
	}

	var hashCmd = &cobra.Command{
		Use:   "hash <path>",
		Short: "Print the checksum of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, func(ctx context.Context, b backend) error {
				hash, err := b.Hash(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), hash)
				return nil
			})
		},
	}

	return []*cobra.Command{
		addCmd, rmCmd, commitCmd, showCmd, logCmd, branchCmd,
		checkoutCmd, resetCmd, mergeCmd, statusCmd, hashCmd,
	}
}

// parseResolutions turns "file=resolved" pairs into resolutions.
func parseResolutions(pairs []string) ([]shared.Resolution, error) {
	out := make([]shared.Resolution, 0, len(pairs))
	for _, p := range pairs {
		file, resolved, ok := strings.Cut(p, "=")
		if !ok || file == "" {
			return nil, fmt.Errorf("invalid resolution %q, want file=resolved_file", p)
		}
		out = append(out, shared.Resolution{FileName: file, ResolvedFile: resolved})
	}
	return out, nil
}
