// cmd/svc/main.go
package main

import (
	"context"
	"fmt"
	"os"

	"svc/client"
	"svc/internal/commit"
	"svc/internal/errors"
	"svc/internal/logging"
	"svc/internal/repo"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	logger    = logging.Nop()
	serverURL string
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "svc",
	Short: "svc is a small snapshot version control system",
	Long: `svc tracks files in a working tree, stores every committed version
by content and keeps branches of commits that can be checked out, reset
and merged.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.NewConsoleLogger(logLevel)
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		logger = l
		return nil
	},
}

// openBackend connects to the daemon when --server is set and opens the
// repository containing the current directory otherwise.
func openBackend() (backend, error) {
	if serverURL != "" {
		return remoteBackend{client.New(serverURL)}, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting current directory: %w", err)
	}
	r, err := repo.Discover(dir, repo.Options{Logger: logger.Logger})
	if err != nil {
		return nil, err
	}
	return &localBackend{repo: r}, nil
}

// withBackend runs fn against a backend and closes it afterwards.
func withBackend(cmd *cobra.Command, fn func(ctx context.Context, b backend) error) error {
	b, err := openBackend()
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			logger.Warn("closing repository", zap.Error(err))
		}
	}()
	return fn(cmd.Context(), b)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "address of a running svc daemon, e.g. http://127.0.0.1:7420")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	var initCmd = &cobra.Command{
		Use:   "init",
		Short: "Initialize a new repository in the current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting current directory: %w", err)
			}
			schemeName, _ := cmd.Flags().GetString("scheme")
			scheme, err := commit.ParseScheme(schemeName)
			if err != nil {
				return err
			}

			r, err := repo.Init(dir, repo.Options{Logger: logger.Logger, Scheme: scheme})
			if err != nil {
				return fmt.Errorf("initializing repository: %w", err)
			}
			defer r.Close()

			fmt.Fprintln(cmd.OutOrStdout(), "Initialized empty svc repository in", r.Root)
			return nil
		},
	}
	initCmd.Flags().String("scheme", string(commit.SchemeChecksum), "commit id scheme (checksum, xxh3)")

	rootCmd.AddCommand(initCmd, watchCmd)
	rootCmd.AddCommand(newCommands()...)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if code := errors.CodeOf(err); code < 0 {
			os.Exit(-code)
		}
		os.Exit(1)
	}
}
