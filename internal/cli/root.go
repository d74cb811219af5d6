// Package cli implements the nodpts command line.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aezell/nodpts/internal/config"
	"github.com/aezell/nodpts/internal/logging"
	"github.com/aezell/nodpts/internal/vcs"
)

// Exit statuses.
const (
	ExitPass  = 0
	ExitFail  = 1
	ExitFatal = 2
)

var (
	flagConfig    string
	flagRepo      string
	flagVerbose   bool
	flagLogFormat string

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "nodpts",
	Short: "Pre-commit gatekeeper for secrets, lint errors and risky changes",
	Long: `nodpts runs before every commit. It scans staged files for secrets,
lints them with the linter for their language and asks an AI model to review
the staged diff, then blocks the commit if anything fails.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "warn"
		if flagVerbose {
			level = "debug"
		}
		l, err := logging.New(logging.Options{Level: level, Format: flagLogFormat, Output: cmd.ErrOrStderr()})
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default <repo>/"+config.DefaultFileName+")")
	rootCmd.PersistentFlags().StringVar(&flagRepo, "repo", ".", "path inside the git repository")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging on stderr")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "console", "log format: console, json")

	rootCmd.AddCommand(checkCmd, bypassCmd, initCmd, patternsCmd, serveCmd, versionCmd)
}

// exitError carries a non-zero status for an outcome that was already
// reported, such as a failed check.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// ExitCode maps an Execute error to a process status.
func ExitCode(err error) int {
	if err == nil {
		return ExitPass
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitFatal
}

// Execute runs the command line and returns the process exit status.
func Execute() int {
	err := rootCmd.Execute()
	_ = logger.Sync()
	code := ExitCode(err)
	if err != nil && code == ExitFatal {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return code
}

func openRepo() (*vcs.Repo, error) {
	return vcs.Open(flagRepo, logger)
}

func configPath(repo *vcs.Repo) string {
	if flagConfig != "" {
		return flagConfig
	}
	return filepath.Join(repo.Root(), config.DefaultFileName)
}

// loadConfig reads the config for commands that may run outside a
// repository.
func loadConfig() (*config.Config, error) {
	if flagConfig != "" {
		return config.Load(flagConfig, logger)
	}
	repo, err := openRepo()
	if err != nil {
		return config.Default(), nil
	}
	return config.Load(configPath(repo), logger)
}
