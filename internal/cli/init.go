package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aezell/nodpts/internal/config"
)

const hookMarker = "# nodpts pre-commit hook"

const hookScript = `#!/bin/sh
` + hookMarker + `
# Installed by 'nodpts init'. Runs secret scanning, linting and AI review.

nodpts check
status=$?

if [ $status -ne 0 ]; then
    echo ""
    echo "Commit blocked by nodpts."
    echo "Fix the issues above or run 'nodpts bypass' to skip checks once."
    exit 1
fi

exit 0
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Install the pre-commit hook and an example config",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	initCmd.Flags().Bool("force", false, "overwrite an existing pre-commit hook not installed by nodpts")
}

func runInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	repo, err := openRepo()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	hooks := repo.HooksDir()
	if err := os.MkdirAll(hooks, 0o755); err != nil {
		return fmt.Errorf("creating hooks directory: %w", err)
	}
	hook := filepath.Join(hooks, "pre-commit")
	existing, err := os.ReadFile(hook)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fmt.Errorf("reading existing hook: %w", err)
	case !strings.Contains(string(existing), hookMarker) && !force:
		return fmt.Errorf("%s exists and was not installed by nodpts (use --force to replace it)", hook)
	}
	if err := os.WriteFile(hook, []byte(hookScript), 0o755); err != nil {
		return fmt.Errorf("writing pre-commit hook: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(hook, 0o755); err != nil {
		return fmt.Errorf("making hook executable: %w", err)
	}
	fmt.Fprintf(out, "Installed pre-commit hook at %s\n", hook)

	cfgPath := configPath(repo)
	if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(cfgPath, []byte(config.Example), 0o644); err != nil {
			return fmt.Errorf("writing example config: %w", err)
		}
		fmt.Fprintf(out, "Created %s\n", cfgPath)
	} else {
		fmt.Fprintf(out, "Keeping existing %s\n", cfgPath)
	}
	return nil
}
