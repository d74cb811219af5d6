package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aezell/nodpts/internal/bypass"
)

var bypassCmd = &cobra.Command{
	Use:   "bypass",
	Short: "Skip all checks for the next commit only",
	Args:  cobra.NoArgs,
	RunE:  runBypass,
}

func runBypass(cmd *cobra.Command, args []string) error {
	repo, err := openRepo()
	if err != nil {
		return err
	}
	gate := bypass.New(repo.GitDir())
	out := cmd.OutOrStdout()
	if gate.Present() {
		fmt.Fprintln(out, "A bypass token is already pending; it still covers only the next commit.")
		return nil
	}
	if err := gate.Create(); err != nil {
		return err
	}
	logger.Debug("bypass token created")

	fmt.Fprintln(out, "Bypass token created.")
	fmt.Fprintln(out, "Your next commit will skip all checks; the token is deleted after one use.")
	fmt.Fprintln(out, "This is intended for emergencies only.")
	return nil
}
