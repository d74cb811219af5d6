package cli

import (
	"github.com/spf13/cobra"

	"github.com/aezell/nodpts/internal/bypass"
	"github.com/aezell/nodpts/internal/check"
	"github.com/aezell/nodpts/internal/config"
	"github.com/aezell/nodpts/internal/model"
	"github.com/aezell/nodpts/internal/report"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the staged files (run by the pre-commit hook)",
	Long: `Scan staged files for secrets, lint them and run the AI review, then
print a report.

A bypass token created with 'nodpts bypass' is consumed and the checks are
skipped for that one run.

Exit codes:
  0  pass
  1  fail, the commit should be blocked
  2  configuration or repository error`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringP("format", "f", "text", "output format: text, json, markdown")
	checkCmd.Flags().Bool("no-ai", false, "skip the AI review for this run")
}

func runCheck(cmd *cobra.Command, args []string) error {
	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := report.ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	noAI, _ := cmd.Flags().GetBool("no-ai")

	repo, err := openRepo()
	if err != nil {
		return err
	}

	orch := &check.Orchestrator{
		Bypass: bypass.New(repo.GitDir()),
		LoadConfig: func() (*config.Config, error) {
			cfg, err := config.Load(configPath(repo), logger)
			if err != nil {
				return nil, err
			}
			if noAI {
				cfg.AIEnabled = false
			}
			return cfg, nil
		},
		Source:      repo,
		NewCheckers: check.DefaultCheckers(check.Workspace{Root: repo.Root(), GitDir: repo.GitDir()}),
		Logger:      logger,
	}

	rep, err := orch.Run(cmd.Context())
	if err != nil {
		return err
	}
	if err := report.Write(cmd.OutOrStdout(), format, rep); err != nil {
		return err
	}
	if rep.Verdict == model.VerdictFail {
		return &exitError{code: rep.Verdict.ExitCode()}
	}
	return nil
}
