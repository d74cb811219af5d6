package cli

import (
	"github.com/spf13/cobra"

	"github.com/aezell/nodpts/internal/check"
	"github.com/aezell/nodpts/internal/report"
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List the secret detection rules in effect",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		catalog, err := check.BuildCatalog(cfg)
		if err != nil {
			return err
		}
		return report.PatternTable(cmd.OutOrStdout(), catalog.Rules())
	},
}
