package report

import (
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/aezell/nodpts/internal/secrets"
)

// PatternTable writes the rule catalog as an aligned table.
func PatternTable(w io.Writer, rules []secrets.Rule) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header([]string{"Name", "Category", "Severity", "Pattern"})
	for _, r := range rules {
		if err := table.Append([]string{r.Name, r.Category, r.Severity.String(), r.Pattern.String()}); err != nil {
			return err
		}
	}
	return table.Render()
}
