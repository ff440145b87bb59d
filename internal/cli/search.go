package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/mrunner/internal/search"
)

func addSearch(topLevel *cobra.Command) {
	limit := 20
	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Rank the launcher commands and bookmarks for a query.",
		Example: `
mrunner search code
mrunner search "docs #work"
mrunner search -n 5 down
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			rows, err := a.Search(cmd.Context(), strings.Join(args, " "), limit)
			if err != nil {
				// command rows are still valid
				_, _ = fmt.Fprintf(color.Error, "bookmarks unavailable: %v\n", err)
			}
			printRows(color.Output, rows)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", limit, "Maximum number of rows, 0 for all.")

	topLevel.AddCommand(cmd)
}

func printRows(w io.Writer, rows []search.Ranked) {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "no matches")
		return
	}

	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	tbl.AddRow(bold.Sprint("Score"), bold.Sprint("Name"), bold.Sprint("Group"), bold.Sprint("Action"), bold.Sprint("ID"))
	for _, r := range rows {
		kind := "-"
		if r.Command.Action != nil {
			kind = string(r.Command.Action.Kind())
		}
		tbl.AddRow(fmt.Sprintf("%.2f", r.Score), r.Command.Name, r.Command.Group, kind, r.Command.ID)
	}
	tbl.RightAlign(0)

	_, _ = fmt.Fprintln(w, tbl)
}
