package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/mrunner/internal/domain"
)

func addShortcuts(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "shortcuts",
		Short: "Inspect keyboard shortcuts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newShortcutsListCmd(), newShortcutsConflictsCmd())
	topLevel.AddCommand(cmd)
}

func newShortcutsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every shortcut rule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			printShortcuts(color.Output, a.Shortcuts().Rules())
			return nil
		},
	}
}

func newShortcutsConflictsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts",
		Short: "Show hotkeys bound by more than one enabled rule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			printConflicts(color.Output, a.Shortcuts().Conflicts())
			return nil
		},
	}
}

func printShortcuts(w io.Writer, rules []domain.ShortcutRule) {
	bold := color.New(color.Bold)
	off := color.New(color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Hotkey"), bold.Sprint("ID"), bold.Sprint("Type"), bold.Sprint("Context"), bold.Sprint("Description"))
	for _, r := range rules {
		hotkey := r.Hotkey.String()
		if !r.Enabled {
			hotkey = off.Sprint(hotkey + " (off)")
		}
		tbl.AddRow(hotkey, r.ID, string(r.Type), string(r.Context), r.Description)
	}

	_, _ = fmt.Fprintln(w, tbl)
}

func printConflicts(w io.Writer, conflicts map[string][]string) {
	if len(conflicts) == 0 {
		_, _ = fmt.Fprintln(w, "no conflicts")
		return
	}

	keys := make([]string, 0, len(conflicts))
	for k := range conflicts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	bold := color.New(color.Bold)
	warn := color.New(color.FgYellow)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Hotkey"), bold.Sprint("Rules"))
	for _, k := range keys {
		tbl.AddRow(warn.Sprint(k), strings.Join(conflicts[k], ", "))
	}

	_, _ = fmt.Fprintln(w, tbl)
}
