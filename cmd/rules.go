package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the effective junk rules in evaluation order",
	RunE: func(cmd *cobra.Command, args []string) error {
		set, err := buildRules()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tMATCH\tPATTERN\tACTION\tDIRS")
		for _, r := range set.Rules() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%v\n", r.Name, r.Match, r.Pattern, r.Action, r.Dirs)
		}
		return w.Flush()
	},
}

func init() {
	rulesCmd.Flags().StringVar(&rulesFile, "rules", "", "YAML rules file merged after the built-in rules")
	rulesCmd.Flags().StringArrayVarP(&extraAttrs, "attr", "a", nil, "Extra extended-attribute names to include (repeatable)")
}
