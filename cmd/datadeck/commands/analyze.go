package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"datadeck/internal/cleaning"
	"datadeck/internal/dataset"
)

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <input.csv>",
		Short: "Report missing values per column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := dataset.LoadCSV(args[0])
			if err != nil {
				return err
			}
			report := cleaning.Analyze(ds)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d rows, %d columns, %d missing cells\n\n",
				ds.Name, report.Rows, report.Columns, report.TotalMissing)

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "COLUMN\tKIND\tMISSING\tNON-MISSING")
			for _, col := range report.ColumnStats {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", col.Name, col.Kind, col.Missing, col.NonMissing)
			}
			return w.Flush()
		},
	}
}
