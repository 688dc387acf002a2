package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"datadeck/internal/cleaning"
	"datadeck/internal/config"
	"datadeck/internal/exporter"
	"datadeck/internal/operations"
)

func cleanCmd() *cobra.Command {
	var (
		method            string
		output            string
		excludeNonNumeric bool
		workers           int
	)

	cmd := &cobra.Command{
		Use:   "clean <input.csv>",
		Short: "Fill missing values and write a cleaned copy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]

			m, err := cleaning.ParseMethod(method)
			if err != nil {
				return err
			}

			if output == "" {
				ext := filepath.Ext(input)
				output = strings.TrimSuffix(input, ext) + "_cleaned" + ext
			}
			outAbs, err := filepath.Abs(output)
			if err != nil {
				return err
			}
			outDir := filepath.Dir(outAbs)
			paths := &config.Paths{BaseDir: outDir, UploadsDir: outDir, ExportsDir: outDir}

			state := operations.NewOperationState()
			steps := []operations.Step{
				operations.NewLoadStep(input),
				operations.NewAnalyzeStep(),
				operations.NewImputeStep(cleaning.Options{
					Method:            m,
					ExcludeNonNumeric: excludeNonNumeric,
					Workers:           workers,
				}),
				operations.NewExportStep(exporter.NewCSVWriter(paths), filepath.Base(outAbs)),
			}

			manager := operations.NewManager(cliLogger(), nil)
			if err := manager.Run(cmd.Context(), state, steps); err != nil {
				return err
			}

			result, _ := state.GetContext(operations.CtxResult)
			res := result.(*cleaning.Result)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "filled %d missing cells using %s\n", res.FilledTotal, m)
			if res.RemainingMissing > 0 {
				fmt.Fprintf(out, "warning: %d missing cells remain (columns the %s method cannot fill)\n",
					res.RemainingMissing, m)
			}
			fmt.Fprintf(out, "wrote %s\n", outAbs)
			return nil
		},
	}

	cmd.Flags().StringVarP(&method, "method", "m", "mean", "imputation method: mean, median or mode")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <input>_cleaned.csv)")
	cmd.Flags().BoolVar(&excludeNonNumeric, "exclude-non-numeric", false, "leave non-numeric columns untouched")
	cmd.Flags().IntVar(&workers, "workers", 0, "column workers (0 = default)")

	return cmd
}
