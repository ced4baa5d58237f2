// backend/cmd/warm.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gewnthar/presupuesto/backend/utils"
)

var (
	flagFrom        int
	flagTo          int
	flagConcurrency int
)

var warmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Prefetch a range of years into the cache",
	Args:  cobra.NoArgs,
	RunE:  runWarm,
}

func init() {
	warmCmd.Flags().IntVar(&flagFrom, "from", 0, "First year (default: first available year)")
	warmCmd.Flags().IntVar(&flagTo, "to", 0, "Last year (default: last available year)")
	warmCmd.Flags().IntVar(&flagConcurrency, "concurrency", 4, "Years fetched at the same time")
	rootCmd.AddCommand(warmCmd)
}

func runWarm(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	available := a.service.GetAvailableYears()
	from, to := flagFrom, flagTo
	if (from == 0 || to == 0) && len(available) == 0 {
		return fmt.Errorf("no available years, check bcn.first_year")
	}
	if from == 0 {
		from = available[0]
	}
	if to == 0 {
		to = available[len(available)-1]
	}
	years := utils.YearRange(from, to)
	if len(years) == 0 {
		return fmt.Errorf("empty year range %d..%d", from, to)
	}

	results, err := a.service.Prefetch(cmd.Context(), years, flagConcurrency)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "  %-6s %-6s %6s  %s\n", "Year", "Real", "Lines", "Source")
	for _, r := range results {
		fmt.Fprintf(out, "  %-6d %-6v %6d  %s\n", r.Year, r.IsRealData, r.LinesCount, r.Source)
	}
	return nil
}
