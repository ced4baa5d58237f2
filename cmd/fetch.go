// backend/cmd/fetch.go
package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gewnthar/presupuesto/backend/utils"
)

var (
	flagStandard bool
	flagRefresh  bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <year>",
	Short: "Fetch the budget of a year and print it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runFetch,
}

func init() {
	fetchCmd.Flags().BoolVar(&flagStandard, "standard", false, "Print the standard format (ministry rollups)")
	fetchCmd.Flags().BoolVar(&flagRefresh, "refresh", false, "Ignore the cache and fail instead of falling back")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	year, err := utils.ParseYear(args[0])
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	var out interface{}
	switch {
	case flagRefresh:
		snapshot, err := a.service.RefreshYear(cmd.Context(), year)
		if err != nil {
			return err
		}
		out = snapshot
	case flagStandard:
		standard, err := a.service.GetStandardBudget(cmd.Context(), year)
		if err != nil {
			return err
		}
		if standard == nil {
			return fmt.Errorf("no real BCN data available for %d", year)
		}
		out = standard
	default:
		snapshot, err := a.service.GetBudgetData(cmd.Context(), year)
		if err != nil {
			return err
		}
		out = snapshot
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
