// backend/cmd/years.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var yearsCmd = &cobra.Command{
	Use:   "years",
	Short: "List the fiscal years available in BCN",
	Args:  cobra.NoArgs,
	RunE:  runYears,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check whether the BCN site is reachable",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(yearsCmd)
	rootCmd.AddCommand(checkCmd)
}

func runYears(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	for _, year := range a.service.GetAvailableYears() {
		fmt.Fprintln(cmd.OutOrStdout(), year)
	}
	return nil
}

func runCheck(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	availability := a.service.CheckAvailability(cmd.Context())
	fmt.Fprintf(cmd.OutOrStdout(), "  Available: %v\n", availability.Available)
	fmt.Fprintf(cmd.OutOrStdout(), "  Status:    %d\n", availability.Status)
	fmt.Fprintf(cmd.OutOrStdout(), "  Message:   %s\n", availability.Message)
	if !availability.Available {
		return fmt.Errorf("BCN is not available")
	}
	return nil
}
