// Package cmd is the irrbb CLI, a thin consumer of the core library.
// No calculation logic lives here; every subcommand loads inputs, calls
// into the core packages, and serialises the result. A package-level
// rootCmd holds the root command; each subcommand lives in its own file
// and registers itself via init()+AddCommand.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "irrbb",
	Short: "Interest rate risk in the banking book: EVE and NII projection",
	Long: `irrbb computes Economic Value of Equity and twelve-month Net Interest
Income under the regulatory shock catalogue (Reglamento Delegado (UE)
2024/856), over a canonical position table and forward curve set.

It provides:
  - run: full scenario sweep over a position book
  - whatif: decompose a hypothetical loan and report its marginal impact
  - find-limit: solve for the instrument parameter that hits a risk limit`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}
