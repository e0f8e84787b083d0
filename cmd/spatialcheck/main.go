// Command spatialcheck runs relation-rule validation against FlatGeobuf
// datasets from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "spatialcheck",
		Short: "Quality assurance for vector geospatial datasets",
		Long: `spatialcheck evaluates relation rules (containment, exclusion,
connectivity, attribute consistency, geometry quality and density checks)
against vector layers and reports every violation with its location.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.AddCommand(newRunCmd())
	root.AddCommand(newCasesCmd())
	return root
}
