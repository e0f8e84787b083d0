package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wgsystem-1/SpatialCheckProMax-sub000/check"
)

func newCasesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cases",
		Short: "List the built-in case types",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-32s %s\n", "CASE TYPE", "DEFAULT TOLERANCE")
			for _, ct := range check.DefaultRegistry().CaseTypes() {
				fmt.Fprintf(out, "%-32s %g\n", ct, check.DefaultTolerance(ct))
			}
			return nil
		},
	}
}
