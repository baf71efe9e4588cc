package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"legacyshift/internal/types"
)

var familiesCmd = &cobra.Command{
	Use:   "families",
	Short: "List supported source framework families",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, f := range types.Families() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", f, f.DisplayName())
		}
		return nil
	},
}
