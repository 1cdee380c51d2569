package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pedflow/pedflow/internal/core"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the available movement models",
	Run: func(cmd *cobra.Command, args []string) {
		for _, m := range core.Models() {
			fmt.Printf("%-32s %s\n", m.Name, m.Description)
		}
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
