package cmd

import (
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/openwpan/hiltest/pkg/harness"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered suites and their tests",
	Run: func(_ *cobra.Command, _ []string) {
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Suite", "Test"})
		table.SetBorder(false)
		table.SetAutoMergeCells(true)
		table.SetAlignment(tablewriter.ALIGN_LEFT)

		for _, suite := range harness.Suites() {
			for _, test := range suite.Tests() {
				table.Append([]string{suite.Name(), test.Name})
			}
		}

		table.Render()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
