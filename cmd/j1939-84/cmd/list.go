package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roffe/j1939/pkg/dm"
	"github.com/roffe/j1939/pkg/steps"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "list what the tester knows about",
}

var listStepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "list the test steps",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, s := range steps.All() {
			fmt.Printf("%d.%-3d %s\n", s.Part(), s.Step(), s.Name())
		}
	},
}

var listDecodersCmd = &cobra.Command{
	Use:   "decoders",
	Short: "list the parameter groups that can be decoded",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, d := range dm.ListDecoders() {
			fmt.Printf("%-6d 0x%04X %s\n", uint32(d.PGN), uint32(d.PGN), d.Description)
		}
	},
}

func init() {
	listCmd.AddCommand(listStepsCmd, listDecodersCmd)
	rootCmd.AddCommand(listCmd)
}
