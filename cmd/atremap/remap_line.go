package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"atremap/internal/at"
)

var (
	remapLineMappings mappingsFlags
	remapLineDialect  string
)

var remapLineCmd = &cobra.Command{
	Use:   "remap-line <line>...",
	Short: "Rewrite single AT lines and print the result",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRemapLine,
}

func init() {
	remapLineMappings.register(remapLineCmd, true)
	remapLineCmd.Flags().StringVarP(&remapLineDialect, "dialect", "d", "internal", "line dialect (internal|qualified)")
}

func runRemapLine(cmd *cobra.Command, args []string) error {
	dialect, err := at.ParseDialect(remapLineDialect)
	if err != nil {
		return err
	}
	loaded, err := remapLineMappings.load(cmd)
	if err != nil {
		return err
	}
	m := loaded.Mappings()
	for _, line := range args {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), at.RemapLine(line, m, dialect)); err != nil {
			return err
		}
	}
	return nil
}
