package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"atremap/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "atremap",
	Short: "Remap Access Transformer files between naming schemes",
	Long: `atremap rewrites Access Transformer directive files (*_at.cfg) from one
naming scheme to another using SRG, TSRG, TSRG2 or CSRG mapping files.`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setupCommand,
	PersistentPostRunE: finishCommand,
}

// main registers subcommands and persistent flags, then executes the root command.
// Errors are printed in red and the process exits with status 1.
func main() {
	registerCommands(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		abortCommand(err)
		printError(err)
		os.Exit(1)
	}
}

func registerCommands(cmd *cobra.Command) {
	cmd.Version = version.Version

	cmd.AddCommand(renameCmd)
	cmd.AddCommand(renameJarCmd)
	cmd.AddCommand(resourcesCmd)
	cmd.AddCommand(planCmd)
	cmd.AddCommand(mappingsCmd)
	cmd.AddCommand(remapLineCmd)
	cmd.AddCommand(initCmd)
	cmd.AddCommand(cleanCmd)
	cmd.AddCommand(versionCmd)

	addPersistentFlags(cmd)
}

func addPersistentFlags(cmd *cobra.Command) {
	// Глобальные флаги
	flags := cmd.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show timing information")
	flags.String("config", "", "path to atremap.toml (default: search upwards from the working directory)")
	flags.String("cache", "auto", "use the parsed mapping cache (auto|on|off)")
	flags.String("ui", "auto", "progress UI for batch runs (auto|on|off)")
	flags.String("trace", "", "trace output file ('-' for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	flags.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	flags.Int("trace-ring-size", 4096, "events kept in ring mode")
	flags.String("cpu-profile", "", "write a CPU profile to file")
	flags.String("mem-profile", "", "write a heap profile to file on exit")
	flags.String("runtime-trace", "", "write a Go runtime trace to file")
}

func printError(err error) {
	red := color.New(color.FgRed, color.Bold)
	_, _ = red.Fprint(os.Stderr, "error: ")
	_, _ = fmt.Fprintln(os.Stderr, err)
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
