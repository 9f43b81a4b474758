package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"atremap/internal/driver"
	"atremap/internal/mapping"
)

var (
	mappingsFormat string
	mappingsDrop   bool
)

var mappingsCmd = &cobra.Command{
	Use:   "mappings",
	Short: "Inspect and convert mapping files",
}

var mappingsReverseCmd = &cobra.Command{
	Use:   "reverse <input> <output>",
	Short: "Write a mapping file with original and mapped names swapped",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeMappings(cmd, args[0], args[1], true)
	},
}

var mappingsConvertCmd = &cobra.Command{
	Use:   "convert <input> <output>",
	Short: "Convert a mapping file to srg or tsrg",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeMappings(cmd, args[0], args[1], false)
	},
}

var mappingsInfoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Show the format and size of a mapping file",
	Args:  cobra.ExactArgs(1),
	RunE:  runMappingsInfo,
}

var mappingsCacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Show or drop the parsed mapping cache",
	Args:  cobra.NoArgs,
	RunE:  runMappingsCache,
}

func init() {
	for _, c := range []*cobra.Command{mappingsReverseCmd, mappingsConvertCmd} {
		c.Flags().StringVar(&mappingsFormat, "format", "", "output format (srg|tsrg; default: from the output extension)")
	}
	mappingsCacheCmd.Flags().BoolVar(&mappingsDrop, "drop", false, "remove every cached table")
	mappingsCmd.AddCommand(mappingsReverseCmd, mappingsConvertCmd, mappingsInfoCmd, mappingsCacheCmd)
}

func writeMappings(cmd *cobra.Command, input, output string, reverse bool) error {
	format := mapping.FormatFromPath(output)
	if mappingsFormat != "" {
		f, err := mapping.ParseFormat(mappingsFormat)
		if err != nil {
			return err
		}
		format = f
	}
	if format != mapping.FormatSRG && format != mapping.FormatTSRG {
		return fmt.Errorf("%w: output must be srg or tsrg, got %s", mapping.ErrUnknownFormat, format)
	}

	cache, err := openCache()
	if err != nil {
		return err
	}
	loaded, err := driver.LoadMappings(cmd.Context(), input, reverse, cache)
	if err != nil {
		return err
	}
	if err := loaded.Table.Save(output, format); err != nil {
		return err
	}
	infof(cmd.OutOrStdout(), "wrote %d classes to %s (%s)\n", loaded.Table.Len(), output, format)
	return nil
}

func runMappingsInfo(cmd *cobra.Command, args []string) error {
	cache, err := openCache()
	if err != nil {
		return err
	}
	loaded, err := driver.LoadMappings(cmd.Context(), args[0], false, cache)
	if err != nil {
		return err
	}
	fields, methods := 0, 0
	for _, cls := range loaded.Table.Classes() {
		fields += len(cls.Fields())
		methods += len(cls.Methods())
	}
	out := cmd.OutOrStdout()
	format := mapping.FormatFromPath(args[0])
	formatName := format.String()
	if format == mapping.FormatUnknown {
		formatName = "detected from content"
	}
	_, _ = fmt.Fprintf(out, "file:    %s\n", args[0])
	_, _ = fmt.Fprintf(out, "format:  %s\n", formatName)
	_, _ = fmt.Fprintf(out, "classes: %d\n", loaded.Table.Len())
	_, _ = fmt.Fprintf(out, "fields:  %d\n", fields)
	_, _ = fmt.Fprintf(out, "methods: %d\n", methods)
	_, _ = fmt.Fprintf(out, "cached:  %s\n", fmt.Sprint(loaded.CacheHit))
	return nil
}

func runMappingsCache(cmd *cobra.Command, _ []string) error {
	cache, err := mapping.OpenCache(cacheApp)
	if err != nil {
		return err
	}
	if mappingsDrop {
		if err := cache.DropAll(); err != nil {
			return err
		}
		infof(cmd.OutOrStdout(), "dropped %s\n", cache.Dir())
		return nil
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), cache.Dir())
	return err
}
