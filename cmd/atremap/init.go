package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"atremap/internal/project"
)

var (
	initForce bool
	initPrint bool
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a starter atremap.toml",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if initPrint {
			_, err := fmt.Fprint(cmd.OutOrStdout(), project.DefaultManifest())
			return err
		}
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		path, err := project.WriteDefault(dir, initForce)
		if errors.Is(err, project.ErrManifestExists) {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err != nil {
			return err
		}
		infof(cmd.OutOrStdout(), "created %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing atremap.toml")
	initCmd.Flags().BoolVar(&initPrint, "print", false, "print the template instead of writing it")
}
