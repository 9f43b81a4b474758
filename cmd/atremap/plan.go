package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"atremap/internal/driver"
	"atremap/internal/project"
)

var (
	planMappings  mappingsFlags
	planInput     string
	planOutputDir string
	planATPrefix  string
	planATFiles   []string
	planMainClass string
	planClasspath []string
	planFormat    string
)

var planCmd = &cobra.Command{
	Use:   "plan [flags] -- <tool arguments...>",
	Short: "Prepare the command line of an external access transformer",
	Long: `Remap every AT file into a temporary file and expand the argument template
of an external access transformer. The template must contain {input} and
{output}; each remapped file is appended as "<at-prefix> <path>". Without AT
files the input is passed through unchanged.`,
	RunE: runPlan,
}

func init() {
	planMappings.register(planCmd, true)
	planCmd.Flags().StringVar(&planInput, "input", "", "input artifact (jar)")
	planCmd.Flags().StringVar(&planOutputDir, "output-dir", "", "directory of the transformed artifact (default: next to input)")
	planCmd.Flags().StringVar(&planATPrefix, "at-prefix", "--atFile", "argument placed before each remapped AT file")
	planCmd.Flags().StringArrayVar(&planATFiles, "at-file", nil, "AT file (repeatable)")
	planCmd.Flags().StringVar(&planMainClass, "main-class", "", "main class of the external tool")
	planCmd.Flags().StringArrayVar(&planClasspath, "classpath", nil, "classpath entry of the external tool (repeatable)")
	planCmd.Flags().StringVar(&planFormat, "format", "text", "output format (text|json|yaml)")
}

func runPlan(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(planFormat)
	switch format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unsupported format %q (must be text, json or yaml)", planFormat)
	}

	req, err := buildTransformRequest(cmd, args)
	if err != nil {
		return err
	}
	if len(req.ATFiles) > 0 {
		loaded, err := planMappings.load(cmd)
		if err != nil {
			return err
		}
		req.Mappings = loaded.Mappings()
	}

	var plan *driver.TransformPlan
	err = app.timer.Measure("plan", func() error {
		var planErr error
		plan, planErr = driver.PlanTransform(cmd.Context(), req)
		return planErr
	})
	if err != nil {
		return err
	}
	return renderPlan(cmd.OutOrStdout(), plan, format)
}

func buildTransformRequest(cmd *cobra.Command, args []string) (driver.TransformRequest, error) {
	req := driver.TransformRequest{
		Input:            planInput,
		OutputDir:        planOutputDir,
		Arguments:        args,
		ATArgumentPrefix: planATPrefix,
		ATFiles:          planATFiles,
		MainClass:        planMainClass,
		Classpath:        planClasspath,
	}
	if app.manifest == nil || !app.manifest.IsDefined("transform") {
		return req, nil
	}
	cfg := app.manifest.Config.Transform
	req.Input = manifestPath(req.Input, cfg.Input)
	req.OutputDir = manifestPath(req.OutputDir, cfg.Output)
	if len(req.Arguments) == 0 {
		req.Arguments = cfg.Arguments
	}
	if !cmd.Flags().Changed("at-prefix") && cfg.ATPrefix != "" {
		req.ATArgumentPrefix = cfg.ATPrefix
	}
	files, err := manifestPaths(req.ATFiles, cfg.ATFiles)
	if err != nil {
		return req, err
	}
	req.ATFiles = files
	if req.MainClass == "" {
		req.MainClass = cfg.MainClass
	}
	if len(req.Classpath) == 0 {
		req.Classpath = cfg.Classpath
	}
	if req.Input == "" {
		return req, fmt.Errorf("plan: pass --input or set [transform].input in %s", project.ManifestName)
	}
	return req, nil
}

func renderPlan(out io.Writer, plan *driver.TransformPlan, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(plan); err != nil {
			return err
		}
		return enc.Close()
	}

	if plan.Passthrough {
		_, err := fmt.Fprintf(out, "no AT files: %s is used as is\n", plan.Output)
		return err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "plan %s\n", plan.ID)
	fmt.Fprintf(&b, "output: %s\n", plan.Output)
	if plan.MainClass != "" {
		fmt.Fprintf(&b, "main class: %s\n", plan.MainClass)
	}
	if len(plan.Classpath) > 0 {
		fmt.Fprintf(&b, "classpath: %s\n", strings.Join(plan.Classpath, string(listSeparator)))
	}
	b.WriteString("arguments:\n")
	for _, arg := range plan.Arguments {
		fmt.Fprintf(&b, "  %s\n", arg)
	}
	_, err := io.WriteString(out, b.String())
	return err
}
