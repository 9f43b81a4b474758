package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"atremap/internal/at"
	"atremap/internal/trace"
)

// Template placeholders replaced by the planner.
const (
	InputPlaceholder  = "{input}"
	OutputPlaceholder = "{output}"
)

// ErrInvalidTemplate is returned when the argument template lacks {input} or {output}.
var ErrInvalidTemplate = errors.New("arguments must have one {input} and one {output}")

// TransformRequest describes an external access-transformer invocation.
type TransformRequest struct {
	Input            string
	OutputDir        string
	Arguments        []string
	ATArgumentPrefix string
	ATFiles          []string
	Mappings         at.Mappings
	// TempDir receives the remapped AT files; empty means a fresh directory under os.TempDir.
	TempDir   string
	MainClass string
	Classpath []string
}

// TransformPlan is the resolved command line for the external tool.
type TransformPlan struct {
	ID          string   `json:"id" yaml:"id"`
	Input       string   `json:"input" yaml:"input"`
	Output      string   `json:"output" yaml:"output"`
	Passthrough bool     `json:"passthrough" yaml:"passthrough"`
	MainClass   string   `json:"main_class,omitempty" yaml:"main_class,omitempty"`
	Classpath   []string `json:"classpath,omitempty" yaml:"classpath,omitempty"`
	Arguments   []string `json:"arguments,omitempty" yaml:"arguments,omitempty"`
	TempDir     string   `json:"temp_dir,omitempty" yaml:"temp_dir,omitempty"`
	TempFiles   []string `json:"temp_files,omitempty" yaml:"temp_files,omitempty"`
}

// Cleanup removes the remapped AT files created for the plan.
func (p *TransformPlan) Cleanup() error {
	if p == nil || p.TempDir == "" {
		return nil
	}
	return os.RemoveAll(p.TempDir)
}

// PlanTransform validates the template, remaps every AT file into a temp file
// with the internal dialect and expands the argument list. Without AT files
// the plan is a passthrough whose output is the input itself.
func PlanTransform(ctx context.Context, req TransformRequest) (*TransformPlan, error) {
	if !slices.Contains(req.Arguments, InputPlaceholder) || !slices.Contains(req.Arguments, OutputPlaceholder) {
		return nil, ErrInvalidTemplate
	}
	info, err := os.Stat(req.Input)
	if err != nil {
		return nil, fmt.Errorf("plan: input artifact: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("plan: input artifact must be a file: %s", req.Input)
	}
	input, err := filepath.Abs(req.Input)
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}

	id := uuid.NewString()
	ctx, span := trace.Start(ctx, trace.ScopeOperation, "plan")
	defer span.End(id)

	plan := &TransformPlan{
		ID:        id,
		Input:     input,
		MainClass: req.MainClass,
		Classpath: req.Classpath,
	}
	if len(req.ATFiles) == 0 {
		plan.Output = input
		plan.Passthrough = true
		return plan, nil
	}

	outDir := req.OutputDir
	if outDir == "" {
		outDir = filepath.Dir(input)
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	output, err := filepath.Abs(filepath.Join(outDir, base+"-accesstransformed.jar"))
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	plan.Output = output

	for _, arg := range req.Arguments {
		switch arg {
		case InputPlaceholder:
			plan.Arguments = append(plan.Arguments, input)
		case OutputPlaceholder:
			plan.Arguments = append(plan.Arguments, output)
		default:
			plan.Arguments = append(plan.Arguments, arg)
		}
	}

	tempDir := req.TempDir
	if tempDir == "" {
		tempDir = filepath.Join(os.TempDir(), "atremap-"+id)
		plan.TempDir = tempDir
	}
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}

	m := req.Mappings
	if m == nil {
		m = at.Identity
	}
	for i, atFile := range req.ATFiles {
		tmp, err := remapToTemp(ctx, atFile, tempDir, i, m)
		if err != nil {
			_ = plan.Cleanup()
			return nil, fmt.Errorf("plan: %w", err)
		}
		plan.TempFiles = append(plan.TempFiles, tmp)
		plan.Arguments = append(plan.Arguments, req.ATArgumentPrefix, tmp)
	}
	span.WithExtra("at_files", strconv.Itoa(len(plan.TempFiles)))
	return plan, nil
}

func remapToTemp(ctx context.Context, atFile, dir string, index int, m at.Mappings) (string, error) {
	_, span := trace.Start(ctx, trace.ScopeFile, "file:"+filepath.Base(atFile))
	lines, err := readFileLines(atFile)
	if err != nil {
		span.End(err.Error())
		return "", err
	}
	name := fmt.Sprintf("accesstransformer-%d-%s", index, filepath.Base(atFile))
	path, err := filepath.Abs(filepath.Join(dir, name))
	if err != nil {
		span.End(err.Error())
		return "", err
	}
	if err := writeFileLines(path, at.RemapLines(lines, m, at.DialectInternal)); err != nil {
		span.End(err.Error())
		return "", err
	}
	span.End("")
	return path, nil
}
