package hcl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/runexp/internal/config"
	"github.com/vk/runexp/internal/ctxlog"
	"github.com/vk/runexp/internal/fsutil"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Extension is the suffix of files picked up from directories.
const Extension = ".hcl"

var ErrInvalidValues = errors.New("invalid param values")

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL sweep definition loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot decodes every top-level attribute and block of one file.
type fileRoot struct {
	Output      *string     `hcl:"output,optional"`
	Concurrency *int        `hcl:"concurrency,optional"`
	Metrics     []string    `hcl:"metrics,optional"`
	Preserve    *bool       `hcl:"preserve_output,optional"`
	Stream      *string     `hcl:"stream,optional"`
	Command     []string    `hcl:"command,optional"`
	Script      *string     `hcl:"script,optional"`
	EnvFile     *string     `hcl:"env_file,optional"`
	Params      []*paramDef `hcl:"param,block"`
}

type paramDef struct {
	Name   string    `hcl:"name,label"`
	Values cty.Value `hcl:"values"`
}

// Load parses every file at paths, descending into directories for .hcl
// files, and merges them in order. Unlike directory walks, a named path that
// does not exist is an error.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := l.findFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	model := &config.Model{}
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		fileModel, err := translate(&root)
		if err != nil {
			return nil, fmt.Errorf("in %s: %w", file, err)
		}
		model.Merge(fileModel)
	}

	logger.Debug("HCL loading complete.", "params", len(model.Params), "metrics", len(model.Metrics))
	return model, nil
}

func (l *Loader) findFiles(paths []string) ([]string, error) {
	var all []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			all = append(all, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		if !info.IsDir() {
			add(path)
			continue
		}
		found, err := fsutil.FindFiles(path, Extension)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f)
		}
	}
	return all, nil
}

// translate converts one decoded file into a partial model.
func translate(root *fileRoot) (*config.Model, error) {
	m := &config.Model{
		Metrics: root.Metrics,
		Command: root.Command,
	}
	if root.Output != nil {
		m.Output = *root.Output
	}
	if root.Concurrency != nil {
		if *root.Concurrency < 1 {
			return nil, fmt.Errorf("concurrency must be at least 1, got %d", *root.Concurrency)
		}
		m.Concurrency = *root.Concurrency
	}
	if root.Preserve != nil {
		m.Preserve = *root.Preserve
	}
	if root.Stream != nil {
		m.Stream = *root.Stream
	}
	if root.Script != nil {
		m.Script = *root.Script
	}
	if root.EnvFile != nil {
		m.EnvFile = *root.EnvFile
	}

	for _, p := range root.Params {
		text, err := expressionText(p.Values)
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", p.Name, err)
		}
		m.Params = append(m.Params, config.ParamDef{Name: p.Name, Expr: text})
	}
	return m, nil
}

// expressionText turns a values attribute into expression text. A string is
// taken verbatim; a number or a list of numbers and strings becomes a
// comma-separated list.
func expressionText(v cty.Value) (string, error) {
	if v.IsNull() || !v.IsWhollyKnown() {
		return "", fmt.Errorf("%w: values must be set", ErrInvalidValues)
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Number:
		return scalarText(v)
	case ty.IsTupleType() || ty.IsListType():
		if v.LengthInt() == 0 {
			return "", fmt.Errorf("%w: values list is empty", ErrInvalidValues)
		}
		parts := make([]string, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			s, err := scalarText(ev)
			if err != nil {
				return "", err
			}
			if strings.Contains(s, ",") {
				return "", fmt.Errorf("%w: list element %q contains a comma", ErrInvalidValues, s)
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ","), nil
	}
	return "", fmt.Errorf("%w: expected a string, a number or a list, got %s", ErrInvalidValues, ty.FriendlyName())
}

func scalarText(v cty.Value) (string, error) {
	if v.IsNull() {
		return "", fmt.Errorf("%w: null element", ErrInvalidValues)
	}
	if ty := v.Type(); ty != cty.Number && ty != cty.String {
		return "", fmt.Errorf("%w: unsupported element of type %s", ErrInvalidValues, ty.FriendlyName())
	}
	s, err := convert.Convert(v, cty.String)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidValues, err)
	}
	return s.AsString(), nil
}
