// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package compile turns a C source file into canonicalized LLVM IR for the TPA tools.
//
// The pipeline has three stages, run in order, each stopping the pipeline when it fails:
//  1. clang emits textual IR with all warnings disabled;
//  2. opt rewrites the IR in place with the configured pass list (mem2reg and instnamer by default);
//  3. unless disabled, the global-pts pre-pass of the tool directory canonicalizes the IR in place.
package compile

import (
	"context"
	"io"
	"path/filepath"

	"github.com/awslabs/tpa-tools/harness/config"
	"github.com/awslabs/tpa-tools/harness/toolexec"
	"github.com/awslabs/tpa-tools/internal/pathutil"
)

// IRSuffix is the suffix of the textual IR files produced when no output is specified.
const IRSuffix = ".ll"

// Stage names, as reported in *toolexec.StageError
const (
	StageCompile  = "compile"
	StageOptimize = "optimize"
	StagePrepass  = "prepass"
)

// Options are the inputs of one compilation.
type Options struct {
	// Input is the C source file
	Input string

	// Output is the IR file to write. When empty, it is Input with its suffix replaced by .ll
	Output string

	// ToolDir is the directory containing the TPA tools
	ToolDir string

	// NoPrepass skips the canonicalization pre-pass
	NoPrepass bool

	// IncludeDir is forwarded to clang as -I when non-empty
	IncludeDir string

	// Defines are forwarded to clang, each as -D<define>
	Defines []string
}

// OutputPath returns output when it is not empty, otherwise input with its suffix replaced by .ll
func OutputPath(input string, output string) string {
	if output != "" {
		return output
	}
	return pathutil.ReplaceExt(input, IRSuffix)
}

// Driver runs the compilation pipeline.
type Driver struct {
	Config *config.Config
	Logger *config.LogGroup
	Exec   toolexec.Runner
}

// NewDriver returns a driver using the tools named in cfg. The external tools run without time limit.
func NewDriver(cfg *config.Config, logger *config.LogGroup) *Driver {
	return &Driver{
		Config: cfg,
		Logger: logger,
		Exec:   toolexec.Runner{Logger: logger},
	}
}

// Compile validates the options and runs the pipeline. It returns the path of the IR file written.
// Invalid paths are reported as *pathutil.PathError before any tool runs; the failure of a tool is
// reported as a *toolexec.StageError and the later stages are skipped.
func (d *Driver) Compile(ctx context.Context, opts Options) (string, error) {
	if err := pathutil.CheckFile(opts.Input); err != nil {
		return "", err
	}
	if err := pathutil.CheckDir(opts.ToolDir); err != nil {
		return "", err
	}
	out := OutputPath(opts.Input, opts.Output)

	d.Logger.Debugf("compiling %s into %s", opts.Input, out)
	if _, err := d.Exec.RunStage(ctx, StageCompile, d.compileCommand(opts, out)); err != nil {
		return "", err
	}
	if _, err := d.Exec.RunStage(ctx, StageOptimize, d.optCommand(out)); err != nil {
		return "", err
	}
	if opts.NoPrepass {
		d.Logger.Debugf("pre-pass disabled")
		return out, nil
	}
	if _, err := d.Exec.RunStage(ctx, StagePrepass, d.prepassCommand(opts.ToolDir, out)); err != nil {
		return "", err
	}
	return out, nil
}

func (d *Driver) compileCommand(opts Options, out string) toolexec.Command {
	args := []string{opts.Input, "-Wno-everything", "-emit-llvm", "-S", "-o", out}
	if opts.IncludeDir != "" {
		args = append(args, "-I", opts.IncludeDir)
	}
	for _, def := range opts.Defines {
		args = append(args, "-D"+def)
	}
	return toolexec.Command{Name: d.Config.Tools.Clang, Args: args}
}

func (d *Driver) optCommand(out string) toolexec.Command {
	args := []string{out}
	args = append(args, d.Config.OptPasses...)
	args = append(args, "-S", "-o", out)
	return toolexec.Command{Name: d.Config.Tools.Opt, Args: args}
}

// The pre-pass prints its analysis results on stdout; only the rewritten IR matters here.
func (d *Driver) prepassCommand(toolDir string, out string) toolexec.Command {
	return toolexec.Command{
		Name:   filepath.Join(toolDir, d.Config.Tools.Prepass),
		Args:   []string{out, "-o", out},
		Stdout: io.Discard,
	}
}
