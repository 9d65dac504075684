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

// Package ptstest runs one end-to-end test of the TPA pointer analysis.
//
// A test instruments an IR file, links it with the runtime library, runs the resulting program (which
// writes its execution log into the log directory given in its LOG_DIR environment variable) and asks
// the verifier to check the analysis results against that log. The verifier is the only oracle: the
// output and exit status of the program itself are not inspected.
package ptstest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/awslabs/tpa-tools/harness/config"
	"github.com/awslabs/tpa-tools/harness/toolexec"
	"github.com/awslabs/tpa-tools/internal/formatutil"
	"github.com/awslabs/tpa-tools/internal/pathutil"
)

// Default values of the options, as exposed by the pts-test command
const (
	DefaultWorkDir   = "./"
	DefaultToolDir   = "bin/"
	DefaultPtrConfig = "ptr.config"
)

// Stage names, as reported in *toolexec.StageError
const (
	StageInstrument = "instrument"
	StageLink       = "link"
	StageExecute    = "execute"
	StageVerify     = "verify"
)

// Messages printed by the Tester
const (
	MsgInvalidTimeout  = "Time limit can only be a positive number"
	MsgProgramTimeout  = "Program timeout"
	MsgAnalysisTimeout = "Analysis timeout"
	MsgAnalysisCrashed = "Analysis crashed"
	MsgTestFailed      = "Test failed. Error output:"
	MsgTestPassed      = "Test passed"
)

// ErrInvalidTimeout is returned for non-positive time limits.
var ErrInvalidTimeout = errors.New("time limit must be positive")

// Options are the inputs of one test.
type Options struct {
	// Input is the IR file under test
	Input string

	// Runtime is the runtime library linked with the instrumented program
	Runtime string

	// WorkDir receives the instrumented IR and the executable
	WorkDir string

	// ToolDir is the directory containing the TPA tools
	ToolDir string

	// PtrConfig is the pointer annotation config file given to the instrumenter and the verifier
	PtrConfig string

	// K is the context limit of the analysis
	K int

	// Timeout bounds the execution of the program and the verifier, each separately
	Timeout time.Duration

	// Libraries are additional libraries linked with the program, each as -l<library>
	Libraries []string

	// LogDir is where the instrumented program writes its execution log. Defaults to WorkDir.
	LogDir string
}

// NewOptions returns the options of a test of input with runtime, with defaults for everything else.
func NewOptions(input string, runtime string) Options {
	return Options{
		Input:     input,
		Runtime:   runtime,
		WorkDir:   DefaultWorkDir,
		ToolDir:   DefaultToolDir,
		PtrConfig: DefaultPtrConfig,
		Timeout:   config.DefaultTimeoutSeconds * time.Second,
	}
}

// Validate checks that the paths of the options exist and that the time limit is positive.
// Path problems are reported as *pathutil.PathError.
func (o Options) Validate() error {
	if err := pathutil.CheckFile(o.Input); err != nil {
		return err
	}
	if err := pathutil.CheckDir(o.ToolDir); err != nil {
		return err
	}
	if err := pathutil.CheckDir(o.WorkDir); err != nil {
		return err
	}
	if err := pathutil.CheckFile(o.PtrConfig); err != nil {
		return err
	}
	if err := pathutil.CheckFile(o.Runtime); err != nil {
		return err
	}
	if o.LogDir != "" {
		if err := pathutil.CheckDir(o.LogDir); err != nil {
			return err
		}
	}
	if o.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// Artifacts are the files produced during a test.
type Artifacts struct {
	InstrumentedIR string
	Executable     string
	LogDir         string
	Log            string
}

// Artifacts returns the paths of the files produced by a test with these options. logFile is the name
// of the log written by the program.
func (o Options) Artifacts(logFile string) Artifacts {
	stem := filepath.Join(o.WorkDir, pathutil.Stem(o.Input))
	logDir := o.LogDir
	if logDir == "" {
		logDir = o.WorkDir
	}
	return Artifacts{
		InstrumentedIR: stem + ".inst.bc",
		Executable:     stem + ".inst",
		LogDir:         logDir,
		Log:            filepath.Join(logDir, logFile),
	}
}

// Tester runs tests with the tools named in Config and prints their results to Out.
// A nil Logger disables logging and a nil Out discards the results.
type Tester struct {
	Config *config.Config
	Logger *config.LogGroup
	Out    io.Writer
}

// NewTester returns a tester printing to out.
func NewTester(cfg *config.Config, logger *config.LogGroup, out io.Writer) *Tester {
	return &Tester{Config: cfg, Logger: logger, Out: out}
}

// Run runs the test described by opts. It returns nil when the test passed. Every other outcome is
// reported as an error after its diagnostic has been printed; OutcomeOf classifies it.
func (t *Tester) Run(ctx context.Context, opts Options) error {
	out := t.Out
	if out == nil {
		out = io.Discard
	}
	if err := opts.Validate(); err != nil {
		if errors.Is(err, ErrInvalidTimeout) {
			fmt.Fprintln(out, MsgInvalidTimeout)
		} else {
			fmt.Fprintln(out, err)
		}
		return err
	}
	art := opts.Artifacts(t.Config.LogFile)
	exe, err := filepath.Abs(art.Executable)
	if err != nil {
		return err
	}

	build := toolexec.Runner{Logger: t.Logger}
	if _, err := build.RunStage(ctx, StageInstrument, t.instrumentCommand(opts, art)); err != nil {
		fmt.Fprintln(out, err)
		return err
	}
	if _, err := build.RunStage(ctx, StageLink, t.linkCommand(opts, art)); err != nil {
		fmt.Fprintln(out, err)
		return err
	}

	timed := toolexec.Runner{Timeout: opts.Timeout, Logger: t.Logger}
	run := toolexec.Command{
		Name: exe,
		Env:  []string{config.LogDirEnv + "=" + art.LogDir},
	}
	res, err := timed.Run(ctx, run)
	if err != nil {
		err = toolexec.Check(StageExecute, run, res, err)
		if res.TimedOut {
			fmt.Fprintln(out, MsgProgramTimeout)
		} else {
			fmt.Fprintln(out, err)
		}
		return err
	}
	t.Logger.Debugf("program exited with code %d", res.ExitCode)

	verify := t.verifyCommand(opts, art)
	res, err = timed.RunStage(ctx, StageVerify, verify)
	if err == nil {
		fmt.Fprintln(out, formatutil.Green(MsgTestPassed))
		return nil
	}
	var stageErr *toolexec.StageError
	if !errors.As(err, &stageErr) {
		return err
	}
	switch {
	case stageErr.TimedOut():
		fmt.Fprintln(out, MsgAnalysisTimeout)
	case stageErr.Crashed():
		fmt.Fprint(out, res.Stdout)
		fmt.Fprint(out, res.Stderr)
		fmt.Fprintln(out, stageErr)
		fmt.Fprintln(out, formatutil.Red(MsgAnalysisCrashed))
	default:
		fmt.Fprintln(out, stageErr)
		fmt.Fprintln(out, formatutil.Red(MsgTestFailed))
		fmt.Fprintln(out, res.Stderr)
	}
	return err
}

func (t *Tester) instrumentCommand(opts Options, art Artifacts) toolexec.Command {
	return toolexec.Command{
		Name: filepath.Join(opts.ToolDir, t.Config.Tools.Instrument),
		Args: []string{opts.Input, "-o", art.InstrumentedIR, "-ptr-config", opts.PtrConfig, "-no-prepass"},
	}
}

func (t *Tester) linkCommand(opts Options, art Artifacts) toolexec.Command {
	args := []string{art.InstrumentedIR, opts.Runtime, "-o", art.Executable}
	for _, lib := range opts.Libraries {
		args = append(args, "-l"+lib)
	}
	return toolexec.Command{Name: t.Config.Tools.Clang, Args: args}
}

func (t *Tester) verifyCommand(opts Options, art Artifacts) toolexec.Command {
	return toolexec.Command{
		Name: filepath.Join(opts.ToolDir, t.Config.Tools.Verify),
		Args: []string{opts.Input, art.Log, "-k", strconv.Itoa(opts.K), "-ptr-config", opts.PtrConfig},
	}
}
