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

// Package ptstest implements the frontend to the pointer analysis test runner.
package ptstest

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/awslabs/tpa-tools/cmd/tpa/tools"
	"github.com/awslabs/tpa-tools/harness/ptstest"
)

// Usage of the pts-test sub-command
const Usage = `Pointer analysis testing tool.
Instruments an LLVM IR file, links it with the runtime library, runs it and verifies the points-to sets
of the analysis against the execution log.

Usage:
  tpa pts-test [options] <filename> <runtime>

Use the -help flag to display the options. Options must come before <filename> and <runtime>: anything
after them is rejected as an unexpected argument.

Exit codes: 0 passed, -1 invalid arguments or failure, -2 timeout, -3 analysis crash.

Examples:
% tpa pts-test -b build/bin -w /tmp/pts -c config/ptr.config test.ll build/lib/libRuntime.a
% tpa pts-test -k 2 -t 10 -l m test.ll build/lib/libRuntime.a
`

// Flags represents the flags for the pts-test sub-command.
type Flags struct {
	tools.CommonFlags
	filename  string
	runtime   string
	workDir   string
	toolDir   string
	ptrConfig string
	k         int
	timeout   int
	libraries tools.StringList
	logDir    string
}

// NewFlags creates a new parsed pts-test sub-command from args.
// Returns an error if args is invalid.
func NewFlags(args []string) (Flags, error) {
	common := tools.NewUnparsedCommonFlags("pts-test")
	cmd := common.FlagSet
	var flags Flags
	for _, name := range []string{"w", "workdir"} {
		cmd.StringVar(&flags.workDir, name, ptstest.DefaultWorkDir, "the working directory")
	}
	for _, name := range []string{"b", "tooldir"} {
		cmd.StringVar(&flags.toolDir, name, ptstest.DefaultToolDir, "the directory that contains the TPA tools")
	}
	for _, name := range []string{"c", "config"} {
		cmd.StringVar(&flags.ptrConfig, name, ptstest.DefaultPtrConfig, "the pointer annotation config file")
	}
	for _, name := range []string{"k", "context"} {
		cmd.IntVar(&flags.k, name, 0, "the context limit")
	}
	for _, name := range []string{"t", "timeout"} {
		cmd.IntVar(&flags.timeout, name, 0, "time limit for the program and the analysis, in seconds (default: the timeout of the tpa config, 3)")
	}
	for _, name := range []string{"l", "library"} {
		cmd.Var(&flags.libraries, name, "additional library used during linking (repeatable)")
	}
	cmd.StringVar(&flags.logDir, "log-dir", "", "the directory the program writes its log to (default: the working directory)")
	tools.SetUsage(cmd, Usage)

	var err error
	if flags.CommonFlags, err = common.Parse(args); err != nil {
		return Flags{}, err
	}
	positional, err := tools.Positional(cmd, "filename", "runtime")
	if err != nil {
		return Flags{}, err
	}
	flags.filename, flags.runtime = positional[0], positional[1]
	return flags, nil
}

// timeoutSet returns true when the time limit was given on the command line.
func (f Flags) timeoutSet() bool {
	return tools.IsSet(f.FlagSet, "t") || tools.IsSet(f.FlagSet, "timeout")
}

// Run runs the test. The returned error carries the exit code of the outcome; the diagnostics have
// already been printed.
func Run(flags Flags) error {
	return run(context.Background(), flags, os.Stdout, os.Stderr)
}

func run(ctx context.Context, flags Flags, stdout io.Writer, stderr io.Writer) error {
	cfg, logger, err := tools.LoadConfig(flags.ConfigPath, flags.Verbose)
	if err != nil {
		return tools.Fail(err)
	}
	logger.SetAllOutput(stderr)

	opts := ptstest.NewOptions(flags.filename, flags.runtime)
	opts.WorkDir = flags.workDir
	opts.ToolDir = flags.toolDir
	opts.PtrConfig = flags.ptrConfig
	opts.K = flags.k
	opts.Libraries = flags.libraries
	opts.LogDir = flags.logDir
	opts.Timeout = cfg.TimeoutDuration()
	if flags.timeoutSet() {
		opts.Timeout = time.Duration(flags.timeout) * time.Second
	}

	err = ptstest.NewTester(cfg, logger, stdout).Run(ctx, opts)
	if err == nil {
		return nil
	}
	return &tools.ExitError{Code: ptstest.ExitCode(err), Err: err, Reported: true}
}
