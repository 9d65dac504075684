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

// Package compile implements the frontend to the compiler driver.
package compile

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/awslabs/tpa-tools/cmd/tpa/tools"
	"github.com/awslabs/tpa-tools/harness/compile"
)

// Usage of the compile sub-command
const Usage = `Compile a C file using clang and canonicalize the resulting IR for the TPA tools.

Usage:
  tpa compile [options] <source.c>

Use the -help flag to display the options. Options must come before <source.c>: anything after it is
rejected as an unexpected argument.

Examples:
% tpa compile -b build/bin -o test.ll test.c
% tpa compile -n -D DEBUG -I include test.c
`

// Flags represents the flags for the compile sub-command.
type Flags struct {
	tools.CommonFlags
	input     string
	toolDir   string
	output    string
	noPrepass bool
	include   string
	defines   tools.StringList
}

// NewFlags creates a new parsed compile sub-command from args.
// Returns an error if args is invalid.
func NewFlags(args []string) (Flags, error) {
	common := tools.NewUnparsedCommonFlags("compile")
	cmd := common.FlagSet
	var flags Flags
	for _, name := range []string{"b", "tooldir"} {
		cmd.StringVar(&flags.toolDir, name, "bin", "the directory containing all TPA tools")
	}
	for _, name := range []string{"o", "output"} {
		cmd.StringVar(&flags.output, name, "", "output file name (default: the input with the .ll suffix)")
	}
	for _, name := range []string{"n", "no-prepass"} {
		cmd.BoolVar(&flags.noPrepass, name, false, "do not run the canonicalization pre-pass, only the optimizer passes")
	}
	for _, name := range []string{"I", "include"} {
		cmd.StringVar(&flags.include, name, "", "additional include directory")
	}
	for _, name := range []string{"D", "define"} {
		cmd.Var(&flags.defines, name, "additional #define for compilation (repeatable)")
	}
	tools.SetUsage(cmd, Usage)

	var err error
	if flags.CommonFlags, err = common.Parse(args); err != nil {
		return Flags{}, err
	}
	positional, err := tools.Positional(cmd, "filename")
	if err != nil {
		return Flags{}, err
	}
	flags.input = positional[0]
	return flags, nil
}

// Run runs the compiler driver.
func Run(flags Flags) error {
	return run(context.Background(), flags, os.Stderr)
}

func run(ctx context.Context, flags Flags, stderr io.Writer) error {
	cfg, logger, err := tools.LoadConfig(flags.ConfigPath, flags.Verbose)
	if err != nil {
		return tools.Fail(err)
	}
	logger.SetAllOutput(stderr)

	driver := compile.NewDriver(cfg, logger)
	out, err := driver.Compile(ctx, compile.Options{
		Input:      flags.input,
		Output:     flags.output,
		ToolDir:    flags.toolDir,
		NoPrepass:  flags.noPrepass,
		IncludeDir: flags.include,
		Defines:    flags.defines,
	})
	if err != nil {
		return tools.Fail(fmt.Errorf("compilation of %s failed: %w", flags.input, err))
	}
	logger.Infof("wrote %s", out)
	return nil
}
