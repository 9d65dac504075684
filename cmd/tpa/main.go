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

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/awslabs/tpa-tools/cmd/tpa/annotations"
	"github.com/awslabs/tpa-tools/cmd/tpa/compile"
	"github.com/awslabs/tpa-tools/cmd/tpa/ptstest"
	"github.com/awslabs/tpa-tools/cmd/tpa/render"
	"github.com/awslabs/tpa-tools/cmd/tpa/tools"
	"github.com/awslabs/tpa-tools/harness"
)

const usage = `tpa: test harness for the TPA pointer analysis
Usage:
  tpa [tool] [options] <arguments>
Tools:
  - compile: compiles a C file into LLVM IR and canonicalizes it for the TPA tools
  - render: renders all the .dot files of a directory into images
  - annotations: extracts the external annotations of a list of functions
  - pts-test: instruments, runs and verifies a program against the pointer analysis
Examples:
  Compile a test: tpa compile -b build/bin test.c
  Run a test: tpa pts-test -b build/bin -c config/ptr.config test.ll build/lib/libRuntime.a`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "error: expected subcommand\n%s\n", usage)
		os.Exit(2)
	}

	// hardcode help flag
	if snd := os.Args[1]; snd == "-help" || snd == "--help" {
		fmt.Println(usage)
		return
	}

	// hardcode version flag
	if snd := os.Args[1]; snd == "-version" || snd == "--version" {
		fmt.Println(harness.Version)
		return
	}

	args := os.Args[2:]
	switch cmd := os.Args[1]; cmd {
	case "compile":
		flags, err := compile.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		exit(compile.Run(flags))
	case "render":
		flags, err := render.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		exit(render.Run(flags))
	case "annotations":
		flags, err := annotations.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		exit(annotations.Run(flags))
	case "pts-test":
		flags, err := ptstest.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		exit(ptstest.Run(flags))
	default:
		fmt.Fprintf(os.Stderr, "error: unexpected command: %v\n", cmd)
		fmt.Fprintf(os.Stderr, "usage:\n%s\n", usage)
		os.Exit(2)
	}
}

// errExit reports a usage error.
func errExit(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	printHint(err)
	os.Exit(2)
}

// exit terminates with the exit code of the error returned by a sub-command, after printing it unless
// the sub-command already did. The hint is printed in both cases.
func exit(err error) {
	if err == nil {
		return
	}
	var exitErr *tools.ExitError
	if !errors.As(err, &exitErr) || !exitErr.Reported {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	printHint(err)
	os.Exit(tools.ExitCode(err))
}

func printHint(err error) {
	if hint := tools.HintForErrorMessage(err.Error()); hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}
}
