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

// Package annotations implements the frontend to the annotation extractor.
package annotations

import (
	"fmt"
	"io"
	"os"

	"github.com/awslabs/tpa-tools/cmd/tpa/tools"
	"github.com/awslabs/tpa-tools/harness/annotations"
)

// Usage of the annotations sub-command
const Usage = `Extract the external annotations of the specified functions from an annotation file.
The function names are read one per line. The annotations are printed on standard output and the
functions without annotations are listed on standard error.

Usage:
  tpa annotations [options] <annotation file>

Use the -help flag to display the options.

Examples:
% tpa annotations -f functions.txt config/ptr.config
% llvm-nm -U -j test.ll | tpa annotations config/ptr.config
`

// Flags represents the flags for the annotations sub-command.
type Flags struct {
	tools.CommonFlags
	annotFile string
	funcFile  string
}

// NewFlags creates a new parsed annotations sub-command from args.
// Returns an error if args is invalid.
func NewFlags(args []string) (Flags, error) {
	common := tools.NewUnparsedCommonFlags("annotations")
	cmd := common.FlagSet
	var flags Flags
	for _, name := range []string{"f", "func_file"} {
		cmd.StringVar(&flags.funcFile, name, "-", "the file containing the function names, - for standard input")
	}
	tools.SetUsage(cmd, Usage)

	var err error
	if flags.CommonFlags, err = common.Parse(args); err != nil {
		return Flags{}, err
	}
	positional, err := tools.Positional(cmd, "annotation file")
	if err != nil {
		return Flags{}, err
	}
	flags.annotFile = positional[0]
	return flags, nil
}

// Run runs the annotation extractor. Missing functions are not an error.
func Run(flags Flags) error {
	return run(flags, os.Stdin, os.Stdout, os.Stderr)
}

func run(flags Flags, stdin io.Reader, stdout io.Writer, stderr io.Writer) error {
	_, logger, err := tools.LoadConfig(flags.ConfigPath, flags.Verbose)
	if err != nil {
		return tools.Fail(err)
	}
	logger.SetAllOutput(stderr)

	db, err := annotations.LoadFile(flags.annotFile)
	if err != nil {
		return tools.Fail(err)
	}
	logger.Debugf("%d annotated functions in %s", db.Len(), flags.annotFile)

	names := stdin
	if flags.funcFile != "-" {
		f, err := os.Open(flags.funcFile)
		if err != nil {
			return tools.Fail(fmt.Errorf("could not open function names: %w", err))
		}
		defer f.Close()
		names = f
	}
	missing, err := annotations.Extract(db, names, stdout, stderr)
	if err != nil {
		return tools.Fail(err)
	}
	logger.Debugf("%d functions without annotations", len(missing))
	return nil
}
