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

// Package render implements the frontend to the graph renderer.
package render

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/awslabs/tpa-tools/cmd/tpa/tools"
	"github.com/awslabs/tpa-tools/harness/render"
	"github.com/awslabs/tpa-tools/internal/formatutil"
)

// Usage of the render sub-command
const Usage = `Render every .dot file of a directory into an image next to it.
Sub-directories are not visited.

Usage:
  tpa render [options] <directory>

Use the -help flag to display the options.

Examples:
% tpa render dots/
% tpa render -format svg -keep-going dots/
% tpa render -summary dots/
`

// Flags represents the flags for the render sub-command.
type Flags struct {
	tools.CommonFlags
	dir       string
	format    string
	engine    string
	keepGoing bool
	summary   bool
	check     bool
}

// NewFlags creates a new parsed render sub-command from args.
// Returns an error if args is invalid.
func NewFlags(args []string) (Flags, error) {
	common := tools.NewUnparsedCommonFlags("render")
	cmd := common.FlagSet
	var flags Flags
	cmd.StringVar(&flags.format, "format", "", "output image format (default: the format of the config, png)")
	cmd.StringVar(&flags.engine, "engine", "", "renderer: external (dot executable) or builtin (graphviz library)")
	cmd.BoolVar(&flags.keepGoing, "keep-going", false, "render the remaining files after a failure")
	cmd.BoolVar(&flags.summary, "summary", false, "print the shape of each graph instead of rendering")
	cmd.BoolVar(&flags.check, "check", false, "only check the syntax of each .dot file")
	tools.SetUsage(cmd, Usage)

	var err error
	if flags.CommonFlags, err = common.Parse(args); err != nil {
		return Flags{}, err
	}
	if flags.summary && flags.check {
		return Flags{}, fmt.Errorf("-summary and -check cannot be used together")
	}
	positional, err := tools.Positional(cmd, "directory")
	if err != nil {
		return Flags{}, err
	}
	flags.dir = positional[0]
	return flags, nil
}

// Run runs the graph renderer.
func Run(flags Flags) error {
	return run(context.Background(), flags, os.Stdout, os.Stderr)
}

func run(ctx context.Context, flags Flags, stdout io.Writer, stderr io.Writer) error {
	cfg, logger, err := tools.LoadConfig(flags.ConfigPath, flags.Verbose)
	if err != nil {
		return tools.Fail(err)
	}
	logger.SetAllOutput(stderr)

	switch {
	case flags.summary:
		return tools.Fail(render.Summarize(flags.dir, stdout))
	case flags.check:
		return tools.Fail(render.Check(flags.dir, stdout))
	}

	if flags.format != "" {
		cfg.Render.Format = flags.format
	}
	if flags.engine != "" {
		cfg.Render.Engine = flags.engine
	}
	renderer, err := render.NewRenderer(cfg, logger)
	if err != nil {
		return tools.Fail(err)
	}
	batch := &render.Batch{
		Renderer:  renderer,
		Format:    cfg.Render.Format,
		KeepGoing: flags.keepGoing,
		Out:       stdout,
		Logger:    logger,
	}
	report, err := batch.Run(ctx, flags.dir)
	if err != nil {
		if len(report.Failed) > 0 {
			fmt.Fprintf(stdout, formatutil.Red("%d of %d files failed to render")+"\n",
				len(report.Failed), len(report.Failed)+len(report.Rendered))
		}
		return tools.Fail(err)
	}
	logger.Infof("rendered %d files", len(report.Rendered))
	return nil
}
