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

// Package render converts the .dot files drawn by the TPA tools into images.
//
// A Batch renders every .dot file directly inside a directory (sub-directories are not visited) into an
// image with the same stem next to it. Rendering is done by a Renderer: External runs the dot executable,
// Builtin uses the graphviz C library through its Go bindings.
package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/awslabs/tpa-tools/harness/config"
	"github.com/awslabs/tpa-tools/harness/toolexec"
	"github.com/awslabs/tpa-tools/internal/formatutil"
	"github.com/awslabs/tpa-tools/internal/graphutil"
	"github.com/awslabs/tpa-tools/internal/pathutil"
)

// DotExt is the extension of the files rendered by a Batch
const DotExt = ".dot"

// StageRender is the stage name of rendering failures
const StageRender = "render"

// A Renderer draws the graph of the DOT file in into the image file out.
type Renderer interface {
	Render(ctx context.Context, in string, out string) error
}

// NewRenderer returns the renderer selected by the configuration.
func NewRenderer(cfg *config.Config, logger *config.LogGroup) (Renderer, error) {
	switch cfg.Render.Engine {
	case config.EngineExternal:
		return &External{
			Dot:    cfg.Tools.Dot,
			Format: cfg.Render.Format,
			Exec:   toolexec.Runner{Logger: logger},
		}, nil
	case config.EngineBuiltin:
		b, err := NewBuiltin(cfg.Render.Format)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("render engine %q not recognized", cfg.Render.Engine)
	}
}

// External renders with the dot executable: dot -T<format> <in> -o <out>
type External struct {
	Dot    string
	Format string
	Exec   toolexec.Runner
}

// Render implements Renderer
func (e *External) Render(ctx context.Context, in string, out string) error {
	c := toolexec.Command{
		Name: e.Dot,
		Args: []string{"-T" + e.Format, in, "-o", out},
	}
	_, err := e.Exec.RunStage(ctx, StageRender, c)
	return err
}

// DotFiles returns the paths of the .dot files directly inside dir, sorted by name.
func DotFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != DotExt {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

// OutputPath returns the image path for dotFile: the same path with the format as suffix.
func OutputPath(dotFile string, format string) string {
	return pathutil.ReplaceExt(dotFile, "."+format)
}

// Batch renders all the .dot files of a directory.
type Batch struct {
	Renderer Renderer
	Format   string

	// KeepGoing continues with the next file after a failure. The failures are then reported together.
	KeepGoing bool

	// Out receives the name of each file before it is rendered. Nil discards the names.
	Out io.Writer

	// Logger may be nil
	Logger *config.LogGroup
}

// Report lists the outcome of a Batch.
type Report struct {
	Rendered []string
	Failed   []string
}

// Run renders the .dot files of dir. It returns a *pathutil.PathError if dir is not a directory.
// Unless KeepGoing is set, it stops at the first file that fails to render and returns its error;
// otherwise it attempts every file and returns all the errors joined.
func (b *Batch) Run(ctx context.Context, dir string) (Report, error) {
	var report Report
	if err := pathutil.CheckDir(dir); err != nil {
		return report, err
	}
	files, err := DotFiles(dir)
	if err != nil {
		return report, fmt.Errorf("could not list %s: %w", dir, err)
	}
	b.Logger.Debugf("%d .dot files in %s", len(files), dir)

	out := b.Out
	if out == nil {
		out = io.Discard
	}
	var errs []error
	for _, f := range files {
		fmt.Fprintln(out, formatutil.Faint(f))
		image := OutputPath(f, b.Format)
		if err := b.Renderer.Render(ctx, f, image); err != nil {
			report.Failed = append(report.Failed, f)
			err = fmt.Errorf("%s: %w", f, err)
			if !b.KeepGoing {
				return report, err
			}
			b.Logger.Errorf("%v", err)
			errs = append(errs, err)
			continue
		}
		report.Rendered = append(report.Rendered, image)
	}
	return report, errors.Join(errs...)
}

// Summarize parses every .dot file of dir and prints one line per graph to w. Files that cannot be
// parsed are reported on w and in the returned error, and do not stop the other files.
func Summarize(dir string, w io.Writer) error {
	if err := pathutil.CheckDir(dir); err != nil {
		return err
	}
	files, err := DotFiles(dir)
	if err != nil {
		return fmt.Errorf("could not list %s: %w", dir, err)
	}
	var errs []error
	for _, f := range files {
		graphs, err := graphutil.ParseFile(f)
		if err != nil {
			fmt.Fprintf(w, "%s: invalid: %v\n", f, err)
			errs = append(errs, err)
			continue
		}
		for _, g := range graphs {
			fmt.Fprintf(w, "%s: %s\n", f, graphutil.Summarize(g))
		}
	}
	return errors.Join(errs...)
}

// Check parses every .dot file of dir and reports the files that are not valid DOT on w. It returns the
// parse errors joined.
func Check(dir string, w io.Writer) error {
	if err := pathutil.CheckDir(dir); err != nil {
		return err
	}
	files, err := DotFiles(dir)
	if err != nil {
		return fmt.Errorf("could not list %s: %w", dir, err)
	}
	var errs []error
	for _, f := range files {
		if _, err := graphutil.ParseFile(f); err != nil {
			fmt.Fprintf(w, "%s: invalid: %v\n", f, err)
			errs = append(errs, fmt.Errorf("%s: %w", f, err))
		}
	}
	return errors.Join(errs...)
}
