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

package compile_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/awslabs/tpa-tools/harness/compile"
	"github.com/awslabs/tpa-tools/harness/toolexec"
	"github.com/awslabs/tpa-tools/internal/pathutil"
	"github.com/awslabs/tpa-tools/internal/tooltest"
	"golang.org/x/exp/slices"
)

func writeSource(t *testing.T, dir string, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("int main(void) { int x; int *p = &x; return 0; }\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input, output, want string
	}{
		{"tests/alias.c", "", "tests/alias.ll"},
		{"tests/alias.c", "out/alias.ll", "out/alias.ll"},
		{"prog", "", "prog.ll"},
		{"a.b.c", "", "a.b.ll"},
	}
	for _, test := range tests {
		if got := compile.OutputPath(test.input, test.output); got != test.want {
			t.Errorf("OutputPath(%q, %q) = %q, want %q", test.input, test.output, got, test.want)
		}
	}
}

func TestCompileRunsAllStages(t *testing.T) {
	tools := tooltest.FakeToolDir(t)
	src := writeSource(t, t.TempDir(), "alias.c")
	cfg := tooltest.Config(tools)
	d := compile.NewDriver(cfg, tooltest.Quiet(cfg))

	out, err := d.Compile(context.Background(), compile.Options{
		Input:      src,
		ToolDir:    tools,
		IncludeDir: "include",
		Defines:    []string{"DEBUG", "N=4"},
	})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if want := strings.TrimSuffix(src, ".c") + ".ll"; out != want {
		t.Errorf("expected output %s, got %s", want, out)
	}

	if names := tooltest.CallNames(t, tools); !slices.Equal(names, []string{"clang", "opt", "global-pts"}) {
		t.Fatalf("unexpected tool sequence %v", names)
	}
	calls := tooltest.Calls(t, tools)
	wantClang := "clang " + src + " -Wno-everything -emit-llvm -S -o " + out + " -I include -DDEBUG -DN=4"
	if calls[0] != wantClang {
		t.Errorf("unexpected clang call:\n%s\nwant\n%s", calls[0], wantClang)
	}
	if calls[1] != "opt "+out+" -mem2reg -instnamer -S -o "+out {
		t.Errorf("unexpected opt call %q", calls[1])
	}
	if calls[2] != "global-pts "+out+" -o "+out {
		t.Errorf("unexpected pre-pass call %q", calls[2])
	}

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(b), "; optimized\n; canonical\n") {
		t.Errorf("output should be rewritten in place by opt then the pre-pass, got %q", b)
	}
}

func TestCompileWithoutLogger(t *testing.T) {
	tools := tooltest.FakeToolDir(t)
	src := writeSource(t, t.TempDir(), "alias.c")
	d := &compile.Driver{Config: tooltest.Config(tools)}

	for _, noPrepass := range []bool{false, true} {
		out, err := d.Compile(context.Background(), compile.Options{Input: src, ToolDir: tools, NoPrepass: noPrepass})
		if err != nil {
			t.Fatalf("compile (no pre-pass: %v) failed: %v", noPrepass, err)
		}
		if _, err := os.Stat(out); err != nil {
			t.Errorf("output %s should be written: %v", out, err)
		}
	}
}

func TestCompileExplicitOutputWithoutPrepass(t *testing.T) {
	tools := tooltest.FakeToolDir(t)
	dir := t.TempDir()
	src := writeSource(t, dir, "loop.c")
	explicit := filepath.Join(dir, "custom.ll")
	cfg := tooltest.Config(tools)
	d := compile.NewDriver(cfg, tooltest.Quiet(cfg))

	out, err := d.Compile(context.Background(), compile.Options{
		Input:     src,
		Output:    explicit,
		ToolDir:   tools,
		NoPrepass: true,
	})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if out != explicit {
		t.Errorf("expected %s, got %s", explicit, out)
	}
	if _, err := os.Stat(filepath.Join(dir, "loop.ll")); !os.IsNotExist(err) {
		t.Errorf("the default output should not be written when -o is given")
	}
	if names := tooltest.CallNames(t, tools); !slices.Equal(names, []string{"clang", "opt"}) {
		t.Errorf("the pre-pass should be skipped, got %v", names)
	}
}

func TestCompileStopsAtFailingStage(t *testing.T) {
	tools := tooltest.FakeToolDir(t)
	src := writeSource(t, t.TempDir(), "alias.c")
	cfg := tooltest.Config(tools)
	cfg.Tools.Opt = filepath.Join(tools, "opt-fail")
	d := compile.NewDriver(cfg, tooltest.Quiet(cfg))

	_, err := d.Compile(context.Background(), compile.Options{Input: src, ToolDir: tools})
	var stageErr *toolexec.StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("expected a stage error, got %v", err)
	}
	if stageErr.Stage != compile.StageOptimize {
		t.Errorf("expected the optimize stage to fail, got %s", stageErr.Stage)
	}
	if !strings.Contains(stageErr.Result.Stderr, "unknown pass") {
		t.Errorf("the stage error should carry the tool diagnostics, got %q", stageErr.Result.Stderr)
	}
	if names := tooltest.CallNames(t, tools); !slices.Equal(names, []string{"clang", "opt-fail"}) {
		t.Errorf("the pre-pass should not run after a failure, got %v", names)
	}
}

func TestCompileValidatesPaths(t *testing.T) {
	tools := tooltest.FakeToolDir(t)
	dir := t.TempDir()
	src := writeSource(t, dir, "alias.c")
	cfg := tooltest.Config(tools)
	d := compile.NewDriver(cfg, tooltest.Quiet(cfg))

	tests := []struct {
		name string
		opts compile.Options
		dir  bool
	}{
		{"missing input", compile.Options{Input: filepath.Join(dir, "nope.c"), ToolDir: tools}, false},
		{"input is a directory", compile.Options{Input: dir, ToolDir: tools}, false},
		{"missing tool dir", compile.Options{Input: src, ToolDir: filepath.Join(dir, "bin")}, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := d.Compile(context.Background(), test.opts)
			var pathErr *pathutil.PathError
			if !errors.As(err, &pathErr) || pathErr.Dir != test.dir {
				t.Errorf("expected a path error (dir=%v), got %v", test.dir, err)
			}
		})
	}
	if calls := tooltest.Calls(t, tools); len(calls) != 0 {
		t.Errorf("no tool should run on invalid paths, got %v", calls)
	}
}
