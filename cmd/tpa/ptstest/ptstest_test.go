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

package ptstest

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/awslabs/tpa-tools/cmd/tpa/tools"
	"github.com/awslabs/tpa-tools/harness/ptstest"
	"github.com/awslabs/tpa-tools/internal/tooltest"
	"golang.org/x/exp/slices"
)

func TestNewFlags(t *testing.T) {
	flags, err := NewFlags([]string{"test.ll", "rt.o"})
	if err != nil {
		t.Fatal(err)
	}
	if flags.filename != "test.ll" || flags.runtime != "rt.o" || flags.workDir != "./" || flags.toolDir != "bin/" ||
		flags.ptrConfig != "ptr.config" || flags.k != 0 || flags.timeoutSet() || len(flags.libraries) != 0 {
		t.Errorf("unexpected defaults %+v", flags)
	}

	flags, err = NewFlags([]string{"-w", "work", "--tooldir", "tools", "-c", "my.config", "--context", "3",
		"-t", "10", "-l", "m", "--library", "pthread", "test.ll", "rt.o"})
	if err != nil {
		t.Fatal(err)
	}
	if flags.workDir != "work" || flags.toolDir != "tools" || flags.ptrConfig != "my.config" || flags.k != 3 {
		t.Errorf("unexpected flags %+v", flags)
	}
	if !flags.timeoutSet() || flags.timeout != 10 || !slices.Equal(flags.libraries, tools.StringList{"m", "pthread"}) {
		t.Errorf("unexpected flags %+v", flags)
	}

	if _, err := NewFlags([]string{"test.ll"}); err == nil {
		t.Errorf("the runtime is required")
	}
	if _, err := NewFlags([]string{"test.ll", "rt.o", "-k", "1"}); err == nil {
		t.Errorf("flags after the positional arguments should be rejected")
	}
}

func TestOptionsBeforeArguments(t *testing.T) {
	if !strings.Contains(Usage, "Options must come before <filename> and <runtime>") {
		t.Errorf("the usage should say where the options go:\n%s", Usage)
	}
	_, err := NewFlags([]string{"test.ll", "rt.o", "-t", "10"})
	if err == nil || !strings.Contains(err.Error(), `unexpected argument "-t"`) {
		t.Errorf("an option after the runtime should be rejected, got %v", err)
	}
}

type setup struct {
	fakes, work, input, runtime, ptrConfig string
}

func newSetup(t *testing.T, program string) setup {
	t.Helper()
	s := setup{fakes: tooltest.FakeToolDir(t), work: t.TempDir()}
	src := t.TempDir()
	s.input = filepath.Join(src, "test.ll")
	s.runtime = filepath.Join(src, "rt.o")
	s.ptrConfig = filepath.Join(src, "ptr.config")
	for p, content := range map[string]string{s.input: program + "\n", s.runtime: "rt\n", s.ptrConfig: "IGNORE printf\n"} {
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func (s setup) args(t *testing.T, extra ...string) []string {
	args := []string{"-tpa-config", tooltest.WriteConfig(t, s.fakes, ""), "-w", s.work, "-b", s.fakes, "-c", s.ptrConfig}
	args = append(args, extra...)
	return append(args, s.input, s.runtime)
}

func TestRun(t *testing.T) {
	tests := []struct {
		name    string
		program string
		extra   []string
		code    int
		output  string
	}{
		{"passed", `echo ok > "$LOG_DIR/pts.log"`, nil, 0, ptstest.MsgTestPassed},
		{"failed", `echo fail > "$LOG_DIR/pts.log"`, nil, -1, ptstest.MsgTestFailed},
		{"crashed", `echo crash > "$LOG_DIR/pts.log"`, nil, -3, ptstest.MsgAnalysisCrashed},
		{"program timeout", "sleep 10", []string{"-t", "1"}, -2, ptstest.MsgProgramTimeout},
		{"invalid timeout", `echo ok > "$LOG_DIR/pts.log"`, []string{"-t", "0"}, -1, ptstest.MsgInvalidTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSetup(t, tt.program)
			flags, err := NewFlags(s.args(t, tt.extra...))
			if err != nil {
				t.Fatal(err)
			}
			var stdout, stderr bytes.Buffer
			start := time.Now()
			err = run(context.Background(), flags, &stdout, &stderr)
			if code := tools.ExitCode(err); code != tt.code {
				t.Errorf("exit code %d, want %d (%v)", code, tt.code, err)
			}
			if !strings.Contains(stdout.String(), tt.output) {
				t.Errorf("output %q should contain %q", stdout.String(), tt.output)
			}
			if time.Since(start) > 8*time.Second {
				t.Errorf("the time limit was not enforced")
			}
		})
	}
}

func TestRunUsesConfigTimeout(t *testing.T) {
	s := newSetup(t, "sleep 10")
	args := []string{"-tpa-config", tooltest.WriteConfig(t, s.fakes, "options:\n  timeout: 1\n"),
		"-w", s.work, "-b", s.fakes, "-c", s.ptrConfig, s.input, s.runtime}
	flags, err := NewFlags(args)
	if err != nil {
		t.Fatal(err)
	}
	var stdout bytes.Buffer
	err = run(context.Background(), flags, &stdout, &bytes.Buffer{})
	if tools.ExitCode(err) != -2 || !strings.Contains(stdout.String(), ptstest.MsgProgramTimeout) {
		t.Errorf("the timeout of the config should apply, got %v and %q", err, stdout.String())
	}
}
