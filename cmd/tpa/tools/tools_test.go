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

package tools

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/awslabs/tpa-tools/harness/config"
	"github.com/awslabs/tpa-tools/harness/toolexec"
)

func validateHint(t *testing.T, errorMsg string, containedHint string) {
	hint := HintForErrorMessage(errorMsg)
	if !strings.Contains(hint, containedHint) {
		t.Fatalf("incorrect hint for %q: %q", errorMsg, hint)
	}
}

func TestHintForFlagAfterArguments(t *testing.T) {
	cmd := flag.NewFlagSet("pts-test", flag.ContinueOnError)
	if err := cmd.Parse([]string{"test.ll", "rt.o", "-k", "2"}); err != nil {
		t.Fatal(err)
	}
	_, err := Positional(cmd, "filename", "runtime")
	if err == nil {
		t.Fatal("extra arguments should be rejected")
	}
	validateHint(t, err.Error(), "flags should be before the positional arguments")
}

func TestHintForMissingTool(t *testing.T) {
	validateHint(t, `compile stage failed: clang: exec: "clang": executable file not found in $PATH`,
		"make sure clang, opt and dot are in your PATH")
	validateHint(t, "prepass stage failed: bin/global-pts: fork/exec bin/global-pts: no such file or directory",
		"tool directory (-b) contains the TPA tools")
}

func TestHintForMissingVerifier(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "pts-verify")
	_, err := toolexec.Runner{}.RunStage(context.Background(), "verify", toolexec.Command{Name: missing})
	if err == nil {
		t.Fatal("a missing verifier should fail")
	}
	validateHint(t, err.Error(), "tool directory (-b) contains the TPA tools")
}

func TestNoHint(t *testing.T) {
	if hint := HintForErrorMessage("verify stage exited with code 1"); hint != "" {
		t.Errorf("unexpected hint %q", hint)
	}
}

func TestPositional(t *testing.T) {
	cmd := flag.NewFlagSet("render", flag.ContinueOnError)
	if err := cmd.Parse([]string{"dir"}); err != nil {
		t.Fatal(err)
	}
	args, err := Positional(cmd, "directory")
	if err != nil || len(args) != 1 || args[0] != "dir" {
		t.Errorf("unexpected result %v, %v", args, err)
	}
	if _, err := Positional(cmd, "filename", "runtime"); err == nil || !strings.Contains(err.Error(), "missing argument") {
		t.Errorf("expected a missing argument error, got %v", err)
	}
}

func TestStringListAndIsSet(t *testing.T) {
	var defines StringList
	cmd := flag.NewFlagSet("compile", flag.ContinueOnError)
	cmd.Var(&defines, "D", "define")
	cmd.Var(&defines, "define", "define")
	verbose := cmd.Bool("verbose", false, "")
	if err := cmd.Parse([]string{"-D", "A=1", "--define", "B", "-D=C"}); err != nil {
		t.Fatal(err)
	}
	if defines.String() != "[A=1 B C]" {
		t.Errorf("unexpected defines %s", defines.String())
	}
	if !IsSet(cmd, "D") || IsSet(cmd, "verbose") || *verbose {
		t.Errorf("IsSet should only report flags given on the command line")
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, logger, err := LoadConfig("", true)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Verbose() || logger.Level() != config.DebugLevel {
		t.Errorf("-verbose should set the debug level")
	}

	file := filepath.Join(t.TempDir(), "tpa.yaml")
	if err := os.WriteFile(file, []byte("options:\n  log-level: 5\ntools:\n  dot: /opt/graphviz/bin/dot\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, logger, err = LoadConfig(file, true)
	if err != nil {
		t.Fatal(err)
	}
	if logger.Level() != config.TraceLevel || cfg.Tools.Dot != "/opt/graphviz/bin/dot" {
		t.Errorf("unexpected config %+v", cfg)
	}

	if _, _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), false); err == nil {
		t.Errorf("a missing config file should be an error")
	}
}

func TestExitCode(t *testing.T) {
	if ExitCode(nil) != 0 || Fail(nil) != nil {
		t.Errorf("nil is success")
	}
	if ExitCode(errors.New("x")) != -1 || ExitCode(Fail(errors.New("x"))) != -1 {
		t.Errorf("generic failures exit with -1")
	}
	err := fmt.Errorf("pts-test: %w", &ExitError{Code: -3, Err: errors.New("crashed"), Reported: true})
	if ExitCode(err) != -3 {
		t.Errorf("the code of a wrapped ExitError should be used")
	}
}
