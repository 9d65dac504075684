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

// Package tooltest provides fake external tools for the tests of the tpa harness.
//
// The fakes are small shell scripts stored in a txtar archive. Each of them appends its command line to
// the calls.log file of the directory it was extracted to, so tests can check the exact sequence of
// invocations.
package tooltest

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/awslabs/tpa-tools/harness/config"
	"golang.org/x/tools/txtar"
)

//go:embed testdata/fake-tools.txtar
var fakeTools []byte

// CallsLog is the name of the file the fake tools append their command lines to.
const CallsLog = "calls.log"

// FakeToolDir extracts the fake tools into a new temporary directory and returns its path.
// The test is skipped on platforms without /bin/sh.
func FakeToolDir(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tools require /bin/sh")
	}
	dir := t.TempDir()
	if err := ExtractArchive(txtar.Parse(fakeTools), dir, 0o755); err != nil {
		t.Fatalf("could not extract fake tools: %v", err)
	}
	return dir
}

// ExtractArchive writes every file of a into dir with the given permissions.
func ExtractArchive(a *txtar.Archive, dir string, perm os.FileMode) error {
	for _, f := range a.Files {
		name := filepath.Join(dir, filepath.FromSlash(f.Name))
		if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(name, f.Data, perm); err != nil {
			return err
		}
	}
	return nil
}

// Config returns a default config whose PATH-resolved tools (clang, opt, dot) point to the fakes in dir.
func Config(dir string) *config.Config {
	cfg := config.NewDefault()
	cfg.Tools.Clang = filepath.Join(dir, "clang")
	cfg.Tools.Opt = filepath.Join(dir, "opt")
	cfg.Tools.Dot = filepath.Join(dir, "dot")
	return cfg
}

// WriteConfig writes a config file in which the PATH-resolved tools point to the fakes in dir, and
// returns its path. Extra yaml content is appended at the top level.
func WriteConfig(t *testing.T, dir string, extra string) string {
	t.Helper()
	content := fmt.Sprintf("tools:\n  clang: %s\n  opt: %s\n  dot: %s\n%s",
		filepath.Join(dir, "clang"), filepath.Join(dir, "opt"), filepath.Join(dir, "dot"), extra)
	p := filepath.Join(t.TempDir(), "tpa.yaml")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("could not write config: %v", err)
	}
	return p
}

// Calls returns the command lines recorded by the fake tools of dir, in order.
func Calls(t *testing.T, dir string) []string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(dir, CallsLog))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("could not read calls: %v", err)
	}
	return strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
}

// CallNames returns the tool names of the recorded calls.
func CallNames(t *testing.T, dir string) []string {
	t.Helper()
	var names []string
	for _, c := range Calls(t, dir) {
		names = append(names, strings.Fields(c)[0])
	}
	return names
}

// Quiet returns a log group that discards everything.
func Quiet(cfg *config.Config) *config.LogGroup {
	l := config.NewLogGroup(cfg)
	l.SetAllOutput(io.Discard)
	return l
}
