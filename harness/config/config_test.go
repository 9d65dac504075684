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

package config

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/exp/slices"
)

func TestNewDefault(t *testing.T) {
	c := NewDefault()
	if c.LogLevel != int(InfoLevel) {
		t.Errorf("default log level should be info, got %d", c.LogLevel)
	}
	if c.TimeoutDuration() != 3*time.Second {
		t.Errorf("default timeout should be 3s, got %v", c.TimeoutDuration())
	}
	if c.LogFile != "pts.log" {
		t.Errorf("default log file should be pts.log, got %q", c.LogFile)
	}
	if !slices.Equal(c.OptPasses, []string{"-mem2reg", "-instnamer"}) {
		t.Errorf("unexpected default opt passes %v", c.OptPasses)
	}
	if c.Tools.Prepass != "global-pts" || c.Tools.Instrument != "pts-inst" || c.Tools.Verify != "pts-verify" {
		t.Errorf("unexpected default tpa tools %+v", c.Tools)
	}
	if c.SourceFile() != "" {
		t.Errorf("default config should not have a source file")
	}
	// the default pass list must not alias the package-level slice
	c.OptPasses[0] = "-O2"
	if DefaultOptPasses[0] != "-mem2reg" {
		t.Errorf("NewDefault should copy DefaultOptPasses")
	}
}

func TestLoadFullConfig(t *testing.T) {
	fileName := filepath.Join("testdata", "full-config.yaml")
	c, err := Load(fileName)
	if err != nil {
		t.Fatalf("could not load %s: %v", fileName, err)
	}
	if c.LogLevel != int(TraceLevel) {
		t.Error("full config should have set trace")
	}
	if !c.Verbose() {
		t.Error("trace level should be verbose")
	}
	if c.TimeoutDuration() != 10*time.Second {
		t.Errorf("full config should set a 10s timeout, got %v", c.TimeoutDuration())
	}
	if c.LogFile != "run.log" {
		t.Errorf("full config should set log-file, got %q", c.LogFile)
	}
	if c.Tools.Clang != "clang-12" || c.Tools.Opt != "opt-12" || c.Tools.Dot != "/usr/local/bin/dot" {
		t.Errorf("full config should set compiler tools, got %+v", c.Tools)
	}
	if c.Tools.Instrument != "pts-inst-dbg" || c.Tools.Verify != "pts-verify-dbg" {
		t.Errorf("full config should set tpa tools, got %+v", c.Tools)
	}
	if len(c.OptPasses) != 3 || c.OptPasses[2] != "-lowerswitch" {
		t.Errorf("full config should set three passes, got %v", c.OptPasses)
	}
	if c.Render.Format != "svg" || c.Render.Engine != EngineBuiltin {
		t.Errorf("full config should set render options, got %+v", c.Render)
	}
	if c.SourceFile() != fileName {
		t.Errorf("source file should be %q, got %q", fileName, c.SourceFile())
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	c, err := Load(filepath.Join("testdata", "partial.yaml"))
	if err != nil {
		t.Fatalf("could not load partial config: %v", err)
	}
	if c.Tools.Clang != "clang-14" {
		t.Errorf("clang should be overridden, got %q", c.Tools.Clang)
	}
	def := NewDefault()
	if c.Tools.Opt != def.Tools.Opt || c.Tools.Verify != def.Tools.Verify {
		t.Errorf("unset tools should keep their defaults, got %+v", c.Tools)
	}
	if c.Timeout != DefaultTimeoutSeconds || c.Render.Engine != EngineExternal {
		t.Errorf("unset options should keep their defaults")
	}
}

func TestLoadErrors(t *testing.T) {
	for _, name := range []string{"bad_format.yaml", "bad_engine.yaml", "does_not_exist.yaml"} {
		c, err := Load(filepath.Join("testdata", name))
		if c != nil || err == nil {
			t.Errorf("expected error and nil value when loading %s", name)
		}
	}
}

func TestParseNormalizes(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(c *Config) bool
		wantErr bool
	}{
		{"zero log level", "options:\n  log-level: 0\n", func(c *Config) bool { return c.LogLevel == int(InfoLevel) }, false},
		{"negative timeout", "options:\n  timeout: -4\n", func(c *Config) bool { return c.Timeout == DefaultTimeoutSeconds }, false},
		{"empty passes", "opt-passes: []\n", func(c *Config) bool { return len(c.OptPasses) == 2 }, false},
		{"empty tool", "tools:\n  opt: \"\"\n", func(c *Config) bool { return c.Tools.Opt == "opt" }, false},
		{"log level too high", "options:\n  log-level: 9\n", nil, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c, err := Parse([]byte(test.content))
			if test.wantErr {
				if err == nil {
					t.Fatalf("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !test.check(c) {
				t.Errorf("config not normalized: %+v", c)
			}
		})
	}
}

func TestLogGroupLevels(t *testing.T) {
	c := NewDefault()
	l := NewLogGroup(c)
	var buf bytes.Buffer
	l.SetAllOutput(&buf)

	l.Debugf("hidden %d", 1)
	l.Infof("shown %d", 2)
	l.Warnf("warned")
	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("debug message should not be printed at info level")
	}
	if !strings.Contains(buf.String(), "[INFO] shown 2") {
		t.Errorf("info message missing from %q", buf.String())
	}
	if !strings.Contains(buf.String(), "[WARN] warned") {
		t.Errorf("warn message should keep its own prefix, got %q", buf.String())
	}

	buf.Reset()
	l.SetLevel(TraceLevel)
	l.Tracef("traced")
	if !strings.Contains(buf.String(), "[TRACE] traced") {
		t.Errorf("trace message missing from %q", buf.String())
	}
	if l.Level() != TraceLevel {
		t.Errorf("level should be trace")
	}
}

func TestNilLogGroupDiscards(t *testing.T) {
	var l *LogGroup
	l.SetAllOutput(&bytes.Buffer{})
	l.SetLevel(TraceLevel)
	l.Tracef("a")
	l.Debugf("b")
	l.Infof("c")
	l.Warnf("d")
	l.Errorf("e")
	if l.Level() != 0 {
		t.Errorf("a nil log group should have level 0, got %d", l.Level())
	}
}
