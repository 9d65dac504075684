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
	"fmt"
	"os"
	"time"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by all tpa tools.
// If some field is not defined in the config file, it keeps the value set by NewDefault.
type Config struct {
	Options `yaml:"options"`

	// Tools names the external executables invoked by the harness
	Tools Tools `yaml:"tools"`

	// OptPasses is the pass list given to the optimizer by the compiler driver
	OptPasses []string `yaml:"opt-passes"`

	// Render contains the graph renderer settings
	Render RenderOptions `yaml:"render"`

	sourceFile string
}

// Options are the general options
type Options struct {
	// LogLevel controls the verbosity of the tools
	LogLevel int `yaml:"log-level"`

	// Timeout is the time limit in seconds for the instrumented program and the verifier
	Timeout int `yaml:"timeout"`

	// LogFile is the name of the execution log that instrumented programs write in their log directory
	LogFile string `yaml:"log-file"`
}

// Tools names the external executables.
type Tools struct {
	Clang string `yaml:"clang"`
	Opt   string `yaml:"opt"`
	Dot   string `yaml:"dot"`

	// Prepass, Instrument and Verify are file names inside the tool directory
	Prepass    string `yaml:"prepass"`
	Instrument string `yaml:"instrument"`
	Verify     string `yaml:"verify"`
}

// RenderOptions configures the graph renderer.
type RenderOptions struct {
	// Format is the output image format, e.g. png or svg
	Format string `yaml:"format"`

	// Engine is either "external" (calls dot) or "builtin" (graphviz bindings)
	Engine string `yaml:"engine"`
}

// NewDefault returns the default config.
func NewDefault() *Config {
	return &Config{
		Options: Options{
			LogLevel: int(InfoLevel),
			Timeout:  DefaultTimeoutSeconds,
			LogFile:  DefaultLogFile,
		},
		Tools:     defaultTools(),
		OptPasses: slices.Clone(DefaultOptPasses),
		Render: RenderOptions{
			Format: DefaultRenderFormat,
			Engine: EngineExternal,
		},
	}
}

func defaultTools() Tools {
	return Tools{
		Clang:      "clang",
		Opt:        "opt",
		Dot:        "dot",
		Prepass:    "global-pts",
		Instrument: "pts-inst",
		Verify:     "pts-verify",
	}
}

// Load reads a configuration from a yaml file.
func Load(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("could not load config file %s: %w", filename, err)
	}
	cfg.sourceFile = filename
	return cfg, nil
}

// Parse reads a configuration from the yaml content b, on top of the default configuration.
func Parse(b []byte) (*Config, error) {
	cfg := NewDefault()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if c.LogLevel == 0 {
		c.LogLevel = int(InfoLevel)
	}
	if c.LogLevel < int(ErrLevel) || c.LogLevel > int(TraceLevel) {
		return fmt.Errorf("log-level must be between %d and %d, got %d", ErrLevel, TraceLevel, c.LogLevel)
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeoutSeconds
	}
	if c.LogFile == "" {
		c.LogFile = DefaultLogFile
	}

	def := defaultTools()
	for _, t := range []struct {
		field *string
		value string
	}{
		{&c.Tools.Clang, def.Clang},
		{&c.Tools.Opt, def.Opt},
		{&c.Tools.Dot, def.Dot},
		{&c.Tools.Prepass, def.Prepass},
		{&c.Tools.Instrument, def.Instrument},
		{&c.Tools.Verify, def.Verify},
	} {
		if *t.field == "" {
			*t.field = t.value
		}
	}

	if len(c.OptPasses) == 0 {
		c.OptPasses = slices.Clone(DefaultOptPasses)
	}

	if c.Render.Format == "" {
		c.Render.Format = DefaultRenderFormat
	}
	switch c.Render.Engine {
	case "":
		c.Render.Engine = EngineExternal
	case EngineExternal, EngineBuiltin:
	default:
		return fmt.Errorf("render engine %q not recognized, expected %q or %q",
			c.Render.Engine, EngineExternal, EngineBuiltin)
	}
	return nil
}

// SourceFile returns the name of the file the config was loaded from, or "" for a default config.
func (c Config) SourceFile() string {
	return c.sourceFile
}

// TimeoutDuration returns the configured time limit.
func (c Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// Verbose returns true is the configuration verbosity setting is larger than Info (i.e. Debug or Trace)
func (c Config) Verbose() bool {
	return c.LogLevel >= int(DebugLevel)
}
