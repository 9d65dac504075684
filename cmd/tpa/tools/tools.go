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

// Package tools contains utility types and functions for the tpa tool frontends.
package tools

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/awslabs/tpa-tools/harness/config"
)

// UnparsedCommonFlags represents an unparsed CLI sub-command flags.
type UnparsedCommonFlags struct {
	FlagSet    *flag.FlagSet
	ConfigPath *string
	Verbose    *bool
}

// NewUnparsedCommonFlags returns an unparsed flag set with a given name.
// This is useful for creating sub-commands that have the flags -tpa-config and -verbose but need other
// flags in addition.
func NewUnparsedCommonFlags(name string) UnparsedCommonFlags {
	cmd := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := cmd.String("tpa-config", "", "tpa-tools config file path")
	verbose := cmd.Bool("verbose", false, "print the external commands and debugging information")
	return UnparsedCommonFlags{
		FlagSet:    cmd,
		ConfigPath: configPath,
		Verbose:    verbose,
	}
}

// CommonFlags represents a parsed CLI sub-command flags.
type CommonFlags struct {
	FlagSet    *flag.FlagSet
	ConfigPath string
	Verbose    bool
}

// Parse parses args with the flag set of u and returns the common flags.
func (u UnparsedCommonFlags) Parse(args []string) (CommonFlags, error) {
	if err := u.FlagSet.Parse(args); err != nil {
		return CommonFlags{}, fmt.Errorf("failed to parse command %s with args %v: %v", u.FlagSet.Name(), args, err)
	}
	return CommonFlags{
		FlagSet:    u.FlagSet,
		ConfigPath: *u.ConfigPath,
		Verbose:    *u.Verbose,
	}, nil
}

// SetUsage sets cmd's usage (for --help flag) to output the string cmdUsage
// followed by each flag's documentation.
func SetUsage(cmd *flag.FlagSet, cmdUsage string) {
	cmd.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n", cmdUsage)
		fmt.Fprintf(os.Stderr, "Options:\n")
		cmd.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(os.Stderr, "  %s: %s (default: %q)\n", f.Name, f.Usage, f.DefValue)
		})
	}
}

// StringList collects the values of a repeated flag.
type StringList []string

func (s *StringList) String() string {
	if s == nil {
		return "[]"
	}
	return fmt.Sprintf("%v", []string(*s))
}

// Set adds value to s.
// This method satisfies the flag.Value interface.
func (s *StringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

// IsSet returns true if the flag name was given on the command line of cmd.
func IsSet(cmd *flag.FlagSet, name string) bool {
	set := false
	cmd.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// Positional returns the positional arguments of cmd, which must be exactly as many as names.
func Positional(cmd *flag.FlagSet, names ...string) ([]string, error) {
	args := cmd.Args()
	if len(args) == len(names) {
		return args, nil
	}
	if len(args) > len(names) {
		return nil, fmt.Errorf("unexpected argument %q after %s", args[len(names)], strings.Join(names, ", "))
	}
	return nil, fmt.Errorf("missing argument: expected %s", strings.Join(names, ", "))
}

// LoadConfig returns the configuration in configPath, or the default configuration if configPath is
// empty, along with its logger. Verbose forces the debug log level.
func LoadConfig(configPath string, verbose bool) (*config.Config, *config.LogGroup, error) {
	cfg := config.NewDefault()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load config file %s: %v", configPath, err)
		}
	}
	if verbose && cfg.LogLevel < int(config.DebugLevel) {
		cfg.LogLevel = int(config.DebugLevel)
	}
	return cfg, config.NewLogGroup(cfg), nil
}

// ExitError carries the exit status of a sub-command that failed.
type ExitError struct {
	Code int
	Err  error

	// Reported is set when the sub-command already printed its diagnostic
	Reported bool
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Fail wraps err into an *ExitError with the generic failure code -1. It returns nil for a nil err.
func Fail(err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: -1, Err: err}
}

// ExitCode returns the exit status for an error returned by a sub-command: the code of an *ExitError,
// 0 for nil, and -1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return -1
}
