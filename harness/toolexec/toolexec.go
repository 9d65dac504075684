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

// Package toolexec runs the external tools driven by the harness: compilers, the optimizer, the TPA
// tools and the graph renderer. Every run captures the standard output and error of the child, can be
// bounded by a timeout, and reports its outcome as a Result. The StageError type turns failed runs into
// errors so that pipelines stop at their first failing stage.
package toolexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/awslabs/tpa-tools/harness/config"
)

// ErrTimeout is wrapped by the errors returned for commands that exceeded their time limit.
var ErrTimeout = errors.New("time limit exceeded")

// waitDelay bounds how long Run waits for the output pipes after the child is gone, in case a
// grandchild inherited them.
const waitDelay = 2 * time.Second

// Command describes one invocation of an external executable.
type Command struct {
	// Name is the executable, resolved through PATH when it contains no path separator
	Name string
	Args []string

	// Env entries (KEY=VALUE) are added to the environment of the child only
	Env []string

	// Dir is the working directory of the child; empty means the current directory
	Dir string

	Stdin io.Reader

	// Stdout and Stderr, when set, receive a copy of the output in addition to the captured Result
	Stdout io.Writer
	Stderr io.Writer
}

// String returns the command line as it could be typed in a shell, prefixed by its extra environment.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Env)+len(c.Args)+1)
	for _, e := range c.Env {
		parts = append(parts, Quote(e))
	}
	parts = append(parts, Quote(c.Name))
	for _, a := range c.Args {
		parts = append(parts, Quote(a))
	}
	return strings.Join(parts, " ")
}

// Result is the outcome of a command that ran to completion or was stopped.
type Result struct {
	// ExitCode is the exit status of the child, -1 if it was killed or timed out
	ExitCode int
	Stdout   string
	Stderr   string

	// TimedOut is set when the child was killed because the time limit expired. No output is
	// reported in that case.
	TimedOut bool

	// Signaled is set when the child was terminated by a signal it did not handle
	Signaled bool
}

// Success returns true when the command exited normally with status zero.
func (r Result) Success() bool {
	return !r.TimedOut && !r.Signaled && r.ExitCode == 0
}

// Runner runs commands. The zero value runs commands without time limit and without logging.
type Runner struct {
	// Timeout is the time limit of each command; zero or negative means no limit
	Timeout time.Duration

	Logger *config.LogGroup
}

// Run runs c and waits for it to exit. A non-zero exit status is not an error: it is reported in the
// Result. Run returns an error when the command cannot be started, when its output cannot be
// collected, when ctx is done, and when the time limit expires (the error then wraps ErrTimeout).
func (r Runner) Run(ctx context.Context, c Command) (Result, error) {
	runCtx := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	r.Logger.Debugf("%s", c.String())

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin = c.Stdin
	cmd.Stdout = teeTo(&stdout, c.Stdout)
	cmd.Stderr = teeTo(&stderr, c.Stderr)
	cmd.WaitDelay = waitDelay
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	err := cmd.Run()

	if r.Timeout > 0 && ctx.Err() == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return Result{ExitCode: -1, TimedOut: true}, fmt.Errorf("%s: %w (%v)", c.Name, ErrTimeout, r.Timeout)
	}
	if ctx.Err() != nil {
		return Result{ExitCode: -1}, fmt.Errorf("%s: %w", c.Name, ctx.Err())
	}

	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	r.Logger.Tracef("%s stdout:\n%s", c.Name, res.Stdout)
	r.Logger.Tracef("%s stderr:\n%s", c.Name, res.Stderr)

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		res.ExitCode = 0
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		// ExitCode is -1 when the process did not exit on its own
		res.Signaled = res.ExitCode == -1
	default:
		res.ExitCode = -1
		return res, fmt.Errorf("%s: %w", c.Name, err)
	}
	return res, nil
}

// RunStage runs c and converts any failure into a *StageError named after stage.
func (r Runner) RunStage(ctx context.Context, stage string, c Command) (Result, error) {
	res, err := r.Run(ctx, c)
	return res, Check(stage, c, res, err)
}

func teeTo(capture *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return capture
	}
	return io.MultiWriter(capture, w)
}
