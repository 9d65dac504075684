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

package toolexec

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
)

// StageError reports the failure of one stage of a pipeline of external tools.
type StageError struct {
	// Stage names the pipeline stage, e.g. "compile" or "verify"
	Stage string

	// Command is the command line of the failed stage
	Command string

	Result Result

	// Err is the error returned by the Runner, if any
	Err error
}

func (e *StageError) Error() string {
	switch {
	case e.Result.TimedOut:
		return fmt.Sprintf("%s stage timed out: %v", e.Stage, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
	case e.Result.Signaled:
		return fmt.Sprintf("%s stage was killed by a signal", e.Stage)
	default:
		msg := fmt.Sprintf("%s stage exited with code %d", e.Stage, e.Result.ExitCode)
		if diag := firstLine(e.Result.Stderr); diag != "" {
			msg += ": " + diag
		}
		return msg
	}
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// TimedOut returns true when the stage was stopped by its time limit.
func (e *StageError) TimedOut() bool {
	return e.Result.TimedOut || errors.Is(e.Err, ErrTimeout)
}

// NotStarted returns true when the executable of the stage could not be found or started.
func (e *StageError) NotStarted() bool {
	var execErr *exec.Error
	return errors.As(e.Err, &execErr) || errors.Is(e.Err, fs.ErrNotExist) || errors.Is(e.Err, fs.ErrPermission)
}

// Crashed returns true when the stage started but did not terminate with an exit status: it was killed
// by a signal or the communication with it failed.
func (e *StageError) Crashed() bool {
	if e.TimedOut() || e.NotStarted() {
		return false
	}
	return e.Result.Signaled || e.Err != nil
}

// Check returns nil if the run of c succeeded, otherwise a *StageError.
func Check(stage string, c Command, res Result, err error) error {
	if err == nil && res.Success() {
		return nil
	}
	return &StageError{
		Stage:   stage,
		Command: c.String(),
		Result:  res,
		Err:     err,
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
