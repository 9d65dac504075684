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
	"errors"

	"github.com/awslabs/tpa-tools/harness/toolexec"
	"github.com/awslabs/tpa-tools/internal/pathutil"
)

// Outcome classifies the result of a test.
type Outcome int

const (
	// Passed means the verifier accepted the execution log
	Passed Outcome = iota
	// Failed means a stage or the verifier reported an error
	Failed
	// TimedOut means the program or the verifier exceeded the time limit
	TimedOut
	// Crashed means the verifier did not terminate normally
	Crashed
	// Invalid means the options were rejected before anything ran
	Invalid
)

func (o Outcome) String() string {
	switch o {
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	case TimedOut:
		return "timeout"
	case Crashed:
		return "crashed"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// ExitCode returns the process exit code of the pts-test command for o.
func (o Outcome) ExitCode() int {
	switch o {
	case Passed:
		return 0
	case TimedOut:
		return -2
	case Crashed:
		return -3
	default:
		return -1
	}
}

// OutcomeOf classifies an error returned by Tester.Run.
// Only the program and the verifier have a time limit, and only a verifier crash counts as Crashed: a
// crash of the other stages is a failure.
func OutcomeOf(err error) Outcome {
	if err == nil {
		return Passed
	}
	var pathErr *pathutil.PathError
	if errors.As(err, &pathErr) || errors.Is(err, ErrInvalidTimeout) {
		return Invalid
	}
	var stageErr *toolexec.StageError
	if !errors.As(err, &stageErr) {
		return Failed
	}
	switch {
	case stageErr.TimedOut():
		return TimedOut
	case stageErr.Stage == StageVerify && stageErr.Crashed():
		return Crashed
	default:
		return Failed
	}
}

// ExitCode returns the exit code for an error returned by Tester.Run.
func ExitCode(err error) int {
	return OutcomeOf(err).ExitCode()
}
