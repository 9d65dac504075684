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

import "regexp"

// Captures the kind of error that happens when a flag is put after the positional arguments
var flagAfterArguments = regexp.MustCompile(`unexpected argument "-(\w|-)`)

// Captures the errors of the external tools that were not found
var executableNotFound = regexp.MustCompile(`executable file not found|no such file or directory`)

// Captures failures of the pointer analysis tools that may come from a wrong tool directory
var tpaToolFailed = regexp.MustCompile(`(prepass|instrument|verify) stage failed`)

// HintForErrorMessage looks for specific error message and returns some other message that might help the user
// resolve the problem.
func HintForErrorMessage(errMsg string) string {
	if flagAfterArguments.MatchString(errMsg) {
		return "all command line flags should be before the positional arguments"
	}
	if executableNotFound.MatchString(errMsg) {
		if tpaToolFailed.MatchString(errMsg) {
			return "make sure the tool directory (-b) contains the TPA tools"
		}
		return "make sure clang, opt and dot are in your PATH, or set their paths in the tools section of the config"
	}
	return ""
}
