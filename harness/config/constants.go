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

const (
	// DefaultTimeoutSeconds is the time limit applied to the instrumented program and to the verifier.
	DefaultTimeoutSeconds = 3

	// DefaultLogFile is the name of the execution log written by instrumented programs in their log directory.
	DefaultLogFile = "pts.log"

	// LogDirEnv is the environment variable read by the instrumentation runtime to locate its log directory.
	LogDirEnv = "LOG_DIR"

	// EngineExternal renders graphs by calling the dot executable.
	EngineExternal = "external"

	// EngineBuiltin renders graphs in-process with the graphviz bindings.
	EngineBuiltin = "builtin"

	// DefaultRenderFormat is the image format produced by the graph renderer.
	DefaultRenderFormat = "png"
)

// DefaultOptPasses is the pass sequence given to opt: promote stack slots to registers, then name
// every instruction.
var DefaultOptPasses = []string{"-mem2reg", "-instnamer"}
