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

/*
Package config manages the configuration of the tpa tools.

Every tpa sub-command accepts a -tpa-config flag pointing to a yaml file (in pts-test, -c and -config
name the pointer annotation file instead). When no file is given,
[NewDefault] is used. Use [Load](filename) to read a file; fields that are absent keep their
default value. For example, a valid config file is as follows:

	options:
	  log-level: 4
	  timeout: 10
	  log-file: pts.log

	tools:
	  clang: clang-12
	  opt: opt-12
	  verify: pts-verify

	opt-passes: ["-mem2reg", "-instnamer"]

	render:
	  format: svg
	  engine: builtin

The names in tools.prepass, tools.instrument and tools.verify are looked up inside the tool directory
given on the command line (-b). The other tool names are resolved through PATH.
*/
package config
