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

package annotations

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// MissingHeader introduces the list of functions without annotations.
const MissingHeader = "Missing functions:"

// Extract reads function names from names, one per line, and prints the entries of each of them to
// stdout, in the order of the names. Names are trimmed of surrounding spaces; a name that appears twice
// is printed twice. After all names are read, the names without any entry are printed to stderr under
// MissingHeader, preceded by an empty line, and returned.
func Extract(db *Database, names io.Reader, stdout io.Writer, stderr io.Writer) ([]string, error) {
	var missing []string
	scanner := bufio.NewScanner(names)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		lines, ok := db.Lookup(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		for _, line := range lines {
			if _, err := fmt.Fprintln(stdout, line); err != nil {
				return missing, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return missing, fmt.Errorf("error while reading function names: %w", err)
	}

	if len(missing) > 0 {
		fmt.Fprintf(stderr, "\n%s\n", MissingHeader)
		for _, name := range missing {
			fmt.Fprintln(stderr, name)
		}
	}
	return missing, nil
}
