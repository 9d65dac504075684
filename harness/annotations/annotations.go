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

// Package annotations reads the external annotation databases of the TPA tools (pointer effects,
// mod/ref and taint tables) and extracts the entries of given functions.
//
// An annotation database is a text file with one entry per line. Empty lines and lines starting with
// # are ignored. An entry belongs to the function named by its first word, except when the first word
// is one of the MarkerWords: the function is then named by the second word. For example,
//
//	IGNORE printf
//	SOURCE getenv Ret V
//	memcpy COPY Arg0D Arg1D
//
// contains entries for printf, getenv and memcpy.
//
// A function that is literally named like a marker word cannot be annotated: its entries are filed
// under their second word.
package annotations

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/exp/slices"
)

// MarkerWords are the leading keywords that are followed by the function name.
var MarkerWords = []string{"IGNORE", "SOURCE", "PIPE", "SINK"}

// Database maps function names to their annotation entries.
type Database struct {
	// Keys lists the function names in order of first occurrence
	Keys []string

	// Lines maps a function name to its entries, in file order. Entries are trimmed of surrounding spaces.
	Lines map[string][]string
}

// ParseError reports a malformed entry.
type ParseError struct {
	Line int
	Text string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: annotation %q should have at least two words", e.Line, e.Text)
}

// FunctionName returns the name of the function an entry belongs to.
func FunctionName(entry string) (string, error) {
	words := strings.Fields(entry)
	if len(words) < 2 {
		return "", &ParseError{Text: entry}
	}
	if slices.Contains(MarkerWords, words[0]) {
		return words[1], nil
	}
	return words[0], nil
}

// Parse reads a database from r.
func Parse(r io.Reader) (*Database, error) {
	db := &Database{Lines: map[string][]string{}}
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, err := FunctionName(line)
		if err != nil {
			return nil, &ParseError{Line: lineNum, Text: line}
		}
		if _, ok := db.Lines[name]; !ok {
			db.Keys = append(db.Keys, name)
		}
		db.Lines[name] = append(db.Lines[name], line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error while reading annotations: %w", err)
	}
	return db, nil
}

// LoadFile reads the database stored in filename.
func LoadFile(filename string) (*Database, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	db, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return db, nil
}

// Lookup returns the entries of function name, in file order. The boolean is false when the database
// has no entry for name.
func (db *Database) Lookup(name string) ([]string, bool) {
	lines, ok := db.Lines[name]
	return lines, ok
}

// Len returns the number of functions in the database.
func (db *Database) Len() int {
	return len(db.Keys)
}
