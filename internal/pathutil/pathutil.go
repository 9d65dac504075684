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

// Package pathutil validates the file-system arguments of the tpa tools and derives output paths.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathError reports a command-line path that does not name an existing file or directory.
type PathError struct {
	Path string
	Dir  bool
	Err  error
}

func (e *PathError) Error() string {
	if e.Dir {
		return fmt.Sprintf("%s is not a valid directory name!", e.Path)
	}
	return fmt.Sprintf("%s is not a valid file name!", e.Path)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// CheckFile returns a *PathError unless p names an existing regular file (symbolic links are followed).
func CheckFile(p string) error {
	info, err := os.Stat(p)
	if err != nil || !info.Mode().IsRegular() {
		return &PathError{Path: p, Dir: false, Err: err}
	}
	return nil
}

// CheckDir returns a *PathError unless p names an existing directory.
func CheckDir(p string) error {
	info, err := os.Stat(p)
	if err != nil || !info.IsDir() {
		return &PathError{Path: p, Dir: true, Err: err}
	}
	return nil
}

// Ext returns the suffix of the last element of p, including the dot.
// Unlike filepath.Ext, a leading dot does not start a suffix: Ext(".config") is "".
func Ext(p string) string {
	base := filepath.Base(p)
	ext := filepath.Ext(base)
	if ext == base {
		return ""
	}
	return ext
}

// Stem returns the last element of p without its suffix.
func Stem(p string) string {
	base := filepath.Base(p)
	return strings.TrimSuffix(base, Ext(base))
}

// ReplaceExt returns p with its suffix replaced by ext. If p has no suffix, ext is appended.
func ReplaceExt(p string, ext string) string {
	return strings.TrimSuffix(p, Ext(p)) + ext
}
