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

package render

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-graphviz"
	"golang.org/x/exp/slices"
)

// builtinFormats are the output formats supported by the graphviz bindings
var builtinFormats = []graphviz.Format{graphviz.PNG, graphviz.SVG, graphviz.JPG, graphviz.XDOT}

// Builtin renders in-process with the graphviz bindings.
type Builtin struct {
	Format graphviz.Format
}

// NewBuiltin returns a Builtin renderer for format, one of png, svg, jpg and xdot.
func NewBuiltin(format string) (*Builtin, error) {
	f := graphviz.Format(format)
	if !slices.Contains(builtinFormats, f) {
		return nil, fmt.Errorf("format %q is not supported by the builtin renderer", format)
	}
	return &Builtin{Format: f}, nil
}

// Render implements Renderer. The graphviz library cannot be interrupted: ctx is only checked before
// starting.
func (b *Builtin) Render(ctx context.Context, in string, out string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	content, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	g, err := graphviz.ParseBytes(content)
	if err != nil {
		return fmt.Errorf("could not parse graph: %w", err)
	}
	defer g.Close()

	gv := graphviz.New()
	defer gv.Close()
	if err := gv.RenderFilename(g, b.Format, out); err != nil {
		return fmt.Errorf("could not render graph: %w", err)
	}
	return nil
}
