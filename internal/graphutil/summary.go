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

package graphutil

import (
	"fmt"
	"strings"

	ygraph "github.com/yourbasic/graph"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/topo"
)

var (
	_ ygraph.Iterator = (*DotGraph)(nil)
	_ graph.Directed  = (*DotGraph)(nil)
)

// Summary contains the shape statistics of a DotGraph.
type Summary struct {
	Name     string
	Directed bool

	Nodes int
	Edges int

	// Loops is the number of self-loops
	Loops int

	// Parallel is the number of duplicate directed edges. In an undirected graph, each duplicate edge
	// counts twice.
	Parallel int

	// Isolated is the number of nodes without any edge
	Isolated int

	// CyclicComponents is the number of strongly connected components containing a cycle. Only set for
	// directed graphs.
	CyclicComponents int

	// Acyclic is true for directed graphs without cycles.
	Acyclic bool
}

// Summarize computes the summary of d.
func Summarize(d *DotGraph) Summary {
	stats := ygraph.Check(d)
	s := Summary{
		Name:     d.Name,
		Directed: d.Directed,
		Nodes:    d.Order(),
		Edges:    d.EdgeCount(),
		Loops:    stats.Loops,
		Parallel: stats.Multi,
	}
	for id := range d.names {
		if len(d.out[int64(id)]) == 0 && len(d.in[int64(id)]) == 0 {
			s.Isolated++
		}
	}
	if !d.Directed {
		return s
	}
	s.Acyclic = ygraph.Acyclic(d)
	for _, scc := range topo.TarjanSCC(d) {
		if len(scc) > 1 || d.HasEdgeFromTo(scc[0].ID(), scc[0].ID()) {
			s.CyclicComponents++
		}
	}
	return s
}

func (s Summary) String() string {
	var b strings.Builder
	name := s.Name
	if name == "" {
		name = "<anonymous>"
	}
	kind := "graph"
	if s.Directed {
		kind = "digraph"
	}
	fmt.Fprintf(&b, "%s %s: %d nodes, %d edges, %d self-loops, %d parallel, %d isolated",
		kind, name, s.Nodes, s.Edges, s.Loops, s.Parallel, s.Isolated)
	if s.Directed {
		if s.Acyclic {
			b.WriteString(", acyclic")
		} else {
			fmt.Fprintf(&b, ", %d cyclic components", s.CyclicComponents)
		}
	}
	return b.String()
}
