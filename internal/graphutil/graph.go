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

// Package graphutil gives a graph view of the .dot files drawn by the TPA tools (pointer CFGs, def-use
// graphs) so that they can be checked and summarized with existing graph libraries.
package graphutil

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/formats/dot"
	"gonum.org/v1/gonum/graph/formats/dot/ast"
	"gonum.org/v1/gonum/graph/iterator"
)

// DotGraph is a graph read from a DOT file. Node IDs are assigned in order of first appearance.
// It implements the graph.Iterator interface of yourbasic/graph and gonum's graph.Directed.
// Undirected graphs are represented with one directed edge in each direction.
type DotGraph struct {
	// Name is the ID of the graph in the DOT file, possibly empty
	Name string

	Directed bool
	Strict   bool

	// names[id] is the DOT ID of node id
	names []string
	ids   map[string]int64

	// out[x][y] is the number of edges from x to y; in is its transpose
	out map[int64]map[int64]int
	in  map[int64]map[int64]int

	// edges is the number of edges as written in the file
	edges int
}

// ParseFile parses the DOT file at path and returns one DotGraph per graph in the file.
func ParseFile(path string) ([]*DotGraph, error) {
	f, err := dot.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fromFile(f), nil
}

// Parse parses DOT content.
func Parse(b []byte) ([]*DotGraph, error) {
	f, err := dot.ParseBytes(b)
	if err != nil {
		return nil, err
	}
	return fromFile(f), nil
}

func fromFile(f *ast.File) []*DotGraph {
	graphs := make([]*DotGraph, 0, len(f.Graphs))
	for _, g := range f.Graphs {
		graphs = append(graphs, FromAST(g))
	}
	return graphs
}

// FromAST builds the DotGraph of a parsed graph. Edge chains (a -> b -> c) are split into their
// consecutive edges, and an edge whose endpoint is a subgraph connects every node of the subgraph.
func FromAST(g *ast.Graph) *DotGraph {
	d := &DotGraph{
		Name:     g.ID,
		Directed: g.Directed,
		Strict:   g.Strict,
		ids:      map[string]int64{},
		out:      map[int64]map[int64]int{},
		in:       map[int64]map[int64]int{},
	}
	d.walk(g.Stmts)
	return d
}

// walk adds the nodes and edges of stmts and returns the nodes they mention, in order.
func (d *DotGraph) walk(stmts []ast.Stmt) []int64 {
	var mentioned []int64
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.NodeStmt:
			mentioned = append(mentioned, d.addNode(s.Node.ID))
		case *ast.EdgeStmt:
			from := d.vertex(s.From)
			mentioned = append(mentioned, from...)
			for e := s.To; e != nil; e = e.To {
				to := d.vertex(e.Vertex)
				mentioned = append(mentioned, to...)
				for _, x := range from {
					for _, y := range to {
						d.addEdge(x, y)
					}
				}
				from = to
			}
		case *ast.Subgraph:
			mentioned = append(mentioned, d.walk(s.Stmts)...)
		}
	}
	return mentioned
}

func (d *DotGraph) vertex(v ast.Vertex) []int64 {
	switch x := v.(type) {
	case *ast.Node:
		return []int64{d.addNode(x.ID)}
	case *ast.Subgraph:
		return d.walk(x.Stmts)
	}
	return nil
}

func (d *DotGraph) addNode(name string) int64 {
	if id, ok := d.ids[name]; ok {
		return id
	}
	id := int64(len(d.names))
	d.names = append(d.names, name)
	d.ids[name] = id
	d.out[id] = map[int64]int{}
	d.in[id] = map[int64]int{}
	return id
}

func (d *DotGraph) addEdge(x, y int64) {
	if d.Strict && d.out[x][y] > 0 {
		return
	}
	d.edges++
	d.out[x][y]++
	d.in[y][x]++
	if !d.Directed && x != y {
		d.out[y][x]++
		d.in[x][y]++
	}
}

// NodeName returns the DOT ID of node id.
func (d *DotGraph) NodeName(id int64) string {
	if id < 0 || id >= int64(len(d.names)) {
		return ""
	}
	return d.names[id]
}

// NodeID returns the node id of the DOT ID name.
func (d *DotGraph) NodeID(name string) (int64, bool) {
	id, ok := d.ids[name]
	return id, ok
}

// EdgeCount returns the number of edges written in the DOT file (after chains are split).
func (d *DotGraph) EdgeCount() int {
	return d.edges
}

func sortedKeys(m map[int64]int) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// *************** yourbasic graph.Iterator implementation **********************

// Order returns the number of nodes
func (d *DotGraph) Order() int {
	return len(d.names)
}

// Visit calls do for every edge out of v, once per parallel edge, in increasing order of target.
func (d *DotGraph) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	for _, w := range sortedKeys(d.out[int64(v)]) {
		for i := 0; i < d.out[int64(v)][w]; i++ {
			if do(int(w), 0) {
				return true
			}
		}
	}
	return false
}

// *************** gonum graph.Directed implementation **********************

// Node returns the node with the given id, or nil
func (d *DotGraph) Node(id int64) graph.Node {
	if id < 0 || id >= int64(len(d.names)) {
		return nil
	}
	return DotNode{id: id, Name: d.names[id]}
}

// Nodes returns all the nodes of the graph
func (d *DotGraph) Nodes() graph.Nodes {
	nodes := make([]graph.Node, len(d.names))
	for i, name := range d.names {
		nodes[i] = DotNode{id: int64(i), Name: name}
	}
	return iterator.NewOrderedNodes(nodes)
}

// From returns the successors of id
func (d *DotGraph) From(id int64) graph.Nodes {
	return d.nodeSet(d.out[id])
}

// To returns the predecessors of id
func (d *DotGraph) To(id int64) graph.Nodes {
	return d.nodeSet(d.in[id])
}

func (d *DotGraph) nodeSet(m map[int64]int) graph.Nodes {
	keys := sortedKeys(m)
	nodes := make([]graph.Node, len(keys))
	for i, k := range keys {
		nodes[i] = d.Node(k)
	}
	return iterator.NewOrderedNodes(nodes)
}

// HasEdgeBetween returns whether an edge exists between x and y, in any direction
func (d *DotGraph) HasEdgeBetween(xid, yid int64) bool {
	return d.out[xid][yid] > 0 || d.out[yid][xid] > 0
}

// HasEdgeFromTo returns whether an edge exists from u to v
func (d *DotGraph) HasEdgeFromTo(uid, vid int64) bool {
	return d.out[uid][vid] > 0
}

// Edge returns the edge from u to v, or nil
func (d *DotGraph) Edge(uid, vid int64) graph.Edge {
	if !d.HasEdgeFromTo(uid, vid) {
		return nil
	}
	return DotEdge{from: d.Node(uid).(DotNode), to: d.Node(vid).(DotNode)}
}

// DotNode is a node of a DotGraph
type DotNode struct {
	id int64

	// Name is the DOT ID of the node
	Name string
}

// ID returns the id of the node
func (n DotNode) ID() int64 {
	return n.id
}

func (n DotNode) String() string {
	return n.Name
}

// DotEdge is an edge of a DotGraph
type DotEdge struct {
	from DotNode
	to   DotNode
}

// From returns the origin of the edge
func (e DotEdge) From() graph.Node {
	return e.from
}

// To returns the destination of the edge
func (e DotEdge) To() graph.Node {
	return e.to
}

// ReversedEdge returns a new value representing the reversed edge
func (e DotEdge) ReversedEdge() graph.Edge {
	return DotEdge{from: e.to, to: e.from}
}
