// Package dag records the parent/module hierarchy of related project
// descriptors as a directed graph. Edges point from an aggregating or
// parent descriptor to the descriptor it contains.
package dag

import (
	"fmt"
	"slices"
	"sort"
)

// Node is a node of the graph.
type Node[T any] struct {
	// ID is the unique identifier of the node.
	ID string
	// Data is the value attached to the node.
	Data T
}

// Graph is a directed graph keyed by node ID.
type Graph[T any] struct {
	nodes    map[string]*Node[T]
	children map[string][]string
	parents  map[string][]string
}

// NewGraph creates an empty graph.
func NewGraph[T any]() *Graph[T] {
	return &Graph[T]{
		nodes:    make(map[string]*Node[T]),
		children: make(map[string][]string),
		parents:  make(map[string][]string),
	}
}

// AddNode adds a node, or replaces the data of an existing one.
func (g *Graph[T]) AddNode(id string, data T) {
	if n, ok := g.nodes[id]; ok {
		n.Data = data
		return
	}
	g.nodes[id] = &Node[T]{ID: id, Data: data}
}

// AddEdge adds an edge from parent to child. Both nodes must exist.
func (g *Graph[T]) AddEdge(parentID, childID string) error {
	if _, ok := g.nodes[parentID]; !ok {
		return fmt.Errorf("parent node %q does not exist", parentID)
	}
	if _, ok := g.nodes[childID]; !ok {
		return fmt.Errorf("child node %q does not exist", childID)
	}
	if parentID == childID {
		return fmt.Errorf("self-loop detected: %s", parentID)
	}

	if !slices.Contains(g.children[parentID], childID) {
		g.children[parentID] = append(g.children[parentID], childID)
	}
	if !slices.Contains(g.parents[childID], parentID) {
		g.parents[childID] = append(g.parents[childID], parentID)
	}
	return nil
}

// Node returns the node with the given ID.
func (g *Graph[T]) Node(id string) (*Node[T], bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Parents returns the sorted parents of a node.
func (g *Graph[T]) Parents(id string) []string {
	return sorted(g.parents[id])
}

// Children returns the sorted children of a node.
func (g *Graph[T]) Children(id string) []string {
	return sorted(g.children[id])
}

// Nodes returns all nodes ordered by ID.
func (g *Graph[T]) Nodes() []*Node[T] {
	nodes := make([]*Node[T], 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
}

// Len returns the number of nodes.
func (g *Graph[T]) Len() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph[T]) EdgeCount() int {
	count := 0
	for _, c := range g.children {
		count += len(c)
	}
	return count
}

// Roots returns the sorted IDs of nodes without parents.
func (g *Graph[T]) Roots() []string {
	var roots []string
	for id := range g.nodes {
		if len(g.parents[id]) == 0 {
			roots = append(roots, id)
		}
	}
	sort.Strings(roots)
	return roots
}

// Cycle returns a cycle path if the graph contains one.
func (g *Graph[T]) Cycle() []string {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	via := make(map[string]string)
	var cycle []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		onStack[id] = true
		for _, child := range g.Children(id) {
			if !visited[child] {
				via[child] = id
				if dfs(child) {
					return true
				}
			} else if onStack[child] {
				cycle = []string{child}
				for cur := id; cur != child; cur = via[cur] {
					cycle = append([]string{cur}, cycle...)
				}
				cycle = append([]string{child}, cycle...)
				return true
			}
		}
		onStack[id] = false
		return false
	}

	for _, n := range g.Nodes() {
		if !visited[n.ID] && dfs(n.ID) {
			return cycle
		}
	}
	return nil
}

// TopologicalSort returns nodes with parents before children. Ties are
// broken by ID.
func (g *Graph[T]) TopologicalSort() ([]*Node[T], error) {
	if cycle := g.Cycle(); cycle != nil {
		return nil, fmt.Errorf("cycle detected: %v", cycle)
	}

	visited := make(map[string]bool)
	var result []*Node[T]
	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, p := range g.Parents(id) {
			visit(p)
		}
		result = append(result, g.nodes[id])
	}
	for _, n := range g.Nodes() {
		visit(n.ID)
	}
	return result, nil
}

// Levels groups node IDs by depth. Level 0 holds the roots; a node sits one
// level below its deepest parent.
func (g *Graph[T]) Levels() ([][]string, error) {
	if cycle := g.Cycle(); cycle != nil {
		return nil, fmt.Errorf("cycle detected: %v", cycle)
	}

	assigned := make(map[string]int)
	var level func(id string) int
	level = func(id string) int {
		if l, ok := assigned[id]; ok {
			return l
		}
		l := 0
		for _, p := range g.parents[id] {
			l = max(l, level(p)+1)
		}
		assigned[id] = l
		return l
	}

	maxLevel := -1
	for id := range g.nodes {
		maxLevel = max(maxLevel, level(id))
	}
	levels := make([][]string, maxLevel+1)
	for id, l := range assigned {
		levels[l] = append(levels[l], id)
	}
	for i := range levels {
		sort.Strings(levels[i])
	}
	return levels, nil
}

func sorted(ids []string) []string {
	out := slices.Clone(ids)
	sort.Strings(out)
	return out
}
