package dag

import (
	"reflect"
	"testing"
)

// hierarchy builds parent -> {app, lib}, app -> web.
func hierarchy(t *testing.T) *Graph[string] {
	t.Helper()
	g := NewGraph[string]()
	for _, id := range []string{"parent", "app", "lib", "web"} {
		g.AddNode(id, id+".xml")
	}
	for _, e := range [][2]string{{"parent", "app"}, {"parent", "lib"}, {"app", "web"}} {
		if err := g.AddEdge(e[0], e[1]); err != nil {
			t.Fatalf("failed to add edge %v: %v", e, err)
		}
	}
	return g
}

func TestGraph_AddNodeAndEdge(t *testing.T) {
	g := hierarchy(t)

	if g.Len() != 4 {
		t.Errorf("expected 4 nodes, got %d", g.Len())
	}
	if g.EdgeCount() != 3 {
		t.Errorf("expected 3 edges, got %d", g.EdgeCount())
	}

	g.AddNode("app", "moved.xml")
	n, ok := g.Node("app")
	if !ok || n.Data != "moved.xml" {
		t.Errorf("expected app data to be replaced, got %+v", n)
	}
	if g.Len() != 4 {
		t.Errorf("re-adding a node must not grow the graph, got %d", g.Len())
	}
}

func TestGraph_AddEdge_InvalidNodes(t *testing.T) {
	g := NewGraph[int]()
	g.AddNode("a", 1)

	if err := g.AddEdge("a", "nonexistent"); err == nil {
		t.Error("expected error for nonexistent child node")
	}
	if err := g.AddEdge("nonexistent", "a"); err == nil {
		t.Error("expected error for nonexistent parent node")
	}
	if err := g.AddEdge("a", "a"); err == nil {
		t.Error("expected error for self-loop")
	}
}

func TestGraph_DuplicateEdges(t *testing.T) {
	g := hierarchy(t)
	_ = g.AddEdge("parent", "app")
	_ = g.AddEdge("parent", "app")

	if g.EdgeCount() != 3 {
		t.Errorf("expected duplicate edges to be ignored, got %d edges", g.EdgeCount())
	}
}

func TestGraph_ParentsAndChildren(t *testing.T) {
	g := hierarchy(t)

	if got := g.Children("parent"); !reflect.DeepEqual(got, []string{"app", "lib"}) {
		t.Errorf("unexpected children of parent: %v", got)
	}
	if got := g.Parents("web"); !reflect.DeepEqual(got, []string{"app"}) {
		t.Errorf("unexpected parents of web: %v", got)
	}
	if got := g.Roots(); !reflect.DeepEqual(got, []string{"parent"}) {
		t.Errorf("unexpected roots: %v", got)
	}
}

func TestGraph_Cycle(t *testing.T) {
	g := hierarchy(t)
	if cycle := g.Cycle(); cycle != nil {
		t.Errorf("expected no cycle, found %v", cycle)
	}

	_ = g.AddEdge("web", "parent")
	cycle := g.Cycle()
	if len(cycle) == 0 {
		t.Fatal("expected cycle to be detected")
	}
	if cycle[0] != cycle[len(cycle)-1] {
		t.Errorf("cycle path must start and end at the same node: %v", cycle)
	}

	if _, err := g.TopologicalSort(); err == nil {
		t.Error("expected topological sort to fail on a cycle")
	}
	if _, err := g.Levels(); err == nil {
		t.Error("expected levels to fail on a cycle")
	}
}

func TestGraph_TopologicalSort(t *testing.T) {
	g := hierarchy(t)

	nodes, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pos := make(map[string]int)
	for i, n := range nodes {
		pos[n.ID] = i
	}
	if len(pos) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(pos))
	}
	if pos["parent"] > pos["app"] || pos["parent"] > pos["lib"] || pos["app"] > pos["web"] {
		t.Errorf("parents must precede children: %v", pos)
	}
}

func TestGraph_Levels(t *testing.T) {
	g := hierarchy(t)
	g.AddNode("standalone", "")

	levels, err := g.Levels()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][]string{
		{"parent", "standalone"},
		{"app", "lib"},
		{"web"},
	}
	if !reflect.DeepEqual(levels, want) {
		t.Errorf("expected %v, got %v", want, levels)
	}
}

func TestGraph_LevelsEmpty(t *testing.T) {
	levels, err := NewGraph[string]().Levels()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(levels) != 0 {
		t.Errorf("expected no levels, got %v", levels)
	}
}
