package topology

import "testing"

func degreesOf(nodes []Node) map[string]int {
	m := make(map[string]int, len(nodes))
	for _, n := range nodes {
		m[n.ID] = n.Degree
	}
	return m
}

func TestUpdateNodeDegrees(t *testing.T) {
	nodes := []Node{
		{ID: "n1", Adjacency: []string{"n3", "n4"}},
		{ID: "n2", Adjacency: []string{"n4"}},
		{ID: "n3"},
		{ID: "n4"},
	}

	got := degreesOf(UpdateNodeDegrees(nodes, DeriveEdges(nodes)))
	want := map[string]int{"n1": 2, "n2": 1, "n3": 1, "n4": 2}
	for id, d := range want {
		if got[id] != d {
			t.Errorf("degree(%s) = %d, want %d", id, got[id], d)
		}
	}

	// Remove n2-n4.
	nodes[1] = Node{ID: "n2"}
	got = degreesOf(UpdateNodeDegrees(nodes, DeriveEdges(nodes)))
	if got["n2"] != 0 {
		t.Errorf("degree(n2) = %d, want 0", got["n2"])
	}
	if got["n4"] != 1 {
		t.Errorf("degree(n4) = %d, want 1", got["n4"])
	}
}

func TestUpdateNodeDegreesSelfLoop(t *testing.T) {
	nodes := []Node{{ID: "a", Adjacency: []string{"a"}}}
	got := UpdateNodeDegrees(nodes, DeriveEdges(nodes))
	if got[0].Degree != 1 {
		t.Errorf("self-loop degree = %d, want 1", got[0].Degree)
	}
	if nodes[0].Degree != 0 {
		t.Error("input node was modified")
	}
}
