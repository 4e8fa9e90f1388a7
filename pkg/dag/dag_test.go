package dag

import (
	"errors"
	"testing"
)

func TestAddNodeAndEdge(t *testing.T) {
	g := New()
	if err := g.AddNode(Node{ID: 1}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddNode(Node{ID: 1}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("AddNode(dup) = %v, want ErrDuplicateNodeID", err)
	}
	g.AddNode(Node{ID: 2})

	tests := []struct {
		name string
		edge Edge
		want error
	}{
		{"valid", Edge{From: 1, To: 2}, nil},
		{"parallel collapsed", Edge{From: 1, To: 2}, nil},
		{"unknown source", Edge{From: 9, To: 2}, ErrUnknownNode},
		{"unknown target", Edge{From: 1, To: 9}, ErrUnknownNode},
		{"self loop", Edge{From: 1, To: 1}, ErrSelfLoop},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := g.AddEdge(tt.edge); !errors.Is(err, tt.want) {
				t.Errorf("AddEdge(%v) = %v, want %v", tt.edge, err, tt.want)
			}
		})
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
	if id := g.NewID(); id != 3 {
		t.Errorf("NewID() = %d, want 3", id)
	}
}

func TestValidate(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: 0, Row: 0})
	g.AddNode(Node{ID: 1, Row: 1})
	g.AddNode(Node{ID: 2, Row: 3})
	g.AddEdge(Edge{From: 0, To: 1})
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	g.AddEdge(Edge{From: 1, To: 2})
	if err := g.Validate(); !errors.Is(err, ErrNonConsecutiveRows) {
		t.Errorf("Validate() = %v, want ErrNonConsecutiveRows", err)
	}
}

func TestAcyclic(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: 0})
	g.AddNode(Node{ID: 1})
	g.AddEdge(Edge{From: 0, To: 1})
	if !g.Acyclic() {
		t.Error("Acyclic() = false for a chain")
	}
	g.AddEdge(Edge{From: 1, To: 0})
	if g.Acyclic() {
		t.Error("Acyclic() = true for a cycle")
	}
}

func TestCountLayerCrossings(t *testing.T) {
	g := New()
	for i := 0; i < 6; i++ {
		g.AddNode(Node{ID: i})
	}
	// Upper 0 1 2, lower 3 4 5.
	g.AddEdge(Edge{From: 0, To: 5})
	g.AddEdge(Edge{From: 1, To: 4})
	g.AddEdge(Edge{From: 2, To: 3})

	tests := []struct {
		name         string
		upper, lower []int
		want         int
	}{
		{"all crossing", []int{0, 1, 2}, []int{3, 4, 5}, 3},
		{"none crossing", []int{0, 1, 2}, []int{5, 4, 3}, 0},
		{"empty lower", []int{0, 1, 2}, nil, 0},
		{"one swap", []int{0, 1, 2}, []int{4, 5, 3}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountLayerCrossings(g, tt.upper, tt.lower); got != tt.want {
				t.Errorf("CountLayerCrossings() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRows(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: 5, Row: 1})
	g.AddNode(Node{ID: 3, Row: 0})
	g.AddNode(Node{ID: 4, Row: 1})

	rows := g.Rows()
	if len(rows) != 2 {
		t.Fatalf("len(Rows()) = %d, want 2", len(rows))
	}
	if ids := NodeIDs(rows[1]); ids[0] != 5 || ids[1] != 4 {
		t.Errorf("row 1 = %v, want insertion order [5 4]", ids)
	}
}
