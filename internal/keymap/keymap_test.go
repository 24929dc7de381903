package keymap

import (
	"slices"
	"testing"
)

func TestBuildAndLookup(t *testing.T) {
	table := Build([]Binding{
		{Title: "Up", Key: 111, Left: 25, Right: 111},
		{Title: "Jump", Key: 65, Left: 65, Right: 65},
		{Title: "Chat", Key: 36, Left: 36},
		{Title: "Alias", Key: 112, Left: 25},
		{Title: "Unbound", Key: 0, Left: 30, Right: 31},
	})

	tests := []struct {
		name      string
		code      uint32
		wantLeft  []uint32
		wantRight []uint32
	}{
		{"left only multi", 25, []uint32{111, 112}, nil},
		{"right only", 111, nil, []uint32{111}},
		{"both sides", 65, []uint32{65}, []uint32{65}},
		{"left only single", 36, []uint32{36}, nil},
		{"zero key ignored", 30, nil, nil},
		{"unknown", 99, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			left, right := table.Lookup(tt.code)
			if !slices.Equal(left, tt.wantLeft) {
				t.Errorf("left = %v, want %v", left, tt.wantLeft)
			}
			if !slices.Equal(right, tt.wantRight) {
				t.Errorf("right = %v, want %v", right, tt.wantRight)
			}
		})
	}
}

func TestFind(t *testing.T) {
	table := Build([]Binding{
		{Title: ThrowTitle, Key: 119, Left: 65, Right: 104},
		{Title: ThrowTitle, Key: 1, Left: 2, Right: 3},
	})
	b, ok := table.Find(ThrowTitle)
	if !ok {
		t.Fatalf("Throw binding not found")
	}
	if b.Left != 65 || b.Right != 104 {
		t.Fatalf("Find returned %+v, want first match", b)
	}
	if _, ok := table.Find("Missing"); ok {
		t.Fatalf("unexpected match for missing title")
	}
	if table.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", table.Len())
	}
}

func TestNilTable(t *testing.T) {
	var table *Table
	if l, r := table.Lookup(1); l != nil || r != nil {
		t.Fatalf("nil table lookup should be empty")
	}
	if _, ok := table.Find(ThrowTitle); ok {
		t.Fatalf("nil table should have no bindings")
	}
}
