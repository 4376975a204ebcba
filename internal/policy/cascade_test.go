package policy

import (
	"reflect"
	"testing"
)

func comment(id, parentID string) Comment {
	c := Comment{ID: id, PostID: "post-1", AuthorID: "user-1"}
	if parentID != "" {
		c.ParentID = &parentID
	}
	return c
}

func TestResolveCascade(t *testing.T) {
	tests := []struct {
		name      string
		root      string
		comments  []Comment
		wantIDs   []string
		wantCycle bool
	}{
		{
			name:     "leaf comment removes only itself",
			root:     "c1",
			comments: []Comment{comment("c1", ""), comment("c2", "")},
			wantIDs:  []string{"c1"},
		},
		{
			name: "direct replies",
			root: "c1",
			comments: []Comment{
				comment("c1", ""),
				comment("c2", "c1"),
				comment("c3", "c1"),
				comment("c4", ""),
			},
			wantIDs: []string{"c1", "c2", "c3"},
		},
		{
			name: "deep chain of replies",
			root: "c1",
			comments: []Comment{
				comment("c1", ""),
				comment("c2", "c1"),
				comment("c3", "c2"),
				comment("c4", "c3"),
				comment("c5", "c4"),
			},
			wantIDs: []string{"c1", "c2", "c3", "c4", "c5"},
		},
		{
			name: "subtree delete keeps siblings and ancestors",
			root: "c2",
			comments: []Comment{
				comment("c1", ""),
				comment("c2", "c1"),
				comment("c3", "c2"),
				comment("c4", "c1"),
			},
			wantIDs: []string{"c2", "c3"},
		},
		{
			name:     "root absent from the input still returns itself",
			root:     "gone",
			comments: []Comment{comment("c1", "")},
			wantIDs:  []string{"gone"},
		},
		{
			name: "dangling parent reference terminates the chain",
			root: "c1",
			comments: []Comment{
				comment("c1", ""),
				comment("c2", "missing"),
			},
			wantIDs: []string{"c1"},
		},
		{
			name: "cycle outside the subtree is flagged, discovered set kept",
			root: "c1",
			comments: []Comment{
				comment("c1", ""),
				comment("c2", "c1"),
				comment("x", "y"),
				comment("y", "x"),
			},
			wantIDs:   []string{"c1", "c2"},
			wantCycle: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveCascade(tt.root, tt.comments)
			if !reflect.DeepEqual(got.IDs, tt.wantIDs) {
				t.Errorf("IDs = %v, want %v", got.IDs, tt.wantIDs)
			}
			if got.CycleDetected != tt.wantCycle {
				t.Errorf("CycleDetected = %v, want %v", got.CycleDetected, tt.wantCycle)
			}
		})
	}
}

func TestResolveCascadeIsPureAndIdempotent(t *testing.T) {
	comments := []Comment{
		comment("c1", ""),
		comment("c2", "c1"),
		comment("c3", "c2"),
	}
	snapshot := make([]Comment, len(comments))
	copy(snapshot, comments)

	first := ResolveCascade("c1", comments)
	second := ResolveCascade("c1", comments)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("two runs differ: %+v vs %+v", first, second)
	}
	if !reflect.DeepEqual(comments, snapshot) {
		t.Errorf("input mutated: %+v", comments)
	}
}

func TestResolveCascadeTerminatesOnSelfCycle(t *testing.T) {
	// A comment whose chain loops back on itself must not hang the
	// resolver.
	comments := []Comment{
		comment("c1", ""),
		comment("c2", "c3"),
		comment("c3", "c2"),
	}

	got := ResolveCascade("c1", comments)
	if !got.CycleDetected {
		t.Error("CycleDetected = false, want true")
	}
	if !reflect.DeepEqual(got.IDs, []string{"c1"}) {
		t.Errorf("IDs = %v, want [c1]", got.IDs)
	}
}
