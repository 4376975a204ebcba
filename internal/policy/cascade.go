package policy

// CascadeResult is the outcome of resolving a delete cascade. IDs always
// contains the root comment id first, followed by its transitive
// descendants in input order. CycleDetected is set when a parent chain in
// the input loops instead of terminating; the resolver still returns
// every descendant it could prove, it just flags the invariant violation
// instead of looping forever.
type CascadeResult struct {
	IDs           []string
	CycleDetected bool
}

// Contains reports whether id is part of the removal set.
func (r CascadeResult) Contains(id string) bool {
	for _, got := range r.IDs {
		if got == id {
			return true
		}
	}
	return false
}

// ResolveCascade computes the full set of comments that must be removed
// when the comment identified by commentID is deleted: the comment itself
// plus every comment whose parent_id chain transitively resolves to it.
// comments should be the full comment set of the owning post.
//
// The function is pure and idempotent; it never mutates its input. Each
// parent chain walk is bounded by the input size, so the resolver
// terminates even if the data contains a cycle (which write-once
// parent_id should make impossible).
func ResolveCascade(commentID string, comments []Comment) CascadeResult {
	result := CascadeResult{IDs: []string{commentID}}

	byID := make(map[string]Comment, len(comments))
	for _, c := range comments {
		byID[c.ID] = c
	}

	bound := len(comments)
	for _, c := range comments {
		if c.ID == commentID {
			continue
		}
		descendant, cycle := chainReaches(c, commentID, byID, bound)
		if cycle {
			result.CycleDetected = true
		}
		if descendant {
			result.IDs = append(result.IDs, c.ID)
		}
	}

	return result
}

// chainReaches walks the parent chain of c upward and reports whether it
// reaches targetID. A chain longer than bound steps cannot exist in
// well-formed data, so exceeding it means the chain loops.
func chainReaches(c Comment, targetID string, byID map[string]Comment, bound int) (found, cycle bool) {
	cur := c
	for steps := 0; cur.ParentID != nil && *cur.ParentID != ""; steps++ {
		if steps >= bound {
			return false, true
		}
		pid := *cur.ParentID
		if pid == targetID {
			return true, false
		}
		parent, ok := byID[pid]
		if !ok {
			// Dangling parent reference: the chain ends here.
			return false, false
		}
		cur = parent
	}
	return false, false
}
