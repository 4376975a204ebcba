package policy

import "testing"

func strptr(s string) *string { return &s }

var (
	alice = Caller{UserID: "4f6f2fd8-7f3b-4a39-9d3e-111111111111"}
	bob   = Caller{UserID: "4f6f2fd8-7f3b-4a39-9d3e-222222222222"}
	carol = Caller{UserID: "4f6f2fd8-7f3b-4a39-9d3e-333333333333"}

	postByBob = Post{
		ID:       "8a1f9c1e-0d2b-4f5a-b6c7-aaaaaaaaaaaa",
		AuthorID: bob.UserID,
	}

	commentByAlice = Comment{
		ID:       "c0ffee00-0000-4000-8000-000000000001",
		PostID:   postByBob.ID,
		AuthorID: alice.UserID,
	}
)

func TestCanReadAlwaysAllows(t *testing.T) {
	callers := []Caller{Anonymous, alice, bob, carol}
	for _, caller := range callers {
		if d := CanRead(caller, commentByAlice); !d.Allowed {
			t.Errorf("CanRead(%q) denied with %s, want allow", caller.UserID, d.Reason)
		}
	}
}

func TestCanCreate(t *testing.T) {
	tests := []struct {
		name       string
		caller     Caller
		newComment NewComment
		parent     *Comment
		wantAllow  bool
		wantReason Reason
	}{
		{
			name:       "authenticated top-level comment",
			caller:     alice,
			newComment: NewComment{PostID: postByBob.ID, AuthorID: alice.UserID, Content: "hello"},
			wantAllow:  true,
		},
		{
			name:       "anonymous caller is rejected",
			caller:     Anonymous,
			newComment: NewComment{PostID: postByBob.ID, AuthorID: alice.UserID, Content: "hello"},
			wantReason: ReasonUnauthenticated,
		},
		{
			name:       "author_id must match the caller",
			caller:     carol,
			newComment: NewComment{PostID: postByBob.ID, AuthorID: alice.UserID, Content: "hello"},
			wantReason: ReasonImpersonation,
		},
		{
			name:       "post author cannot post as someone else either",
			caller:     bob,
			newComment: NewComment{PostID: postByBob.ID, AuthorID: alice.UserID, Content: "hello"},
			wantReason: ReasonImpersonation,
		},
		{
			name:   "reply to existing parent on the same post",
			caller: carol,
			newComment: NewComment{
				PostID:   postByBob.ID,
				ParentID: strptr(commentByAlice.ID),
				AuthorID: carol.UserID,
				Content:  "a reply",
			},
			parent:    &commentByAlice,
			wantAllow: true,
		},
		{
			name:   "reply to missing parent",
			caller: carol,
			newComment: NewComment{
				PostID:   postByBob.ID,
				ParentID: strptr("c0ffee00-0000-4000-8000-00000000dead"),
				AuthorID: carol.UserID,
				Content:  "a reply",
			},
			parent:     nil,
			wantReason: ReasonInvalidParent,
		},
		{
			name:   "reply to parent from a different post",
			caller: carol,
			newComment: NewComment{
				PostID:   "8a1f9c1e-0d2b-4f5a-b6c7-bbbbbbbbbbbb",
				ParentID: strptr(commentByAlice.ID),
				AuthorID: carol.UserID,
				Content:  "a reply",
			},
			parent:     &commentByAlice,
			wantReason: ReasonInvalidParent,
		},
		{
			name:       "missing post_id is malformed",
			caller:     alice,
			newComment: NewComment{AuthorID: alice.UserID, Content: "hello"},
			wantReason: ReasonInvalidRequest,
		},
		{
			name:       "missing author_id is malformed",
			caller:     alice,
			newComment: NewComment{PostID: postByBob.ID, Content: "hello"},
			wantReason: ReasonInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := CanCreate(tt.caller, tt.newComment, tt.parent)
			if d.Allowed != tt.wantAllow {
				t.Fatalf("allowed = %v, want %v (reason %s)", d.Allowed, tt.wantAllow, d.Reason)
			}
			if !tt.wantAllow && d.Reason != tt.wantReason {
				t.Errorf("reason = %s, want %s", d.Reason, tt.wantReason)
			}
		})
	}
}

func TestCanUpdate(t *testing.T) {
	tests := []struct {
		name       string
		caller     Caller
		patch      Patch
		wantAllow  bool
		wantReason Reason
	}{
		{
			name:      "author edits content",
			caller:    alice,
			patch:     Patch{Content: strptr("edited")},
			wantAllow: true,
		},
		{
			name:       "third party cannot edit",
			caller:     carol,
			patch:      Patch{Content: strptr("edited")},
			wantReason: ReasonNotOwner,
		},
		{
			name:       "post author cannot edit someone else's comment",
			caller:     bob,
			patch:      Patch{Content: strptr("edited")},
			wantReason: ReasonNotOwner,
		},
		{
			name:       "anonymous cannot edit",
			caller:     Anonymous,
			patch:      Patch{Content: strptr("edited")},
			wantReason: ReasonUnauthenticated,
		},
		{
			name:       "patching post_id is rejected even for the author",
			caller:     alice,
			patch:      Patch{PostID: strptr("8a1f9c1e-0d2b-4f5a-b6c7-bbbbbbbbbbbb")},
			wantReason: ReasonImmutableField,
		},
		{
			name:       "patching post_id with the current value is still rejected",
			caller:     alice,
			patch:      Patch{PostID: strptr(postByBob.ID)},
			wantReason: ReasonImmutableField,
		},
		{
			name:       "patching parent_id is rejected regardless of caller",
			caller:     carol,
			patch:      Patch{ParentID: strptr(commentByAlice.ID)},
			wantReason: ReasonImmutableField,
		},
		{
			name:       "immutable field wins over authentication",
			caller:     Anonymous,
			patch:      Patch{ParentID: strptr(commentByAlice.ID)},
			wantReason: ReasonImmutableField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := CanUpdate(tt.caller, commentByAlice, tt.patch)
			if d.Allowed != tt.wantAllow {
				t.Fatalf("allowed = %v, want %v (reason %s)", d.Allowed, tt.wantAllow, d.Reason)
			}
			if !tt.wantAllow && d.Reason != tt.wantReason {
				t.Errorf("reason = %s, want %s", d.Reason, tt.wantReason)
			}
		})
	}
}

func TestCanDeleteTwoTier(t *testing.T) {
	tests := []struct {
		name       string
		caller     Caller
		wantAllow  bool
		wantReason Reason
	}{
		{name: "comment author may delete", caller: alice, wantAllow: true},
		{name: "post author may delete any comment on their post", caller: bob, wantAllow: true},
		{name: "third party may not delete", caller: carol, wantReason: ReasonNotOwner},
		{name: "anonymous may not delete", caller: Anonymous, wantReason: ReasonUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := CanDelete(tt.caller, commentByAlice, postByBob)
			if d.Allowed != tt.wantAllow {
				t.Fatalf("allowed = %v, want %v (reason %s)", d.Allowed, tt.wantAllow, d.Reason)
			}
			if !tt.wantAllow && d.Reason != tt.wantReason {
				t.Errorf("reason = %s, want %s", d.Reason, tt.wantReason)
			}
		})
	}
}

func TestDeniedError(t *testing.T) {
	if err := Denied(Allow()); err != nil {
		t.Fatalf("Denied(allow) = %v, want nil", err)
	}

	err := Denied(Deny(ReasonNotOwner))
	denial, ok := err.(*Denial)
	if !ok {
		t.Fatalf("Denied(deny) = %T, want *Denial", err)
	}
	if denial.Reason != ReasonNotOwner {
		t.Errorf("reason = %s, want %s", denial.Reason, ReasonNotOwner)
	}
}

// End-to-end scenario: A comments on B's post, C replies, an unrelated
// user D cannot delete the thread but post author B can, and the cascade
// covers the reply.
func TestCommentThreadScenario(t *testing.T) {
	d := Caller{UserID: "4f6f2fd8-7f3b-4a39-9d3e-444444444444"}

	c1 := Comment{
		ID:       "c0ffee00-0000-4000-8000-0000000000a1",
		PostID:   postByBob.ID,
		AuthorID: alice.UserID,
	}
	if got := CanCreate(alice, NewComment{PostID: postByBob.ID, AuthorID: alice.UserID, Content: "first"}, nil); !got.Allowed {
		t.Fatalf("A creating C1 denied with %s", got.Reason)
	}

	c2 := Comment{
		ID:       "c0ffee00-0000-4000-8000-0000000000a2",
		PostID:   postByBob.ID,
		ParentID: strptr(c1.ID),
		AuthorID: carol.UserID,
	}
	if got := CanCreate(carol, NewComment{PostID: postByBob.ID, ParentID: strptr(c1.ID), AuthorID: carol.UserID, Content: "reply"}, &c1); !got.Allowed {
		t.Fatalf("C replying to C1 denied with %s", got.Reason)
	}

	if got := CanDelete(d, c1, postByBob); got.Allowed || got.Reason != ReasonNotOwner {
		t.Fatalf("unrelated D deleting C1 = %+v, want deny NOT_OWNER", got)
	}
	if got := CanDelete(bob, c1, postByBob); !got.Allowed {
		t.Fatalf("post author B deleting C1 denied with %s", got.Reason)
	}

	cascade := ResolveCascade(c1.ID, []Comment{c1, c2})
	if !cascade.Contains(c1.ID) || !cascade.Contains(c2.ID) || len(cascade.IDs) != 2 {
		t.Errorf("cascade = %v, want exactly {C1, C2}", cascade.IDs)
	}
}
