package policy

import (
	"strings"
	"testing"
)

const validPostID = "8a1f9c1e-0d2b-4f5a-b6c7-aaaaaaaaaaaa"

func TestValidateNewComment(t *testing.T) {
	tests := []struct {
		name       string
		newComment NewComment
		wantAllow  bool
	}{
		{
			name:       "well formed",
			newComment: NewComment{PostID: validPostID, AuthorID: "u", Content: "hello"},
			wantAllow:  true,
		},
		{
			name:       "empty content",
			newComment: NewComment{PostID: validPostID, AuthorID: "u", Content: ""},
		},
		{
			name:       "whitespace only content",
			newComment: NewComment{PostID: validPostID, AuthorID: "u", Content: "   \n\t "},
		},
		{
			name:       "content over the bound",
			newComment: NewComment{PostID: validPostID, AuthorID: "u", Content: strings.Repeat("x", MaxContentLength+1)},
		},
		{
			name:       "content exactly at the bound",
			newComment: NewComment{PostID: validPostID, AuthorID: "u", Content: strings.Repeat("x", MaxContentLength)},
			wantAllow:  true,
		},
		{
			name:       "post_id not a uuid",
			newComment: NewComment{PostID: "not-a-uuid", AuthorID: "u", Content: "hello"},
		},
		{
			name: "parent_id not a uuid",
			newComment: NewComment{
				PostID:   validPostID,
				ParentID: strptr("nope"),
				AuthorID: "u",
				Content:  "hello",
			},
		},
		{
			name: "parent_id valid uuid",
			newComment: NewComment{
				PostID:   validPostID,
				ParentID: strptr("c0ffee00-0000-4000-8000-000000000001"),
				AuthorID: "u",
				Content:  "hello",
			},
			wantAllow: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ValidateNewComment(tt.newComment)
			if d.Allowed != tt.wantAllow {
				t.Fatalf("allowed = %v, want %v", d.Allowed, tt.wantAllow)
			}
			if !tt.wantAllow && d.Reason != ReasonInvalidRequest {
				t.Errorf("reason = %s, want %s", d.Reason, ReasonInvalidRequest)
			}
		})
	}
}

func TestValidatePatch(t *testing.T) {
	if d := ValidatePatch(Patch{Content: strptr("edited")}); !d.Allowed {
		t.Errorf("content patch denied with %s", d.Reason)
	}
	if d := ValidatePatch(Patch{}); !d.Allowed {
		t.Errorf("empty patch denied with %s", d.Reason)
	}
	if d := ValidatePatch(Patch{Content: strptr("  ")}); d.Allowed || d.Reason != ReasonInvalidRequest {
		t.Errorf("blank content patch = %+v, want deny INVALID_REQUEST", d)
	}
	if d := ValidatePatch(Patch{Content: strptr(strings.Repeat("x", MaxContentLength+1))}); d.Allowed {
		t.Error("oversized content patch allowed")
	}
}
