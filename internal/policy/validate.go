package policy

import (
	"strings"

	"github.com/google/uuid"
)

// MaxContentLength bounds comment content. Matches the column size used
// by the comment store.
const MaxContentLength = 10000

// ValidateNewComment checks that a proposed comment is well-typed before
// it reaches the decision functions: non-empty bounded content and
// well-formed ids. It performs no content moderation.
func ValidateNewComment(newComment NewComment) Decision {
	if !validContent(newComment.Content) {
		return Deny(ReasonInvalidRequest)
	}
	if !validID(newComment.PostID) {
		return Deny(ReasonInvalidRequest)
	}
	if newComment.ParentID != nil && *newComment.ParentID != "" && !validID(*newComment.ParentID) {
		return Deny(ReasonInvalidRequest)
	}
	return Allow()
}

// ValidatePatch checks that an update payload is well-typed. Structural
// fields are left for CanUpdate to reject; here only the content shape is
// verified when the patch carries one.
func ValidatePatch(patch Patch) Decision {
	if patch.Content != nil && !validContent(*patch.Content) {
		return Deny(ReasonInvalidRequest)
	}
	return Allow()
}

func validContent(content string) bool {
	trimmed := strings.TrimSpace(content)
	return trimmed != "" && len(content) <= MaxContentLength
}

func validID(id string) bool {
	if id == "" {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
