// Package policy implements the authorization and lifecycle rules for
// nested comments. The decision functions are pure: they receive the
// caller identity plus the ownership facts already fetched from storage,
// and return an allow/deny value with a stable reason code. They never
// touch the database themselves, so the same rules can be enforced from
// a web handler, a batch job, or a test harness.
package policy

// Reason identifies why an operation was denied. Reason codes are stable
// and intended for logging and HTTP status mapping, never for direct
// display to end users.
type Reason string

const (
	ReasonUnauthenticated  Reason = "UNAUTHENTICATED"
	ReasonNotOwner         Reason = "NOT_OWNER"
	ReasonImpersonation    Reason = "IMPERSONATION"
	ReasonImmutableField   Reason = "IMMUTABLE_FIELD"
	ReasonInvalidParent    Reason = "INVALID_PARENT"
	ReasonInvalidRequest   Reason = "INVALID_REQUEST"
	ReasonStoreUnavailable Reason = "STORE_UNAVAILABLE"
	ReasonCascadeCycle     Reason = "CASCADE_CYCLE_DETECTED"
)

// Caller is the identity attempting an operation. The zero value is the
// anonymous (unauthenticated) caller.
type Caller struct {
	UserID string
}

// Anonymous is the unauthenticated caller.
var Anonymous = Caller{}

// IsAnonymous reports whether the caller presented no identity.
func (c Caller) IsAnonymous() bool {
	return c.UserID == ""
}

// Comment is the minimal shape of a stored comment the policy needs:
// identity, authorship and parent linkage. post_id, parent_id and
// author_id are write-once; only content is ever mutable.
type Comment struct {
	ID       string
	PostID   string
	ParentID *string
	AuthorID string
}

// NewComment is a proposed comment that has not been persisted yet.
type NewComment struct {
	PostID   string
	ParentID *string
	AuthorID string
	Content  string
}

// Patch describes an attempted update. A nil field means the field is
// absent from the patch. Immutability is checked on field presence, not
// value equality: a patch that carries post_id or parent_id is rejected
// even if the supplied value equals the current one.
type Patch struct {
	Content  *string
	PostID   *string
	ParentID *string
}

// Post carries the one fact the policy needs about the owning post: who
// wrote it. The post author holds delegated delete rights over every
// comment on their post.
type Post struct {
	ID       string
	AuthorID string
}

// Decision is the result of a policy check.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Allow returns an allowing decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a denying decision with the given reason.
func Deny(reason Reason) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// CanRead decides whether the caller may read a comment. Reads are
// public: always allowed, including for the anonymous caller.
func CanRead(caller Caller, comment Comment) Decision {
	return Allow()
}

// CanCreate decides whether the caller may create the proposed comment.
// parent is the already-fetched parent comment when newComment.ParentID
// is set; pass nil if the parent does not exist. Rules, in order:
//
//   - anonymous callers cannot create comments (UNAUTHENTICATED)
//   - the proposed author_id must match the caller (IMPERSONATION)
//   - a reply's parent must exist and belong to the same post
//     (INVALID_PARENT)
func CanCreate(caller Caller, newComment NewComment, parent *Comment) Decision {
	if caller.IsAnonymous() {
		return Deny(ReasonUnauthenticated)
	}
	if newComment.PostID == "" || newComment.AuthorID == "" {
		return Deny(ReasonInvalidRequest)
	}
	if newComment.AuthorID != caller.UserID {
		return Deny(ReasonImpersonation)
	}
	if newComment.ParentID != nil && *newComment.ParentID != "" {
		if parent == nil {
			return Deny(ReasonInvalidParent)
		}
		if parent.PostID != newComment.PostID {
			return Deny(ReasonInvalidParent)
		}
	}
	return Allow()
}

// CanUpdate decides whether the caller may apply the patch to an
// existing comment. Structural fields are write-once: a patch carrying
// post_id or parent_id is denied regardless of who the caller is. Edit
// rights are strictly author-only; the post author editing someone
// else's comment is denied like any third party.
func CanUpdate(caller Caller, existing Comment, patch Patch) Decision {
	if patch.PostID != nil || patch.ParentID != nil {
		return Deny(ReasonImmutableField)
	}
	if caller.IsAnonymous() {
		return Deny(ReasonUnauthenticated)
	}
	if existing.AuthorID == "" {
		return Deny(ReasonInvalidRequest)
	}
	if caller.UserID != existing.AuthorID {
		return Deny(ReasonNotOwner)
	}
	return Allow()
}

// CanDelete decides whether the caller may delete an existing comment.
// Two-tier rule: the comment author may always delete their own comment,
// and the owning post's author may delete any comment on that post.
// There is no broader moderator override in this policy.
func CanDelete(caller Caller, existing Comment, owningPost Post) Decision {
	if caller.IsAnonymous() {
		return Deny(ReasonUnauthenticated)
	}
	if existing.AuthorID == "" || owningPost.AuthorID == "" {
		return Deny(ReasonInvalidRequest)
	}
	if caller.UserID == existing.AuthorID || caller.UserID == owningPost.AuthorID {
		return Allow()
	}
	return Deny(ReasonNotOwner)
}

// Denial is the error form of a deny decision, used when a decision has
// to cross an error-returning boundary (services, repositories). The
// policy functions themselves never return errors.
type Denial struct {
	Reason Reason
}

func (d *Denial) Error() string {
	return "permission denied: " + string(d.Reason)
}

// Denied wraps a deny decision into an error. Calling it with an
// allowing decision is a programming error and returns nil.
func Denied(d Decision) error {
	if d.Allowed {
		return nil
	}
	return &Denial{Reason: d.Reason}
}
