package service

import (
	"errors"
	"testing"

	"politicianfinder/internal/model"
	"politicianfinder/internal/policy"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// fakeCommentRepo is an in-memory CommentRepository. DeleteMany calls
// are recorded so tests can assert the cascade landed as one batch.
type fakeCommentRepo struct {
	comments map[string]*model.Comment
	fail     bool
	deletes  [][]string
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[string]*model.Comment)}
}

func (r *fakeCommentRepo) add(c *model.Comment) *model.Comment {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	r.comments[c.ID] = c
	return c
}

func (r *fakeCommentRepo) Create(comment *model.Comment) error {
	if r.fail {
		return errors.New("connection refused")
	}
	r.add(comment)
	return nil
}

func (r *fakeCommentRepo) FindByID(id string) (*model.Comment, error) {
	if r.fail {
		return nil, errors.New("connection refused")
	}
	c, ok := r.comments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *fakeCommentRepo) FindByPostID(postID string, limit, offset int) ([]*model.Comment, error) {
	var out []*model.Comment
	for _, c := range r.comments {
		if c.PostID == postID && c.ParentID == nil {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCommentRepo) FindAllByPostID(postID string) ([]*model.Comment, error) {
	if r.fail {
		return nil, errors.New("connection refused")
	}
	var out []*model.Comment
	for _, c := range r.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCommentRepo) Update(comment *model.Comment) error {
	if r.fail {
		return errors.New("connection refused")
	}
	r.comments[comment.ID] = comment
	return nil
}

func (r *fakeCommentRepo) DeleteMany(postID string, ids []string) error {
	if r.fail {
		return errors.New("connection refused")
	}
	r.deletes = append(r.deletes, ids)
	for _, id := range ids {
		delete(r.comments, id)
	}
	return nil
}

func (r *fakeCommentRepo) CountByPostID(postID string) (int64, error) {
	var n int64
	for _, c := range r.comments {
		if c.PostID == postID {
			n++
		}
	}
	return n, nil
}

func (r *fakeCommentRepo) CountByPostIDs(postIDs []string) (map[string]int64, error) {
	m := make(map[string]int64)
	for _, id := range postIDs {
		n, _ := r.CountByPostID(id)
		m[id] = n
	}
	return m, nil
}

type fakePostRepo struct {
	posts map[string]*model.Post
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[string]*model.Post)}
}

func (r *fakePostRepo) Create(post *model.Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	r.posts[post.ID] = post
	return nil
}

func (r *fakePostRepo) FindByID(id string) (*model.Post, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *fakePostRepo) FindAll(limit, offset int) ([]*model.Post, int64, error) {
	return nil, 0, nil
}

func (r *fakePostRepo) FindByPoliticianID(politicianID string, limit, offset int) ([]*model.Post, int64, error) {
	return nil, 0, nil
}

func (r *fakePostRepo) FindByUserID(userID string, limit, offset int) ([]*model.Post, int64, error) {
	return nil, 0, nil
}

func (r *fakePostRepo) Count() (int64, error) {
	return int64(len(r.posts)), nil
}

func (r *fakePostRepo) Update(post *model.Post) error { return nil }
func (r *fakePostRepo) Delete(id string) error        { return nil }

type commentFixture struct {
	svc         CommentService
	commentRepo *fakeCommentRepo
	postRepo    *fakePostRepo

	postAuthor    string
	commentAuthor string
	post          *model.Post
}

func newCommentFixture() *commentFixture {
	f := &commentFixture{
		commentRepo:   newFakeCommentRepo(),
		postRepo:      newFakePostRepo(),
		postAuthor:    uuid.NewString(),
		commentAuthor: uuid.NewString(),
	}
	f.post = &model.Post{UserID: f.postAuthor, Title: "t", Content: "c"}
	f.postRepo.Create(f.post)
	f.svc = NewCommentService(f.commentRepo, f.postRepo, nil, nil)
	return f
}

func (f *commentFixture) addComment(authorID string, parentID *string) *model.Comment {
	return f.commentRepo.add(&model.Comment{
		PostID:   f.post.ID,
		UserID:   authorID,
		ParentID: parentID,
		Content:  "hello",
	})
}

func denialReason(t *testing.T, err error) policy.Reason {
	t.Helper()
	var denial *policy.Denial
	if !errors.As(err, &denial) {
		t.Fatalf("expected *policy.Denial, got %v", err)
	}
	return denial.Reason
}

func TestCreateComment(t *testing.T) {
	f := newCommentFixture()

	comment, err := f.svc.CreateComment(f.commentAuthor, CreateCommentRequest{
		PostID:  f.post.ID,
		Content: "first!",
	})
	if err != nil {
		t.Fatalf("CreateComment: %v", err)
	}
	if comment.UserID != f.commentAuthor {
		t.Errorf("author = %s, want %s", comment.UserID, f.commentAuthor)
	}
	if comment.PostID != f.post.ID {
		t.Errorf("post = %s, want %s", comment.PostID, f.post.ID)
	}
}

func TestCreateCommentDenials(t *testing.T) {
	f := newCommentFixture()
	otherPost := &model.Post{UserID: f.postAuthor, Title: "t2", Content: "c2"}
	f.postRepo.Create(otherPost)

	parent := f.addComment(f.commentAuthor, nil)
	crossParent := f.commentRepo.add(&model.Comment{
		PostID: otherPost.ID, UserID: f.commentAuthor, Content: "elsewhere",
	})
	missingParent := uuid.NewString()

	tests := []struct {
		name   string
		caller string
		req    CreateCommentRequest
		want   policy.Reason
	}{
		{
			name:   "anonymous caller",
			caller: "",
			req:    CreateCommentRequest{PostID: f.post.ID, Content: "x", AuthorID: f.commentAuthor},
			want:   policy.ReasonUnauthenticated,
		},
		{
			name:   "author mismatch",
			caller: f.commentAuthor,
			req:    CreateCommentRequest{PostID: f.post.ID, Content: "x", AuthorID: f.postAuthor},
			want:   policy.ReasonImpersonation,
		},
		{
			name:   "parent does not exist",
			caller: f.commentAuthor,
			req:    CreateCommentRequest{PostID: f.post.ID, ParentID: &missingParent, Content: "x"},
			want:   policy.ReasonInvalidParent,
		},
		{
			name:   "parent on another post",
			caller: f.commentAuthor,
			req:    CreateCommentRequest{PostID: f.post.ID, ParentID: &crossParent.ID, Content: "x"},
			want:   policy.ReasonInvalidParent,
		},
		{
			name:   "empty content",
			caller: f.commentAuthor,
			req:    CreateCommentRequest{PostID: f.post.ID, Content: "   "},
			want:   policy.ReasonInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateComment(tt.caller, tt.req)
			if got := denialReason(t, err); got != tt.want {
				t.Errorf("reason = %s, want %s", got, tt.want)
			}
		})
	}

	// A valid reply still goes through.
	if _, err := f.svc.CreateComment(f.commentAuthor, CreateCommentRequest{
		PostID: f.post.ID, ParentID: &parent.ID, Content: "reply",
	}); err != nil {
		t.Fatalf("valid reply rejected: %v", err)
	}
}

func TestCreateCommentMissingPost(t *testing.T) {
	f := newCommentFixture()

	_, err := f.svc.CreateComment(f.commentAuthor, CreateCommentRequest{
		PostID:  uuid.NewString(),
		Content: "x",
	})
	if !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("err = %v, want ErrPostNotFound", err)
	}
}

func TestUpdateComment(t *testing.T) {
	f := newCommentFixture()
	comment := f.addComment(f.commentAuthor, nil)

	edited := "edited"
	updated, err := f.svc.UpdateComment(f.commentAuthor, comment.ID, UpdateCommentRequest{Content: &edited})
	if err != nil {
		t.Fatalf("UpdateComment: %v", err)
	}
	if updated.Content != edited {
		t.Errorf("content = %q, want %q", updated.Content, edited)
	}
}

func TestUpdateCommentDenials(t *testing.T) {
	f := newCommentFixture()
	comment := f.addComment(f.commentAuthor, nil)

	edited := "edited"
	samePost := comment.PostID
	third := uuid.NewString()

	tests := []struct {
		name   string
		caller string
		req    UpdateCommentRequest
		want   policy.Reason
	}{
		{
			name:   "post author cannot edit",
			caller: f.postAuthor,
			req:    UpdateCommentRequest{Content: &edited},
			want:   policy.ReasonNotOwner,
		},
		{
			name:   "third party cannot edit",
			caller: third,
			req:    UpdateCommentRequest{Content: &edited},
			want:   policy.ReasonNotOwner,
		},
		{
			name:   "anonymous cannot edit",
			caller: "",
			req:    UpdateCommentRequest{Content: &edited},
			want:   policy.ReasonUnauthenticated,
		},
		{
			name:   "post_id present in patch",
			caller: f.commentAuthor,
			req:    UpdateCommentRequest{Content: &edited, PostID: &samePost},
			want:   policy.ReasonImmutableField,
		},
		{
			name:   "immutable field wins over ownership",
			caller: third,
			req:    UpdateCommentRequest{PostID: &samePost},
			want:   policy.ReasonImmutableField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.UpdateComment(tt.caller, comment.ID, tt.req)
			if got := denialReason(t, err); got != tt.want {
				t.Errorf("reason = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDeleteCommentCascade(t *testing.T) {
	f := newCommentFixture()
	root := f.addComment(f.commentAuthor, nil)
	reply := f.addComment(f.postAuthor, &root.ID)
	nested := f.addComment(f.commentAuthor, &reply.ID)
	unrelated := f.addComment(f.postAuthor, nil)

	if err := f.svc.DeleteComment(f.commentAuthor, root.ID); err != nil {
		t.Fatalf("DeleteComment: %v", err)
	}

	if len(f.commentRepo.deletes) != 1 {
		t.Fatalf("DeleteMany calls = %d, want 1", len(f.commentRepo.deletes))
	}
	deleted := f.commentRepo.deletes[0]
	want := map[string]bool{root.ID: true, reply.ID: true, nested.ID: true}
	if len(deleted) != len(want) {
		t.Fatalf("deleted %d comments, want %d", len(deleted), len(want))
	}
	for _, id := range deleted {
		if !want[id] {
			t.Errorf("unexpected id in cascade: %s", id)
		}
	}
	if _, ok := f.commentRepo.comments[unrelated.ID]; !ok {
		t.Error("unrelated comment was removed")
	}
}

func TestDeleteCommentTwoTier(t *testing.T) {
	f := newCommentFixture()
	third := uuid.NewString()

	tests := []struct {
		name   string
		caller string
		want   policy.Reason // empty means allowed
	}{
		{name: "comment author", caller: f.commentAuthor},
		{name: "post author", caller: f.postAuthor},
		{name: "third party", caller: third, want: policy.ReasonNotOwner},
		{name: "anonymous", caller: "", want: policy.ReasonUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comment := f.addComment(f.commentAuthor, nil)
			err := f.svc.DeleteComment(tt.caller, comment.ID)
			if tt.want == "" {
				if err != nil {
					t.Fatalf("DeleteComment: %v", err)
				}
				return
			}
			if got := denialReason(t, err); got != tt.want {
				t.Errorf("reason = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDeleteCommentNotFound(t *testing.T) {
	f := newCommentFixture()

	err := f.svc.DeleteComment(f.commentAuthor, uuid.NewString())
	if !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("err = %v, want ErrCommentNotFound", err)
	}
}

func TestStoreFailureIsNotADenial(t *testing.T) {
	f := newCommentFixture()
	comment := f.addComment(f.commentAuthor, nil)
	f.commentRepo.fail = true

	err := f.svc.DeleteComment(f.commentAuthor, comment.ID)
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("err = %v, want ErrStoreUnavailable", err)
	}
	var denial *policy.Denial
	if errors.As(err, &denial) {
		t.Fatalf("store failure surfaced as denial %s", denial.Reason)
	}
}
