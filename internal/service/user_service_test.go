package service

import (
	"errors"
	"testing"
	"time"

	"politicianfinder/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// fakeUserRepo is an in-memory UserRepository for the admin surface.
type fakeUserRepo struct {
	users map[string]*model.User
	fail  bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (r *fakeUserRepo) add(u *model.User) *model.User {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	r.users[u.ID] = u
	return u
}

func (r *fakeUserRepo) Create(user *model.User) error {
	r.add(user)
	return nil
}

func (r *fakeUserRepo) FindByID(id string) (*model.User, error) {
	if r.fail {
		return nil, errors.New("connection refused")
	}
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) FindByEmail(email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByUsername(username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindAll(limit, offset int) ([]model.User, int64, error) {
	var out []model.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, int64(len(r.users)), nil
}

func (r *fakeUserRepo) Count() (int64, error) {
	if r.fail {
		return 0, errors.New("connection refused")
	}
	return int64(len(r.users)), nil
}

func (r *fakeUserRepo) Update(user *model.User) error { return nil }

func (r *fakeUserRepo) UpdateOTP(email string, otpCode string, expiresAt time.Time) error {
	return nil
}

func (r *fakeUserRepo) ClearOTP(userID string) error        { return nil }
func (r *fakeUserRepo) UpdateLastLogin(userID string) error { return nil }

func (r *fakeUserRepo) SetBanned(userID string, banned bool) error {
	u, ok := r.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.IsBanned = banned
	return nil
}

func (r *fakeUserRepo) UpdateUserType(userID string, userType string) error {
	u, ok := r.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.UserType = userType
	return nil
}

// fakePoliticianRepo covers only what the admin stats need.
type fakePoliticianRepo struct {
	count int64
}

func (r *fakePoliticianRepo) Create(politician *model.Politician) error { return nil }

func (r *fakePoliticianRepo) FindByID(id string) (*model.Politician, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *fakePoliticianRepo) Search(keyword, party, region string, limit, offset int) ([]*model.Politician, int64, error) {
	return nil, 0, nil
}

func (r *fakePoliticianRepo) FindByIDs(ids []string) ([]*model.Politician, error) {
	return nil, nil
}

func (r *fakePoliticianRepo) Count() (int64, error) {
	return r.count, nil
}

func (r *fakePoliticianRepo) Update(politician *model.Politician) error { return nil }
func (r *fakePoliticianRepo) Delete(id string) error                    { return nil }

func (r *fakePoliticianRepo) CreateEvaluation(evaluation *model.Evaluation) error { return nil }

func (r *fakePoliticianRepo) FindEvaluationsByPoliticianID(politicianID string) ([]model.Evaluation, error) {
	return nil, nil
}

func TestStats(t *testing.T) {
	userRepo := newFakeUserRepo()
	userRepo.add(&model.User{Email: "a@example.com", Username: "a"})
	userRepo.add(&model.User{Email: "b@example.com", Username: "b"})

	postRepo := newFakePostRepo()
	postRepo.Create(&model.Post{Title: "p1"})

	svc := NewUserService(userRepo, &fakePoliticianRepo{count: 3}, postRepo)

	stats, err := svc.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.UserCount != 2 {
		t.Errorf("UserCount = %d, want 2", stats.UserCount)
	}
	if stats.PoliticianCount != 3 {
		t.Errorf("PoliticianCount = %d, want 3", stats.PoliticianCount)
	}
	if stats.PostCount != 1 {
		t.Errorf("PostCount = %d, want 1", stats.PostCount)
	}
}

func TestStatsStoreFailure(t *testing.T) {
	userRepo := newFakeUserRepo()
	userRepo.fail = true

	svc := NewUserService(userRepo, &fakePoliticianRepo{}, newFakePostRepo())

	if _, err := svc.Stats(); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("Stats error = %v, want ErrStoreUnavailable", err)
	}
}

func TestSetUserType(t *testing.T) {
	userRepo := newFakeUserRepo()
	u := userRepo.add(&model.User{Email: "a@example.com", Username: "a"})

	svc := NewUserService(userRepo, &fakePoliticianRepo{}, newFakePostRepo())

	if err := svc.SetUserType(u.ID, model.UserTypeAdmin); err != nil {
		t.Fatalf("SetUserType: %v", err)
	}
	if u.UserType != model.UserTypeAdmin {
		t.Errorf("UserType = %q, want %q", u.UserType, model.UserTypeAdmin)
	}

	if err := svc.SetUserType(u.ID, "moderator"); err == nil {
		t.Error("expected error for unknown user type")
	}
}

func TestSetBannedUserNotFound(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), &fakePoliticianRepo{}, newFakePostRepo())

	if err := svc.SetBanned(uuid.NewString(), true); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("SetBanned error = %v, want ErrUserNotFound", err)
	}
}
