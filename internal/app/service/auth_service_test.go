package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"minijudge/internal/common"
	"minijudge/internal/common/security"
	"minijudge/internal/domain/model"
	"minijudge/internal/domain/repository"
	"minijudge/internal/platform/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	repository.UserRepository
	byEmail    map[string]*model.User
	byUsername map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail:    map[string]*model.User{},
		byUsername: map[string]*model.User{},
	}
}

func (f *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	if _, taken := f.byUsername[u.Username]; taken {
		return common.ErrConflict
	}
	if _, taken := f.byEmail[u.Email]; taken {
		return common.ErrConflict
	}
	stored := *u
	f.byUsername[u.Username] = &stored
	f.byEmail[u.Email] = &stored
	return nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	if u, ok := f.byEmail[email]; ok {
		found := *u
		return &found, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	if u, ok := f.byUsername[username]; ok {
		found := *u
		return &found, nil
	}
	return nil, common.ErrNotFound
}

func newAuthService(t *testing.T) (*AuthService, *fakeUserRepo) {
	t.Helper()
	config.AppConfig = &config.Config{JWTKey: []byte("test-secret"), JWTExp: time.Hour}
	security.InitJWT()
	repo := newFakeUserRepo()
	return NewAuthService(repo), repo
}

func TestSignupAndLoginRoundTrip(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	signedUp, err := svc.Signup(ctx, SignupRequest{Username: "alice", Email: "alice@example.com", Password: "hunter2"})
	require.NoError(t, err)
	assert.NotEmpty(t, signedUp.Token)
	assert.Equal(t, model.RoleUser, signedUp.User.Role)
	assert.Empty(t, signedUp.User.HashedPassword)

	byEmail, err := svc.Login(ctx, LoginRequest{LoginField: "alice@example.com", Password: "hunter2"})
	require.NoError(t, err)
	assert.Equal(t, signedUp.User.ID, byEmail.User.ID)

	byName, err := svc.Login(ctx, LoginRequest{LoginField: "alice", Password: "hunter2"})
	require.NoError(t, err)
	assert.Equal(t, signedUp.User.ID, byName.User.ID)
	assert.Empty(t, byName.User.HashedPassword)
}

func TestSignupRejectsMissingFields(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Signup(context.Background(), SignupRequest{Username: "  ", Email: "a@b.c", Password: "x"})
	assert.True(t, errors.Is(err, common.ErrValidation))
}

func TestSignupDuplicateIsConflict(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupRequest{Username: "alice", Email: "alice@example.com", Password: "hunter2"})
	require.NoError(t, err)
	_, err = svc.Signup(ctx, SignupRequest{Username: "alice", Email: "other@example.com", Password: "hunter2"})
	assert.True(t, errors.Is(err, common.ErrConflict))
}

func TestLoginWrongCredentialsAreIndistinguishable(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupRequest{Username: "alice", Email: "alice@example.com", Password: "hunter2"})
	require.NoError(t, err)

	_, badPassword := svc.Login(ctx, LoginRequest{LoginField: "alice", Password: "wrong"})
	_, unknownUser := svc.Login(ctx, LoginRequest{LoginField: "nobody", Password: "hunter2"})
	assert.True(t, errors.Is(badPassword, common.ErrUnauthorized))
	assert.True(t, errors.Is(unknownUser, common.ErrUnauthorized))
}
