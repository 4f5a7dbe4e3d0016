package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	"go-media-cms/internal/access"
	"go-media-cms/internal/model"
	"go-media-cms/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newAuth(t *testing.T) (*authService, *fakeUserRepo, *recordingMailer) {
	t.Helper()
	repo := newFakeUserRepo()
	mail := &recordingMailer{}
	svc := NewAuthService(repo, jwt.NewManager("test-secret", time.Hour), mail, AuthConfig{
		FrontendURL:   "http://front.test/",
		ResetTokenTTL: time.Hour,
	}, zap.NewNop().Sugar())
	return svc.(*authService), repo, mail
}

func signup(t *testing.T, svc AuthService, email string) *model.User {
	t.Helper()
	user, err := svc.Signup(context.Background(), &SignupRequest{Email: email, Password: "secret1", Name: "N"})
	require.NoError(t, err)
	return user
}

func TestSignup_FirstAccountBecomesAdmin(t *testing.T) {
	svc, _, _ := newAuth(t)

	first := signup(t, svc, "first@example.com")
	second := signup(t, svc, "second@example.com")

	assert.Equal(t, []model.Role{model.RoleAdmin, model.RoleUser}, first.Roles.Slice())
	assert.Equal(t, []model.Role{model.RoleUser}, second.Roles.Slice())
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc, _, _ := newAuth(t)
	signup(t, svc, "a@example.com")

	_, err := svc.Signup(context.Background(), &SignupRequest{Email: "A@Example.com", Password: "secret1", Name: "N"})

	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestSignup_Validation(t *testing.T) {
	svc, _, _ := newAuth(t)

	_, err := svc.Signup(context.Background(), &SignupRequest{Email: "nope", Password: "x"})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestSignup_LedgerFailureRejectsWrite(t *testing.T) {
	svc, repo, _ := newAuth(t)
	repo.ledger.err = errors.New("db down")

	_, err := svc.Signup(context.Background(), &SignupRequest{Email: "a@example.com", Password: "secret1", Name: "N"})

	assert.ErrorIs(t, err, access.ErrBootstrapUnavailable)
	assert.Empty(t, repo.users)
}

func TestSignup_ConcurrentFirstSignupsYieldOneAdmin(t *testing.T) {
	svc, repo, _ := newAuth(t)

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		email := fmt.Sprintf("u%d@example.com", i)
		g.Go(func() error {
			_, err := svc.Signup(context.Background(), &SignupRequest{Email: email, Password: "secret1", Name: "N"})
			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.Len(t, repo.users, 8)
	assert.Equal(t, 1, repo.admins())
}

func TestLogin(t *testing.T) {
	svc, repo, _ := newAuth(t)
	user := signup(t, svc, "a@example.com")

	resp, err := svc.Login(context.Background(), "a@example.com", "secret1")
	require.NoError(t, err)

	claims, err := svc.tokens.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Contains(t, claims.Roles, "admin")

	stored, _ := repo.FindByID(context.Background(), user.ID)
	assert.Equal(t, stored.TokenVersion, claims.TokenVersion)
	assert.NotNil(t, resp.User.Roles, "admins see their own roles")
}

func TestLogin_BadCredentials(t *testing.T) {
	svc, _, _ := newAuth(t)
	signup(t, svc, "a@example.com")

	_, err := svc.Login(context.Background(), "a@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "ghost@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogout_RotatesTokenVersion(t *testing.T) {
	svc, repo, _ := newAuth(t)
	signup(t, svc, "a@example.com")
	_, err := svc.Login(context.Background(), "a@example.com", "secret1")
	require.NoError(t, err)
	user, _ := repo.FindByEmail(context.Background(), "a@example.com")
	before := user.TokenVersion

	require.NoError(t, svc.Logout(context.Background(), user))

	after, _ := repo.FindByID(context.Background(), user.ID)
	assert.NotEqual(t, before, after.TokenVersion)
	assert.ErrorIs(t, svc.Logout(context.Background(), nil), ErrForbidden)
}

func TestMe_HidesRolesFromRegularUsers(t *testing.T) {
	svc, _, _ := newAuth(t)
	signup(t, svc, "admin@example.com")
	regular := signup(t, svc, "user@example.com")

	resp, err := svc.Me(context.Background(), regular)

	require.NoError(t, err)
	assert.Nil(t, resp.Roles)
	_, err = svc.Me(context.Background(), nil)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateAccount(t *testing.T) {
	svc, _, _ := newAuth(t)
	signup(t, svc, "taken@example.com")
	user := signup(t, svc, "a@example.com")

	taken := "taken@example.com"
	_, err := svc.UpdateAccount(context.Background(), user, &UpdateAccountRequest{Email: &taken})
	assert.ErrorIs(t, err, ErrEmailExists)

	name, pw := "Renamed", "newpass1"
	updated, err := svc.UpdateAccount(context.Background(), user, &UpdateAccountRequest{Name: &name, Password: &pw})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.True(t, updated.CheckPassword("newpass1"))
}

func TestForgotPassword_UnknownEmailIsSilent(t *testing.T) {
	svc, _, mail := newAuth(t)

	require.NoError(t, svc.ForgotPassword(context.Background(), "ghost@example.com"))
	assert.Zero(t, mail.sent)
}

func TestForgotAndResetPassword(t *testing.T) {
	svc, repo, mail := newAuth(t)
	user := signup(t, svc, "a@example.com")

	require.NoError(t, svc.ForgotPassword(context.Background(), "a@example.com"))
	require.Equal(t, 1, mail.sent)
	assert.Equal(t, "a@example.com", mail.to)

	link, err := url.Parse(mail.link)
	require.NoError(t, err)
	assert.Equal(t, "/reset-password", link.Path)
	token := link.Query().Get("token")
	require.NotEmpty(t, token)

	stored, _ := repo.FindByID(context.Background(), user.ID)
	assert.NotEqual(t, token, stored.ResetTokenHash, "only the hash is stored")

	require.NoError(t, svc.ResetPassword(context.Background(), token, "brandnew"))
	stored, _ = repo.FindByID(context.Background(), user.ID)
	assert.True(t, stored.CheckPassword("brandnew"))
	assert.Empty(t, stored.ResetTokenHash)

	assert.ErrorIs(t, svc.ResetPassword(context.Background(), token, "again123"), ErrInvalidResetToken)
}

func TestResetPassword_Expired(t *testing.T) {
	svc, _, mail := newAuth(t)
	signup(t, svc, "a@example.com")
	require.NoError(t, svc.ForgotPassword(context.Background(), "a@example.com"))
	link, _ := url.Parse(mail.link)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	err := svc.ResetPassword(context.Background(), link.Query().Get("token"), "brandnew")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}
