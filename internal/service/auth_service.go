package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-media-cms/internal/access"
	"go-media-cms/internal/model"
	"go-media-cms/internal/repository"
	"go-media-cms/pkg/jwt"
	"go-media-cms/pkg/mailer"
)

type AuthService interface {
	Signup(ctx context.Context, req *SignupRequest) (*model.User, error)
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	Logout(ctx context.Context, user *model.User) error
	Me(ctx context.Context, user *model.User) (*model.UserResponse, error)
	UpdateAccount(ctx context.Context, user *model.User, req *UpdateAccountRequest) (*model.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
}

type SignupRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	Name       string `json:"name" validate:"required"`
	Country    string `json:"country"`
	ProfilePic string `json:"profilePic" validate:"omitempty,url"`
}

type UpdateAccountRequest struct {
	Email      *string `json:"email" validate:"omitempty,email"`
	Password   *string `json:"password" validate:"omitempty,min=6"`
	Name       *string `json:"name" validate:"omitempty,min=1"`
	Country    *string `json:"country"`
	ProfilePic *string `json:"profilePic" validate:"omitempty,url"`
}

type LoginResponse struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"exp"`
	User      model.UserResponse `json:"user"`
}

type AuthConfig struct {
	FrontendURL   string
	ResetTokenTTL time.Duration
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *jwt.Manager
	mail     mailer.Client
	cfg      AuthConfig
	log      *zap.SugaredLogger
	now      func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, tokens *jwt.Manager, mail mailer.Client, cfg AuthConfig, log *zap.SugaredLogger) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		mail:     mail,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// Signup creates a regular account. The first account ever created is
// promoted to admin.
func (s *authService) Signup(ctx context.Context, req *SignupRequest) (*model.User, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	email := normalizeEmail(req.Email)
	if err := ensureEmailFree(ctx, s.userRepo, email); err != nil {
		return nil, err
	}

	user := &model.User{
		Email:      email,
		Name:       strings.TrimSpace(req.Name),
		Country:    req.Country,
		ProfilePic: req.ProfilePic,
		Roles:      model.NewRoleSet(model.RoleUser),
	}
	user.CreatedBy = "signup"
	user.UpdatedBy = "signup"
	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}

	if err := createUser(ctx, s.userRepo, user); err != nil {
		return nil, err
	}
	s.log.Infow("account created", "user_id", user.ID, "admin", user.Roles.Has(model.RoleAdmin))
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	// Single session: a fresh version invalidates tokens issued earlier.
	now := s.now()
	user.TokenVersion = uuid.New().String()
	user.LastSeenAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.Name, user.Roles.Strings(), user.TokenVersion)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &LoginResponse{
		Token:     token,
		ExpiresAt: now.Add(s.tokens.TTL()),
		User:      user.ToResponse(access.UserRoles.Allows(access.OpRead, user)),
	}, nil
}

func (s *authService) Logout(ctx context.Context, user *model.User) error {
	if user == nil {
		return ErrForbidden
	}
	return s.userRepo.UpdateTokenVersion(ctx, user.ID, uuid.New().String())
}

func (s *authService) Me(ctx context.Context, user *model.User) (*model.UserResponse, error) {
	if user == nil {
		return nil, ErrForbidden
	}
	if err := s.userRepo.UpdateLastSeen(ctx, user.ID); err != nil {
		s.log.Warnw("update last seen", "user_id", user.ID, "error", err)
	}
	resp := user.ToResponse(access.UserRoles.Allows(access.OpRead, user))
	return &resp, nil
}

func (s *authService) UpdateAccount(ctx context.Context, user *model.User, req *UpdateAccountRequest) (*model.User, error) {
	if user == nil {
		return nil, ErrForbidden
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email != user.Email {
			if err := ensureEmailFree(ctx, s.userRepo, email); err != nil {
				return nil, err
			}
			user.Email = email
		}
	}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Country != nil {
		user.Country = *req.Country
	}
	if req.ProfilePic != nil {
		user.ProfilePic = *req.ProfilePic
	}
	if req.Password != nil {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, errors.New("failed to hash password")
		}
	}
	user.UpdatedBy = user.ID.String()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ForgotPassword mails a one-time reset link. Unknown addresses succeed
// silently so the endpoint cannot be used to discover which accounts exist.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Debugw("password reset requested for unknown email")
			return nil
		}
		return err
	}

	token, err := newResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	until := s.now().Add(s.cfg.ResetTokenTTL)
	user.ResetTokenHash = hashResetToken(token)
	user.ResetTokenUntil = &until
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	link := strings.TrimRight(s.cfg.FrontendURL, "/") + "/reset-password?token=" + url.QueryEscape(token)
	if err := s.mail.SendPasswordReset(user.Email, user.Name, link); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, token, password string) error {
	if len(password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}
	user, err := s.userRepo.FindByResetTokenHash(ctx, hashResetToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	if user.ResetTokenUntil == nil || s.now().After(*user.ResetTokenUntil) {
		return ErrInvalidResetToken
	}

	if err := user.SetPassword(password); err != nil {
		return errors.New("failed to hash password")
	}
	user.ClearResetToken()
	user.TokenVersion = uuid.New().String()
	return s.userRepo.Update(ctx, user)
}

// createUser inserts user, promoting it to admin when it is the first
// account. The claim and the insert share one transaction.
func createUser(ctx context.Context, repo repository.UserRepository, user *model.User) error {
	return repo.CreateGuarded(ctx, user, func(ledger access.AdminLedger) error {
		roles, err := access.EnsureFirstUserIsAdmin(ctx, access.OpCreate, user.Roles, ledger)
		if err != nil {
			return err
		}
		user.Roles = roles
		return nil
	})
}

func ensureEmailFree(ctx context.Context, repo repository.UserRepository, email string) error {
	existing, err := repo.FindByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		return ErrEmailExists
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return err
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func newResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashResetToken(token string) string {
	if token == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
