package service

import (
	"context"
	"errors"
	"strings"

	"go-media-cms/internal/access"
	"go-media-cms/internal/model"
	"go-media-cms/internal/repository"

	"github.com/google/uuid"
)

// UserService backs user management in the CMS. Every call takes the
// requester explicitly.
type UserService interface {
	List(ctx context.Context, requester *model.User, page repository.Page) ([]model.UserResponse, int64, error)
	Get(ctx context.Context, requester *model.User, id uuid.UUID) (*model.UserResponse, error)
	Create(ctx context.Context, requester *model.User, req *CreateUserRequest) (*model.User, error)
	Update(ctx context.Context, requester *model.User, id uuid.UUID, req *UpdateUserRequest) (*model.User, error)
	Delete(ctx context.Context, requester *model.User, id uuid.UUID) error
}

type CreateUserRequest struct {
	Email      string   `json:"email" validate:"required,email"`
	Password   string   `json:"password" validate:"required,min=6"`
	Name       string   `json:"name" validate:"required"`
	Country    string   `json:"country"`
	ProfilePic string   `json:"profilePic" validate:"omitempty,url"`
	Roles      []string `json:"roles" validate:"omitempty,dive,role"`
}

type UpdateUserRequest struct {
	Email      *string  `json:"email" validate:"omitempty,email"`
	Password   *string  `json:"password" validate:"omitempty,min=6"`
	Name       *string  `json:"name"`
	Country    *string  `json:"country"`
	ProfilePic *string  `json:"profilePic" validate:"omitempty,url"`
	Roles      []string `json:"roles" validate:"omitempty,dive,role"`
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func authorize(policy access.CollectionPolicy, op access.Operation, requester *model.User) error {
	if !policy.Evaluate(op, requester).Permitted() {
		return ErrForbidden
	}
	return nil
}

func (s *userService) List(ctx context.Context, requester *model.User, page repository.Page) ([]model.UserResponse, int64, error) {
	if err := authorize(access.Users, access.OpRead, requester); err != nil {
		return nil, 0, err
	}
	users, total, err := s.userRepo.FindAll(ctx, page)
	if err != nil {
		return nil, 0, err
	}
	withRoles := access.UserRoles.Allows(access.OpRead, requester)
	out := make([]model.UserResponse, len(users))
	for i := range users {
		out[i] = users[i].ToResponse(withRoles)
	}
	return out, total, nil
}

func (s *userService) Get(ctx context.Context, requester *model.User, id uuid.UUID) (*model.UserResponse, error) {
	if err := authorize(access.Users, access.OpRead, requester); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	resp := user.ToResponse(access.UserRoles.Allows(access.OpRead, requester))
	return &resp, nil
}

// Create adds an account on behalf of requester. Submitted roles are kept
// only when requester may write the roles field; the first account ever
// created is additionally made admin.
func (s *userService) Create(ctx context.Context, requester *model.User, req *CreateUserRequest) (*model.User, error) {
	if err := authorize(access.Users, access.OpCreate, requester); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	email := normalizeEmail(req.Email)
	if err := ensureEmailFree(ctx, s.userRepo, email); err != nil {
		return nil, err
	}

	roles := model.NewRoleSet(model.RoleUser)
	if req.Roles != nil && access.UserRoles.Allows(access.OpCreate, requester) {
		roles = submittedRoles(req.Roles)
	}

	user := &model.User{
		Email:      email,
		Name:       strings.TrimSpace(req.Name),
		Country:    req.Country,
		ProfilePic: req.ProfilePic,
		Roles:      roles,
	}
	user.CreatedBy = actor(requester)
	user.UpdatedBy = actor(requester)
	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}

	if err := createUser(ctx, s.userRepo, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Update changes an account. Roles are only touched by requesters allowed
// to write them; updates never promote anyone implicitly.
func (s *userService) Update(ctx context.Context, requester *model.User, id uuid.UUID, req *UpdateUserRequest) (*model.User, error) {
	if err := authorize(access.Users, access.OpUpdate, requester); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err)
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
		user.TokenVersion = uuid.New().String()
	}
	if req.Roles != nil && access.UserRoles.Allows(access.OpUpdate, requester) {
		user.Roles = submittedRoles(req.Roles)
	}
	user.UpdatedBy = actor(requester)

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Delete(ctx context.Context, requester *model.User, id uuid.UUID) error {
	if err := authorize(access.Users, access.OpDelete, requester); err != nil {
		return err
	}
	return translate(s.userRepo.Delete(ctx, id, actor(requester)))
}

// submittedRoles parses roles from a request. Every account holds at least
// one role, so an empty set falls back to user.
func submittedRoles(in []string) model.RoleSet {
	roles := model.ParseRoleSet(in)
	if len(roles.Slice()) == 0 {
		return model.NewRoleSet(model.RoleUser)
	}
	return roles
}
