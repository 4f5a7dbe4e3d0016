package service

import (
	"errors"
	"fmt"

	"go-media-cms/internal/model"
	"go-media-cms/internal/repository"
	"go-media-cms/pkg/validator"
)

var (
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidResetToken  = errors.New("reset token is invalid or expired")
)

// translate maps repository sentinels onto service ones.
func translate(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrUnknownRelated):
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return err
}

func validate(data interface{}) error {
	if err := validator.First(data); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// actor is what the audit columns record for requester.
func actor(requester *model.User) string {
	if requester == nil {
		return "system"
	}
	return requester.ID.String()
}
