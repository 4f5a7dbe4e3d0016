package service

import (
	"context"

	"go-media-cms/internal/access"
	"go-media-cms/internal/model"
	"go-media-cms/internal/repository"

	"github.com/google/uuid"
)

// CatalogService manages the taxonomy shared by content: genres and cast
// members.
type CatalogService interface {
	Genres(ctx context.Context, requester *model.User) ([]model.Genre, error)
	ListCasts(ctx context.Context, requester *model.User, page repository.Page) ([]model.Cast, int64, error)
	GetCast(ctx context.Context, requester *model.User, id uuid.UUID) (*model.Cast, error)
	CreateCast(ctx context.Context, requester *model.User, cast *model.Cast) (*model.Cast, error)
	UpdateCast(ctx context.Context, requester *model.User, id uuid.UUID, cast *model.Cast) (*model.Cast, error)
	DeleteCast(ctx context.Context, requester *model.User, id uuid.UUID) error
}

type catalogService struct {
	genres repository.GenreRepository
	casts  repository.CastRepository
}

func NewCatalogService(genres repository.GenreRepository, casts repository.CastRepository) CatalogService {
	return &catalogService{genres: genres, casts: casts}
}

func (s *catalogService) Genres(ctx context.Context, requester *model.User) ([]model.Genre, error) {
	if err := authorize(access.Taxonomy, access.OpRead, requester); err != nil {
		return nil, err
	}
	return s.genres.FindAll(ctx)
}

func (s *catalogService) ListCasts(ctx context.Context, requester *model.User, page repository.Page) ([]model.Cast, int64, error) {
	if err := authorize(access.Taxonomy, access.OpRead, requester); err != nil {
		return nil, 0, err
	}
	return s.casts.FindAll(ctx, page)
}

func (s *catalogService) GetCast(ctx context.Context, requester *model.User, id uuid.UUID) (*model.Cast, error) {
	if err := authorize(access.Taxonomy, access.OpRead, requester); err != nil {
		return nil, err
	}
	cast, err := s.casts.FindByID(ctx, id)
	return cast, translate(err)
}

func (s *catalogService) CreateCast(ctx context.Context, requester *model.User, cast *model.Cast) (*model.Cast, error) {
	if err := authorize(access.Taxonomy, access.OpCreate, requester); err != nil {
		return nil, err
	}
	if err := validate(cast); err != nil {
		return nil, err
	}
	cast.ID = uuid.New()
	cast.CreatedBy = actor(requester)
	cast.UpdatedBy = actor(requester)
	bindCredits(cast)

	if err := s.casts.Create(ctx, cast); err != nil {
		return nil, err
	}
	return cast, nil
}

func (s *catalogService) UpdateCast(ctx context.Context, requester *model.User, id uuid.UUID, cast *model.Cast) (*model.Cast, error) {
	if err := authorize(access.Taxonomy, access.OpUpdate, requester); err != nil {
		return nil, err
	}
	if err := validate(cast); err != nil {
		return nil, err
	}
	existing, err := s.casts.FindByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	cast.ID = id
	cast.CreatedAt = existing.CreatedAt
	cast.CreatedBy = existing.CreatedBy
	cast.UpdatedBy = actor(requester)
	bindCredits(cast)

	if err := s.casts.Update(ctx, cast); err != nil {
		return nil, err
	}
	return cast, nil
}

func (s *catalogService) DeleteCast(ctx context.Context, requester *model.User, id uuid.UUID) error {
	if err := authorize(access.Taxonomy, access.OpDelete, requester); err != nil {
		return err
	}
	return translate(s.casts.Delete(ctx, id, actor(requester)))
}

func bindCredits(cast *model.Cast) {
	for i := range cast.Credits {
		cast.Credits[i].ID = 0
		cast.Credits[i].CastID = cast.ID
	}
}
