package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"go-media-cms/internal/access"
	"go-media-cms/internal/model"
	"go-media-cms/internal/repository"
)

// maxSlugAttempts bounds the numeric suffixes tried for a free slug.
const maxSlugAttempts = 50

// Revalidator is told which frontend paths went stale.
type Revalidator interface {
	Revalidate(kind model.Kind, path string)
}

// ContentService is the read/write surface of one content kind.
type ContentService[T any] interface {
	List(ctx context.Context, requester *model.User, page repository.Page) ([]T, int64, error)
	Get(ctx context.Context, requester *model.User, id uuid.UUID) (*T, error)
	GetBySlug(ctx context.Context, requester *model.User, slug string) (*T, error)
	Create(ctx context.Context, requester *model.User, doc *T) (*T, error)
	Update(ctx context.Context, requester *model.User, id uuid.UUID, doc *T) (*T, error)
	Delete(ctx context.Context, requester *model.User, id uuid.UUID) error
	RecordView(ctx context.Context, requester *model.User, id uuid.UUID) (int64, error)
}

type contentService[T any, PT interface {
	*T
	model.Document
}] struct {
	repo    repository.ContentRepository[T]
	notify  Revalidator
	log     *zap.SugaredLogger
	now     func() time.Time
	prepare func(ctx context.Context, doc PT) error
}

func NewMovieService(repo repository.ContentRepository[model.Movie], genres repository.GenreRepository, notify Revalidator, log *zap.SugaredLogger) ContentService[model.Movie] {
	return &contentService[model.Movie, *model.Movie]{
		repo:   repo,
		notify: notify,
		log:    log,
		now:    time.Now,
		prepare: func(ctx context.Context, m *model.Movie) error {
			resolved, err := resolveGenres(ctx, genres, m.Genres)
			if err != nil {
				return err
			}
			m.Genres = resolved
			// Credits are written through cast members.
			m.Cast = nil
			if m.Type == "" {
				m.Type = "movie"
			}
			return nil
		},
	}
}

func NewSeriesService(repo repository.ContentRepository[model.Series], genres repository.GenreRepository, notify Revalidator, log *zap.SugaredLogger) ContentService[model.Series] {
	return &contentService[model.Series, *model.Series]{
		repo:   repo,
		notify: notify,
		log:    log,
		now:    time.Now,
		prepare: func(ctx context.Context, s *model.Series) error {
			resolved, err := resolveGenres(ctx, genres, s.Genres)
			if err != nil {
				return err
			}
			s.Genres = resolved
			// Episodes are managed through their own collection.
			for i := range s.Seasons {
				s.Seasons[i].SeriesID = s.ID
				s.Seasons[i].Episodes = nil
			}
			return nil
		},
	}
}

func NewEpisodeService(repo repository.ContentRepository[model.Episode], notify Revalidator, log *zap.SugaredLogger) ContentService[model.Episode] {
	return &contentService[model.Episode, *model.Episode]{
		repo:   repo,
		notify: notify,
		log:    log,
		now:    time.Now,
		prepare: func(_ context.Context, e *model.Episode) error {
			if e.Type == "" {
				e.Type = "series"
			}
			return nil
		},
	}
}

func NewPostService(repo repository.ContentRepository[model.Post], notify Revalidator, log *zap.SugaredLogger) ContentService[model.Post] {
	return &contentService[model.Post, *model.Post]{
		repo:    repo,
		notify:  notify,
		log:     log,
		now:     time.Now,
		prepare: func(context.Context, *model.Post) error { return nil },
	}
}

func (s *contentService[T, PT]) List(ctx context.Context, requester *model.User, page repository.Page) ([]T, int64, error) {
	return s.repo.List(ctx, access.Content.Evaluate(access.OpRead, requester), page)
}

func (s *contentService[T, PT]) Get(ctx context.Context, requester *model.User, id uuid.UUID) (*T, error) {
	doc, err := s.repo.FindByID(ctx, id, access.Content.Evaluate(access.OpRead, requester))
	return doc, translate(err)
}

func (s *contentService[T, PT]) GetBySlug(ctx context.Context, requester *model.User, slug string) (*T, error) {
	doc, err := s.repo.FindBySlug(ctx, slug, access.Content.Evaluate(access.OpRead, requester))
	return doc, translate(err)
}

func (s *contentService[T, PT]) Create(ctx context.Context, requester *model.User, doc *T) (*T, error) {
	if err := authorize(access.Content, access.OpCreate, requester); err != nil {
		return nil, err
	}
	d := PT(doc)
	audit := d.Audit()
	audit.ID = uuid.New()
	audit.CreatedBy = actor(requester)
	audit.UpdatedBy = actor(requester)
	pub := d.Pub()
	pub.Views = 0
	pub.PublishedAt = nil

	if err := s.beforeChange(ctx, d); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, translate(err)
	}

	if pub.IsPublished() {
		s.revalidate(d.Kind(), d.RevalidatePath())
	}
	return doc, nil
}

// Update replaces the editable fields of the document id. Views and the
// audit columns are carried over from the stored row.
func (s *contentService[T, PT]) Update(ctx context.Context, requester *model.User, id uuid.UUID, doc *T) (*T, error) {
	if err := authorize(access.Content, access.OpUpdate, requester); err != nil {
		return nil, err
	}
	existing, err := s.repo.FindByID(ctx, id, access.Allow())
	if err != nil {
		return nil, translate(err)
	}
	prev := PT(existing)
	wasPublished := prev.Pub().IsPublished()
	prevPath := prev.RevalidatePath()

	d := PT(doc)
	audit := d.Audit()
	audit.ID = id
	audit.CreatedAt = prev.Audit().CreatedAt
	audit.CreatedBy = prev.Audit().CreatedBy
	audit.UpdatedBy = actor(requester)
	pub := d.Pub()
	pub.Views = prev.Pub().Views
	if pub.PublishedAt == nil {
		pub.PublishedAt = prev.Pub().PublishedAt
	}

	if err := s.beforeChange(ctx, d); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, doc); err != nil {
		return nil, translate(err)
	}

	if pub.IsPublished() {
		s.revalidate(d.Kind(), d.RevalidatePath())
	}
	if wasPublished && (!pub.IsPublished() || prevPath != d.RevalidatePath()) {
		s.revalidate(d.Kind(), prevPath)
	}
	return doc, nil
}

func (s *contentService[T, PT]) Delete(ctx context.Context, requester *model.User, id uuid.UUID) error {
	if err := authorize(access.Content, access.OpDelete, requester); err != nil {
		return err
	}
	existing, err := s.repo.FindByID(ctx, id, access.Allow())
	if err != nil {
		return translate(err)
	}
	if err := s.repo.Delete(ctx, id, actor(requester)); err != nil {
		return translate(err)
	}
	if doc := PT(existing); doc.Pub().IsPublished() {
		s.revalidate(doc.Kind(), doc.RevalidatePath())
	}
	return nil
}

// RecordView increments the counter of a document the requester can read.
func (s *contentService[T, PT]) RecordView(ctx context.Context, requester *model.User, id uuid.UUID) (int64, error) {
	if !access.ContentViews.Allows(access.OpUpdate, requester) {
		return 0, ErrForbidden
	}
	views, err := s.repo.IncrementViews(ctx, id, access.Content.Evaluate(access.OpRead, requester))
	return views, translate(err)
}

// beforeChange runs the write hooks shared by create and update.
func (s *contentService[T, PT]) beforeChange(ctx context.Context, d PT) error {
	if err := s.prepare(ctx, d); err != nil {
		return err
	}
	if err := s.assignSlug(ctx, d); err != nil {
		return err
	}
	d.Pub().Stamp(s.now())
	return validate(d)
}

// assignSlug derives the slug from the title while the slug is locked, or
// when none was given, and makes it unique within the collection.
func (s *contentService[T, PT]) assignSlug(ctx context.Context, d PT) error {
	pub := d.Pub()
	base := slug.Make(pub.Slug)
	if pub.SlugLock || base == "" {
		base = slug.Make(d.SlugSource())
	}
	if base == "" {
		return fmt.Errorf("%w: slug cannot be derived from an empty title", ErrValidation)
	}

	candidate := base
	for i := 2; i <= maxSlugAttempts+1; i++ {
		taken, err := s.repo.SlugTaken(ctx, candidate, d.GetID())
		if err != nil {
			return err
		}
		if !taken {
			pub.Slug = candidate
			return nil
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
	return fmt.Errorf("%w: no free slug for %q", ErrValidation, base)
}

func (s *contentService[T, PT]) revalidate(kind model.Kind, path string) {
	s.log.Infow("revalidating", "collection", kind, "path", path)
	s.notify.Revalidate(kind, path)
}

func resolveGenres(ctx context.Context, genres repository.GenreRepository, in []model.Genre) ([]model.Genre, error) {
	if len(in) == 0 {
		return nil, nil
	}
	seen := make(map[string]struct{}, len(in))
	values := make([]string, 0, len(in))
	for _, g := range in {
		if _, dup := seen[g.Value]; dup {
			continue
		}
		seen[g.Value] = struct{}{}
		values = append(values, g.Value)
	}
	found, err := genres.FindByValues(ctx, values)
	if err != nil {
		return nil, err
	}
	if len(found) != len(values) {
		return nil, fmt.Errorf("%w: unknown genre in %v", ErrValidation, values)
	}
	return found, nil
}
