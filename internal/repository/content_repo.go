package repository

import (
	"context"
	"errors"
	"fmt"

	"go-media-cms/internal/access"
	"go-media-cms/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ContentRepository stores one content kind. Every read takes the access
// decision for the requester and applies it inside the SQL query.
type ContentRepository[T any] interface {
	Create(ctx context.Context, doc *T) error
	Update(ctx context.Context, doc *T) error
	Delete(ctx context.Context, id uuid.UUID, deletedBy string) error
	FindByID(ctx context.Context, id uuid.UUID, d access.Decision) (*T, error)
	FindBySlug(ctx context.Context, slug string, d access.Decision) (*T, error)
	List(ctx context.Context, d access.Decision, page Page) ([]T, int64, error)
	Count(ctx context.Context, d access.Decision) (int64, error)
	SumViews(ctx context.Context) (int64, error)
	IncrementViews(ctx context.Context, id uuid.UUID, d access.Decision) (int64, error)
	SlugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error)
}

// ErrUnknownRelated is returned when a related-content link points at a
// document that does not exist.
var ErrUnknownRelated = errors.New("related document not found")

// columns maps access fields to SQL columns.
var columns = map[access.Field]string{
	access.FieldStatus: "status",
}

// Scope pushes d into q. ok is false when d denies everything; callers must
// then return no rows without querying.
func Scope(q *gorm.DB, d access.Decision) (scoped *gorm.DB, ok bool) {
	if !d.Permitted() {
		return q, false
	}
	where, filtered := d.Condition()
	if !filtered {
		return q, true
	}
	column, known := columns[where.Field]
	if !known {
		// A filter we cannot express must not widen visibility.
		return q, false
	}
	return q.Where(clause.Eq{Column: clause.Column{Name: column}, Value: where.Value}), true
}

// visible scopes an association preload with d, so nested documents obey the
// same read rule as their parent.
func visible(d access.Decision, orderBy string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		scoped, ok := Scope(db, d)
		if !ok {
			return db.Where("1 = 0")
		}
		if orderBy != "" {
			scoped = scoped.Order(orderBy)
		}
		return scoped
	}
}

// preloadRelated loads the related-content links of an owner kind.
func preloadRelated(q *gorm.DB, owner model.Kind, d access.Decision) *gorm.DB {
	for _, target := range model.RelatedKinds(owner) {
		q = q.Preload(model.RelatedField(target), visible(d, ""))
	}
	return q
}

// linkRelated rewrites the join rows of doc. Self links and duplicates are
// dropped; every target must exist.
func linkRelated(tx *gorm.DB, doc model.Document) error {
	linked, ok := doc.(model.Linked)
	if !ok {
		return nil
	}
	owner := doc.Kind()
	for _, target := range model.RelatedKinds(owner) {
		table := model.RelatedTable(owner, target)
		if err := tx.Exec(fmt.Sprintf(`DELETE FROM %q WHERE owner_id = ?`, table), doc.GetID()).Error; err != nil {
			return err
		}

		seen := map[uuid.UUID]bool{doc.GetID(): true}
		var ids []uuid.UUID
		for _, id := range linked.RelatedIDs(target) {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			continue
		}

		var found int64
		err := tx.Table(string(target)).Where("id IN ? AND deleted_at IS NULL", ids).Count(&found).Error
		if err != nil {
			return err
		}
		if found != int64(len(ids)) {
			return fmt.Errorf("%w: %s", ErrUnknownRelated, target)
		}

		rows := make([]map[string]interface{}, len(ids))
		for i, id := range ids {
			rows[i] = map[string]interface{}{"owner_id": doc.GetID(), "target_id": id}
		}
		if err := tx.Table(table).Create(&rows).Error; err != nil {
			return err
		}
	}
	return nil
}

// relatedFields are skipped by GORM's association saving; linkRelated owns them.
func relatedFields(owner model.Kind) []string {
	var fields []string
	for _, target := range model.RelatedKinds(owner) {
		fields = append(fields, model.RelatedField(target))
	}
	return fields
}

type contentRepo[T any, PT interface {
	*T
	model.Document
}] struct {
	db      *gorm.DB
	preload func(q *gorm.DB, d access.Decision) *gorm.DB
	replace func(tx *gorm.DB, doc PT) error
}

func NewMovieRepo(db *gorm.DB) ContentRepository[model.Movie] {
	return &contentRepo[model.Movie, *model.Movie]{
		db: db,
		preload: func(q *gorm.DB, d access.Decision) *gorm.DB {
			return preloadRelated(q.Preload("Genres").Preload("Videos").Preload("Cast"), model.KindMovie, d)
		},
		replace: func(tx *gorm.DB, m *model.Movie) error {
			if err := tx.Model(m).Association("Genres").Replace(m.Genres); err != nil {
				return err
			}
			return tx.Model(m).Association("Videos").Unscoped().Replace(m.Videos)
		},
	}
}

func NewSeriesRepo(db *gorm.DB) ContentRepository[model.Series] {
	return &contentRepo[model.Series, *model.Series]{
		db: db,
		preload: func(q *gorm.DB, d access.Decision) *gorm.DB {
			q = q.Preload("Genres").
				Preload("Seasons", func(db *gorm.DB) *gorm.DB {
					return db.Order("number ASC")
				}).
				// Episodes carry their own publication state.
				Preload("Seasons.Episodes", visible(d, "created_at ASC"))
			return preloadRelated(q, model.KindSeries, d)
		},
		replace: func(tx *gorm.DB, s *model.Series) error {
			if err := tx.Model(s).Association("Genres").Replace(s.Genres); err != nil {
				return err
			}
			for i := range s.Seasons {
				s.Seasons[i].Episodes = nil
			}
			return tx.Model(s).Association("Seasons").Unscoped().Replace(s.Seasons)
		},
	}
}

func NewEpisodeRepo(db *gorm.DB) ContentRepository[model.Episode] {
	return &contentRepo[model.Episode, *model.Episode]{
		db: db,
		preload: func(q *gorm.DB, d access.Decision) *gorm.DB {
			return preloadRelated(q.Preload("Videos"), model.KindEpisode, d)
		},
		replace: func(tx *gorm.DB, e *model.Episode) error {
			return tx.Model(e).Association("Videos").Unscoped().Replace(e.Videos)
		},
	}
}

func NewPostRepo(db *gorm.DB) ContentRepository[model.Post] {
	return &contentRepo[model.Post, *model.Post]{
		db: db,
		preload: func(q *gorm.DB, _ access.Decision) *gorm.DB {
			return q
		},
		replace: func(*gorm.DB, *model.Post) error { return nil },
	}
}

func (r *contentRepo[T, PT]) Create(ctx context.Context, doc *T) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		d := PT(doc)
		if err := tx.Omit(relatedFields(d.Kind())...).Create(doc).Error; err != nil {
			return err
		}
		return linkRelated(tx, d)
	})
}

func (r *contentRepo[T, PT]) Update(ctx context.Context, doc *T) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(doc).Error; err != nil {
			return err
		}
		if err := r.replace(tx, PT(doc)); err != nil {
			return fmt.Errorf("replace associations: %w", err)
		}
		return linkRelated(tx, PT(doc))
	})
}

func (r *contentRepo[T, PT]) Delete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	res := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(map[string]interface{}{
		"deleted_at": gorm.Expr("NOW()"),
		"deleted_by": deletedBy,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *contentRepo[T, PT]) findOne(ctx context.Context, d access.Decision, query string, arg interface{}) (*T, error) {
	q, ok := Scope(r.db.WithContext(ctx).Model(new(T)), d)
	if !ok {
		return nil, ErrNotFound
	}
	var doc T
	if err := r.preload(q, d).Where(query, arg).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (r *contentRepo[T, PT]) FindByID(ctx context.Context, id uuid.UUID, d access.Decision) (*T, error) {
	return r.findOne(ctx, d, "id = ?", id)
}

func (r *contentRepo[T, PT]) FindBySlug(ctx context.Context, slug string, d access.Decision) (*T, error) {
	return r.findOne(ctx, d, "slug = ?", slug)
}

func (r *contentRepo[T, PT]) List(ctx context.Context, d access.Decision, page Page) ([]T, int64, error) {
	total, err := r.Count(ctx, d)
	if err != nil || total == 0 {
		return []T{}, total, err
	}
	q, _ := Scope(r.db.WithContext(ctx).Model(new(T)), d)
	docs := make([]T, 0, page.Size())
	err = r.preload(q, d).
		Order("published_at DESC NULLS LAST").
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.Size()).
		Find(&docs).Error
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

func (r *contentRepo[T, PT]) Count(ctx context.Context, d access.Decision) (int64, error) {
	q, ok := Scope(r.db.WithContext(ctx).Model(new(T)), d)
	if !ok {
		return 0, nil
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *contentRepo[T, PT]) SumViews(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(new(T)).Select("COALESCE(SUM(views), 0)").Scan(&total).Error
	return total, err
}

// IncrementViews bumps the counter of a document the requester can see and
// returns the new value.
func (r *contentRepo[T, PT]) IncrementViews(ctx context.Context, id uuid.UUID, d access.Decision) (int64, error) {
	var doc T
	q, ok := Scope(r.db.WithContext(ctx).Model(&doc), d)
	if !ok {
		return 0, ErrNotFound
	}
	res := q.Clauses(clause.Returning{Columns: []clause.Column{{Name: "views"}}}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrNotFound
	}
	return PT(&doc).Pub().Views, nil
}

// SlugTaken includes soft-deleted rows, which still hold the unique index.
func (r *contentRepo[T, PT]) SlugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Unscoped().Model(new(T)).
		Where("slug = ?", slug).
		Where("id <> ?", exclude).
		Count(&n).Error
	return n > 0, err
}
