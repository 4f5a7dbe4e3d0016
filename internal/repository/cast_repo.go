package repository

import (
	"context"
	"errors"

	"go-media-cms/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CastRepository interface {
	FindAll(ctx context.Context, page Page) ([]model.Cast, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Cast, error)
	Create(ctx context.Context, cast *model.Cast) error
	Update(ctx context.Context, cast *model.Cast) error
	Delete(ctx context.Context, id uuid.UUID, deletedBy string) error
}

type castRepo struct {
	db *gorm.DB
}

func NewCastRepo(db *gorm.DB) CastRepository {
	return &castRepo{db: db}
}

func (r *castRepo) FindAll(ctx context.Context, page Page) ([]model.Cast, int64, error) {
	var (
		casts []model.Cast
		total int64
	)
	q := r.db.WithContext(ctx).Model(&model.Cast{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Credits").Order("name ASC").Offset(page.Offset()).Limit(page.Size()).Find(&casts).Error
	if err != nil {
		return nil, 0, err
	}
	return casts, total, nil
}

func (r *castRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Cast, error) {
	var cast model.Cast
	if err := r.db.WithContext(ctx).Preload("Credits").First(&cast, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cast, nil
}

func (r *castRepo) Create(ctx context.Context, cast *model.Cast) error {
	return r.db.WithContext(ctx).Create(cast).Error
}

// Update saves the member and replaces the full credit list.
func (r *castRepo) Update(ctx context.Context, cast *model.Cast) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(cast).Error; err != nil {
			return err
		}
		return tx.Model(cast).Association("Credits").Unscoped().Replace(cast.Credits)
	})
}

// Delete soft-deletes the member and drops its credits, which have no
// deleted marker of their own.
func (r *castRepo) Delete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Cast{}).Where("id = ?", id).Updates(map[string]interface{}{
			"deleted_at": gorm.Expr("NOW()"),
			"deleted_by": deletedBy,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("cast_id = ?", id).Delete(&model.CastCredit{}).Error
	})
}
