package repository

import (
	"context"

	"go-media-cms/internal/access"
	"go-media-cms/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FlagRepository interface {
	// MarkAdminBootstrapped sets the first-admin flag if it is not set yet.
	MarkAdminBootstrapped(ctx context.Context) error
	IsSet(ctx context.Context, key string) (bool, error)
}

type flagRepo struct {
	db *gorm.DB
}

func NewFlagRepo(db *gorm.DB) FlagRepository {
	return &flagRepo{db}
}

func (r *flagRepo) MarkAdminBootstrapped(ctx context.Context) error {
	_, err := NewAdminLedger(r.db).ClaimFirstAdmin(ctx)
	return err
}

func (r *flagRepo) IsSet(ctx context.Context, key string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.SystemFlag{}).Where("key = ?", key).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// adminLedger claims the first-admin flag with a single conditional insert,
// so concurrent claimers cannot both win.
type adminLedger struct {
	db *gorm.DB
}

// NewAdminLedger binds the ledger to db, which may be a transaction.
func NewAdminLedger(db *gorm.DB) access.AdminLedger {
	return &adminLedger{db}
}

func (l *adminLedger) ClaimFirstAdmin(ctx context.Context) (bool, error) {
	res := l.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.SystemFlag{Key: model.FlagAdminBootstrapped})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
