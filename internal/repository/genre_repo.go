package repository

import (
	"context"

	"go-media-cms/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GenreRepository interface {
	FindAll(ctx context.Context) ([]model.Genre, error)
	FindByValues(ctx context.Context, values []string) ([]model.Genre, error)
	Create(ctx context.Context, genre *model.Genre) error
	Delete(ctx context.Context, id uint) error
	SeedDefaults(ctx context.Context) error
}

type genreRepo struct {
	db *gorm.DB
}

func NewGenreRepo(db *gorm.DB) GenreRepository {
	return &genreRepo{db: db}
}

func (r *genreRepo) FindAll(ctx context.Context) ([]model.Genre, error) {
	var genres []model.Genre
	err := r.db.WithContext(ctx).Order("label ASC").Find(&genres).Error
	return genres, err
}

func (r *genreRepo) FindByValues(ctx context.Context, values []string) ([]model.Genre, error) {
	genres := []model.Genre{}
	if len(values) == 0 {
		return genres, nil
	}
	err := r.db.WithContext(ctx).Where("value IN ?", values).Find(&genres).Error
	return genres, err
}

func (r *genreRepo) Create(ctx context.Context, genre *model.Genre) error {
	return r.db.WithContext(ctx).Create(genre).Error
}

func (r *genreRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Genre{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SeedDefaults inserts the built-in genres, leaving existing rows untouched.
func (r *genreRepo) SeedDefaults(ctx context.Context) error {
	for _, g := range model.DefaultGenres {
		genre := g
		err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "value"}}, DoNothing: true}).
			Create(&genre).Error
		if err != nil {
			return err
		}
	}
	return nil
}
