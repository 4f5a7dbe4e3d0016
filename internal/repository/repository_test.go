package repository

import (
	"context"
	"testing"

	"go-media-cms/internal/access"
	"go-media-cms/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestClaimFirstAdmin_Wins(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "system_flags" .* ON CONFLICT DO NOTHING`).
		WithArgs(model.FlagAdminBootstrapped, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	claimed, err := NewAdminLedger(db).ClaimFirstAdmin(context.Background())

	require.NoError(t, err)
	assert.True(t, claimed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimFirstAdmin_AlreadyClaimed(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "system_flags"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	claimed, err := NewAdminLedger(db).ClaimFirstAdmin(context.Background())

	require.NoError(t, err)
	assert.False(t, claimed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentCount_AnonymousSeesPublishedOnly(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "movies" WHERE "status" = \$1`).
		WithArgs("published").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := NewMovieRepo(db).Count(context.Background(), access.CanRead(nil))

	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentCount_AdminUnfiltered(t *testing.T) {
	db, mock := newMockDB(t)
	admin := &model.User{Roles: model.NewRoleSet(model.RoleAdmin)}

	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts" WHERE "posts"."deleted_at" IS NULL`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	n, err := NewPostRepo(db).Count(context.Background(), access.CanRead(admin))

	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentRepo_DenySkipsQuery(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEpisodeRepo(db)

	n, err := repo.Count(context.Background(), access.Deny())
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = repo.FindByID(context.Background(), uuid.New(), access.Deny())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.IncrementViews(context.Background(), uuid.New(), access.Deny())
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScope_UnknownFieldDenies(t *testing.T) {
	db, _ := newMockDB(t)

	_, ok := Scope(db, access.Filtered(access.Where{Field: "owner", Value: "x"}))
	assert.False(t, ok)

	_, ok = Scope(db, access.Allow())
	assert.True(t, ok)
}

func TestPage(t *testing.T) {
	assert.Equal(t, DefaultPageSize, Page{}.Size())
	assert.Equal(t, MaxPageSize, Page{Limit: 1000}.Size())
	assert.Equal(t, 0, Page{Number: 1, Limit: 10}.Offset())
	assert.Equal(t, 20, Page{Number: 3, Limit: 10}.Offset())
	assert.Equal(t, 3, Page{Limit: 10}.TotalPages(21))
	assert.Equal(t, 0, Page{Limit: 10}.TotalPages(0))
}

func TestContentCreate_StoresSlugLockAsGiven(t *testing.T) {
	db, mock := newMockDB(t)
	post := &model.Post{
		Title:       "Hello",
		Publication: model.Publication{Status: model.StatusDraft, Slug: "custom-slug"},
	}

	mock.ExpectBegin()
	// id, created_at, updated_at, deleted_at, created_by, updated_by, deleted_by,
	// title, content, status, published_at, slug, slug_lock, meta_*, views
	mock.ExpectExec(`INSERT INTO "posts"`).
		WithArgs(
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			"Hello", "", "draft", sqlmock.AnyArg(), "custom-slug", false,
			"", "", "", sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, NewPostRepo(db).Create(context.Background(), post))

	assert.False(t, post.SlugLock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentFind_RelatedDraftsHiddenFromAnonymous(t *testing.T) {
	db, mock := newMockDB(t)
	mock.MatchExpectationsInOrder(false)
	episodeID, draftMovieID := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "episodes" WHERE "status" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "status"}).
			AddRow(episodeID.String(), "Pilot", "published"))
	mock.ExpectQuery(`FROM "video_sources"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`FROM "episodes_related_movies"`).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id", "target_id"}).
			AddRow(episodeID.String(), draftMovieID.String()))
	mock.ExpectQuery(`FROM "episodes_related_series"`).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id", "target_id"}))
	mock.ExpectQuery(`FROM "episodes_related_posts"`).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id", "target_id"}))
	// The linked movie is a draft, so the filtered lookup finds nothing.
	mock.ExpectQuery(`SELECT \* FROM "movies" WHERE .*"status" = `).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	ep, err := NewEpisodeRepo(db).FindByID(context.Background(), episodeID, access.CanRead(nil))

	require.NoError(t, err)
	assert.Empty(t, ep.RelatedMovies)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContentCreate_UnknownRelatedRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	movie := &model.Movie{
		Title:        "Heat",
		RelatedPosts: []model.Post{{BaseModel: model.BaseModel{ID: uuid.New()}}},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "movies"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "movies_related_movies" WHERE owner_id = \$1`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM "movies_related_series" WHERE owner_id = \$1`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM "movies_related_posts" WHERE owner_id = \$1`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts" WHERE id IN`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectRollback()

	err := NewMovieRepo(db).Create(context.Background(), movie)

	assert.ErrorIs(t, err, ErrUnknownRelated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCastDelete_DropsCredits(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "casts" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "cast_credits" WHERE cast_id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, NewCastRepo(db).Delete(context.Background(), id, "admin"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCastDelete_NotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "casts" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := NewCastRepo(db).Delete(context.Background(), uuid.New(), "admin")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
