package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go-media-cms/internal/access"
	"go-media-cms/internal/model"
	"go-media-cms/internal/repository"

	"github.com/google/uuid"
)

type memLedger struct {
	mu      sync.Mutex
	claimed bool
	err     error
}

func (l *memLedger) ClaimFirstAdmin(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return false, l.err
	}
	if l.claimed {
		return false, nil
	}
	l.claimed = true
	return true, nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[uuid.UUID]model.User
	ledger *memLedger
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]model.User{}, ledger: &memLedger{}}
}

func (r *fakeUserRepo) find(match func(model.User) bool) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			out := u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.find(func(u model.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.ID == id })
}

func (r *fakeUserRepo) FindByResetTokenHash(ctx context.Context, hash string) (*model.User, error) {
	if hash == "" {
		return nil, repository.ErrNotFound
	}
	return r.find(func(u model.User) bool { return u.ResetTokenHash == hash })
}

func (r *fakeUserRepo) CreateGuarded(ctx context.Context, user *model.User, prepare func(ledger access.AdminLedger) error) error {
	if err := prepare(r.ledger); err != nil {
		return err
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) FindAll(ctx context.Context, page repository.Page) ([]model.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) UpdateTokenVersion(ctx context.Context, userID uuid.UUID, version string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.TokenVersion = version
	r.users[userID] = u
	return nil
}

func (r *fakeUserRepo) UpdateLastSeen(ctx context.Context, userID uuid.UUID) error {
	return nil
}

func (r *fakeUserRepo) AdminExists(ctx context.Context) (bool, error) {
	_, err := r.find(func(u model.User) bool { return u.Roles.Has(model.RoleAdmin) })
	return err == nil, nil
}

func (r *fakeUserRepo) admins() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, u := range r.users {
		if u.Roles.Has(model.RoleAdmin) {
			n++
		}
	}
	return n
}

// fakeContentRepo applies decisions the way the SQL pushdown does.
type fakeContentRepo[T any, PT interface {
	*T
	model.Document
}] struct {
	mu       sync.Mutex
	docs     map[uuid.UUID]T
	writeErr error
}

func newFakeContentRepo[T any, PT interface {
	*T
	model.Document
}]() *fakeContentRepo[T, PT] {
	return &fakeContentRepo[T, PT]{docs: map[uuid.UUID]T{}}
}

func visible(doc model.Document, d access.Decision) bool {
	if !d.Permitted() {
		return false
	}
	w, ok := d.Condition()
	if !ok {
		return true
	}
	return w.Field == access.FieldStatus && string(doc.Pub().Status) == w.Value
}

func (r *fakeContentRepo[T, PT]) put(doc T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[PT(&doc).GetID()] = doc
}

func (r *fakeContentRepo[T, PT]) Create(ctx context.Context, doc *T) error {
	if r.writeErr != nil {
		return r.writeErr
	}
	r.put(*doc)
	return nil
}

func (r *fakeContentRepo[T, PT]) Update(ctx context.Context, doc *T) error {
	r.put(*doc)
	return nil
}

func (r *fakeContentRepo[T, PT]) Delete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.docs, id)
	return nil
}

func (r *fakeContentRepo[T, PT]) first(d access.Decision, match func(PT) bool) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, doc := range r.docs {
		doc := doc
		if visible(PT(&doc), d) && match(PT(&doc)) {
			return &doc, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeContentRepo[T, PT]) FindByID(ctx context.Context, id uuid.UUID, d access.Decision) (*T, error) {
	return r.first(d, func(doc PT) bool { return doc.GetID() == id })
}

func (r *fakeContentRepo[T, PT]) FindBySlug(ctx context.Context, slug string, d access.Decision) (*T, error) {
	return r.first(d, func(doc PT) bool { return doc.Pub().Slug == slug })
}

func (r *fakeContentRepo[T, PT]) List(ctx context.Context, d access.Decision, page repository.Page) ([]T, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []T{}
	for _, doc := range r.docs {
		doc := doc
		if visible(PT(&doc), d) {
			out = append(out, doc)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeContentRepo[T, PT]) Count(ctx context.Context, d access.Decision) (int64, error) {
	_, n, err := r.List(ctx, d, repository.Page{})
	return n, err
}

func (r *fakeContentRepo[T, PT]) SumViews(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for _, doc := range r.docs {
		doc := doc
		total += PT(&doc).Pub().Views
	}
	return total, nil
}

func (r *fakeContentRepo[T, PT]) IncrementViews(ctx context.Context, id uuid.UUID, d access.Decision) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok || !visible(PT(&doc), d) {
		return 0, repository.ErrNotFound
	}
	PT(&doc).Pub().Views++
	r.docs[id] = doc
	return PT(&doc).Pub().Views, nil
}

func (r *fakeContentRepo[T, PT]) SlugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, doc := range r.docs {
		doc := doc
		if id != exclude && PT(&doc).Pub().Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

type fakeGenreRepo struct {
	genres []model.Genre
}

func (r *fakeGenreRepo) FindAll(ctx context.Context) ([]model.Genre, error) {
	return r.genres, nil
}

func (r *fakeGenreRepo) FindByValues(ctx context.Context, values []string) ([]model.Genre, error) {
	out := []model.Genre{}
	for _, g := range r.genres {
		for _, v := range values {
			if g.Value == v {
				out = append(out, g)
			}
		}
	}
	return out, nil
}

func (r *fakeGenreRepo) Create(ctx context.Context, genre *model.Genre) error {
	r.genres = append(r.genres, *genre)
	return nil
}

func (r *fakeGenreRepo) Delete(ctx context.Context, id uint) error { return nil }

func (r *fakeGenreRepo) SeedDefaults(ctx context.Context) error {
	for i, g := range model.DefaultGenres {
		g.ID = uint(i + 1)
		r.genres = append(r.genres, g)
	}
	return nil
}

type recordingRevalidator struct {
	mu    sync.Mutex
	paths []string
}

func (r *recordingRevalidator) Revalidate(kind model.Kind, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

type recordingMailer struct {
	to, link string
	sent     int
}

func (m *recordingMailer) SendPasswordReset(to, name, link string) error {
	m.to, m.link = to, link
	m.sent++
	return nil
}
