package services

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophnet/internal/common"
	"github.com/dmitrijs2005/gophnet/internal/dbx"
	"github.com/dmitrijs2005/gophnet/internal/logging"
	"github.com/dmitrijs2005/gophnet/internal/server/auth"
	"github.com/dmitrijs2005/gophnet/internal/server/config"
	"github.com/dmitrijs2005/gophnet/internal/server/media"
	"github.com/dmitrijs2005/gophnet/internal/server/models"
	"github.com/dmitrijs2005/gophnet/internal/server/repositories/follows"
	"github.com/dmitrijs2005/gophnet/internal/server/repositories/publications"
	"github.com/dmitrijs2005/gophnet/internal/server/repositories/users"
	"github.com/google/uuid"
)

// --- in-memory store shared by the fake repositories ---

type memStore struct {
	mu    sync.Mutex
	clock time.Time

	users        map[string]*models.User
	follows      []*models.Follow
	publications []*models.Publication

	// error injection
	followIDsErr  error
	followFindErr error
	countErr      error
	setFileErr    error
	setImageErr   error
}

func newMemStore() *memStore {
	return &memStore{
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		users: map[string]*models.User{},
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memStore) addUser(t *testing.T, nick string) *models.User {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &models.User{
		ID: uuid.NewString(), Name: strings.ToUpper(nick[:1]) + nick[1:], LastName: "L" + nick,
		Nick: nick, Email: nick + "@example.com", Role: common.DefaultRole, Image: common.DefaultImage,
		CreatedAt: m.tick(),
	}
	m.users[u.ID] = u
	return u
}

func (m *memStore) addFollow(t *testing.T, from, to string) {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.follows = append(m.follows, &models.Follow{ID: uuid.NewString(), FollowingUser: from, FollowedUser: to, CreatedAt: m.tick()})
}

func (m *memStore) addPublication(t *testing.T, author, text string) *models.Publication {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	p := &models.Publication{ID: uuid.NewString(), UserID: author, Text: text, CreatedAt: m.tick()}
	m.publications = append(m.publications, p)
	return p
}

func (m *memStore) edgeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.follows)
}

// --- users ---

type fakeUsersRepo struct{ m *memStore }

var _ users.Repository = (*fakeUsersRepo)(nil)

func (r *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, other := range r.m.users {
		if strings.EqualFold(other.Email, u.Email) || strings.EqualFold(other.Nick, u.Nick) {
			return nil, common.ErrConflict
		}
	}
	c := *u
	c.ID = uuid.NewString()
	c.Role = common.DefaultRole
	c.Image = common.DefaultImage
	c.CreatedAt = r.m.tick()
	r.m.users[c.ID] = &c
	out := c
	return &out, nil
}

func (r *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (r *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeUsersRepo) ExistsByEmailOrNick(ctx context.Context, email, nick, excludeID string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.ID == excludeID {
			continue
		}
		if strings.EqualFold(u.Email, email) || strings.EqualFold(u.Nick, nick) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUsersRepo) Update(ctx context.Context, u *models.User) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	stored, ok := r.m.users[u.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	stored.Name, stored.LastName, stored.Nick, stored.Bio, stored.Email, stored.Password =
		u.Name, u.LastName, u.Nick, u.Bio, u.Email, u.Password
	c := *stored
	return &c, nil
}

func (r *fakeUsersRepo) SetImage(ctx context.Context, id, image string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.setImageErr != nil {
		return r.m.setImageErr
	}
	u, ok := r.m.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.Image = image
	return nil
}

func (r *fakeUsersRepo) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	all := make([]*models.User, 0, len(r.m.users))
	for _, u := range r.m.users {
		c := *u
		all = append(all, &c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	return window(all, limit, offset), nil
}

func (r *fakeUsersRepo) Count(ctx context.Context) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.countErr != nil {
		return 0, r.m.countErr
	}
	return int64(len(r.m.users)), nil
}

// --- follows ---

type fakeFollowsRepo struct{ m *memStore }

var _ follows.Repository = (*fakeFollowsRepo)(nil)

func (r *fakeFollowsRepo) Create(ctx context.Context, from, to string) (*models.Follow, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, f := range r.m.follows {
		if f.FollowingUser == from && f.FollowedUser == to {
			return nil, common.ErrConflict
		}
	}
	f := &models.Follow{ID: uuid.NewString(), FollowingUser: from, FollowedUser: to, CreatedAt: r.m.tick()}
	r.m.follows = append(r.m.follows, f)
	c := *f
	return &c, nil
}

func (r *fakeFollowsRepo) Find(ctx context.Context, from, to string) (*models.Follow, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.followFindErr != nil {
		return nil, r.m.followFindErr
	}
	for _, f := range r.m.follows {
		if f.FollowingUser == from && f.FollowedUser == to {
			c := *f
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeFollowsRepo) Delete(ctx context.Context, from, to string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for i, f := range r.m.follows {
		if f.FollowingUser == from && f.FollowedUser == to {
			r.m.follows = append(r.m.follows[:i], r.m.follows[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

func (r *fakeFollowsRepo) list(match func(*models.Follow) (bool, string), limit, offset int) []*models.FollowWithUser {
	var out []*models.FollowWithUser
	for _, f := range r.m.follows {
		ok, other := match(f)
		if !ok {
			continue
		}
		item := &models.FollowWithUser{Follow: *f}
		if u, found := r.m.users[other]; found {
			item.User = u.Public()
		}
		out = append(out, item)
	}
	return window(out, limit, offset)
}

func (r *fakeFollowsRepo) ListFollowing(ctx context.Context, userID string, limit, offset int) ([]*models.FollowWithUser, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.list(func(f *models.Follow) (bool, string) { return f.FollowingUser == userID, f.FollowedUser }, limit, offset), nil
}

func (r *fakeFollowsRepo) ListFollowers(ctx context.Context, userID string, limit, offset int) ([]*models.FollowWithUser, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.list(func(f *models.Follow) (bool, string) { return f.FollowedUser == userID, f.FollowingUser }, limit, offset), nil
}

func (r *fakeFollowsRepo) CountFollowing(ctx context.Context, userID string) (int64, error) {
	ids, err := r.FollowingIDs(ctx, userID)
	return int64(len(ids)), err
}

func (r *fakeFollowsRepo) CountFollowers(ctx context.Context, userID string) (int64, error) {
	ids, err := r.FollowerIDs(ctx, userID)
	return int64(len(ids)), err
}

func (r *fakeFollowsRepo) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.followIDsErr != nil {
		return nil, r.m.followIDsErr
	}
	ids := []string{}
	for _, f := range r.m.follows {
		if f.FollowingUser == userID {
			ids = append(ids, f.FollowedUser)
		}
	}
	return ids, nil
}

func (r *fakeFollowsRepo) FollowerIDs(ctx context.Context, userID string) ([]string, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.followIDsErr != nil {
		return nil, r.m.followIDsErr
	}
	ids := []string{}
	for _, f := range r.m.follows {
		if f.FollowedUser == userID {
			ids = append(ids, f.FollowingUser)
		}
	}
	return ids, nil
}

// --- publications ---

type fakePublicationsRepo struct{ m *memStore }

var _ publications.Repository = (*fakePublicationsRepo)(nil)

func (r *fakePublicationsRepo) Create(ctx context.Context, userID, text string) (*models.Publication, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p := &models.Publication{ID: uuid.NewString(), UserID: userID, Text: text, CreatedAt: r.m.tick()}
	r.m.publications = append(r.m.publications, p)
	c := *p
	return &c, nil
}

func (r *fakePublicationsRepo) GetByID(ctx context.Context, id string) (*models.Publication, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, p := range r.m.publications {
		if p.ID == id {
			c := *p
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakePublicationsRepo) Delete(ctx context.Context, id, userID string) (*models.Publication, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for i, p := range r.m.publications {
		if p.ID == id && p.UserID == userID {
			r.m.publications = append(r.m.publications[:i], r.m.publications[i+1:]...)
			return p, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakePublicationsRepo) SetFile(ctx context.Context, id, userID, file string) (string, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.setFileErr != nil {
		return "", r.m.setFileErr
	}
	for _, p := range r.m.publications {
		if p.ID == id && p.UserID == userID {
			prev := p.File
			p.File = file
			return prev, nil
		}
	}
	return "", common.ErrorNotFound
}

func (r *fakePublicationsRepo) byAuthors(ids []string) []*models.PublicationWithAuthor {
	set := map[string]bool{}
	for _, id := range ids {
		set[id] = true
	}
	var out []*models.PublicationWithAuthor
	for _, p := range r.m.publications {
		if !set[p.UserID] {
			continue
		}
		item := &models.PublicationWithAuthor{Publication: *p}
		if u, ok := r.m.users[p.UserID]; ok {
			item.Author = u.Public()
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *fakePublicationsRepo) ListByAuthors(ctx context.Context, ids []string, limit, offset int) ([]*models.PublicationWithAuthor, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return window(r.byAuthors(ids), limit, offset), nil
}

func (r *fakePublicationsRepo) CountByAuthors(ctx context.Context, ids []string) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.countErr != nil {
		return 0, r.m.countErr
	}
	return int64(len(r.byAuthors(ids))), nil
}

func window[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

// --- repo manager ---

type fakeRepoManager struct{ m *memStore }

func (f *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (f *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return &fakeUsersRepo{f.m} }
func (f *fakeRepoManager) Follows(dbx.DBTX) follows.Repository          { return &fakeFollowsRepo{f.m} }
func (f *fakeRepoManager) Publications(dbx.DBTX) publications.Repository {
	return &fakePublicationsRepo{f.m}
}

// --- media ---

type fakeMedia struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	removed []string
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{objects: map[string][]byte{}}
}

func (f *fakeMedia) Put(ctx context.Context, name string, r io.Reader, maxBytes int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return 0, f.putErr
	}
	b, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return 0, err
	}
	if int64(len(b)) > maxBytes {
		return 0, media.ErrTooLarge
	}
	f.objects[name] = b
	return int64(len(b)), nil
}

func (f *fakeMedia) Open(ctx context.Context, name string) (*media.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.objects[name]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &media.Object{Body: io.NopCloser(bytes.NewReader(b)), Size: int64(len(b))}, nil
}

func (f *fakeMedia) Remove(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, name)
	delete(f.objects, name)
	return nil
}

func (f *fakeMedia) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

// --- logger ---

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logging.Logger          { return l }

// --- fixture ---

type fixture struct {
	db     *sql.DB
	mock   sqlmock.Sqlmock
	mem    *memStore
	media  *fakeMedia
	tokens *auth.TokenService

	follows *FollowService
	pubs    *PublicationService
	users   *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{MaxUploadSize: 16}
	mem := newMemStore()
	rm := &fakeRepoManager{m: mem}
	store := newFakeMedia()
	tokens := auth.NewTokenService("k", time.Hour)

	fs := NewFollowService(db, rm, nopLogger{})
	return &fixture{
		db: db, mock: mock, mem: mem, media: store, tokens: tokens,
		follows: fs,
		pubs:    NewPublicationService(db, rm, fs, store, cfg, nopLogger{}),
		users:   NewUserService(db, rm, tokens, fs, store, cfg, nopLogger{}),
	}
}
