package rest

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophnet/internal/common"
	"github.com/dmitrijs2005/gophnet/internal/logging"
	"github.com/dmitrijs2005/gophnet/internal/pagination"
	"github.com/dmitrijs2005/gophnet/internal/server/auth"
	"github.com/dmitrijs2005/gophnet/internal/server/config"
	"github.com/dmitrijs2005/gophnet/internal/server/media"
	"github.com/dmitrijs2005/gophnet/internal/server/models"
	"github.com/dmitrijs2005/gophnet/internal/server/services"
	"github.com/gin-gonic/gin"
)

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logging.Logger          { return l }

// ---- fakes ----

type fakeUsers struct {
	registerOut *models.User
	registerErr error
	loginOut    *services.LoginResult
	loginErr    error
	getOut      *models.User
	getErr      error
	profileOut  *services.Profile
	profileErr  error
	listOut     *services.UserList
	listErr     error
	updateOut   *models.User
	updateErr   error
	avatarOut   *models.User
	avatarErr   error
	avatarBody  []byte
	openOut     *media.Object
	openErr     error
	countersOut *models.Counters
	countersErr error

	gotID     string
	gotViewer string
	gotParams pagination.Params
	gotFile   string
}

func (f *fakeUsers) Register(ctx context.Context, in services.RegisterInput) (*models.User, error) {
	return f.registerOut, f.registerErr
}
func (f *fakeUsers) Login(ctx context.Context, email, password string) (*services.LoginResult, error) {
	return f.loginOut, f.loginErr
}
func (f *fakeUsers) Get(ctx context.Context, id string) (*models.User, error) {
	f.gotID = id
	return f.getOut, f.getErr
}
func (f *fakeUsers) Profile(ctx context.Context, viewerID, userID string) (*services.Profile, error) {
	f.gotViewer, f.gotID = viewerID, userID
	return f.profileOut, f.profileErr
}
func (f *fakeUsers) List(ctx context.Context, viewerID string, p pagination.Params) (*services.UserList, error) {
	f.gotViewer, f.gotParams = viewerID, p
	return f.listOut, f.listErr
}
func (f *fakeUsers) Update(ctx context.Context, callerID string, in services.UpdateInput) (*models.User, error) {
	f.gotID = callerID
	return f.updateOut, f.updateErr
}
func (f *fakeUsers) SetAvatar(ctx context.Context, callerID, filename string, r io.Reader) (*models.User, error) {
	f.gotID, f.gotFile = callerID, filename
	f.avatarBody, _ = io.ReadAll(r)
	return f.avatarOut, f.avatarErr
}
func (f *fakeUsers) OpenAvatar(ctx context.Context, name string) (*media.Object, error) {
	f.gotFile = name
	return f.openOut, f.openErr
}
func (f *fakeUsers) Counters(ctx context.Context, userID string) (*models.Counters, error) {
	f.gotID = userID
	return f.countersOut, f.countersErr
}

type fakeFollows struct {
	followOut   *models.FollowDetails
	followErr   error
	unfollowErr error
	listOut     *services.FollowList
	listErr     error

	gotFollower string
	gotFollowed string
	gotViewer   string
	gotUser     string
	gotParams   pagination.Params
	gotList     string
}

func (f *fakeFollows) Follow(ctx context.Context, followerID, followedID string) (*models.FollowDetails, error) {
	f.gotFollower, f.gotFollowed = followerID, followedID
	return f.followOut, f.followErr
}
func (f *fakeFollows) Unfollow(ctx context.Context, followerID, followedID string) error {
	f.gotFollower, f.gotFollowed = followerID, followedID
	return f.unfollowErr
}
func (f *fakeFollows) ListFollowing(ctx context.Context, viewerID, userID string, p pagination.Params) (*services.FollowList, error) {
	f.gotList, f.gotViewer, f.gotUser, f.gotParams = "following", viewerID, userID, p
	return f.listOut, f.listErr
}
func (f *fakeFollows) ListFollowers(ctx context.Context, viewerID, userID string, p pagination.Params) (*services.FollowList, error) {
	f.gotList, f.gotViewer, f.gotUser, f.gotParams = "followers", viewerID, userID, p
	return f.listOut, f.listErr
}

type fakePublications struct {
	createOut *models.Publication
	createErr error
	getOut    *models.Publication
	getErr    error
	deleteOut *models.Publication
	deleteErr error
	pageOut   *pagination.Page[*models.PublicationWithAuthor]
	pageErr   error
	attachOut *models.Publication
	attachErr error
	openOut   *media.Object
	openErr   error

	gotID     string
	gotCaller string
	gotText   string
	gotParams pagination.Params
	gotFile   string
	gotBody   []byte
	attached  bool
}

func (f *fakePublications) Create(ctx context.Context, authorID, text string) (*models.Publication, error) {
	f.gotCaller, f.gotText = authorID, text
	return f.createOut, f.createErr
}
func (f *fakePublications) Get(ctx context.Context, id string) (*models.Publication, error) {
	f.gotID = id
	return f.getOut, f.getErr
}
func (f *fakePublications) Delete(ctx context.Context, id, callerID string) (*models.Publication, error) {
	f.gotID, f.gotCaller = id, callerID
	return f.deleteOut, f.deleteErr
}
func (f *fakePublications) Feed(ctx context.Context, viewerID string, p pagination.Params) (*pagination.Page[*models.PublicationWithAuthor], error) {
	f.gotCaller, f.gotParams = viewerID, p
	return f.pageOut, f.pageErr
}
func (f *fakePublications) ListByAuthor(ctx context.Context, authorID string, p pagination.Params) (*pagination.Page[*models.PublicationWithAuthor], error) {
	f.gotID, f.gotParams = authorID, p
	return f.pageOut, f.pageErr
}
func (f *fakePublications) AttachMedia(ctx context.Context, pubID, callerID, filename string, r io.Reader) (*models.Publication, error) {
	f.attached = true
	f.gotID, f.gotCaller, f.gotFile = pubID, callerID, filename
	f.gotBody, _ = io.ReadAll(r)
	return f.attachOut, f.attachErr
}
func (f *fakePublications) OpenMedia(ctx context.Context, name string) (*media.Object, error) {
	f.gotFile = name
	return f.openOut, f.openErr
}

// ---- harness ----

const (
	callerUUID = "6f1c1f0e-8b1a-4c7e-9d3b-0a6f3e1d2c4b"
	otherUUID  = "0b8e2d3c-4f5a-4b6c-8d7e-9f0a1b2c3d4e"
)

type harness struct {
	router *gin.Engine
	tokens *auth.TokenService
	users  *fakeUsers
	follow *fakeFollows
	pubs   *fakePublications
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{DefaultPageSize: 5, MaxPageSize: 100, MaxUploadSize: 1 << 10}
	h := &harness{
		tokens: auth.NewTokenService("test-secret", time.Hour),
		users:  &fakeUsers{},
		follow: &fakeFollows{},
		pubs:   &fakePublications{},
	}
	h.router = NewServer(cfg, nopLogger{}, h.tokens, h.users, h.follow, h.pubs).Router()
	return h
}

func (h *harness) token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := h.tokens.Issue(auth.Identity{UserID: userID, Role: common.DefaultRole, Name: "Alice"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok
}

func objectOf(data string) *media.Object {
	return &media.Object{Body: io.NopCloser(bytes.NewReader([]byte(data))), Size: int64(len(data))}
}
