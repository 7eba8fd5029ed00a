// Package rest exposes the services over an HTTP/JSON API built on gin.
package rest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophnet/internal/logging"
	"github.com/dmitrijs2005/gophnet/internal/pagination"
	"github.com/dmitrijs2005/gophnet/internal/server/auth"
	"github.com/dmitrijs2005/gophnet/internal/server/config"
	"github.com/dmitrijs2005/gophnet/internal/server/media"
	"github.com/dmitrijs2005/gophnet/internal/server/models"
	"github.com/dmitrijs2005/gophnet/internal/server/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Profile(ctx context.Context, viewerID, userID string) (*services.Profile, error)
	List(ctx context.Context, viewerID string, p pagination.Params) (*services.UserList, error)
	Update(ctx context.Context, callerID string, in services.UpdateInput) (*models.User, error)
	SetAvatar(ctx context.Context, callerID, filename string, r io.Reader) (*models.User, error)
	OpenAvatar(ctx context.Context, name string) (*media.Object, error)
	Counters(ctx context.Context, userID string) (*models.Counters, error)
}

type FollowService interface {
	Follow(ctx context.Context, followerID, followedID string) (*models.FollowDetails, error)
	Unfollow(ctx context.Context, followerID, followedID string) error
	ListFollowing(ctx context.Context, viewerID, userID string, p pagination.Params) (*services.FollowList, error)
	ListFollowers(ctx context.Context, viewerID, userID string, p pagination.Params) (*services.FollowList, error)
}

type PublicationService interface {
	Create(ctx context.Context, authorID, text string) (*models.Publication, error)
	Get(ctx context.Context, id string) (*models.Publication, error)
	Delete(ctx context.Context, id, callerID string) (*models.Publication, error)
	Feed(ctx context.Context, viewerID string, p pagination.Params) (*pagination.Page[*models.PublicationWithAuthor], error)
	ListByAuthor(ctx context.Context, authorID string, p pagination.Params) (*pagination.Page[*models.PublicationWithAuthor], error)
	AttachMedia(ctx context.Context, pubID, callerID, filename string, r io.Reader) (*models.Publication, error)
	OpenMedia(ctx context.Context, name string) (*media.Object, error)
}

type Server struct {
	address         string
	logger          logging.Logger
	tokens          TokenValidator
	users           UserService
	follows         FollowService
	publications    PublicationService
	defaultPageSize int
	maxPageSize     int
	maxUploadSize   int64
}

func NewServer(cfg *config.Config, l logging.Logger, tokens TokenValidator,
	us UserService, fs FollowService, ps PublicationService) *Server {
	return &Server{
		address:         cfg.EndpointAddrHTTP,
		logger:          l.With("module", "rest_server"),
		tokens:          tokens,
		users:           us,
		follows:         fs,
		publications:    ps,
		defaultPageSize: cfg.DefaultPageSize,
		maxPageSize:     cfg.MaxPageSize,
		maxUploadSize:   cfg.MaxUploadSize,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), cors.Default())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": statusSuccess})
	})

	api := r.Group("/api")
	authed := s.requireAuth()

	user := api.Group("/user")
	user.POST("/register", s.register)
	user.POST("/login", s.login)
	user.GET("/avatar/:file", s.avatar)
	user.GET("/profile/:id", authed, s.profile)
	user.GET("/list", authed, s.listUsers)
	user.GET("/list/:page", authed, s.listUsers)
	user.PUT("/update", authed, s.updateUser)
	user.POST("/upload-avatar", authed, s.requireEntity(entityUser, fromCaller), s.uploadAvatar)
	user.GET("/counters", authed, s.counters)
	user.GET("/counters/:id", authed, s.counters)

	follow := api.Group("/follow", authed)
	follow.POST("/follow", s.follow)
	follow.DELETE("/unfollow/:id", s.unfollow)
	follow.GET("/following", s.following)
	follow.GET("/following/:id", s.following)
	follow.GET("/following/:id/:page", s.following)
	follow.GET("/followers", s.followers)
	follow.GET("/followers/:id", s.followers)
	follow.GET("/followers/:id/:page", s.followers)

	pub := api.Group("/publication")
	pub.GET("/media/:file", s.publicationMedia)
	pub.POST("/publication", authed, s.createPublication)
	pub.GET("/show-publication/:id", authed, s.showPublication)
	pub.DELETE("/delete-publication/:id", authed, s.deletePublication)
	pub.GET("/publications-user/:id", authed, s.publicationsByUser)
	pub.GET("/publications-user/:id/:page", authed, s.publicationsByUser)
	pub.POST("/upload-media/:id", authed, s.requireEntity(entityPublication, fromPath), s.uploadMedia)
	pub.GET("/feed", authed, s.feed)
	pub.GET("/feed/:page", authed, s.feed)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) pageParams(c *gin.Context) pagination.Params {
	return pagination.Parse(c.Param("page"), c.Query("limit"), s.defaultPageSize, s.maxPageSize)
}
