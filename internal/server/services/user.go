// Package services contains server-side business logic: accounts and
// profiles, the follow graph, and publications with the feed.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/gophnet/internal/common"
	"github.com/dmitrijs2005/gophnet/internal/dbx"
	"github.com/dmitrijs2005/gophnet/internal/logging"
	"github.com/dmitrijs2005/gophnet/internal/pagination"
	"github.com/dmitrijs2005/gophnet/internal/server/auth"
	"github.com/dmitrijs2005/gophnet/internal/server/config"
	"github.com/dmitrijs2005/gophnet/internal/server/media"
	"github.com/dmitrijs2005/gophnet/internal/server/models"
	"github.com/dmitrijs2005/gophnet/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// RegisterInput is the data needed to open an account.
type RegisterInput struct {
	Name     string `json:"name"`
	LastName string `json:"lastname"`
	Nick     string `json:"nick"`
	Bio      string `json:"bio"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateInput changes profile fields; empty fields are left as they are.
type UpdateInput struct {
	Name     string `json:"name"`
	LastName string `json:"lastname"`
	Nick     string `json:"nick"`
	Bio      string `json:"bio"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	User  *models.User
	Token string
}

type Profile struct {
	User   models.PublicUser `json:"user"`
	Mutual models.Mutual     `json:"mutual"`
}

type UserList struct {
	pagination.Page[models.PublicUser]
	Related models.RelatedIDs `json:"related"`
}

type UserService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	tokens        *auth.TokenService
	follows       *FollowService
	store         media.Store
	maxUploadSize int64
	log           logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, tokens *auth.TokenService, follows *FollowService,
	store media.Store, cfg *config.Config, log logging.Logger) *UserService {
	return &UserService{
		db:            db,
		repomanager:   m,
		tokens:        tokens,
		follows:       follows,
		store:         store,
		maxUploadSize: cfg.MaxUploadSize,
		log:           log.With("module", "user"),
	}
}

// Register creates an account. Email and nick are stored lower-cased and must
// not be used by anybody else.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	required := []struct{ field, value string }{
		{"name", in.Name},
		{"lastname", in.LastName},
		{"nick", in.Nick},
		{"email", in.Email},
		{"password", in.Password},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return nil, fmt.Errorf("%w: %s is required", common.ErrValidation, r.field)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Name:     in.Name,
		LastName: in.LastName,
		Nick:     strings.ToLower(strings.TrimSpace(in.Nick)),
		Bio:      in.Bio,
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Password: string(hash),
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		taken, err := repo.ExistsByEmailOrNick(ctx, user.Email, user.Nick, "")
		if err != nil {
			return err
		}
		if taken {
			return common.ErrConflict
		}

		user, err = repo.Create(ctx, user)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.log.Info(ctx, "user registered", "user", user.ID)
	return user, nil
}

// Login checks credentials and issues an identity token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(auth.Identity{UserID: user.ID, Role: user.Role, Name: user.Name})
	if err != nil {
		return nil, fmt.Errorf("error issuing token: %w", err)
	}

	return &LoginResult{User: user, Token: token}, nil
}

// Get loads a user by id.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

func (s *UserService) Profile(ctx context.Context, viewerID, userID string) (*Profile, error) {
	if err := validateID(userID); err != nil {
		return nil, err
	}
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{
		User:   user.Public(),
		Mutual: s.follows.MutualStatus(ctx, viewerID, userID),
	}, nil
}

func (s *UserService) List(ctx context.Context, viewerID string, p pagination.Params) (*UserList, error) {
	repo := s.repomanager.Users(s.db)

	total, err := repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	users, err := repo.List(ctx, p.Limit, p.Offset())
	if err != nil {
		return nil, err
	}

	items := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		items = append(items, u.Public())
	}

	return &UserList{
		Page:    pagination.NewPage(items, total, p),
		Related: s.follows.RelatedIDs(ctx, viewerID),
	}, nil
}

// Update changes the caller's own profile. Role and image cannot be changed
// here; a new password is re-hashed.
func (s *UserService) Update(ctx context.Context, callerID string, in UpdateInput) (*models.User, error) {
	var updated *models.User

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.GetByID(ctx, callerID)
		if err != nil {
			return err
		}

		if v := strings.TrimSpace(in.Name); v != "" {
			user.Name = v
		}
		if v := strings.TrimSpace(in.LastName); v != "" {
			user.LastName = v
		}
		if v := strings.TrimSpace(in.Bio); v != "" {
			user.Bio = v
		}
		if v := strings.ToLower(strings.TrimSpace(in.Nick)); v != "" {
			user.Nick = v
		}
		if v := strings.ToLower(strings.TrimSpace(in.Email)); v != "" {
			user.Email = v
		}

		taken, err := repo.ExistsByEmailOrNick(ctx, user.Email, user.Nick, user.ID)
		if err != nil {
			return err
		}
		if taken {
			return common.ErrConflict
		}

		if in.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("error hashing password: %w", err)
			}
			user.Password = string(hash)
		}

		updated, err = repo.Update(ctx, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// SetAvatar stores r as the caller's avatar. On any failure the stored object
// is removed; on success the previous custom avatar is removed.
func (s *UserService) SetAvatar(ctx context.Context, callerID, filename string, r io.Reader) (*models.User, error) {
	ext, err := media.Extension(filename, media.ImageExtensions)
	if err != nil {
		return nil, fmt.Errorf("%w: unsupported file extension", err)
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	name, err := media.NewName(callerID, ext)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Put(ctx, name, r, s.maxUploadSize); err != nil {
		return nil, err
	}

	if err := repo.SetImage(ctx, callerID, name); err != nil {
		s.removeMedia(ctx, name)
		return nil, err
	}

	if user.Image != "" && user.Image != common.DefaultImage {
		s.removeMedia(ctx, user.Image)
	}
	user.Image = name
	return user, nil
}

func (s *UserService) OpenAvatar(ctx context.Context, name string) (*media.Object, error) {
	return s.store.Open(ctx, name)
}

// Counters reads the three totals independently; they are not a snapshot.
func (s *UserService) Counters(ctx context.Context, userID string) (*models.Counters, error) {
	if err := validateID(userID); err != nil {
		return nil, err
	}
	if _, err := s.repomanager.Users(s.db).GetByID(ctx, userID); err != nil {
		return nil, err
	}

	follows := s.repomanager.Follows(s.db)

	following, err := follows.CountFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}
	followers, err := follows.CountFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}
	publications, err := s.repomanager.Publications(s.db).CountByAuthors(ctx, []string{userID})
	if err != nil {
		return nil, err
	}

	return &models.Counters{
		UserID:       userID,
		Following:    following,
		Followers:    followers,
		Publications: publications,
	}, nil
}

func (s *UserService) removeMedia(ctx context.Context, name string) {
	if err := s.store.Remove(ctx, name); err != nil {
		s.log.Warn(ctx, "avatar cleanup failed", "file", name, "error", err)
	}
}
