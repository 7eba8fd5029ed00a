package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/gophnet/internal/common"
	"github.com/dmitrijs2005/gophnet/internal/logging"
	"github.com/dmitrijs2005/gophnet/internal/pagination"
	"github.com/dmitrijs2005/gophnet/internal/server/config"
	"github.com/dmitrijs2005/gophnet/internal/server/media"
	"github.com/dmitrijs2005/gophnet/internal/server/models"
	"github.com/dmitrijs2005/gophnet/internal/server/repositories/repomanager"
)

type PublicationService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	follows       *FollowService
	store         media.Store
	maxUploadSize int64
	log           logging.Logger
}

func NewPublicationService(db *sql.DB, m repomanager.RepositoryManager, follows *FollowService,
	store media.Store, cfg *config.Config, log logging.Logger) *PublicationService {
	return &PublicationService{
		db:            db,
		repomanager:   m,
		follows:       follows,
		store:         store,
		maxUploadSize: cfg.MaxUploadSize,
		log:           log.With("module", "publication"),
	}
}

func (s *PublicationService) Create(ctx context.Context, authorID, text string) (*models.Publication, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text is required", common.ErrValidation)
	}

	p, err := s.repomanager.Publications(s.db).Create(ctx, authorID, text)
	if err != nil {
		return nil, fmt.Errorf("error creating publication: %w", err)
	}
	return p, nil
}

func (s *PublicationService) Get(ctx context.Context, id string) (*models.Publication, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return s.repomanager.Publications(s.db).GetByID(ctx, id)
}

// Delete removes a publication authored by callerID. Someone else's
// publication is reported as common.ErrorNotFound.
func (s *PublicationService) Delete(ctx context.Context, id, callerID string) (*models.Publication, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	p, err := s.repomanager.Publications(s.db).Delete(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	if p.File != "" {
		s.removeMedia(ctx, p.File)
	}
	return p, nil
}

// Feed pages through publications of the users viewerID follows, newest
// first. It fails with common.ErrEmptyFollowSet when viewerID follows nobody
// and with common.ErrorNotFound when the page is empty.
func (s *PublicationService) Feed(ctx context.Context, viewerID string, p pagination.Params) (*pagination.Page[*models.PublicationWithAuthor], error) {
	following, err := s.follows.FollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("error resolving follow set: %w", err)
	}
	if len(following) == 0 {
		return nil, common.ErrEmptyFollowSet
	}

	return s.listByAuthors(ctx, following, p)
}

// ListByAuthor pages through authorID's publications, newest first.
func (s *PublicationService) ListByAuthor(ctx context.Context, authorID string, p pagination.Params) (*pagination.Page[*models.PublicationWithAuthor], error) {
	if err := validateID(authorID); err != nil {
		return nil, err
	}
	if _, err := s.repomanager.Users(s.db).GetByID(ctx, authorID); err != nil {
		return nil, err
	}

	return s.listByAuthors(ctx, []string{authorID}, p)
}

func (s *PublicationService) listByAuthors(ctx context.Context, authors []string, p pagination.Params) (*pagination.Page[*models.PublicationWithAuthor], error) {
	repo := s.repomanager.Publications(s.db)

	total, err := repo.CountByAuthors(ctx, authors)
	if err != nil {
		return nil, err
	}
	items, err := repo.ListByAuthors(ctx, authors, p.Limit, p.Offset())
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, common.ErrorNotFound
	}

	page := pagination.NewPage(items, total, p)
	return &page, nil
}

// AttachMedia stores r as the media file of publication pubID. The stored
// object never outlives a failed attach: it is removed when the upload is
// too large, when the publication is not callerID's, or when the update fails.
func (s *PublicationService) AttachMedia(ctx context.Context, pubID, callerID, filename string, r io.Reader) (*models.Publication, error) {
	ext, err := media.Extension(filename, media.MediaExtensions)
	if err != nil {
		return nil, fmt.Errorf("%w: unsupported file extension", err)
	}

	name, err := media.NewName(pubID, ext)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.Put(ctx, name, r, s.maxUploadSize); err != nil {
		return nil, err
	}

	repo := s.repomanager.Publications(s.db)

	previous, err := repo.SetFile(ctx, pubID, callerID, name)
	if err != nil {
		s.removeMedia(ctx, name)
		return nil, err
	}
	if previous != "" && previous != name {
		s.removeMedia(ctx, previous)
	}

	return repo.GetByID(ctx, pubID)
}

func (s *PublicationService) OpenMedia(ctx context.Context, name string) (*media.Object, error) {
	return s.store.Open(ctx, name)
}

func (s *PublicationService) removeMedia(ctx context.Context, name string) {
	if err := s.store.Remove(ctx, name); err != nil && !errors.Is(err, common.ErrorNotFound) {
		s.log.Warn(ctx, "media cleanup failed", "file", name, "error", err)
	}
}
