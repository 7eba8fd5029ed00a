package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophnet/internal/common"
	"github.com/dmitrijs2005/gophnet/internal/logging"
	"github.com/dmitrijs2005/gophnet/internal/pagination"
	"github.com/dmitrijs2005/gophnet/internal/server/models"
	"github.com/dmitrijs2005/gophnet/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// FollowList is a page of edges plus the viewer's own relationship sets, so
// clients can mark "you follow" / "follows you" without extra calls.
type FollowList struct {
	pagination.Page[*models.FollowWithUser]
	Related models.RelatedIDs `json:"related"`
}

// FollowService owns the follow graph: every edge is created and removed here.
type FollowService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewFollowService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *FollowService {
	return &FollowService{db: db, repomanager: m, log: log.With("module", "follow")}
}

// Follow creates the edge followerID → followedID.
//
// The existence pre-check only saves a round trip; concurrent requests for the
// same pair are settled by the unique constraint, and the loser gets
// common.ErrConflict either way.
func (s *FollowService) Follow(ctx context.Context, followerID, followedID string) (*models.FollowDetails, error) {
	if followerID == followedID {
		return nil, common.ErrSelfFollow
	}
	if err := validateID(followedID); err != nil {
		return nil, err
	}

	followed, err := s.repomanager.Users(s.db).GetByID(ctx, followedID)
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Follows(s.db)

	_, err = repo.Find(ctx, followerID, followedID)
	switch {
	case err == nil:
		return nil, common.ErrConflict
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("error checking follow: %w", err)
	}

	edge, err := repo.Create(ctx, followerID, followedID)
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("error creating follow: %w", err)
	}

	s.log.Info(ctx, "user followed", "follower", followerID, "followed", followedID)

	return &models.FollowDetails{
		Follow: *edge,
		FollowedUserName: models.FollowedUserName{
			Name:     followed.Name,
			LastName: followed.LastName,
		},
	}, nil
}

// Unfollow removes the edge followerID → followedID; common.ErrorNotFound if
// there is none.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followedID string) error {
	if err := validateID(followedID); err != nil {
		return err
	}
	if err := s.repomanager.Follows(s.db).Delete(ctx, followerID, followedID); err != nil {
		return err
	}
	s.log.Info(ctx, "user unfollowed", "follower", followerID, "followed", followedID)
	return nil
}

// ListFollowing pages through the users userID follows.
func (s *FollowService) ListFollowing(ctx context.Context, viewerID, userID string, p pagination.Params) (*FollowList, error) {
	repo := s.repomanager.Follows(s.db)

	total, err := repo.CountFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := repo.ListFollowing(ctx, userID, p.Limit, p.Offset())
	if err != nil {
		return nil, err
	}

	return &FollowList{
		Page:    pagination.NewPage(items, total, p),
		Related: s.RelatedIDs(ctx, viewerID),
	}, nil
}

// ListFollowers pages through the users following userID.
func (s *FollowService) ListFollowers(ctx context.Context, viewerID, userID string, p pagination.Params) (*FollowList, error) {
	repo := s.repomanager.Follows(s.db)

	total, err := repo.CountFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := repo.ListFollowers(ctx, userID, p.Limit, p.Offset())
	if err != nil {
		return nil, err
	}

	return &FollowList{
		Page:    pagination.NewPage(items, total, p),
		Related: s.RelatedIDs(ctx, viewerID),
	}, nil
}

// FollowingIDs returns the ids userID follows. Unlike RelatedIDs it reports
// lookup failures.
func (s *FollowService) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	return s.repomanager.Follows(s.db).FollowingIDs(ctx, userID)
}

// LookupRelatedIDs returns both directions of userID's edges.
func (s *FollowService) LookupRelatedIDs(ctx context.Context, userID string) (models.RelatedIDs, error) {
	repo := s.repomanager.Follows(s.db)

	following, err := repo.FollowingIDs(ctx, userID)
	if err != nil {
		return models.EmptyRelatedIDs(), err
	}
	followers, err := repo.FollowerIDs(ctx, userID)
	if err != nil {
		return models.EmptyRelatedIDs(), err
	}

	return models.RelatedIDs{Following: following, Followers: followers}, nil
}

// RelatedIDs is the enrichment form of LookupRelatedIDs: a failed lookup is
// logged and yields empty, non-nil sets.
func (s *FollowService) RelatedIDs(ctx context.Context, userID string) models.RelatedIDs {
	ids, err := s.LookupRelatedIDs(ctx, userID)
	if err != nil {
		s.log.Warn(ctx, "related ids lookup failed", "user", userID, "error", err)
		return models.EmptyRelatedIDs()
	}
	return ids
}

// LookupMutual finds the edges between viewerID and subjectID in both
// directions. Missing ids or missing edges are reported as nil edges.
func (s *FollowService) LookupMutual(ctx context.Context, viewerID, subjectID string) (models.Mutual, error) {
	var m models.Mutual
	if viewerID == "" || subjectID == "" {
		return m, nil
	}

	repo := s.repomanager.Follows(s.db)

	following, err := repo.Find(ctx, viewerID, subjectID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return models.Mutual{}, err
	}
	followedBy, err := repo.Find(ctx, subjectID, viewerID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return models.Mutual{}, err
	}

	m.Following = following
	m.FollowedBy = followedBy
	return m, nil
}

// MutualStatus is the enrichment form of LookupMutual: a failed lookup is
// logged and yields "no relationship".
func (s *FollowService) MutualStatus(ctx context.Context, viewerID, subjectID string) models.Mutual {
	m, err := s.LookupMutual(ctx, viewerID, subjectID)
	if err != nil {
		s.log.Warn(ctx, "mutual status lookup failed", "viewer", viewerID, "subject", subjectID, "error", err)
		return models.Mutual{}
	}
	return m
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrInvalidID
	}
	return nil
}
