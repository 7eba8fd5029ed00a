package follows

import (
	"context"

	"github.com/dmitrijs2005/gophnet/internal/server/models"
)

type Repository interface {
	// Create stores the edge follower → followed. A second edge for the same
	// ordered pair yields common.ErrConflict.
	Create(ctx context.Context, followerID, followedID string) (*models.Follow, error)
	Find(ctx context.Context, followerID, followedID string) (*models.Follow, error)
	Delete(ctx context.Context, followerID, followedID string) error
	ListFollowing(ctx context.Context, userID string, limit, offset int) ([]*models.FollowWithUser, error)
	ListFollowers(ctx context.Context, userID string, limit, offset int) ([]*models.FollowWithUser, error)
	CountFollowing(ctx context.Context, userID string) (int64, error)
	CountFollowers(ctx context.Context, userID string) (int64, error)
	FollowingIDs(ctx context.Context, userID string) ([]string, error)
	FollowerIDs(ctx context.Context, userID string) ([]string, error)
}
