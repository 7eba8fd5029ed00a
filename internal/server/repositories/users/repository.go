package users

import (
	"context"

	"github.com/dmitrijs2005/gophnet/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// ExistsByEmailOrNick reports whether another user (id != excludeID) already
	// uses email or nick, compared case-insensitively.
	ExistsByEmailOrNick(ctx context.Context, email, nick, excludeID string) (bool, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	SetImage(ctx context.Context, id, image string) error
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	Count(ctx context.Context) (int64, error)
}
