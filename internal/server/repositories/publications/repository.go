package publications

import (
	"context"

	"github.com/dmitrijs2005/gophnet/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, userID, text string) (*models.Publication, error)
	GetByID(ctx context.Context, id string) (*models.Publication, error)
	// Delete removes the publication only when it belongs to userID and
	// returns the deleted row.
	Delete(ctx context.Context, id, userID string) (*models.Publication, error)
	// SetFile attaches a media file name and returns the previous one.
	SetFile(ctx context.Context, id, userID, file string) (string, error)
	ListByAuthors(ctx context.Context, authorIDs []string, limit, offset int) ([]*models.PublicationWithAuthor, error)
	CountByAuthors(ctx context.Context, authorIDs []string) (int64, error)
}
