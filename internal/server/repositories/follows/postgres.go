// Package follows provides the PostgreSQL-backed follow edge repository.
// The (following_user, followed_user) unique constraint is the authority on
// duplicate edges; callers may pre-check but must handle common.ErrConflict.
package follows

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophnet/internal/common"
	"github.com/dmitrijs2005/gophnet/internal/dbx"
	"github.com/dmitrijs2005/gophnet/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, followerID, followedID string) (*models.Follow, error) {
	query :=
		`INSERT INTO follows (following_user, followed_user)
		 VALUES ($1, $2)
		 RETURNING id, following_user, followed_user, created_at
		 `

	f := &models.Follow{}
	err := r.db.QueryRowContext(ctx, query, followerID, followedID).
		Scan(&f.ID, &f.FollowingUser, &f.FollowedUser, &f.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.MapError(err))
	}

	return f, nil
}

func (r *PostgresRepository) Find(ctx context.Context, followerID, followedID string) (*models.Follow, error) {
	query :=
		`SELECT id, following_user, followed_user, created_at FROM follows
		 WHERE following_user = $1 AND followed_user = $2
		 `

	f := &models.Follow{}
	err := r.db.QueryRowContext(ctx, query, followerID, followedID).
		Scan(&f.ID, &f.FollowingUser, &f.FollowedUser, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return f, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, followerID, followedID string) error {
	query := `DELETE FROM follows WHERE following_user = $1 AND followed_user = $2`

	res, err := r.db.ExecContext(ctx, query, followerID, followedID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// ListFollowing returns edges where userID is the follower, joined with the
// followed user's public profile, oldest first.
func (r *PostgresRepository) ListFollowing(ctx context.Context, userID string, limit, offset int) ([]*models.FollowWithUser, error) {
	query :=
		`SELECT f.id, f.following_user, f.followed_user, f.created_at,
		        u.id, u.name, u.lastname, u.nick, u.bio, u.image, u.created_at
		 FROM follows f
		 JOIN users u ON u.id = f.followed_user
		 WHERE f.following_user = $1
		 ORDER BY f.created_at, f.id
		 LIMIT $2 OFFSET $3`

	return r.list(ctx, query, userID, limit, offset)
}

// ListFollowers returns edges where userID is followed, joined with the
// follower's public profile, oldest first.
func (r *PostgresRepository) ListFollowers(ctx context.Context, userID string, limit, offset int) ([]*models.FollowWithUser, error) {
	query :=
		`SELECT f.id, f.following_user, f.followed_user, f.created_at,
		        u.id, u.name, u.lastname, u.nick, u.bio, u.image, u.created_at
		 FROM follows f
		 JOIN users u ON u.id = f.following_user
		 WHERE f.followed_user = $1
		 ORDER BY f.created_at, f.id
		 LIMIT $2 OFFSET $3`

	return r.list(ctx, query, userID, limit, offset)
}

func (r *PostgresRepository) list(ctx context.Context, query, userID string, limit, offset int) ([]*models.FollowWithUser, error) {
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to select follows: %w", err)
	}
	defer rows.Close()

	var result []*models.FollowWithUser
	for rows.Next() {
		var item models.FollowWithUser
		if err := rows.Scan(
			&item.ID, &item.FollowingUser, &item.FollowedUser, &item.CreatedAt,
			&item.User.ID, &item.User.Name, &item.User.LastName, &item.User.Nick, &item.User.Bio,
			&item.User.Image, &item.User.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) CountFollowing(ctx context.Context, userID string) (int64, error) {
	return r.count(ctx, `SELECT count(*) FROM follows WHERE following_user = $1`, userID)
}

func (r *PostgresRepository) CountFollowers(ctx context.Context, userID string) (int64, error) {
	return r.count(ctx, `SELECT count(*) FROM follows WHERE followed_user = $1`, userID)
}

func (r *PostgresRepository) count(ctx context.Context, query, userID string) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	return r.ids(ctx, `SELECT followed_user FROM follows WHERE following_user = $1 ORDER BY created_at`, userID)
}

func (r *PostgresRepository) FollowerIDs(ctx context.Context, userID string) ([]string, error) {
	return r.ids(ctx, `SELECT following_user FROM follows WHERE followed_user = $1 ORDER BY created_at`, userID)
}

func (r *PostgresRepository) ids(ctx context.Context, query, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select follow ids: %w", err)
	}
	defer rows.Close()

	result := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result = append(result, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
