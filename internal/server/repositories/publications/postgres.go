// Package publications provides the PostgreSQL-backed publication repository.
package publications

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

func (r *PostgresRepository) Create(ctx context.Context, userID, text string) (*models.Publication, error) {
	query :=
		`INSERT INTO publications (user_id, text)
		 VALUES ($1, $2)
		 RETURNING id, user_id, text, file, created_at
		 `

	p := &models.Publication{}
	err := r.db.QueryRowContext(ctx, query, userID, text).
		Scan(&p.ID, &p.UserID, &p.Text, &p.File, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.MapError(err))
	}

	return p, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Publication, error) {
	query := `SELECT id, user_id, text, file, created_at FROM publications WHERE id = $1`

	p := &models.Publication{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&p.ID, &p.UserID, &p.Text, &p.File, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id, userID string) (*models.Publication, error) {
	query :=
		`DELETE FROM publications
		 WHERE id = $1 AND user_id = $2
		 RETURNING id, user_id, text, file, created_at
		 `

	p := &models.Publication{}
	err := r.db.QueryRowContext(ctx, query, id, userID).
		Scan(&p.ID, &p.UserID, &p.Text, &p.File, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

func (r *PostgresRepository) SetFile(ctx context.Context, id, userID, file string) (string, error) {
	query :=
		`UPDATE publications p
		 SET file = $3
		 FROM publications old
		 WHERE p.id = old.id AND p.id = $1 AND p.user_id = $2
		 RETURNING old.file
		 `

	var previous string
	err := r.db.QueryRowContext(ctx, query, id, userID, file).Scan(&previous)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}

	return previous, nil
}

// ListByAuthors returns publications of the given authors, newest first,
// with the author's public profile attached.
func (r *PostgresRepository) ListByAuthors(ctx context.Context, authorIDs []string, limit, offset int) ([]*models.PublicationWithAuthor, error) {
	query :=
		`SELECT p.id, p.user_id, p.text, p.file, p.created_at,
		        u.id, u.name, u.lastname, u.nick, u.bio, u.image, u.created_at
		 FROM publications p
		 JOIN users u ON u.id = p.user_id
		 WHERE p.user_id = ANY($1::uuid[])
		 ORDER BY p.created_at DESC, p.id DESC
		 LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, authorIDs, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to select publications: %w", err)
	}
	defer rows.Close()

	var result []*models.PublicationWithAuthor
	for rows.Next() {
		var item models.PublicationWithAuthor
		if err := rows.Scan(
			&item.ID, &item.UserID, &item.Text, &item.File, &item.CreatedAt,
			&item.Author.ID, &item.Author.Name, &item.Author.LastName, &item.Author.Nick,
			&item.Author.Bio, &item.Author.Image, &item.Author.CreatedAt,
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

func (r *PostgresRepository) CountByAuthors(ctx context.Context, authorIDs []string) (int64, error) {
	query := `SELECT count(*) FROM publications WHERE user_id = ANY($1::uuid[])`

	var n int64
	if err := r.db.QueryRowContext(ctx, query, authorIDs).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
