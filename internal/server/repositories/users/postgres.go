// Package users provides the PostgreSQL-backed user repository.
package users

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

const userColumns = `id, name, lastname, nick, bio, email, password, role, image, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Name, &u.LastName, &u.Nick, &u.Bio, &u.Email, &u.Password, &u.Role, &u.Image, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts user and fills the generated id, role, image and created_at.
// A taken email or nick yields common.ErrConflict.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (name, lastname, nick, bio, email, password)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, role, image, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Name, user.LastName, user.Nick, user.Bio, user.Email, user.Password).
		Scan(&user.ID, &user.Role, &user.Image, &user.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.MapError(err))
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) ExistsByEmailOrNick(ctx context.Context, email, nick, excludeID string) (bool, error) {
	query :=
		`SELECT EXISTS (
		   SELECT 1 FROM users
		   WHERE (lower(email) = lower($1) OR lower(nick) = lower($2))
		     AND ($3 = '' OR id::text <> $3)
		 )`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, email, nick, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return exists, nil
}

// Update stores the mutable profile fields. Role and image are not touched.
func (r *PostgresRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`UPDATE users
		 SET name = $2, lastname = $3, nick = $4, bio = $5, email = $6, password = $7
		 WHERE id = $1
		 RETURNING ` + userColumns

	updated, err := scanUser(r.db.QueryRowContext(ctx, query,
		user.ID, user.Name, user.LastName, user.Nick, user.Bio, user.Email, user.Password))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.MapError(err))
	}

	return updated, nil
}

func (r *PostgresRepository) SetImage(ctx context.Context, id, image string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET image = $2 WHERE id = $1`, id, image)
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

func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, id LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to select users: %w", err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
