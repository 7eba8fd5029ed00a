// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a stored account. Password holds the bcrypt hash.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	LastName  string    `json:"lastname"`
	Nick      string    `json:"nick"`
	Bio       string    `json:"bio"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      string    `json:"role"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
}

// PublicUser is the projection of a User shown to other users: no credential,
// role or email.
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	LastName  string    `json:"lastname"`
	Nick      string    `json:"nick"`
	Bio       string    `json:"bio,omitempty"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
}

// Public strips private fields.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		LastName:  u.LastName,
		Nick:      u.Nick,
		Bio:       u.Bio,
		Image:     u.Image,
		CreatedAt: u.CreatedAt,
	}
}
