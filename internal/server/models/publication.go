package models

import "time"

// Publication is a text post with an optional media file reference.
type Publication struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	File      string    `json:"file,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PublicationWithAuthor is a publication with its author populated.
type PublicationWithAuthor struct {
	Publication
	Author PublicUser `json:"author"`
}
