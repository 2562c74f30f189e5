package models

import "time"

// Project represents a collaborative coding project owned by a single user.
// Interested holds the ids of users whose join request was accepted.
type Project struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       *string   `json:"image"`
	Stack       Stack     `json:"stack"`
	Level       Level     `json:"level"`
	Languages   []string  `json:"languages"`
	Interested  []string  `json:"interested"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProjectUpdate carries the mutable project fields. Nil fields are left untouched.
type ProjectUpdate struct {
	Title       *string
	Description *string
	Image       *string
	Stack       *Stack
	Level       *Level
	Languages   []string
}

// ProjectFilter narrows a project listing.
type ProjectFilter struct {
	OwnerID string
	Stack   Stack
	Level   Level
}
