package models

import "time"

// Session is a scheduled pair-programming slot under a project. Link is the
// connection URL and is only exposed to the owner and participants.
type Session struct {
	ID              string    `json:"id"`
	ProjectID       string    `json:"projectId"`
	OwnerID         string    `json:"ownerId"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Date            time.Time `json:"date"`
	Duration        int       `json:"duration"`
	MaxParticipants int       `json:"maxParticipants"`
	Participants    []string  `json:"participants"`
	Interested      []string  `json:"interested"`
	Link            *string   `json:"link"`
	CreatedAt       time.Time `json:"createdAt"`
}

// HasParticipant reports whether userID is in the participants set.
func (s *Session) HasParticipant(userID string) bool {
	for _, id := range s.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

// SessionUpdate carries the mutable session fields. Nil fields are left untouched.
type SessionUpdate struct {
	Title           *string
	Description     *string
	Date            *time.Time
	Duration        *int
	MaxParticipants *int
	Link            *string
}

// SessionFilter narrows a session listing.
type SessionFilter struct {
	ProjectID string
	OwnerID   string
}

const (
	DefaultSessionDuration        = 60
	DefaultSessionMaxParticipants = 4
)
