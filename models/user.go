package models

import "time"

// Stack is the declared technical focus of a user or project.
type Stack string

const (
	StackFrontend  Stack = "Frontend"
	StackBackend   Stack = "Backend"
	StackFullstack Stack = "Fullstack"
)

// Level is the declared experience tier of a user or project.
type Level string

const (
	LevelJunior Level = "Junior"
	LevelMid    Level = "Mid"
	LevelSenior Level = "Senior"
)

// Contacts holds the optional contact handles of a user profile.
type Contacts struct {
	Email    string `json:"email,omitempty"`
	Github   string `json:"github,omitempty"`
	Linkedin string `json:"linkedin,omitempty"`
	Discord  string `json:"discord,omitempty"`
}

// User represents a profile row joined with the caller-facing extras
// (bookmarks and the effective privacy settings).
type User struct {
	ID              string          `json:"id"`
	Username        string          `json:"username"`
	Email           string          `json:"email"`
	Name            string          `json:"name"`
	Avatar          *string         `json:"avatar"`
	Bio             *string         `json:"bio"`
	Stack           Stack           `json:"stack"`
	Level           Level           `json:"level"`
	Languages       []string        `json:"languages"`
	Contacts        Contacts        `json:"contacts"`
	ProfilePublic   bool            `json:"profilePublic"`
	PrivacySettings PrivacySettings `json:"privacySettings"`
	Bookmarks       []string        `json:"bookmarks"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// UserUpdate carries the mutable profile fields. Nil fields are left untouched.
type UserUpdate struct {
	Username        *string
	Name            *string
	Avatar          *string
	Bio             *string
	Stack           *Stack
	Level           *Level
	Languages       []string
	Contacts        *Contacts
	ProfilePublic   *bool
	PrivacySettings *PrivacyFlags
}

// IsEmpty reports whether the update carries no field at all.
func (u UserUpdate) IsEmpty() bool {
	return u.Username == nil && u.Name == nil && u.Avatar == nil && u.Bio == nil &&
		u.Stack == nil && u.Level == nil && u.Languages == nil && u.Contacts == nil &&
		u.ProfilePublic == nil && u.PrivacySettings == nil
}

// UserFilter narrows a profile search.
type UserFilter struct {
	Query string
	Stack Stack
	Level Level
}
