package models

import "time"

// RequestStatus is the state of a project join request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

// ProjectRequest represents one user's request to join a project.
type ProjectRequest struct {
	ID        string        `json:"id"`
	ProjectID string        `json:"projectId"`
	UserID    string        `json:"userId"`
	Status    RequestStatus `json:"status"`
	Message   *string       `json:"message"`
	User      *Requester    `json:"user,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Requester is the slice of the requesting user's profile embedded in request
// listings for the project owner.
type Requester struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Avatar   *string `json:"avatar"`
	Stack    Stack   `json:"stack"`
	Level    Level   `json:"level"`
}
