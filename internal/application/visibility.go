package application

import (
	"pairconnect/api/internal/apperr"
	"pairconnect/api/models"
)

// LinkVisible reports whether viewerID may see the connection link of s. An
// empty viewerID is an anonymous caller. The participants set must be loaded.
func LinkVisible(s *models.Session, viewerID string) bool {
	if viewerID == "" {
		return false
	}
	return viewerID == s.OwnerID || s.HasParticipant(viewerID)
}

// redactLink clears the link of s unless viewerID may see it.
func redactLink(s *models.Session, viewerID string) {
	if !LinkVisible(s, viewerID) {
		s.Link = nil
	}
}

// ShapeProfile returns the view of subject that viewerID is allowed to see.
// The subject always sees the full record. Anyone else gets a Forbidden error
// for a private profile, and otherwise each field gated by a privacy flag is
// emptied when its flag is off. Bookmarks are only shown to the subject.
func ShapeProfile(subject models.User, viewerID string) (models.User, error) {
	if viewerID != "" && viewerID == subject.ID {
		return subject, nil
	}
	if !subject.ProfilePublic {
		return models.User{}, apperr.Forbidden("profile is private")
	}

	shaped := subject
	shaped.Bookmarks = []string{}
	privacy := subject.PrivacySettings
	if !privacy.ShowEmail {
		shaped.Email = ""
	}
	if !privacy.ShowContacts {
		shaped.Contacts = models.Contacts{}
	}
	if !privacy.ShowBio {
		shaped.Bio = nil
	}
	if !privacy.ShowLanguages {
		shaped.Languages = []string{}
	}
	if !privacy.ShowStack {
		shaped.Stack = ""
	}
	if !privacy.ShowLevel {
		shaped.Level = ""
	}
	return shaped, nil
}
