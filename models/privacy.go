package models

// PrivacyFlags is the stored form of a user's privacy settings. Any flag may be
// unset, in which case the default from DefaultPrivacySettings applies.
type PrivacyFlags struct {
	ShowEmail     *bool `json:"showEmail,omitempty"`
	ShowContacts  *bool `json:"showContacts,omitempty"`
	ShowProjects  *bool `json:"showProjects,omitempty"`
	ShowSessions  *bool `json:"showSessions,omitempty"`
	ShowBio       *bool `json:"showBio,omitempty"`
	ShowLanguages *bool `json:"showLanguages,omitempty"`
	ShowStack     *bool `json:"showStack,omitempty"`
	ShowLevel     *bool `json:"showLevel,omitempty"`
}

// PrivacySettings is the effective, fully resolved set of privacy flags.
type PrivacySettings struct {
	ShowEmail     bool `json:"showEmail"`
	ShowContacts  bool `json:"showContacts"`
	ShowProjects  bool `json:"showProjects"`
	ShowSessions  bool `json:"showSessions"`
	ShowBio       bool `json:"showBio"`
	ShowLanguages bool `json:"showLanguages"`
	ShowStack     bool `json:"showStack"`
	ShowLevel     bool `json:"showLevel"`
}

// DefaultPrivacySettings returns the flags used when a profile never set them.
func DefaultPrivacySettings() PrivacySettings {
	return PrivacySettings{
		ShowEmail:     false,
		ShowContacts:  true,
		ShowProjects:  true,
		ShowSessions:  false,
		ShowBio:       true,
		ShowLanguages: true,
		ShowStack:     true,
		ShowLevel:     true,
	}
}

// Resolve fills every unset flag with its default. A nil receiver resolves to
// the defaults.
func (f *PrivacyFlags) Resolve() PrivacySettings {
	s := DefaultPrivacySettings()
	if f == nil {
		return s
	}
	pick(&s.ShowEmail, f.ShowEmail)
	pick(&s.ShowContacts, f.ShowContacts)
	pick(&s.ShowProjects, f.ShowProjects)
	pick(&s.ShowSessions, f.ShowSessions)
	pick(&s.ShowBio, f.ShowBio)
	pick(&s.ShowLanguages, f.ShowLanguages)
	pick(&s.ShowStack, f.ShowStack)
	pick(&s.ShowLevel, f.ShowLevel)
	return s
}

// Flags converts resolved settings back to their stored form.
func (s PrivacySettings) Flags() *PrivacyFlags {
	return &PrivacyFlags{
		ShowEmail:     boolPtr(s.ShowEmail),
		ShowContacts:  boolPtr(s.ShowContacts),
		ShowProjects:  boolPtr(s.ShowProjects),
		ShowSessions:  boolPtr(s.ShowSessions),
		ShowBio:       boolPtr(s.ShowBio),
		ShowLanguages: boolPtr(s.ShowLanguages),
		ShowStack:     boolPtr(s.ShowStack),
		ShowLevel:     boolPtr(s.ShowLevel),
	}
}

func pick(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func boolPtr(v bool) *bool { return &v }
