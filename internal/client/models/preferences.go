package models

// Preferences are the toggles chosen during onboarding. They are kept on the
// client only.
type Preferences struct {
	Notifications bool `json:"notifications"`
	EmailUpdates  bool `json:"email_updates"`
	DarkMode      bool `json:"dark_mode"`
	Accessibility bool `json:"accessibility"`
}

// DefaultPreferences mirrors the initial state of the onboarding settings step.
func DefaultPreferences() Preferences {
	return Preferences{Notifications: true, EmailUpdates: true}
}
