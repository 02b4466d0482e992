package domain

import "time"

// EmailNotifications are the per-channel email toggles stored as one
// JSON group.
type EmailNotifications struct {
	Marketing      bool `json:"marketing"`
	OrderUpdates   bool `json:"order_updates"`
	EventReminders bool `json:"event_reminders"`
}

// PushNotifications are the push-channel toggles stored as one JSON
// group. Enabled gates the whole channel.
type PushNotifications struct {
	Enabled        bool `json:"enabled"`
	OrderUpdates   bool `json:"order_updates"`
	EventReminders bool `json:"event_reminders"`
}

// Preferences is a user's settings row. Saves replace the whole row:
// callers send every field, not a patch.
type Preferences struct {
	UserID    string
	Theme     string
	Language  string
	Timezone  string
	Email     EmailNotifications
	Push      PushNotifications
	UpdatedAt time.Time
}

// Defaults returns the settings a user has before ever saving any.
func Defaults(userID string) *Preferences {
	return &Preferences{
		UserID:   userID,
		Theme:    "system",
		Language: "en",
		Timezone: "UTC",
		Email: EmailNotifications{
			OrderUpdates:   true,
			EventReminders: true,
		},
		Push: PushNotifications{
			Enabled:        true,
			OrderUpdates:   true,
			EventReminders: true,
		},
	}
}
