package models

import "time"

const (
	RoleEndUser = "end_user"
	RoleAgent   = "agent"
	RoleAdmin   = "admin"
)

type User struct {
	ID          string      `json:"id"`
	Email       string      `json:"email"`
	Name        string      `json:"name"`
	Role        string      `json:"role"`
	Active      bool        `json:"active"`
	Preferences Preferences `json:"preferences"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Preferences holds the profile-page toggles.
type Preferences struct {
	EmailNotifications bool   `json:"email_notifications"`
	InAppNotifications bool   `json:"in_app_notifications"`
	Language           string `json:"language"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		EmailNotifications: true,
		InAppNotifications: true,
		Language:           "en",
	}
}
