// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the core entity in the system, representing a unique "person" or "account".
// It contains only the most fundamental identity information.
type User struct {
	ID        uuid.UUID `json:"id"`                // The Global Unique Identifier (GUID) for the user.
	Email     string    `json:"email"`             // The user's primary contact email, used as a login identifier.
	Profile   *Profile  `json:"profile,omitempty"` // A pointer to the user's profile. Will be nil until the profile has been created.
	CreatedAt time.Time `json:"created_at"`        // Timestamp of when this user account was created.
	UpdatedAt time.Time `json:"updated_at"`        // Timestamp of the last modification to this user's data.
}

// Profile holds the user's editable personal data, keyed 1:1 by user id.
type Profile struct {
	UserID     uuid.UUID `json:"user_id"`    // Foreign Key that links this profile to a core User entity.
	Name       string    `json:"name"`       // The user's display name.
	Newsletter bool      `json:"newsletter"` // Whether the user opted into the newsletter.
	UpdatedAt  time.Time `json:"updated_at"` // Timestamp of the last modification to this profile.
}
