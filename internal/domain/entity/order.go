// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Order represents a single music commission submitted by a user.
//
// Genres is stored as a flat, ordered list of labels: up to three labels
// come from the genre catalog, and at most one trailing label is the
// user's free-text genre. The split between the two is reconstructed on
// edit by the genre package, never persisted separately.
type Order struct {
	ID            uuid.UUID   `json:"id"`             // Server-assigned unique identifier.
	OwnerID       uuid.UUID   `json:"owner_id"`       // The user who submitted the order. Immutable after creation.
	Theme         string      `json:"theme"`          // The requested theme of the song. Never empty.
	Genres        []string    `json:"genres"`         // 1..4 labels: catalog leaves plus at most one free-text label.
	Instruments   []string    `json:"instruments"`    // Requested instruments. Trimmed, non-empty tokens; may be empty.
	HasLyrics     bool        `json:"has_lyrics"`     // Whether the commission includes lyrics.
	LyricsContent *string     `json:"lyrics_content"` // Lyrics text. Nil whenever HasLyrics is false.
	Notes         string      `json:"notes"`          // Free-form additional notes. Optional.
	Status        OrderStatus `json:"status"`         // Fulfillment state, controlled by the service.
	CreatedAt     time.Time   `json:"created_at"`     // Timestamp of submission.
	UpdatedAt     time.Time   `json:"updated_at"`     // Timestamp of the last edit.
}
