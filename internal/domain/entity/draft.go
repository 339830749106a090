// Package entity contains the core business objects of the project.
package entity

import (
	"strings"
	"time"

	domainerrors "encore/internal/domain/errors"
)

// FullWidthComma is the full-width comma commonly typed on Japanese
// keyboards. Instrument input uses the half-width comma as its
// delimiter, so drafts containing this character are rejected instead
// of being silently mis-split.
const FullWidthComma = "，" // "，"

// OrderDraft is the client-submitted shape of an order before
// normalization. Genres carries the already-merged flat label list
// (catalog leaves plus optional free-text label); InstrumentsRaw is the
// unparsed comma-delimited instrument text.
type OrderDraft struct {
	Theme          string
	Genres         []string
	InstrumentsRaw string
	HasLyrics      bool
	LyricsContent  string
	Notes          string
}

// Normalize validates the draft and produces an Order carrying the
// normalized mutable fields, with UpdatedAt set to now. Identity,
// ownership, status and CreatedAt are left zero for the caller to
// assign. Checks run in order and stop at the first failure:
// empty theme, empty genre selection, full-width comma in the
// instrument text.
func (d OrderDraft) Normalize(now time.Time) (*Order, error) {
	theme := strings.TrimSpace(d.Theme)
	if theme == "" {
		return nil, domainerrors.ErrEmptyTheme
	}

	if len(d.Genres) == 0 {
		return nil, domainerrors.ErrNoGenreSelected
	}

	if strings.Contains(d.InstrumentsRaw, FullWidthComma) {
		return nil, domainerrors.ErrWrongDelimiter
	}

	instruments := make([]string, 0)
	for _, token := range strings.Split(d.InstrumentsRaw, ",") {
		token = strings.TrimSpace(token)
		if token != "" {
			instruments = append(instruments, token)
		}
	}

	var lyrics *string
	if d.HasLyrics {
		content := d.LyricsContent
		lyrics = &content
	}

	return &Order{
		Theme:         theme,
		Genres:        append([]string(nil), d.Genres...),
		Instruments:   instruments,
		HasLyrics:     d.HasLyrics,
		LyricsContent: lyrics,
		Notes:         d.Notes,
		UpdatedAt:     now,
	}, nil
}
