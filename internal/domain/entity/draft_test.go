package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "encore/internal/domain/errors"
)

func TestOrderDraftNormalize(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("minimal valid draft", func(t *testing.T) {
		t.Parallel()

		draft := OrderDraft{
			Theme:          "Sunset",
			Genres:         []string{"ポップス"},
			InstrumentsRaw: "",
			HasLyrics:      false,
		}

		order, err := draft.Normalize(now)
		require.NoError(t, err)
		assert.Equal(t, "Sunset", order.Theme)
		assert.Equal(t, []string{"ポップス"}, order.Genres)
		assert.Empty(t, order.Instruments)
		assert.False(t, order.HasLyrics)
		assert.Nil(t, order.LyricsContent)
		assert.Equal(t, now, order.UpdatedAt)
	})

	t.Run("empty theme rejected", func(t *testing.T) {
		t.Parallel()

		draft := OrderDraft{
			Theme:  "   ",
			Genres: []string{"ポップス"},
		}

		_, err := draft.Normalize(now)
		assert.ErrorIs(t, err, domainerrors.ErrEmptyTheme)
	})

	t.Run("empty genre selection rejected", func(t *testing.T) {
		t.Parallel()

		draft := OrderDraft{
			Theme:  "Sunset",
			Genres: nil,
		}

		_, err := draft.Normalize(now)
		assert.ErrorIs(t, err, domainerrors.ErrNoGenreSelected)
	})

	t.Run("theme checked before genres", func(t *testing.T) {
		t.Parallel()

		draft := OrderDraft{Theme: "", Genres: nil}

		_, err := draft.Normalize(now)
		assert.ErrorIs(t, err, domainerrors.ErrEmptyTheme)
	})

	t.Run("full-width comma rejected", func(t *testing.T) {
		t.Parallel()

		draft := OrderDraft{
			Theme:          "Sunset",
			Genres:         []string{"ポップス"},
			InstrumentsRaw: "ピアノ，ドラム",
		}

		_, err := draft.Normalize(now)
		assert.ErrorIs(t, err, domainerrors.ErrWrongDelimiter)
	})

	t.Run("instrument tokens trimmed and empties dropped", func(t *testing.T) {
		t.Parallel()

		draft := OrderDraft{
			Theme:          "Sunset",
			Genres:         []string{"ポップス"},
			InstrumentsRaw: "ピアノ, ヴァイオリン,  ドラム ",
		}

		order, err := draft.Normalize(now)
		require.NoError(t, err)
		assert.Equal(t, []string{"ピアノ", "ヴァイオリン", "ドラム"}, order.Instruments)
	})

	t.Run("trailing delimiter yields no empty token", func(t *testing.T) {
		t.Parallel()

		draft := OrderDraft{
			Theme:          "Sunset",
			Genres:         []string{"ポップス"},
			InstrumentsRaw: "ピアノ,",
		}

		order, err := draft.Normalize(now)
		require.NoError(t, err)
		assert.Equal(t, []string{"ピアノ"}, order.Instruments)
	})

	t.Run("lyrics preserved when enabled", func(t *testing.T) {
		t.Parallel()

		draft := OrderDraft{
			Theme:         "Sunset",
			Genres:        []string{"ポップス"},
			HasLyrics:     true,
			LyricsContent: "夕焼けの歌詞",
		}

		order, err := draft.Normalize(now)
		require.NoError(t, err)
		require.NotNil(t, order.LyricsContent)
		assert.Equal(t, "夕焼けの歌詞", *order.LyricsContent)
	})

	t.Run("empty lyrics preserved when enabled", func(t *testing.T) {
		t.Parallel()

		draft := OrderDraft{
			Theme:     "Sunset",
			Genres:    []string{"ポップス"},
			HasLyrics: true,
		}

		order, err := draft.Normalize(now)
		require.NoError(t, err)
		require.NotNil(t, order.LyricsContent)
		assert.Empty(t, *order.LyricsContent)
	})

	t.Run("lyrics nulled when disabled", func(t *testing.T) {
		t.Parallel()

		draft := OrderDraft{
			Theme:         "Sunset",
			Genres:        []string{"ポップス"},
			HasLyrics:     false,
			LyricsContent: "残っていた歌詞",
		}

		order, err := draft.Normalize(now)
		require.NoError(t, err)
		assert.Nil(t, order.LyricsContent)
	})
}
