package profile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"cvbuilder/internal/database"
)

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Software Engineer", "software-engineer"},
		{"Café Résumé!! 2024", "cafe-resume-2024"},
		{"  --Ünïcödé--  ", "unicode"},
		{"C++ / Go developer", "c-go-developer"},
		{"日本語", ""},
		{"Already-slugged-name", "already-slugged-name"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Slugify(tc.in), tc.in)
	}
}

func TestNormalizeLanguage(t *testing.T) {
	assert.Equal(t, "fr", NormalizeLanguage("fr-CA"))
	assert.Equal(t, "de", NormalizeLanguage("de"))
	assert.Equal(t, "es", NormalizeLanguage("ES"))
	assert.Equal(t, "en", NormalizeLanguage(""))
	assert.Equal(t, "en", NormalizeLanguage("ja"))
	assert.Equal(t, "en", NormalizeLanguage("not a tag"))
}

func TestValidateDateRange(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	start := database.NewCalendarDate(2020, 1, 1)

	assert.NoError(t, ValidateDateRange("start_date", "end_date", start, nil, true, now))
	same := start
	assert.NoError(t, ValidateDateRange("start_date", "end_date", start, &same, true, now))
	edge := database.NewCalendarDate(2025, 1, 1)
	assert.NoError(t, ValidateDateRange("start_date", "end_date", start, &edge, true, now))
	beyond := database.NewCalendarDate(2025, 1, 2)
	assert.ErrorIs(t, ValidateDateRange("start_date", "end_date", start, &beyond, true, now), ErrValidation)
	assert.NoError(t, ValidateDateRange("issue_date", "expiration_date", start, &beyond, false, now))
	assert.ErrorIs(t, ValidateDateRange("start_date", "end_date", database.CalendarDate{}, nil, true, now), ErrValidation)
}
