package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	for _, name := range []string{"modern", "classic", "minimal", "creative"} {
		tpl, err := Get(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, tpl.Name)
		assert.NotEmpty(t, tpl.Colors.Primary)
		assert.NotEmpty(t, tpl.Colors.Secondary)
		assert.NotEmpty(t, tpl.Colors.Accent)
		assert.NotEmpty(t, tpl.Features)
		assert.True(t, HasColorScheme(tpl.DefaultColorScheme))
	}

	_, err := Get("brutalist")
	assert.True(t, errors.Is(err, ErrTemplateNotFound))
}

func TestTemplatesIsACopy(t *testing.T) {
	list := Templates()
	list[0].Name = "changed"
	tpl, err := Get("modern")
	require.NoError(t, err)
	assert.Equal(t, "modern", tpl.Name)
}

func TestGetColorsForScheme_UnknownFallsBackToDefault(t *testing.T) {
	assert.Equal(t, GetColorsForScheme(DefaultColorScheme), GetColorsForScheme("does-not-exist"))
	assert.Equal(t, GetColorsForScheme(DefaultColorScheme), GetColorsForScheme(""))
}

func TestGetColorsForScheme_FillsOmittedRoles(t *testing.T) {
	teal := GetColorsForScheme("teal")
	assert.Equal(t, "#0d9488", teal.HeaderBg)
	assert.Equal(t, "#ffffff", teal.HeaderText)

	orange := GetColorsForScheme("orange")
	assert.Equal(t, fallbackColors.Text, orange.Text)
	assert.Equal(t, "#9a3412", orange.HeaderBg)
}

func TestColorSchemesAllRolesResolved(t *testing.T) {
	for _, s := range ColorSchemes() {
		for _, v := range []string{s.Colors.Primary, s.Colors.Text, s.Colors.Accent, s.Colors.HeaderBg, s.Colors.HeaderText} {
			assert.Regexp(t, hexColor, v, s.ID)
		}
	}
}

func TestResolveScheme(t *testing.T) {
	assert.Equal(t, "green", ResolveScheme("modern", "green"))
	assert.Equal(t, "navy", ResolveScheme("classic", ""))
	assert.Equal(t, "blue", ResolveScheme("unknown", ""))
	assert.Equal(t, "blue", ResolveScheme("creative", "neon"))
}

func TestValidateColorScheme(t *testing.T) {
	assert.NoError(t, ValidateColorScheme(""))
	assert.NoError(t, ValidateColorScheme("red"))
	assert.ErrorIs(t, ValidateColorScheme("neon"), ErrColorSchemeNotFound)
}
