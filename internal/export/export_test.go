package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cvbuilder/internal/database"
	"cvbuilder/internal/database/dbtest"
	"cvbuilder/internal/profile"
	"cvbuilder/internal/storage"
)

var fixedNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

type fakeGenerator struct {
	html []string
	err  error
}

func (g *fakeGenerator) Generate(_ context.Context, html string) ([]byte, error) {
	g.html = append(g.html, html)
	if g.err != nil {
		return nil, g.err
	}
	return []byte("%PDF-1.4 fake"), nil
}

func (g *fakeGenerator) Engine() string { return "fake" }

type fakePhotos struct {
	data        []byte
	contentType string
	err         error
}

func (f fakePhotos) ReadObject(context.Context, string, int64) ([]byte, string, error) {
	return f.data, f.contentType, f.err
}

func setup(t *testing.T) (*profile.Service, uint, *database.Profile) {
	t.Helper()
	db := dbtest.New(t)
	userID := dbtest.SeedUser(t, db, "owner@example.com")
	svc := profile.NewService(db, profile.WithClock(func() time.Time { return fixedNow }))
	p, err := svc.Create(context.Background(), userID, profile.CreateInput{Name: "Backend Engineer"})
	require.NoError(t, err)
	_, err = svc.UpsertPersonalInfo(context.Background(), userID, p.ID, func(pi *database.PersonalInfo) error {
		pi.FullName = "Ada Lovelace"
		pi.Email = "ada@example.com"
		return nil
	})
	require.NoError(t, err)
	return svc, userID, p
}

func TestExport_BumpsCountersAfterSuccess(t *testing.T) {
	svc, userID, p := setup(t)
	gen := &fakeGenerator{}
	exp := New(svc, gen, WithClock(func() time.Time { return fixedNow }))

	res, err := exp.Export(context.Background(), userID, p.ID)
	require.NoError(t, err)

	assert.Equal(t, []byte("%PDF-1.4 fake"), res.PDF)
	assert.Equal(t, "CV-backend-engineer-1718452800000.pdf", res.FileName)
	assert.Equal(t, 1, res.Profile.DownloadCount)
	require.NotNil(t, res.Profile.LastExportedAt)
	assert.True(t, res.Profile.LastExportedAt.Equal(fixedNow))
	require.Len(t, gen.html, 1)
	assert.Contains(t, gen.html[0], "Ada Lovelace")
}

func TestExport_FailureLeavesCountersUntouched(t *testing.T) {
	svc, userID, p := setup(t)
	exp := New(svc, &fakeGenerator{err: errors.New("browser crashed")})

	_, err := exp.Export(context.Background(), userID, p.ID)
	require.ErrorIs(t, err, ErrPDFGeneration)
	assert.NotErrorIs(t, err, profile.ErrNotFound)

	reloaded, err := svc.Get(context.Background(), userID, p.ID)
	require.NoError(t, err)
	assert.Zero(t, reloaded.DownloadCount)
	assert.Nil(t, reloaded.LastExportedAt)
}

func TestPreview_DoesNotCount(t *testing.T) {
	svc, userID, p := setup(t)
	exp := New(svc, &fakeGenerator{})

	for range 3 {
		_, err := exp.Preview(context.Background(), userID, p.ID)
		require.NoError(t, err)
	}

	reloaded, err := svc.Get(context.Background(), userID, p.ID)
	require.NoError(t, err)
	assert.Zero(t, reloaded.DownloadCount)
}

func TestExport_ForeignProfileIsNotFound(t *testing.T) {
	svc, _, p := setup(t)
	gen := &fakeGenerator{}
	exp := New(svc, gen)

	_, err := exp.Export(context.Background(), 9999, p.ID)
	assert.ErrorIs(t, err, profile.ErrNotFound)
	assert.Empty(t, gen.html)
}

func TestRenderHTML_InlinesPhoto(t *testing.T) {
	svc, userID, p := setup(t)
	_, err := svc.SetPhotoKey(context.Background(), userID, p.ID, "photos/1/me.png")
	require.NoError(t, err)

	exp := New(svc, &fakeGenerator{}, WithPhotos(fakePhotos{data: []byte("png-bytes"), contentType: "image/png"}))
	html, _, err := exp.RenderHTML(context.Background(), userID, p.ID)
	require.NoError(t, err)
	assert.Contains(t, html, "data:image/png;base64,cG5nLWJ5dGVz")
}

func TestRenderHTML_MissingPhotoIsSkipped(t *testing.T) {
	svc, userID, p := setup(t)
	_, err := svc.SetPhotoKey(context.Background(), userID, p.ID, "photos/1/gone.png")
	require.NoError(t, err)

	exp := New(svc, &fakeGenerator{}, WithPhotos(fakePhotos{err: fmt.Errorf("stat object: %w", storage.ErrObjectNotFound)}))
	html, _, err := exp.RenderHTML(context.Background(), userID, p.ID)
	require.NoError(t, err)
	assert.NotContains(t, html, "data:image/")
	assert.Contains(t, html, "Ada Lovelace")
}

func TestFileName(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Backend Engineer", "CV-backend-engineer-1700000000123.pdf"},
		{"accents", "Développeur Senior", "CV-developpeur-senior-1700000000123.pdf"},
		{"punctuation", "C++ / Go (2024)!", "CV-c-go-2024-1700000000123.pdf"},
		{"whitespace runs", "  Data   Scientist ", "CV-data-scientist-1700000000123.pdf"},
		{"empty", "", "CV-profile-1700000000123.pdf"},
		{"only symbols", "***", "CV-profile-1700000000123.pdf"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FileName(tc.in, at))
		})
	}
}

func TestValidateForExport(t *testing.T) {
	empty := ValidateForExport(&database.Profile{})
	assert.False(t, empty.IsValid)
	assert.True(t, empty.CanExport)
	assert.Len(t, empty.Warnings, 2)

	full := ValidateForExport(&database.Profile{
		PersonalInfo: &database.PersonalInfo{FullName: "Ada", Email: "ada@example.com"},
		Skills:       []database.Skill{{Name: "Go"}},
	})
	assert.True(t, full.IsValid)
	assert.Empty(t, full.Warnings)

	noEmail := ValidateForExport(&database.Profile{
		PersonalInfo: &database.PersonalInfo{FullName: "Ada"},
		Experiences:  []database.Experience{{JobTitle: "Engineer"}},
	})
	assert.False(t, noEmail.IsValid)
	require.Len(t, noEmail.Warnings, 1)
	assert.True(t, strings.Contains(noEmail.Warnings[0], "Email"))
}
