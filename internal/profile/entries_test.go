package profile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cvbuilder/internal/database"
)

func orders[T any, P interface {
	*T
	database.OrderedEntry
}](t *testing.T, store *EntryStore[T, P], userID, profileID uint) map[uint]int {
	t.Helper()
	list, err := store.List(context.Background(), userID, profileID)
	require.NoError(t, err)
	out := make(map[uint]int, len(list))
	for i := range list {
		e := P(&list[i])
		out[e.EntryID()] = e.Order()
	}
	return out
}

func seedLanguages(t *testing.T, entries *Entries, userID, profileID uint, names ...string) []uint {
	t.Helper()
	ids := make([]uint, 0, len(names))
	for _, name := range names {
		l := &database.Language{Name: name, Level: "B2", IsVisible: true}
		require.NoError(t, entries.Languages.Create(context.Background(), userID, profileID, l))
		ids = append(ids, l.ID)
	}
	return ids
}

func TestCreate_AppendsDisplayOrder(t *testing.T) {
	s, _, userID := newTestService(t)
	p := mustCreate(t, s, userID, "cv")
	entries := NewEntries(s)

	ids := seedLanguages(t, entries, userID, p.ID, "English", "French", "German")

	got := orders(t, entries.Languages, userID, p.ID)
	assert.Equal(t, map[uint]int{ids[0]: 0, ids[1]: 1, ids[2]: 2}, got)
	assert.Equal(t, "b2", mustGetLanguage(t, entries, userID, p.ID, ids[0]).Level)
}

func mustGetLanguage(t *testing.T, entries *Entries, userID, profileID, id uint) *database.Language {
	t.Helper()
	l, err := entries.Languages.Get(context.Background(), userID, profileID, id)
	require.NoError(t, err)
	return l
}

func TestReorder_AssignsIndexAndIsIdempotent(t *testing.T) {
	s, _, userID := newTestService(t)
	p := mustCreate(t, s, userID, "cv")
	entries := NewEntries(s)
	ids := seedLanguages(t, entries, userID, p.ID, "one", "two", "three")
	ctx := context.Background()

	requested := []uint{ids[2], ids[0], ids[1]}
	require.NoError(t, entries.Languages.Reorder(ctx, userID, p.ID, requested, nil))
	first := orders(t, entries.Languages, userID, p.ID)
	assert.Equal(t, map[uint]int{ids[2]: 0, ids[0]: 1, ids[1]: 2}, first)

	require.NoError(t, entries.Languages.Reorder(ctx, userID, p.ID, requested, nil))
	assert.Equal(t, first, orders(t, entries.Languages, userID, p.ID))
}

func TestReorder_ForeignIDChangesNothing(t *testing.T) {
	s, _, userID := newTestService(t)
	p := mustCreate(t, s, userID, "cv")
	other := mustCreate(t, s, userID, "other")
	entries := NewEntries(s)
	ids := seedLanguages(t, entries, userID, p.ID, "one", "two", "three")
	foreign := seedLanguages(t, entries, userID, other.ID, "elsewhere")
	ctx := context.Background()
	before := orders(t, entries.Languages, userID, p.ID)

	for _, bad := range [][]uint{
		{ids[2], ids[0], 99},
		{ids[2], ids[0], foreign[0]},
		{ids[2], ids[0]},
		{ids[2], ids[0], ids[0]},
		{ids[2], ids[0], ids[1], 99},
	} {
		err := entries.Languages.Reorder(ctx, userID, p.ID, bad, nil)
		assert.ErrorIs(t, err, ErrValidation, "%v", bad)
		assert.Equal(t, before, orders(t, entries.Languages, userID, p.ID))
	}
}

func TestDelete_LeavesDenseOrder(t *testing.T) {
	s, _, userID := newTestService(t)
	p := mustCreate(t, s, userID, "cv")
	entries := NewEntries(s)
	ctx := context.Background()

	var ids []uint
	for _, platform := range []string{"github", "linkedin", "twitter", "mastodon"} {
		sn := &database.SocialNetwork{Platform: platform, URL: "https://example.com/" + platform, IsVisible: true}
		require.NoError(t, entries.SocialNetworks.Create(ctx, userID, p.ID, sn))
		ids = append(ids, sn.ID)
	}

	require.NoError(t, entries.SocialNetworks.Delete(ctx, userID, p.ID, ids[1]))

	got := orders(t, entries.SocialNetworks, userID, p.ID)
	assert.Equal(t, map[uint]int{ids[0]: 0, ids[2]: 1, ids[3]: 2}, got)
}

func TestSkills_OrderScopedByCategory(t *testing.T) {
	s, _, userID := newTestService(t)
	p := mustCreate(t, s, userID, "cv")
	entries := NewEntries(s)
	ctx := context.Background()

	create := func(name, category string) uint {
		sk := &database.Skill{Name: name, Category: category, Level: "advanced", IsVisible: true}
		require.NoError(t, entries.Skills.Create(ctx, userID, p.ID, sk))
		return sk.ID
	}
	goID := create("Go", "backend")
	sqlID := create("SQL", "backend")
	cssID := create("CSS", "frontend")

	got := orders(t, entries.Skills, userID, p.ID)
	assert.Equal(t, map[uint]int{goID: 0, sqlID: 1, cssID: 0}, got)

	// 混合分类会被拒绝
	backend := "backend"
	err := entries.ReorderSkills(ctx, userID, p.ID, &backend, []uint{sqlID, goID, cssID})
	assert.ErrorIs(t, err, ErrValidation)

	// 分类取自第一个 id
	require.NoError(t, entries.ReorderSkills(ctx, userID, p.ID, nil, []uint{sqlID, goID}))
	got = orders(t, entries.Skills, userID, p.ID)
	assert.Equal(t, map[uint]int{sqlID: 0, goID: 1, cssID: 0}, got)

	// 技能换分类后追加到新分类末尾，并补齐旧分类的空位
	_, err = entries.Skills.Update(ctx, userID, p.ID, sqlID, func(sk *database.Skill) error {
		sk.Category = "frontend"
		return nil
	})
	require.NoError(t, err)
	got = orders(t, entries.Skills, userID, p.ID)
	assert.Equal(t, map[uint]int{goID: 0, cssID: 0, sqlID: 1}, got)
}

func TestDateBearingEntries_SyncDerivedFlags(t *testing.T) {
	s, _, userID := newTestService(t)
	p := mustCreate(t, s, userID, "cv")
	entries := NewEntries(s)
	ctx := context.Background()

	exp := &database.Experience{
		JobTitle:  "Engineer",
		Company:   "Acme",
		StartDate: database.NewCalendarDate(2020, 1, 1),
		IsCurrent: false,
		IsVisible: true,
	}
	require.NoError(t, entries.Experiences.Create(ctx, userID, p.ID, exp))
	assert.True(t, exp.IsCurrent, "no end date means ongoing")

	end := database.NewCalendarDate(2023, 3, 1)
	updated, err := entries.Experiences.Update(ctx, userID, p.ID, exp.ID, func(e *database.Experience) error {
		e.EndDate = &end
		e.IsCurrent = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, updated.IsCurrent)

	updated, err = entries.Experiences.Update(ctx, userID, p.ID, exp.ID, func(e *database.Experience) error {
		e.EndDate = nil
		return nil
	})
	require.NoError(t, err)
	assert.True(t, updated.IsCurrent)

	cert := &database.Certification{
		Name:           "CKA",
		IssueDate:      database.NewCalendarDate(2022, 1, 1),
		ExpirationDate: ptr(database.NewCalendarDate(2030, 1, 1)),
		DoesNotExpire:  true,
	}
	require.NoError(t, entries.Certifications.Create(ctx, userID, p.ID, cert))
	assert.False(t, cert.DoesNotExpire)
}

func ptr[T any](v T) *T { return &v }

func TestDateValidation(t *testing.T) {
	s, _, userID := newTestService(t)
	p := mustCreate(t, s, userID, "cv")
	entries := NewEntries(s)
	ctx := context.Background()

	backwards := &database.Education{
		Institution: "MIT",
		StartDate:   database.NewCalendarDate(2020, 1, 1),
		EndDate:     ptr(database.NewCalendarDate(2019, 1, 1)),
	}
	var verr *ValidationError
	require.ErrorAs(t, entries.Educations.Create(ctx, userID, p.ID, backwards), &verr)
	assert.Equal(t, "end_date", verr.Field)

	tooFar := &database.Education{
		Institution: "MIT",
		StartDate:   database.NewCalendarDate(2020, 1, 1),
		EndDate:     ptr(database.DateOf(fixedNow.AddDate(2, 0, 0))),
	}
	assert.ErrorIs(t, entries.Educations.Create(ctx, userID, p.ID, tooFar), ErrValidation)

	// 证书没有未来日期上限
	cert := &database.Certification{
		Name:           "Long lived",
		IssueDate:      database.NewCalendarDate(2020, 1, 1),
		ExpirationDate: ptr(database.DateOf(fixedNow.AddDate(5, 0, 0))),
	}
	assert.NoError(t, entries.Certifications.Create(ctx, userID, p.ID, cert))

	missingStart := &database.Experience{JobTitle: "x", Company: "y"}
	assert.ErrorIs(t, entries.Experiences.Create(ctx, userID, p.ID, missingStart), ErrValidation)

	badURL := &database.SocialNetwork{Platform: "github", URL: "not a url"}
	require.ErrorAs(t, entries.SocialNetworks.Create(ctx, userID, p.ID, badURL), &verr)
	assert.Equal(t, "url", verr.Field)
}

func TestEntryWritesRefreshCompletion(t *testing.T) {
	s, db, userID := newTestService(t)
	p := mustCreate(t, s, userID, "cv")
	entries := NewEntries(s)

	seedLanguages(t, entries, userID, p.ID, "English")

	var stored database.Profile
	require.NoError(t, db.First(&stored, p.ID).Error)
	assert.Equal(t, 10.0, stored.CompletionPercentage)
}
