package render

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cvbuilder/internal/catalog"
	"cvbuilder/internal/database"
)

func date(y, m, d int) database.CalendarDate {
	return database.NewCalendarDate(y, time.Month(m), d)
}

func fixture(template string, visible bool) *database.Profile {
	end := date(2019, 6, 30)
	expires := date(2027, 1, 1)
	return &database.Profile{
		ID:          7,
		Name:        "Backend CV",
		Template:    template,
		ColorScheme: "green",
		Language:    "en",
		PersonalInfo: &database.PersonalInfo{
			FullName:          "Ada Lovelace",
			ProfessionalTitle: "Software Engineer",
			Email:             "ada@example.com",
			Phone:             "+44 20 1234",
			City:              "London",
			Country:           "UK",
			Summary:           "Builds analytical engines.",
			LinkedinURL:       "https://www.linkedin.com/in/ada/",
		},
		Experiences: []database.Experience{
			{JobTitle: "Staff Engineer", Company: "Engines Ltd", StartDate: date(2020, 1, 1), IsCurrent: true,
				Achievements: []string{"Shipped the difference engine"}, Technologies: []string{"Go", "SQL"}, IsVisible: visible},
			{JobTitle: "Engineer", Company: "Looms Inc", StartDate: date(2017, 3, 1), EndDate: &end, IsVisible: visible},
		},
		Educations: []database.Education{
			{Institution: "University of London", Degree: "BSc", FieldOfStudy: "Mathematics",
				StartDate: date(2013, 9, 1), EndDate: &end, Grade: "First", IsVisible: visible},
		},
		Skills: []database.Skill{
			{Name: "Go", Category: "Backend", Level: "expert", IsVisible: visible},
			{Name: "PostgreSQL", Category: "Backend", Level: "advanced", IsVisible: visible},
			{Name: "CSS", Category: "Frontend", Level: "wizard", IsVisible: visible},
		},
		Languages: []database.Language{
			{Name: "English", Level: "native", IsVisible: visible},
			{Name: "Klingon", Level: "conversational", IsVisible: visible},
		},
		Certifications: []database.Certification{
			{Name: "CKA", IssuingOrganization: "CNCF", IssueDate: date(2022, 2, 1), ExpirationDate: &expires,
				CredentialID: "ABC-123", CredentialURL: "https://verify.example.com/abc", IsVisible: visible},
		},
		SocialNetworks: []database.SocialNetwork{
			{Platform: "github", URL: "https://github.com/ada", Username: "ada", IsVisible: visible},
		},
	}
}

func renderDoc(t *testing.T, p *database.Profile) (string, *goquery.Document) {
	t.Helper()
	meta, err := ResolveTemplate(p.Template)
	if err != nil {
		meta, err = catalog.Get(catalog.DefaultTemplate)
		require.NoError(t, err)
	}
	html, err := Render(Input{Profile: p, Template: meta})
	require.NoError(t, err)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return html, doc
}

func TestRender_EveryLayoutIsDeterministic(t *testing.T) {
	for _, layout := range Layouts {
		t.Run(layout, func(t *testing.T) {
			first, _ := renderDoc(t, fixture(layout, true))
			second, _ := renderDoc(t, fixture(layout, true))
			assert.Equal(t, first, second)
		})
	}
}

func TestRender_MarkerAppearsOnce(t *testing.T) {
	for _, layout := range Layouts {
		t.Run(layout, func(t *testing.T) {
			html, doc := renderDoc(t, fixture(layout, true))
			assert.Equal(t, 1, strings.Count(html, "cvbuilder:document"))
			require.Equal(t, 1, doc.Find(".cv-marker").Length())
			assert.Equal(t,
				"cvbuilder:document;template="+layout+";lang=en;sections=summary,experience,education,skills,certifications,languages,links",
				doc.Find(".cv-marker").Text())
		})
	}
}

func TestRender_HiddenEntriesNeverRender(t *testing.T) {
	for _, layout := range Layouts {
		t.Run(layout, func(t *testing.T) {
			html, doc := renderDoc(t, fixture(layout, false))

			assert.Zero(t, doc.Find(".entry").Length())
			for _, section := range []string{"experience", "education", "skills", "certifications", "languages", "links"} {
				assert.Zero(t, doc.Find(".section-"+section).Length(), section)
			}
			for _, hidden := range []string{"Engines Ltd", "University of London", "PostgreSQL", "CKA", "Klingon", "github.com/ada"} {
				assert.NotContains(t, html, hidden)
			}
			assert.Contains(t, doc.Find(".name").Text(), "Ada Lovelace")
			assert.Equal(t, 1, doc.Find(".section-summary").Length())
		})
	}
}

func TestRender_SectionsAndLabels(t *testing.T) {
	for _, layout := range Layouts {
		t.Run(layout, func(t *testing.T) {
			html, doc := renderDoc(t, fixture(layout, true))

			assert.Equal(t, 2, doc.Find(".entry-experience").Length())
			assert.Equal(t, 1, doc.Find(".entry-education").Length())
			assert.Equal(t, 3, doc.Find(".skill").Length())
			assert.Contains(t, html, "Jan 2020 – Present")
			assert.Contains(t, html, "Mar 2017 – Jun 2019")
			assert.Contains(t, html, "Native or bilingual")
			assert.Contains(t, html, "conversational")
			assert.Contains(t, html, "#059669")
			assert.Contains(t, html, "London, UK")
			assert.Contains(t, html, `href="mailto:ada@example.com"`)
		})
	}
}

func TestRender_LocalizesDates(t *testing.T) {
	p := fixture("classic", true)
	p.Language = "fr"
	html, _ := renderDoc(t, p)
	assert.Contains(t, html, "janv. 2020 – Présent")
	assert.Contains(t, html, "Langue maternelle")
	assert.Contains(t, html, `lang="fr"`)

	p.Language = "de"
	html, _ = renderDoc(t, p)
	assert.Contains(t, html, "Jan. 2020 – Heute")
}

func TestRender_UnknownLayoutFallsBackToModern(t *testing.T) {
	p := fixture("holographic", true)
	meta, err := catalog.Get("modern")
	require.NoError(t, err)

	html, err := Render(Input{Profile: p, Template: meta})
	require.NoError(t, err)
	assert.Contains(t, html, "template=modern;")
}

func TestRender_MissingTemplateMetadataIsConfigError(t *testing.T) {
	_, err := Render(Input{Profile: fixture("brutalist", true)})
	assert.True(t, IsConfigError(err))

	_, err = ResolveTemplate("brutalist")
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.ErrorIs(t, err, catalog.ErrTemplateNotFound)

	meta, err := ResolveTemplate("")
	require.NoError(t, err)
	assert.Equal(t, catalog.DefaultTemplate, meta.Name)
}

func TestRender_InlinesPhotoDataURI(t *testing.T) {
	p := fixture("creative", true)
	meta, err := catalog.Get("creative")
	require.NoError(t, err)

	html, err := Render(Input{Profile: p, Template: meta, PhotoDataURI: "data:image/png;base64,iVBORw0KGgo="})
	require.NoError(t, err)
	assert.Contains(t, html, `src="data:image/png;base64,iVBORw0KGgo="`)

	html, err = Render(Input{Profile: p, Template: meta, PhotoDataURI: "https://tracker.example.com/pixel.png"})
	require.NoError(t, err)
	assert.NotContains(t, html, "tracker.example.com")
}

func TestShape_EmptyProfile(t *testing.T) {
	doc := Shape(Input{Profile: &database.Profile{Template: "minimal"}})
	assert.Equal(t, "minimal", doc.Layout)
	assert.Equal(t, "cvbuilder:document;template=minimal;lang=en;sections=", doc.Marker)
	assert.Empty(t, doc.Experiences)
	assert.Equal(t, "#374151", string(doc.Theme.Primary))
}
