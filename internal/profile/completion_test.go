package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cvbuilder/internal/database"
)

func profileWith(pi *database.PersonalInfo, edu, exp, skills, langs, certs, social int) *database.Profile {
	return &database.Profile{
		PersonalInfo:   pi,
		Educations:     make([]database.Education, edu),
		Experiences:    make([]database.Experience, exp),
		Skills:         make([]database.Skill, skills),
		Languages:      make([]database.Language, langs),
		Certifications: make([]database.Certification, certs),
		SocialNetworks: make([]database.SocialNetwork, social),
	}
}

func TestCalculateCompletionPercentage_Example(t *testing.T) {
	pi := &database.PersonalInfo{FullName: "Ada Lovelace", Email: "ada@example.com", Phone: "+44 1234"}
	p := profileWith(pi, 1, 2, 5, 0, 0, 1)

	assert.Equal(t, 75.0, CalculateCompletionPercentage(p))

	missing := GetMissingSections(p)
	sections := make([]string, 0, len(missing))
	for _, m := range missing {
		sections = append(sections, m.Section)
	}
	assert.Equal(t, []string{SectionLanguages, SectionCertifications, SectionSocialNetworks}, sections)
	assert.Equal(t, "Add 1 more social network (minimum 2)", missing[2].Message)
}

func TestCalculateCompletionPercentage_EmptyProfile(t *testing.T) {
	p := profileWith(nil, 0, 0, 0, 0, 0, 0)

	assert.Equal(t, 0.0, CalculateCompletionPercentage(p))
	missing := GetMissingSections(p)
	require.Len(t, missing, 7)
	assert.Equal(t, SectionPersonalInfo, missing[0].Section)
	assert.Contains(t, missing[0].Message, "full name, email, phone")
	assert.Equal(t, "Add 3 more skills (minimum 3)", missing[3].Message)
}

func TestCalculateCompletionPercentage_FullProfile(t *testing.T) {
	pi := &database.PersonalInfo{FullName: "A", Email: "a@b.c", Phone: "1"}
	p := profileWith(pi, 4, 4, 30, 5, 5, 9)

	assert.Equal(t, 100.0, CalculateCompletionPercentage(p))
	assert.Empty(t, GetMissingSections(p))
}

func TestCalculateCompletionPercentage_PartialCredit(t *testing.T) {
	pi := &database.PersonalInfo{FullName: "A"}
	p := profileWith(pi, 0, 0, 1, 0, 0, 0)

	// 20/3 + 15/3 = 11.666..
	assert.Equal(t, 11.67, CalculateCompletionPercentage(p))
	missing := GetMissingSections(p)
	assert.Contains(t, missing[0].Message, "email, phone")
	assert.NotContains(t, missing[0].Message, "full name")
}

func TestScore_SectionsRespectCaps(t *testing.T) {
	for skills := 0; skills <= 10; skills++ {
		for social := 0; social <= 4; social++ {
			for fields := 0; fields <= 3; fields++ {
				c := Counts{PersonalFields: fields, Skills: skills, SocialNetworks: social, Educations: 1}
				score := Score(c)
				assert.GreaterOrEqual(t, score, 0.0)
				assert.LessOrEqual(t, score, 100.0)

				skillsOnly := Score(Counts{Skills: skills})
				assert.LessOrEqual(t, skillsOnly, 15.0)

				// 这里工作经历、语言和证书始终为空
				missing := MissingSectionsOf(c)
				expected := 3
				if fields < 3 {
					expected++
				}
				if skills < 3 {
					expected++
				}
				if social < 2 {
					expected++
				}
				assert.Len(t, missing, expected)
			}
		}
	}
}

func TestWeightsSumToHundred(t *testing.T) {
	total := 0.0
	for _, r := range sectionRules {
		total += r.weight
	}
	assert.Equal(t, 100.0, total)
}

func TestPersonalInfoCompletion(t *testing.T) {
	assert.Equal(t, 0, PersonalInfoCompletion(nil))
	assert.Equal(t, 30, PersonalInfoCompletion(&database.PersonalInfo{
		FullName: "A", Email: "a@b.c", Phone: "1",
	}))
	assert.Equal(t, 100, PersonalInfoCompletion(&database.PersonalInfo{
		FullName: "A", ProfessionalTitle: "Engineer", Email: "a@b.c", Phone: "1",
		Address: "1 Road", City: "Paris", Country: "FR", Summary: "hi",
		LinkedinURL: "https://linkedin.com/in/a", Website: "https://a.dev",
	}))
}
