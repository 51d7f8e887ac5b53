package profile

import (
	"fmt"
	"math"
	"strings"

	"gorm.io/gorm"

	"cvbuilder/internal/database"
)

// 缺失提示中使用的板块名称。
const (
	SectionPersonalInfo   = "personal_info"
	SectionEducation      = "education"
	SectionExperience     = "experience"
	SectionSkills         = "skills"
	SectionLanguages      = "languages"
	SectionCertifications = "certifications"
	SectionSocialNetworks = "social_networks"
)

// sectionRule 同时决定得分与提示：每个板块得分为
// weight * min(count, threshold) / threshold。
type sectionRule struct {
	section   string
	weight    float64
	threshold int
	hint      func(missing int, c Counts) string
}

var sectionRules = []sectionRule{
	{SectionPersonalInfo, 20, 3, func(_ int, c Counts) string {
		return "Complete your personal information: add " + strings.Join(c.MissingPersonalFields, ", ")
	}},
	{SectionEducation, 15, 1, func(int, Counts) string { return "Add at least one education entry" }},
	{SectionExperience, 20, 1, func(int, Counts) string { return "Add at least one work experience" }},
	{SectionSkills, 15, 3, func(n int, _ Counts) string {
		return fmt.Sprintf("Add %d more %s (minimum 3)", n, plural(n, "skill", "skills"))
	}},
	{SectionLanguages, 10, 1, func(int, Counts) string { return "Add at least one language" }},
	{SectionCertifications, 10, 1, func(int, Counts) string { return "Add at least one certification" }},
	{SectionSocialNetworks, 10, 2, func(n int, _ Counts) string {
		return fmt.Sprintf("Add %d more %s (minimum 2)", n, plural(n, "social network", "social networks"))
	}},
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// Counts 评分输入。忽略可见性，隐藏条目同样计数。
type Counts struct {
	PersonalFields        int
	MissingPersonalFields []string
	Educations            int
	Experiences           int
	Skills                int
	Languages             int
	Certifications        int
	SocialNetworks        int
}

func (c Counts) of(section string) int {
	switch section {
	case SectionPersonalInfo:
		return c.PersonalFields
	case SectionEducation:
		return c.Educations
	case SectionExperience:
		return c.Experiences
	case SectionSkills:
		return c.Skills
	case SectionLanguages:
		return c.Languages
	case SectionCertifications:
		return c.Certifications
	case SectionSocialNetworks:
		return c.SocialNetworks
	}
	return 0
}

func personalRequired(pi *database.PersonalInfo) (filled int, missing []string) {
	var fullName, email, phone string
	if pi != nil {
		fullName, email, phone = pi.FullName, pi.Email, pi.Phone
	}
	for _, f := range []struct{ name, value string }{
		{"full name", fullName}, {"email", email}, {"phone", phone},
	} {
		if strings.TrimSpace(f.value) != "" {
			filled++
		} else {
			missing = append(missing, f.name)
		}
	}
	return filled, missing
}

// CountsOf 从完整加载的简历得到评分输入。
func CountsOf(p *database.Profile) Counts {
	filled, missing := personalRequired(p.PersonalInfo)
	return Counts{
		PersonalFields:        filled,
		MissingPersonalFields: missing,
		Educations:            len(p.Educations),
		Experiences:           len(p.Experiences),
		Skills:                len(p.Skills),
		Languages:             len(p.Languages),
		Certifications:        len(p.Certifications),
		SocialNetworks:        len(p.SocialNetworks),
	}
}

// loadCounts 用 COUNT 查询得到同样的输入，不预加载整棵数据。
func loadCounts(tx *gorm.DB, profileID uint) (Counts, error) {
	var pi database.PersonalInfo
	res := tx.Where("profile_id = ?", profileID).Limit(1).Find(&pi)
	if res.Error != nil {
		return Counts{}, fmt.Errorf("load personal info: %w", res.Error)
	}
	var piPtr *database.PersonalInfo
	if res.RowsAffected > 0 {
		piPtr = &pi
	}
	filled, missing := personalRequired(piPtr)
	c := Counts{PersonalFields: filled, MissingPersonalFields: missing}

	for _, item := range []struct {
		model any
		dst   *int
	}{
		{&database.Education{}, &c.Educations},
		{&database.Experience{}, &c.Experiences},
		{&database.Skill{}, &c.Skills},
		{&database.Language{}, &c.Languages},
		{&database.Certification{}, &c.Certifications},
		{&database.SocialNetwork{}, &c.SocialNetworks},
	} {
		var n int64
		if err := tx.Model(item.model).Where("profile_id = ?", profileID).Count(&n).Error; err != nil {
			return Counts{}, fmt.Errorf("count entries: %w", err)
		}
		*item.dst = int(n)
	}
	return c, nil
}

// Score 返回 [0, 100] 内的加权完成度，保留两位小数。
func Score(c Counts) float64 {
	total := 0.0
	for _, r := range sectionRules {
		n := min(c.of(r.section), r.threshold)
		total += r.weight * float64(n) / float64(r.threshold)
	}
	return math.Round(total*100) / 100
}

// CalculateCompletionPercentage 为完整加载的简历评分。
func CalculateCompletionPercentage(p *database.Profile) float64 {
	return Score(CountsOf(p))
}

// MissingSection 未拿满分板块的补全提示。
type MissingSection struct {
	Section  string  `json:"section"`
	Message  string  `json:"message"`
	Weight   float64 `json:"weight"`
	Current  int     `json:"current"`
	Required int     `json:"required"`
}

// MissingSectionsOf 为每个未拿满分的板块给出一条提示。
func MissingSectionsOf(c Counts) []MissingSection {
	out := make([]MissingSection, 0, len(sectionRules))
	for _, r := range sectionRules {
		n := c.of(r.section)
		if n >= r.threshold {
			continue
		}
		out = append(out, MissingSection{
			Section:  r.section,
			Message:  r.hint(r.threshold-n, c),
			Weight:   r.weight,
			Current:  n,
			Required: r.threshold,
		})
	}
	return out
}

// GetMissingSections 列出完整加载的简历的提示。
func GetMissingSections(p *database.Profile) []MissingSection {
	return MissingSectionsOf(CountsOf(p))
}

// Completion 完成度接口的返回体。
type Completion struct {
	Percentage      float64          `json:"percentage"`
	MissingSections []MissingSection `json:"missingSections"`
}

// personalInfoUIFields 个人信息进度条依据的十个字段，
// 与 Score 使用的三字段门槛相互独立。
func personalInfoUIFields(pi *database.PersonalInfo) []string {
	return []string{
		pi.FullName, pi.ProfessionalTitle, pi.Email, pi.Phone, pi.Address,
		pi.City, pi.Country, pi.Summary, pi.LinkedinURL, pi.Website,
	}
}

// PersonalInfoCompletion 返回十个界面字段的填写比例，取整百分比。
func PersonalInfoCompletion(pi *database.PersonalInfo) int {
	if pi == nil {
		return 0
	}
	fields := personalInfoUIFields(pi)
	filled := 0
	for _, v := range fields {
		if strings.TrimSpace(v) != "" {
			filled++
		}
	}
	return int(math.Round(float64(filled) / float64(len(fields)) * 100))
}
