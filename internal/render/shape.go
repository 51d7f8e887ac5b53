package render

import (
	"fmt"
	"html/template"
	"strings"

	"cvbuilder/internal/catalog"
	"cvbuilder/internal/database"
)

// Input 版式所需的全部数据，集合必须已按展示顺序排列。
type Input struct {
	Profile  *database.Profile
	Template catalog.Template
	// PhotoDataURI 内联的 data:image/... URI，可为空。
	PhotoDataURI string
}

// Theme 解析后的配色加上模板的辅助色。
type Theme struct {
	Primary    template.CSS
	Secondary  template.CSS
	Text       template.CSS
	Accent     template.CSS
	HeaderBg   template.CSS
	HeaderText template.CSS
}

type Contact struct {
	Kind  string
	Value string
	Href  string
}

type Header struct {
	Name     string
	Title    string
	Location string
	Contacts []Contact
	Photo    template.URL
}

type ExperienceItem struct {
	Title          string
	Company        string
	Location       string
	EmploymentType string
	Period         string
	Description    string
	Achievements   []string
	Technologies   []string
}

type EducationItem struct {
	Degree       string
	FieldOfStudy string
	Institution  string
	Location     string
	Period       string
	Grade        string
	Description  string
}

type SkillItem struct {
	Name         string
	Level        string
	LevelPercent int
	Years        int
}

type SkillGroup struct {
	Category string
	Skills   []SkillItem
}

type CertificationItem struct {
	Name         string
	Issuer       string
	Issued       string
	Expires      string
	CredentialID string
	URL          string
	Description  string
}

type LanguageItem struct {
	Name          string
	Level         string
	Certification string
}

type LinkItem struct {
	Platform string
	URL      string
	Username string
}

// Document 与模板无关的结构，所有版式都渲染它。
type Document struct {
	Layout         string
	Language       string
	Theme          Theme
	Labels         *Labels
	Marker         string
	Header         Header
	Summary        string
	Experiences    []ExperienceItem
	Educations     []EducationItem
	Skills         []SkillItem
	SkillGroups    []SkillGroup
	Certifications []CertificationItem
	Languages      []LanguageItem
	Links          []LinkItem
}

func monthYear(d database.CalendarDate, l *Labels) string {
	t := d.Time()
	return fmt.Sprintf("%s %d", l.Months[t.Month()-1], t.Year())
}

func period(start database.CalendarDate, end *database.CalendarDate, ongoing bool, l *Labels) string {
	from := monthYear(start, l)
	if ongoing || end == nil || end.IsZero() {
		return from + " – " + l.Present
	}
	return from + " – " + monthYear(*end, l)
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func shapeHeader(pi *database.PersonalInfo, photo string) Header {
	if pi == nil {
		return Header{}
	}
	h := Header{
		Name:     pi.FullName,
		Title:    pi.ProfessionalTitle,
		Location: pi.Location,
	}
	if h.Location == "" {
		h.Location = joinNonEmpty(", ", pi.City, pi.Country)
	}
	if pi.Email != "" {
		h.Contacts = append(h.Contacts, Contact{Kind: "email", Value: pi.Email, Href: "mailto:" + pi.Email})
	}
	if pi.Phone != "" {
		h.Contacts = append(h.Contacts, Contact{Kind: "phone", Value: pi.Phone})
	}
	for _, link := range []struct{ kind, url string }{
		{"website", pi.Website}, {"linkedin", pi.LinkedinURL}, {"github", pi.GithubURL},
	} {
		if link.url != "" {
			h.Contacts = append(h.Contacts, Contact{Kind: link.kind, Value: displayURL(link.url), Href: link.url})
		}
	}
	if strings.HasPrefix(photo, "data:image/") {
		h.Photo = template.URL(photo)
	}
	return h
}

func displayURL(u string) string {
	u = strings.TrimPrefix(u, "https://")
	u = strings.TrimPrefix(u, "http://")
	u = strings.TrimPrefix(u, "www.")
	return strings.TrimSuffix(u, "/")
}

// Shape 过滤隐藏条目、格式化日期并将等级枚举映射为文案。
// 可见性只在这里处理一次，所有版式表现一致。
func Shape(in Input) Document {
	p := in.Profile
	layout := layoutName(p.Template)
	lang, labels := labelsFor(p.Language)
	scheme := catalog.ResolveScheme(layout, p.ColorScheme)
	colors := catalog.GetColorsForScheme(scheme)
	secondary := in.Template.Colors.Secondary
	if secondary == "" {
		secondary = colors.Accent
	}

	doc := Document{
		Layout:   layout,
		Language: lang,
		Labels:   labels,
		Theme: Theme{
			Primary:    template.CSS(colors.Primary),
			Secondary:  template.CSS(secondary),
			Text:       template.CSS(colors.Text),
			Accent:     template.CSS(colors.Accent),
			HeaderBg:   template.CSS(colors.HeaderBg),
			HeaderText: template.CSS(colors.HeaderText),
		},
		Header: shapeHeader(p.PersonalInfo, in.PhotoDataURI),
	}
	if p.PersonalInfo != nil {
		doc.Summary = strings.TrimSpace(p.PersonalInfo.Summary)
	}

	for _, e := range p.Experiences {
		if !e.IsVisible {
			continue
		}
		doc.Experiences = append(doc.Experiences, ExperienceItem{
			Title:          e.JobTitle,
			Company:        e.Company,
			Location:       e.Location,
			EmploymentType: e.EmploymentType,
			Period:         period(e.StartDate, e.EndDate, e.IsCurrent, labels),
			Description:    e.Description,
			Achievements:   e.Achievements,
			Technologies:   e.Technologies,
		})
	}

	for _, e := range p.Educations {
		if !e.IsVisible {
			continue
		}
		doc.Educations = append(doc.Educations, EducationItem{
			Degree:       e.Degree,
			FieldOfStudy: e.FieldOfStudy,
			Institution:  e.Institution,
			Location:     e.Location,
			Period:       period(e.StartDate, e.EndDate, e.IsCurrent, labels),
			Grade:        e.Grade,
			Description:  e.Description,
		})
	}

	groupIndex := map[string]int{}
	for _, s := range p.Skills {
		if !s.IsVisible {
			continue
		}
		item := SkillItem{
			Name:         s.Name,
			Level:        lookupLabel(labels.SkillLevels, s.Level),
			LevelPercent: skillLevelPercent[s.Level],
			Years:        s.YearsOfExperience,
		}
		doc.Skills = append(doc.Skills, item)
		i, ok := groupIndex[s.Category]
		if !ok {
			i = len(doc.SkillGroups)
			groupIndex[s.Category] = i
			doc.SkillGroups = append(doc.SkillGroups, SkillGroup{Category: s.Category})
		}
		doc.SkillGroups[i].Skills = append(doc.SkillGroups[i].Skills, item)
	}

	for _, c := range p.Certifications {
		if !c.IsVisible {
			continue
		}
		item := CertificationItem{
			Name:         c.Name,
			Issuer:       c.IssuingOrganization,
			Issued:       monthYear(c.IssueDate, labels),
			CredentialID: c.CredentialID,
			URL:          c.CredentialURL,
			Description:  c.Description,
		}
		if c.ExpirationDate != nil && !c.DoesNotExpire {
			item.Expires = monthYear(*c.ExpirationDate, labels)
		}
		doc.Certifications = append(doc.Certifications, item)
	}

	for _, l := range p.Languages {
		if !l.IsVisible {
			continue
		}
		doc.Languages = append(doc.Languages, LanguageItem{
			Name:          l.Name,
			Level:         lookupLabel(labels.LanguageLevels, l.Level),
			Certification: l.Certification,
		})
	}

	for _, s := range p.SocialNetworks {
		if !s.IsVisible {
			continue
		}
		doc.Links = append(doc.Links, LinkItem{Platform: s.Platform, URL: s.URL, Username: s.Username})
	}

	doc.Marker = marker(doc)
	return doc
}

// marker 隐藏的机器可读行，按固定顺序列出已渲染的板块。
func marker(doc Document) string {
	var sections []string
	for _, s := range []struct {
		name    string
		present bool
	}{
		{"summary", doc.Summary != ""},
		{"experience", len(doc.Experiences) > 0},
		{"education", len(doc.Educations) > 0},
		{"skills", len(doc.Skills) > 0},
		{"certifications", len(doc.Certifications) > 0},
		{"languages", len(doc.Languages) > 0},
		{"links", len(doc.Links) > 0},
	} {
		if s.present {
			sections = append(sections, s.name)
		}
	}
	return fmt.Sprintf("cvbuilder:document;template=%s;lang=%s;sections=%s",
		doc.Layout, doc.Language, strings.Join(sections, ","))
}
