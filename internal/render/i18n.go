package render

// Labels 版式输出的本地化文案。
type Labels struct {
	Summary        string
	Experience     string
	Education      string
	Skills         string
	Languages      string
	Certifications string
	Links          string
	Contact        string
	Present        string
	CredentialID   string
	Verify         string
	Expires        string
	NoExpiration   string
	Grade          string
	Technologies   string
	Months         [12]string
	SkillLevels    map[string]string
	LanguageLevels map[string]string
}

var labelsByLanguage = map[string]*Labels{
	"en": {
		Summary:        "Profile",
		Experience:     "Experience",
		Education:      "Education",
		Skills:         "Skills",
		Languages:      "Languages",
		Certifications: "Certifications",
		Links:          "Links",
		Contact:        "Contact",
		Present:        "Present",
		CredentialID:   "Credential ID",
		Verify:         "Verify",
		Expires:        "Expires",
		NoExpiration:   "No expiration",
		Grade:          "Grade",
		Technologies:   "Technologies",
		Months:         [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
		SkillLevels: map[string]string{
			"beginner":     "Beginner",
			"intermediate": "Intermediate",
			"advanced":     "Advanced",
			"expert":       "Expert",
		},
		LanguageLevels: map[string]string{
			"a1":                 "A1 - Beginner",
			"a2":                 "A2 - Elementary",
			"b1":                 "B1 - Intermediate",
			"b2":                 "B2 - Upper intermediate",
			"c1":                 "C1 - Advanced",
			"c2":                 "C2 - Proficient",
			"beginner":           "Beginner",
			"elementary":         "Elementary",
			"intermediate":       "Intermediate",
			"upper_intermediate": "Upper intermediate",
			"advanced":           "Advanced",
			"fluent":             "Fluent",
			"native":             "Native or bilingual",
		},
	},
	"fr": {
		Summary:        "Profil",
		Experience:     "Expérience professionnelle",
		Education:      "Formation",
		Skills:         "Compétences",
		Languages:      "Langues",
		Certifications: "Certifications",
		Links:          "Liens",
		Contact:        "Contact",
		Present:        "Présent",
		CredentialID:   "Identifiant",
		Verify:         "Vérifier",
		Expires:        "Expire",
		NoExpiration:   "Sans expiration",
		Grade:          "Mention",
		Technologies:   "Technologies",
		Months:         [12]string{"janv.", "févr.", "mars", "avr.", "mai", "juin", "juil.", "août", "sept.", "oct.", "nov.", "déc."},
		SkillLevels: map[string]string{
			"beginner":     "Débutant",
			"intermediate": "Intermédiaire",
			"advanced":     "Avancé",
			"expert":       "Expert",
		},
		LanguageLevels: map[string]string{
			"a1":                 "A1 - Débutant",
			"a2":                 "A2 - Élémentaire",
			"b1":                 "B1 - Intermédiaire",
			"b2":                 "B2 - Intermédiaire avancé",
			"c1":                 "C1 - Avancé",
			"c2":                 "C2 - Maîtrise",
			"beginner":           "Débutant",
			"elementary":         "Élémentaire",
			"intermediate":       "Intermédiaire",
			"upper_intermediate": "Intermédiaire avancé",
			"advanced":           "Avancé",
			"fluent":             "Courant",
			"native":             "Langue maternelle",
		},
	},
	"es": {
		Summary:        "Perfil",
		Experience:     "Experiencia",
		Education:      "Educación",
		Skills:         "Habilidades",
		Languages:      "Idiomas",
		Certifications: "Certificaciones",
		Links:          "Enlaces",
		Contact:        "Contacto",
		Present:        "Actualidad",
		CredentialID:   "ID de credencial",
		Verify:         "Verificar",
		Expires:        "Vence",
		NoExpiration:   "Sin vencimiento",
		Grade:          "Calificación",
		Technologies:   "Tecnologías",
		Months:         [12]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sept", "oct", "nov", "dic"},
		SkillLevels: map[string]string{
			"beginner":     "Principiante",
			"intermediate": "Intermedio",
			"advanced":     "Avanzado",
			"expert":       "Experto",
		},
		LanguageLevels: map[string]string{
			"a1":                 "A1 - Principiante",
			"a2":                 "A2 - Elemental",
			"b1":                 "B1 - Intermedio",
			"b2":                 "B2 - Intermedio alto",
			"c1":                 "C1 - Avanzado",
			"c2":                 "C2 - Maestría",
			"beginner":           "Principiante",
			"elementary":         "Elemental",
			"intermediate":       "Intermedio",
			"upper_intermediate": "Intermedio alto",
			"advanced":           "Avanzado",
			"fluent":             "Fluido",
			"native":             "Nativo o bilingüe",
		},
	},
	"de": {
		Summary:        "Profil",
		Experience:     "Berufserfahrung",
		Education:      "Ausbildung",
		Skills:         "Kenntnisse",
		Languages:      "Sprachen",
		Certifications: "Zertifizierungen",
		Links:          "Links",
		Contact:        "Kontakt",
		Present:        "Heute",
		CredentialID:   "Nachweis-ID",
		Verify:         "Prüfen",
		Expires:        "Gültig bis",
		NoExpiration:   "Unbefristet",
		Grade:          "Note",
		Technologies:   "Technologien",
		Months:         [12]string{"Jan.", "Feb.", "März", "Apr.", "Mai", "Juni", "Juli", "Aug.", "Sept.", "Okt.", "Nov.", "Dez."},
		SkillLevels: map[string]string{
			"beginner":     "Grundkenntnisse",
			"intermediate": "Gute Kenntnisse",
			"advanced":     "Sehr gute Kenntnisse",
			"expert":       "Experte",
		},
		LanguageLevels: map[string]string{
			"a1":                 "A1 - Anfänger",
			"a2":                 "A2 - Grundlegende Kenntnisse",
			"b1":                 "B1 - Fortgeschritten",
			"b2":                 "B2 - Selbständig",
			"c1":                 "C1 - Fachkundig",
			"c2":                 "C2 - Exzellent",
			"beginner":           "Anfänger",
			"elementary":         "Grundkenntnisse",
			"intermediate":       "Mittelstufe",
			"upper_intermediate": "Gehobene Mittelstufe",
			"advanced":           "Fortgeschritten",
			"fluent":             "Fließend",
			"native":             "Muttersprache",
		},
	},
}

func labelsFor(lang string) (string, *Labels) {
	if l, ok := labelsByLanguage[lang]; ok {
		return lang, l
	}
	return "en", labelsByLanguage["en"]
}

// skillLevelPercent 决定技能条长度，未知等级不画条。
var skillLevelPercent = map[string]int{
	"beginner":     25,
	"intermediate": 50,
	"advanced":     75,
	"expert":       100,
}

func lookupLabel(table map[string]string, value string) string {
	if label, ok := table[value]; ok {
		return label
	}
	return value
}
