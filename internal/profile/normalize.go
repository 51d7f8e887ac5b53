package profile

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"cvbuilder/internal/database"
)

// 保存前的显式规范化步骤：slug 生成、日期校验、派生标记同步与 display_order 分配。

// SupportedLanguages 渲染器支持的展示语言。
var SupportedLanguages = []string{"en", "fr", "es", "de"}

// DefaultLanguage 语言为空或不支持时使用。
const DefaultLanguage = "en"

// NormalizeLanguage 将任意 BCP 47 标签归约为 SupportedLanguages 之一。
func NormalizeLanguage(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultLanguage
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return DefaultLanguage
	}
	base, _ := tag.Base()
	for _, l := range SupportedLanguages {
		if base.String() == l {
			return l
		}
	}
	return DefaultLanguage
}

func StripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Slugify 转小写、去重音，并用单个连字符连接字母数字片段。
func Slugify(name string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(StripAccents(name)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// UniqueSlug 返回 name 的 slug，必要时追加 -1、-2 等后缀直到不与其他简历重复。
func UniqueSlug(tx *gorm.DB, name string, excludeID uint) (string, error) {
	base := Slugify(name)
	if base == "" {
		base = "profile"
	}
	candidate := base
	for i := 1; ; i++ {
		var count int64
		q := tx.Model(&database.Profile{}).Where("slug = ?", candidate)
		if excludeID != 0 {
			q = q.Where("id <> ?", excludeID)
		}
		if err := q.Count(&count).Error; err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// ValidateDateRange 检查 end 不早于 start；futureBound 为真时
// end 不得晚于 now 之后一年。
func ValidateDateRange(startField, endField string, start database.CalendarDate, end *database.CalendarDate, futureBound bool, now time.Time) error {
	if start.IsZero() {
		return invalid(startField, "is required")
	}
	if end == nil || end.IsZero() {
		return nil
	}
	if end.Before(start) {
		return invalid(endField, fmt.Sprintf("must not be before %s", startField))
	}
	if futureBound {
		limit := database.DateOf(now.AddDate(1, 0, 0))
		if end.After(limit) {
			return invalid(endField, "must not be more than one year in the future")
		}
	}
	return nil
}

// clearZero 将显式的零值日期视为无日期。
func clearZero(d *database.CalendarDate) *database.CalendarDate {
	if d == nil || d.IsZero() {
		return nil
	}
	return d
}

// NormalizeEducation 校验日期并保持 IsCurrent 与 EndDate 一致。
func NormalizeEducation(e *database.Education, now time.Time) error {
	e.Institution = strings.TrimSpace(e.Institution)
	if err := validateStruct(e); err != nil {
		return err
	}
	e.EndDate = clearZero(e.EndDate)
	if err := ValidateDateRange("start_date", "end_date", e.StartDate, e.EndDate, true, now); err != nil {
		return err
	}
	e.IsCurrent = e.EndDate == nil
	return nil
}

// NormalizeExperience 校验日期并保持 IsCurrent 与 EndDate 一致。
func NormalizeExperience(e *database.Experience, now time.Time) error {
	e.JobTitle = strings.TrimSpace(e.JobTitle)
	e.Company = strings.TrimSpace(e.Company)
	if err := validateStruct(e); err != nil {
		return err
	}
	e.EndDate = clearZero(e.EndDate)
	if err := ValidateDateRange("start_date", "end_date", e.StartDate, e.EndDate, true, now); err != nil {
		return err
	}
	e.IsCurrent = e.EndDate == nil
	e.Achievements = compactStrings(e.Achievements)
	e.Technologies = compactStrings(e.Technologies)
	return nil
}

// NormalizeCertification 只检查先后顺序，证书可在很久以后才过期。
func NormalizeCertification(c *database.Certification, now time.Time) error {
	c.Name = strings.TrimSpace(c.Name)
	if err := validateStruct(c); err != nil {
		return err
	}
	c.ExpirationDate = clearZero(c.ExpirationDate)
	if err := ValidateDateRange("issue_date", "expiration_date", c.IssueDate, c.ExpirationDate, false, now); err != nil {
		return err
	}
	c.DoesNotExpire = c.ExpirationDate == nil
	return nil
}

func NormalizeSkill(s *database.Skill, _ time.Time) error {
	s.Name = strings.TrimSpace(s.Name)
	s.Category = strings.TrimSpace(s.Category)
	s.Level = strings.ToLower(strings.TrimSpace(s.Level))
	if s.YearsOfExperience < 0 {
		return invalid("years_of_experience", "must not be negative")
	}
	return validateStruct(s)
}

func NormalizeLanguageEntry(l *database.Language, _ time.Time) error {
	l.Name = strings.TrimSpace(l.Name)
	l.Level = strings.ToLower(strings.TrimSpace(l.Level))
	return validateStruct(l)
}

func NormalizeSocialNetwork(s *database.SocialNetwork, _ time.Time) error {
	s.Platform = strings.ToLower(strings.TrimSpace(s.Platform))
	s.URL = strings.TrimSpace(s.URL)
	return validateStruct(s)
}

func compactStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// NextDisplayOrder 返回序列内 max(display_order)+1，空序列返回 0。
func NextDisplayOrder[T any](tx *gorm.DB, scope map[string]any) (int, error) {
	var next int
	err := tx.Model(new(T)).
		Where(scope).
		Select("COALESCE(MAX(display_order), -1) + 1").
		Scan(&next).Error
	if err != nil {
		return 0, fmt.Errorf("next display order: %w", err)
	}
	return next, nil
}
