package export

import (
	"strings"

	"cvbuilder/internal/database"
)

// Validation 导出前的轻量检查结果，从不失败，
// 不完整之处以警告形式报告。
type Validation struct {
	IsValid   bool     `json:"isValid"`
	Warnings  []string `json:"warnings"`
	CanExport bool     `json:"canExport"`
}

// ValidateForExport 检查已加载的简历，不调用渲染器。
func ValidateForExport(p *database.Profile) Validation {
	warnings := make([]string, 0, 3)

	pi := p.PersonalInfo
	switch {
	case pi == nil:
		warnings = append(warnings, "Personal information is missing")
	default:
		if strings.TrimSpace(pi.FullName) == "" {
			warnings = append(warnings, "Full name is missing")
		}
		if strings.TrimSpace(pi.Email) == "" {
			warnings = append(warnings, "Email is missing")
		}
	}

	if len(p.Educations)+len(p.Experiences)+len(p.Skills) == 0 {
		warnings = append(warnings, "Profile has no education, experience or skills and may be too sparse to export")
	}

	return Validation{
		IsValid:   len(warnings) == 0,
		Warnings:  warnings,
		CanExport: true,
	}
}
