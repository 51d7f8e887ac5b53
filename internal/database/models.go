package database

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User 表示系统中的账号信息。
type User struct {
	gorm.Model
	Email        string    `gorm:"uniqueIndex;size:255" json:"email"`
	Name         string    `gorm:"size:255" json:"name"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	Profiles     []Profile `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Profile 表示用户的一份简历配置（模板、配色与全部子集合）。
type Profile struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	UserID               uint       `gorm:"index;not null" json:"user_id"`
	Name                 string     `gorm:"size:255;not null" json:"name"`
	Slug                 string     `gorm:"size:255;uniqueIndex" json:"slug"`
	Template             string     `gorm:"size:64;not null" json:"template"`
	ColorScheme          string     `gorm:"size:64" json:"color_scheme"`
	Language             string     `gorm:"size:16" json:"language"`
	IsDefault            bool       `gorm:"not null" json:"is_default"`
	IsPublic             bool       `gorm:"not null" json:"is_public"`
	CompletionPercentage float64    `gorm:"not null" json:"completion_percentage"`
	ViewCount            int        `gorm:"not null" json:"view_count"`
	DownloadCount        int        `gorm:"not null" json:"download_count"`
	LastExportedAt       *time.Time `json:"last_exported_at"`
	LastExportKey        string     `gorm:"size:512" json:"-"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`

	PersonalInfo   *PersonalInfo   `gorm:"constraint:OnDelete:CASCADE" json:"personal_info,omitempty"`
	Educations     []Education     `gorm:"constraint:OnDelete:CASCADE" json:"educations,omitempty"`
	Experiences    []Experience    `gorm:"constraint:OnDelete:CASCADE" json:"experiences,omitempty"`
	Skills         []Skill         `gorm:"constraint:OnDelete:CASCADE" json:"skills,omitempty"`
	Languages      []Language      `gorm:"constraint:OnDelete:CASCADE" json:"languages,omitempty"`
	Certifications []Certification `gorm:"constraint:OnDelete:CASCADE" json:"certifications,omitempty"`
	SocialNetworks []SocialNetwork `gorm:"constraint:OnDelete:CASCADE" json:"social_networks,omitempty"`
}

// PersonalInfo 与 Profile 一对一。
type PersonalInfo struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	ProfileID         uint      `gorm:"uniqueIndex;not null" json:"profile_id"`
	FullName          string    `gorm:"size:255" json:"full_name"`
	ProfessionalTitle string    `gorm:"size:255" json:"professional_title"`
	Email             string    `gorm:"size:255" json:"email" binding:"omitempty,email"`
	Phone             string    `gorm:"size:64" json:"phone"`
	Location          string    `gorm:"size:255" json:"location"`
	Address           string    `gorm:"size:255" json:"address"`
	City              string    `gorm:"size:128" json:"city"`
	PostalCode        string    `gorm:"size:32" json:"postal_code"`
	Country           string    `gorm:"size:128" json:"country"`
	Nationality       string    `gorm:"size:128" json:"nationality"`
	Summary           string    `gorm:"type:text" json:"summary"`
	Website           string    `gorm:"size:512" json:"website" binding:"omitempty,url"`
	LinkedinURL       string    `gorm:"size:512" json:"linkedin_url" binding:"omitempty,url"`
	GithubURL         string    `gorm:"size:512" json:"github_url" binding:"omitempty,url"`
	PhotoKey          string    `gorm:"size:255" json:"-"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Education 带日期、可排序的 Profile 子项。
type Education struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	ProfileID    uint          `gorm:"index;not null" json:"profile_id"`
	Institution  string        `gorm:"size:255;not null" json:"institution" binding:"required"`
	Degree       string        `gorm:"size:255" json:"degree"`
	FieldOfStudy string        `gorm:"size:255" json:"field_of_study"`
	Location     string        `gorm:"size:255" json:"location"`
	StartDate    CalendarDate  `gorm:"not null" json:"start_date"`
	EndDate      *CalendarDate `json:"end_date"`
	IsCurrent    bool          `gorm:"not null" json:"is_current"`
	Grade        string        `gorm:"size:64" json:"grade"`
	Description  string        `gorm:"type:text" json:"description"`
	DisplayOrder int           `gorm:"not null;index" json:"display_order"`
	IsVisible    bool          `gorm:"not null" json:"is_visible"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Experience 带日期、可排序的 Profile 子项。
type Experience struct {
	ID             uint                        `gorm:"primaryKey" json:"id"`
	ProfileID      uint                        `gorm:"index;not null" json:"profile_id"`
	JobTitle       string                      `gorm:"size:255;not null" json:"job_title" binding:"required"`
	Company        string                      `gorm:"size:255;not null" json:"company" binding:"required"`
	Location       string                      `gorm:"size:255" json:"location"`
	EmploymentType string                      `gorm:"size:64" json:"employment_type"`
	StartDate      CalendarDate                `gorm:"not null" json:"start_date"`
	EndDate        *CalendarDate               `json:"end_date"`
	IsCurrent      bool                        `gorm:"not null" json:"is_current"`
	Description    string                      `gorm:"type:text" json:"description"`
	Achievements   datatypes.JSONSlice[string] `json:"achievements"`
	Technologies   datatypes.JSONSlice[string] `json:"technologies"`
	DisplayOrder   int                         `gorm:"not null;index" json:"display_order"`
	IsVisible      bool                        `gorm:"not null" json:"is_visible"`
	CreatedAt      time.Time                   `json:"created_at"`
	UpdatedAt      time.Time                   `json:"updated_at"`
}

// Skill 按简历与分类排序。
type Skill struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	ProfileID         uint      `gorm:"index;not null" json:"profile_id"`
	Name              string    `gorm:"size:128;not null" json:"name" binding:"required"`
	Category          string    `gorm:"size:128;not null;index" json:"category"`
	Level             string    `gorm:"size:32" json:"level"`
	YearsOfExperience int       `json:"years_of_experience"`
	DisplayOrder      int       `gorm:"not null;index" json:"display_order"`
	IsVisible         bool      `gorm:"not null" json:"is_visible"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Language 语言能力条目。
type Language struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ProfileID     uint      `gorm:"index;not null" json:"profile_id"`
	Name          string    `gorm:"size:128;not null" json:"name" binding:"required"`
	Level         string    `gorm:"size:32" json:"level"`
	Certification string    `gorm:"size:255" json:"certification"`
	DisplayOrder  int       `gorm:"not null;index" json:"display_order"`
	IsVisible     bool      `gorm:"not null" json:"is_visible"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Certification 带颁发日期与可选的过期日期。
type Certification struct {
	ID                  uint          `gorm:"primaryKey" json:"id"`
	ProfileID           uint          `gorm:"index;not null" json:"profile_id"`
	Name                string        `gorm:"size:255;not null" json:"name" binding:"required"`
	IssuingOrganization string        `gorm:"size:255" json:"issuing_organization"`
	IssueDate           CalendarDate  `gorm:"not null" json:"issue_date"`
	ExpirationDate      *CalendarDate `json:"expiration_date"`
	DoesNotExpire       bool          `gorm:"not null" json:"does_not_expire"`
	CredentialID        string        `gorm:"size:255" json:"credential_id"`
	CredentialURL       string        `gorm:"size:512" json:"credential_url" binding:"omitempty,url"`
	Description         string        `gorm:"type:text" json:"description"`
	DisplayOrder        int           `gorm:"not null;index" json:"display_order"`
	IsVisible           bool          `gorm:"not null" json:"is_visible"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// SocialNetwork 外部主页链接。
type SocialNetwork struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ProfileID    uint      `gorm:"index;not null" json:"profile_id"`
	Platform     string    `gorm:"size:64;not null" json:"platform" binding:"required"`
	URL          string    `gorm:"size:512;not null" json:"url" binding:"required,url"`
	Username     string    `gorm:"size:128" json:"username"`
	DisplayOrder int       `gorm:"not null;index" json:"display_order"`
	IsVisible    bool      `gorm:"not null" json:"is_visible"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Models 列出应用管理的全部表，父表在前。
func Models() []any {
	return []any{
		&User{},
		&Profile{},
		&PersonalInfo{},
		&Education{},
		&Experience{},
		&Skill{},
		&Language{},
		&Certification{},
		&SocialNetwork{},
	}
}
