// Package profile 基于 gorm 实现简历归属、可排序子项集合
// 以及完成度评分。
package profile

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cvbuilder/internal/catalog"
	"cvbuilder/internal/database"
)

// Service 负责简历（Profile）本身的读写，以及默认简历、计数器等跨行不变量。
type Service struct {
	db          *gorm.DB
	now         func() time.Time
	maxProfiles int
}

// Option 配置 Service。
type Option func(*Service)

// WithClock 替换 time.Now，供测试使用。
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMaxProfiles 限制每个用户的简历数量，0 表示不限。
func WithMaxProfiles(n int) Option {
	return func(s *Service) { s.maxProfiles = n }
}

// NewService 构造 Service。
func NewService(db *gorm.DB, opts ...Option) *Service {
	s := &Service{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB 暴露底层连接，供子项存储共用。
func (s *Service) DB() *gorm.DB {
	return s.db
}

// CreateInput 创建简历时接受的字段。
type CreateInput struct {
	Name        string `json:"name" binding:"required,max=255"`
	Template    string `json:"template"`
	ColorScheme string `json:"color_scheme"`
	Language    string `json:"language"`
	IsPublic    bool   `json:"is_public"`
	IsDefault   bool   `json:"is_default"`
}

// UpdateInput 可选的简历字段，nil 表示不变。
type UpdateInput struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=255"`
	Template    *string `json:"template"`
	ColorScheme *string `json:"color_scheme"`
	Language    *string `json:"language"`
	IsPublic    *bool   `json:"is_public"`
	IsDefault   *bool   `json:"is_default"`
}

func checkTemplate(name string) error {
	if _, err := catalog.Get(name); err != nil {
		if errors.Is(err, catalog.ErrTemplateNotFound) {
			return invalid("template", fmt.Sprintf("unknown template %q", name))
		}
		return err
	}
	return nil
}

func checkColorScheme(id string) error {
	if err := catalog.ValidateColorScheme(id); err != nil {
		return invalid("color_scheme", fmt.Sprintf("unknown color scheme %q", id))
	}
	return nil
}

// owned 仅在简历属于 userID 时加载。
func owned(tx *gorm.DB, userID, profileID uint) (*database.Profile, error) {
	var p database.Profile
	err := tx.Where("id = ? AND user_id = ?", profileID, userID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return &p, nil
}

func orderedEntries(db *gorm.DB) *gorm.DB {
	return db.Order("display_order ASC").Order("id ASC")
}

func orderedSkills(db *gorm.DB) *gorm.DB {
	return db.Order("category ASC").Order("display_order ASC").Order("id ASC")
}

// preloadGraph 按展示顺序加载个人信息与六种子项。
func preloadGraph(q *gorm.DB, visibleOnly bool) *gorm.DB {
	scope := func(order func(*gorm.DB) *gorm.DB) func(*gorm.DB) *gorm.DB {
		return func(db *gorm.DB) *gorm.DB {
			if visibleOnly {
				db = db.Where("is_visible = ?", true)
			}
			return order(db)
		}
	}
	return q.Preload("PersonalInfo").
		Preload("Educations", scope(orderedEntries)).
		Preload("Experiences", scope(orderedEntries)).
		Preload("Skills", scope(orderedSkills)).
		Preload("Languages", scope(orderedEntries)).
		Preload("Certifications", scope(orderedEntries)).
		Preload("SocialNetworks", scope(orderedEntries))
}

// List 返回用户的简历，默认简历在前，其余按最近更新排序。
func (s *Service) List(ctx context.Context, userID uint) ([]database.Profile, error) {
	var profiles []database.Profile
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC").
		Order("updated_at DESC").
		Order("id DESC").
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

// Create 新建简历；用户的第一份简历自动成为默认简历。
func (s *Service) Create(ctx context.Context, userID uint, in CreateInput) (*database.Profile, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, invalid("name", "is required")
	}
	if in.Template == "" {
		in.Template = catalog.DefaultTemplate
	}
	if err := checkTemplate(in.Template); err != nil {
		return nil, err
	}
	if err := checkColorScheme(in.ColorScheme); err != nil {
		return nil, err
	}
	if in.ColorScheme == "" {
		in.ColorScheme = catalog.ResolveScheme(in.Template, "")
	}

	var created database.Profile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&database.Profile{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return fmt.Errorf("count profiles: %w", err)
		}
		if s.maxProfiles > 0 && count >= int64(s.maxProfiles) {
			return ErrLimitReached
		}

		slug, err := UniqueSlug(tx, in.Name, 0)
		if err != nil {
			return err
		}

		created = database.Profile{
			UserID:      userID,
			Name:        in.Name,
			Slug:        slug,
			Template:    in.Template,
			ColorScheme: in.ColorScheme,
			Language:    NormalizeLanguage(in.Language),
			IsPublic:    in.IsPublic,
			IsDefault:   count == 0 || in.IsDefault,
		}
		if err := tx.Create(&created).Error; err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		if created.IsDefault && count > 0 {
			return unsetSiblingDefaults(tx, userID, created.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Get 返回不含子项的简历行。
func (s *Service) Get(ctx context.Context, userID, profileID uint) (*database.Profile, error) {
	return owned(s.db.WithContext(ctx), userID, profileID)
}

// GetFull 加载完整数据并刷新缓存的完成度。
func (s *Service) GetFull(ctx context.Context, userID, profileID uint) (*database.Profile, error) {
	db := s.db.WithContext(ctx)
	if _, err := owned(db, userID, profileID); err != nil {
		return nil, err
	}
	var p database.Profile
	if err := preloadGraph(db, false).First(&p, profileID).Error; err != nil {
		return nil, fmt.Errorf("load profile graph: %w", err)
	}

	score := CalculateCompletionPercentage(&p)
	if score != p.CompletionPercentage {
		// UpdateColumn 不改 updated_at，读操作不能影响默认简历的顺延。
		if err := db.Model(&p).UpdateColumn("completion_percentage", score).Error; err != nil {
			return nil, fmt.Errorf("store completion: %w", err)
		}
		p.CompletionPercentage = score
	}
	return &p, nil
}

// Completion 返回简历的得分与缺失提示。
func (s *Service) Completion(ctx context.Context, userID, profileID uint) (Completion, error) {
	p, err := s.GetFull(ctx, userID, profileID)
	if err != nil {
		return Completion{}, err
	}
	return Completion{
		Percentage:      p.CompletionPercentage,
		MissingSections: GetMissingSections(p),
	}, nil
}

// Update 应用 in 中非 nil 的字段，修改名称会重新生成 slug。
func (s *Service) Update(ctx context.Context, userID, profileID uint, in UpdateInput) (*database.Profile, error) {
	var p *database.Profile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		p, err = owned(tx, userID, profileID)
		if err != nil {
			return err
		}

		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return invalid("name", "is required")
			}
			if name != p.Name {
				slug, err := UniqueSlug(tx, name, p.ID)
				if err != nil {
					return err
				}
				p.Name, p.Slug = name, slug
			}
		}
		if in.Template != nil {
			if err := checkTemplate(*in.Template); err != nil {
				return err
			}
			p.Template = *in.Template
		}
		if in.ColorScheme != nil {
			if err := checkColorScheme(*in.ColorScheme); err != nil {
				return err
			}
			p.ColorScheme = *in.ColorScheme
		}
		if in.Language != nil {
			p.Language = NormalizeLanguage(*in.Language)
		}
		if in.IsPublic != nil {
			p.IsPublic = *in.IsPublic
		}
		if in.IsDefault != nil {
			p.IsDefault = *in.IsDefault
		}

		if err := tx.Save(p).Error; err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		if p.IsDefault {
			return unsetSiblingDefaults(tx, userID, p.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func unsetSiblingDefaults(tx *gorm.DB, userID, keepID uint) error {
	err := tx.Model(&database.Profile{}).
		Where("user_id = ? AND id <> ? AND is_default = ?", userID, keepID, true).
		UpdateColumn("is_default", false).Error
	if err != nil {
		return fmt.Errorf("unset default profiles: %w", err)
	}
	return nil
}

// SetDefault 在同一事务中先取消其他简历的默认标记，再设置目标简历。
func (s *Service) SetDefault(ctx context.Context, userID, profileID uint) (*database.Profile, error) {
	var p *database.Profile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		p, err = owned(tx, userID, profileID)
		if err != nil {
			return err
		}
		if err := unsetSiblingDefaults(tx, userID, p.ID); err != nil {
			return err
		}
		if err := tx.Model(p).Update("is_default", true).Error; err != nil {
			return fmt.Errorf("set default profile: %w", err)
		}
		p.IsDefault = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Delete 删除简历及其全部子项。删除默认简历时顺延为最近更新的另一份。
// 返回被删除的行，便于调用方释放其引用的存储对象。
func (s *Service) Delete(ctx context.Context, userID, profileID uint) (*database.Profile, error) {
	var deleted database.Profile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := owned(tx, userID, profileID)
		if err != nil {
			return err
		}
		if err := tx.Preload("PersonalInfo").First(&deleted, p.ID).Error; err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		if err := tx.Select(clause.Associations).Delete(p).Error; err != nil {
			return fmt.Errorf("delete profile: %w", err)
		}
		if !p.IsDefault {
			return nil
		}

		var next database.Profile
		err = tx.Where("user_id = ?", userID).
			Order("updated_at DESC").
			Order("id DESC").
			First(&next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("find profile to promote: %w", err)
		}
		if err := tx.Model(&next).UpdateColumn("is_default", true).Error; err != nil {
			return fmt.Errorf("promote default profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

// RecordExport 导出成功后增加下载计数。
func (s *Service) RecordExport(ctx context.Context, profileID uint) (*database.Profile, error) {
	return s.recordExport(ctx, profileID, nil)
}

// RecordArchivedExport 在同一条语句中增加下载计数并保存归档对象 key，
// 保证一次归档导出只计数一次。
func (s *Service) RecordArchivedExport(ctx context.Context, profileID uint, key string) (*database.Profile, error) {
	return s.recordExport(ctx, profileID, map[string]any{"last_export_key": key})
}

func (s *Service) recordExport(ctx context.Context, profileID uint, extra map[string]any) (*database.Profile, error) {
	db := s.db.WithContext(ctx)
	columns := map[string]any{
		"download_count":   gorm.Expr("download_count + 1"),
		"last_exported_at": s.now().UTC(),
	}
	maps.Copy(columns, extra)
	res := db.Model(&database.Profile{}).Where("id = ?", profileID).UpdateColumns(columns)
	if res.Error != nil {
		return nil, fmt.Errorf("record export: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	var p database.Profile
	if err := db.First(&p, profileID).Error; err != nil {
		return nil, fmt.Errorf("reload profile: %w", err)
	}
	return &p, nil
}

// Public 按 slug 返回公开简历（仅可见条目），并增加浏览次数。
func (s *Service) Public(ctx context.Context, slug string) (*database.Profile, error) {
	db := s.db.WithContext(ctx)
	var p database.Profile
	err := preloadGraph(db, true).
		Where("slug = ? AND is_public = ?", slug, true).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load public profile: %w", err)
	}
	if err := db.Model(&p).UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error; err != nil {
		return nil, fmt.Errorf("count view: %w", err)
	}
	p.ViewCount++
	return &p, nil
}

// refreshCompletion 根据行数重新计算缓存的完成度。
func refreshCompletion(tx *gorm.DB, profileID uint) error {
	counts, err := loadCounts(tx, profileID)
	if err != nil {
		return err
	}
	err = tx.Model(&database.Profile{}).
		Where("id = ?", profileID).
		UpdateColumn("completion_percentage", Score(counts)).Error
	if err != nil {
		return fmt.Errorf("store completion: %w", err)
	}
	return nil
}
