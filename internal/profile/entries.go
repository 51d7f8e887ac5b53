package profile

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"gorm.io/gorm"

	"cvbuilder/internal/database"
)

// EntryStore 是六类可排序子集合共用的读写逻辑。每次访问都会重新校验简历归属。
type EntryStore[T any, P interface {
	*T
	database.OrderedEntry
}] struct {
	db        *gorm.DB
	now       func() time.Time
	normalize func(P, time.Time) error
	order     func(*gorm.DB) *gorm.DB
}

func newEntryStore[T any, P interface {
	*T
	database.OrderedEntry
}](s *Service, normalize func(P, time.Time) error, order func(*gorm.DB) *gorm.DB) *EntryStore[T, P] {
	return &EntryStore[T, P]{db: s.db, now: s.now, normalize: normalize, order: order}
}

// List 按展示顺序返回简历的子项。
func (st *EntryStore[T, P]) List(ctx context.Context, userID, profileID uint) ([]T, error) {
	db := st.db.WithContext(ctx)
	if _, err := owned(db, userID, profileID); err != nil {
		return nil, err
	}
	var out []T
	if err := st.order(db.Where("profile_id = ?", profileID)).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return out, nil
}

func (st *EntryStore[T, P]) load(tx *gorm.DB, profileID, entryID uint) (P, error) {
	entry := P(new(T))
	err := tx.Where("id = ? AND profile_id = ?", entryID, profileID).First(entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load entry: %w", err)
	}
	return entry, nil
}

// Get 返回所属简历的一条子项。
func (st *EntryStore[T, P]) Get(ctx context.Context, userID, profileID, entryID uint) (P, error) {
	db := st.db.WithContext(ctx)
	if _, err := owned(db, userID, profileID); err != nil {
		return nil, err
	}
	return st.load(db, profileID, entryID)
}

// Create 规范化子项并追加到所在序列末尾。
func (st *EntryStore[T, P]) Create(ctx context.Context, userID, profileID uint, entry P) error {
	return st.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := owned(tx, userID, profileID); err != nil {
			return err
		}
		entry.SetEntryID(0)
		entry.SetOwnerProfileID(profileID)
		if err := st.normalize(entry, st.now()); err != nil {
			return err
		}
		next, err := NextDisplayOrder[T](tx, entry.OrderScope())
		if err != nil {
			return err
		}
		entry.SetOrder(next)
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("create entry: %w", err)
		}
		return refreshCompletion(tx, profileID)
	})
}

// Update 通过 apply 修改子项。除非修改使其换到另一序列，否则保持身份与位置，
// 换序列时追加到新序列末尾。
func (st *EntryStore[T, P]) Update(ctx context.Context, userID, profileID, entryID uint, apply func(P) error) (P, error) {
	var entry P
	err := st.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := owned(tx, userID, profileID); err != nil {
			return err
		}
		var err error
		entry, err = st.load(tx, profileID, entryID)
		if err != nil {
			return err
		}
		oldScope := maps.Clone(entry.OrderScope())
		oldOrder := entry.Order()

		if err := apply(entry); err != nil {
			return err
		}
		entry.SetEntryID(entryID)
		entry.SetOwnerProfileID(profileID)
		entry.SetOrder(oldOrder)
		if err := st.normalize(entry, st.now()); err != nil {
			return err
		}

		if !maps.Equal(oldScope, entry.OrderScope()) {
			next, err := NextDisplayOrder[T](tx, entry.OrderScope())
			if err != nil {
				return err
			}
			entry.SetOrder(next)
		}
		err = tx.Model(entry).
			Select("*").
			Omit("id", "profile_id", "created_at").
			Updates(entry).Error
		if err != nil {
			return fmt.Errorf("update entry: %w", err)
		}
		if !maps.Equal(oldScope, entry.OrderScope()) {
			return closeGap[T](tx, oldScope, oldOrder)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Delete 删除子项并补齐 display_order 留下的空位。
func (st *EntryStore[T, P]) Delete(ctx context.Context, userID, profileID, entryID uint) error {
	return st.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := owned(tx, userID, profileID); err != nil {
			return err
		}
		entry, err := st.load(tx, profileID, entryID)
		if err != nil {
			return err
		}
		if err := tx.Delete(entry).Error; err != nil {
			return fmt.Errorf("delete entry: %w", err)
		}
		if err := closeGap[T](tx, entry.OrderScope(), entry.Order()); err != nil {
			return err
		}
		return refreshCompletion(tx, profileID)
	})
}

// Reorder 在事务中按 orderedIDs 的位置设置 display_order。narrow 在 profile_id
// 之外追加序列列（技能分类）。
func (st *EntryStore[T, P]) Reorder(ctx context.Context, userID, profileID uint, orderedIDs []uint, narrow map[string]any) error {
	return st.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := owned(tx, userID, profileID); err != nil {
			return err
		}
		scope := map[string]any{"profile_id": profileID}
		maps.Copy(scope, narrow)
		return reorderScope[T](tx, scope, orderedIDs)
	})
}

// Entries 汇总六种子项的存储。
type Entries struct {
	Educations     *EntryStore[database.Education, *database.Education]
	Experiences    *EntryStore[database.Experience, *database.Experience]
	Skills         *EntryStore[database.Skill, *database.Skill]
	Languages      *EntryStore[database.Language, *database.Language]
	Certifications *EntryStore[database.Certification, *database.Certification]
	SocialNetworks *EntryStore[database.SocialNetwork, *database.SocialNetwork]
}

// NewEntries 基于同一个 Service 构造全部子集合的存取对象。
func NewEntries(s *Service) *Entries {
	return &Entries{
		Educations:     newEntryStore[database.Education](s, NormalizeEducation, orderedEntries),
		Experiences:    newEntryStore[database.Experience](s, NormalizeExperience, orderedEntries),
		Skills:         newEntryStore[database.Skill](s, NormalizeSkill, orderedSkills),
		Languages:      newEntryStore[database.Language](s, NormalizeLanguageEntry, orderedEntries),
		Certifications: newEntryStore[database.Certification](s, NormalizeCertification, orderedEntries),
		SocialNetworks: newEntryStore[database.SocialNetwork](s, NormalizeSocialNetwork, orderedEntries),
	}
}

// ReorderSkills 对单个技能分类排序。category 为 nil 时取第一个 id 的分类，
// 该 id 必须属于此简历。
func (e *Entries) ReorderSkills(ctx context.Context, userID, profileID uint, category *string, orderedIDs []uint) error {
	cat := ""
	switch {
	case category != nil:
		cat = *category
	case len(orderedIDs) > 0:
		first, err := e.Skills.Get(ctx, userID, profileID, orderedIDs[0])
		if errors.Is(err, ErrNotFound) {
			if _, ownErr := owned(e.Skills.db.WithContext(ctx), userID, profileID); ownErr != nil {
				return ownErr
			}
			return invalid("ordered_ids", "some IDs are invalid")
		}
		if err != nil {
			return err
		}
		cat = first.Category
	}
	return e.Skills.Reorder(ctx, userID, profileID, orderedIDs, map[string]any{"category": cat})
}
