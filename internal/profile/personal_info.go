package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"cvbuilder/internal/database"
)

func findPersonalInfo(tx *gorm.DB, profileID uint) (*database.PersonalInfo, error) {
	var pi database.PersonalInfo
	err := tx.Where("profile_id = ?", profileID).First(&pi).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load personal info: %w", err)
	}
	return &pi, nil
}

// PersonalInfo 返回所属简历的个人信息。
func (s *Service) PersonalInfo(ctx context.Context, userID, profileID uint) (*database.PersonalInfo, error) {
	db := s.db.WithContext(ctx)
	if _, err := owned(db, userID, profileID); err != nil {
		return nil, err
	}
	return findPersonalInfo(db, profileID)
}

// UpsertPersonalInfo 通过 apply 创建或修改个人信息，
// 然后刷新简历完成度。
func (s *Service) UpsertPersonalInfo(ctx context.Context, userID, profileID uint, apply func(*database.PersonalInfo) error) (*database.PersonalInfo, error) {
	var result *database.PersonalInfo
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := owned(tx, userID, profileID); err != nil {
			return err
		}
		pi, err := findPersonalInfo(tx, profileID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if pi == nil {
			pi = &database.PersonalInfo{ProfileID: profileID}
		}

		id, photoKey, createdAt := pi.ID, pi.PhotoKey, pi.CreatedAt
		if err := apply(pi); err != nil {
			return err
		}
		pi.ID, pi.ProfileID, pi.PhotoKey, pi.CreatedAt = id, profileID, photoKey, createdAt
		trimPersonalInfo(pi)
		if err := validateStruct(pi); err != nil {
			return err
		}

		if err := tx.Save(pi).Error; err != nil {
			return fmt.Errorf("save personal info: %w", err)
		}
		result = pi
		return refreshCompletion(tx, profileID)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func trimPersonalInfo(pi *database.PersonalInfo) {
	for _, f := range []*string{
		&pi.FullName, &pi.ProfessionalTitle, &pi.Email, &pi.Phone, &pi.Location,
		&pi.Address, &pi.City, &pi.PostalCode, &pi.Country, &pi.Nationality,
		&pi.Summary, &pi.Website, &pi.LinkedinURL, &pi.GithubURL,
	} {
		*f = strings.TrimSpace(*f)
	}
}

// PersonalInfoCompletion 返回十字段界面比例，无个人信息时为 0。
func (s *Service) PersonalInfoCompletion(ctx context.Context, userID, profileID uint) (int, error) {
	pi, err := s.PersonalInfo(ctx, userID, profileID)
	if errors.Is(err, ErrNotFound) {
		if _, ownErr := owned(s.db.WithContext(ctx), userID, profileID); ownErr != nil {
			return 0, ownErr
		}
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return PersonalInfoCompletion(pi), nil
}

// SetPhotoKey 记录新的照片对象 key，并返回被替换的旧 key。
func (s *Service) SetPhotoKey(ctx context.Context, userID, profileID uint, key string) (string, error) {
	var previous string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := owned(tx, userID, profileID); err != nil {
			return err
		}
		pi, err := findPersonalInfo(tx, profileID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if pi == nil {
			pi = &database.PersonalInfo{ProfileID: profileID}
		}
		previous = pi.PhotoKey
		pi.PhotoKey = key
		if err := tx.Save(pi).Error; err != nil {
			return fmt.Errorf("save photo key: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return previous, nil
}
