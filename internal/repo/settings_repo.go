// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the single-row notification settings
// (authorization status, badge count) and the category registry.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-hydration-backend/internal/domain"
)

const settingsRowID = 1

// GetSettings returns the settings row, creating it with defaults on first use.
func GetSettings(ctx context.Context, db *gorm.DB) (*domain.NotificationSettings, error) {
	var s domain.NotificationSettings
	err := db.WithContext(ctx).
		Where(domain.NotificationSettings{ID: settingsRowID}).
		Attrs(domain.NotificationSettings{Authorization: string(domain.AuthorizationNotDetermined)}).
		FirstOrCreate(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SetAuthorization persists the authorization status.
func SetAuthorization(ctx context.Context, db *gorm.DB, status domain.AuthorizationStatus) error {
	if _, err := GetSettings(ctx, db); err != nil {
		return err
	}
	return db.WithContext(ctx).
		Model(&domain.NotificationSettings{}).
		Where("id = ?", settingsRowID).
		Updates(map[string]any{
			"authorization": string(status),
			"updated_at":    time.Now().UTC(),
		}).Error
}

// IncrementBadge adds delta to the badge count and returns the new value.
func IncrementBadge(ctx context.Context, db *gorm.DB, delta int) (int, error) {
	var out int
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := GetSettings(ctx, tx); err != nil {
			return err
		}
		if err := tx.Model(&domain.NotificationSettings{}).
			Where("id = ?", settingsRowID).
			Updates(map[string]any{
				"badge_count": gorm.Expr("badge_count + ?", delta),
				"updated_at":  time.Now().UTC(),
			}).Error; err != nil {
			return err
		}
		return tx.Raw("SELECT badge_count FROM notification_settings WHERE id = ?", settingsRowID).
			Scan(&out).Error
	})
	return out, err
}

// SetBadge overwrites the badge count.
func SetBadge(ctx context.Context, db *gorm.DB, n int) error {
	if _, err := GetSettings(ctx, db); err != nil {
		return err
	}
	return db.WithContext(ctx).
		Model(&domain.NotificationSettings{}).
		Where("id = ?", settingsRowID).
		Updates(map[string]any{
			"badge_count": n,
			"updated_at":  time.Now().UTC(),
		}).Error
}

// ReplaceCategories swaps the registered category set for cats.
func ReplaceCategories(ctx context.Context, db *gorm.DB, cats []domain.CategoryRecord) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&domain.CategoryRecord{}).Error; err != nil {
			return err
		}
		if len(cats) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&cats).Error
	})
}

// ListCategories returns all registered categories ordered by ID.
func ListCategories(ctx context.Context, db *gorm.DB) ([]domain.CategoryRecord, error) {
	var out []domain.CategoryRecord
	err := db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

// GetCategory fetches one category by ID, or ErrNotFound.
func GetCategory(ctx context.Context, db *gorm.DB, id string) (*domain.CategoryRecord, error) {
	var c domain.CategoryRecord
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}
