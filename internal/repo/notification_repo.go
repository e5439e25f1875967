// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for pending
// notification requests.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They follow the "thin repository"
// approach: no trigger arithmetic or authorization rules live here, only
// persistence and query composition.
//
// Functions:
//
//   - SaveNotification(ctx, db, rec) -> error
//     Inserts rec, or replaces every column of an existing row with the same ID.
//
//   - ListNotifications(ctx, db) -> []domain.NotificationRecord, error
//     All pending requests, soonest first (NextFireAt ASC, ID ASC).
//
//   - DueNotifications(ctx, db, now, limit) -> []domain.NotificationRecord, error
//     Requests with NextFireAt <= now, soonest first.
//
//   - RescheduleNotification(ctx, db, id, next) -> error
//     Moves a repeating request to its next occurrence; ErrNotFound if gone.
//
//   - DeleteNotifications(ctx, db, ids...) / DeleteAllNotifications(ctx, db)
//     Remove by id or in bulk; both report the number of rows deleted.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-hydration-backend/internal/domain"
)

// SaveNotification upserts rec keyed by ID.
func SaveNotification(ctx context.Context, db *gorm.DB, rec *domain.NotificationRecord) error {
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	rec.NextFireAt = rec.NextFireAt.UTC()
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(rec).Error
}

// GetNotification fetches one request by ID, or ErrNotFound.
func GetNotification(ctx context.Context, db *gorm.DB, id string) (*domain.NotificationRecord, error) {
	var rec domain.NotificationRecord
	if err := db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListNotifications returns all pending requests ordered by next fire time.
func ListNotifications(ctx context.Context, db *gorm.DB) ([]domain.NotificationRecord, error) {
	var out []domain.NotificationRecord
	err := db.WithContext(ctx).
		Order("next_fire_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// DueNotifications returns up to limit requests due at or before now.
// limit <= 0 means no limit. Times are stored and compared in UTC.
func DueNotifications(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]domain.NotificationRecord, error) {
	var out []domain.NotificationRecord
	q := db.WithContext(ctx).
		Where("next_fire_at <= ?", now.UTC()).
		Order("next_fire_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// RescheduleNotification sets the next fire time of a request.
func RescheduleNotification(ctx context.Context, db *gorm.DB, id string, next time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.NotificationRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"next_fire_at": next.UTC(),
			"updated_at":   time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteNotifications removes the requests with the given IDs. Unknown IDs
// are ignored.
func DeleteNotifications(ctx context.Context, db *gorm.DB, ids ...string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).Where("id IN ?", ids).Delete(&domain.NotificationRecord{})
	return res.RowsAffected, res.Error
}

// DeleteAllNotifications removes every pending request.
func DeleteAllNotifications(ctx context.Context, db *gorm.DB) (int64, error) {
	res := db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&domain.NotificationRecord{})
	return res.RowsAffected, res.Error
}
