package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-hydration-backend/internal/domain"
)

// ErrDuplicate is returned when a live record already holds (scope, key).
var ErrDuplicate = errors.New("duplicate")

// GetIdempotency returns the live record for (scope, key) at now, or
// ErrNotFound when the key is blank, unknown or expired.
func GetIdempotency(ctx context.Context, db *gorm.DB, scope, key string, now time.Time) (*domain.Idempotency, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrNotFound
	}
	var rec domain.Idempotency
	err := db.WithContext(ctx).
		Where("scope = ? AND key = ? AND expires_at > ?", scope, key, now).
		Take(&rec).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrNotFound
	case err != nil:
		return nil, err
	}
	return &rec, nil
}

// CreateIdempotency records that key produced entryID. A stale row for the
// same (scope, key) is dropped in the same transaction; a live one yields
// ErrDuplicate.
func CreateIdempotency(ctx context.Context, db *gorm.DB, scope, key, entryID string, status int, ttl time.Duration) (*domain.Idempotency, error) {
	now := time.Now().UTC()
	rec := domain.NewIdempotency(uuid.NewString(), scope, key, entryID, status, now, ttl)

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stale := tx.Where("scope = ? AND key = ? AND expires_at <= ?", scope, key, now)
		if err := stale.Delete(&domain.Idempotency{}).Error; err != nil {
			return err
		}
		return tx.Create(&rec).Error
	})
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// BindIdempotency points (scope, key) at entryID with a fresh TTL, updating
// the live row when one exists and inserting otherwise. It serves keys whose
// original entry has since been removed.
func BindIdempotency(ctx context.Context, db *gorm.DB, scope, key, entryID string, status int, ttl time.Duration) (*domain.Idempotency, error) {
	now := time.Now().UTC()
	rec := domain.NewIdempotency(uuid.NewString(), scope, key, entryID, status, now, ttl)

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stale := tx.Where("scope = ? AND key = ? AND expires_at <= ?", scope, key, now)
		if err := stale.Delete(&domain.Idempotency{}).Error; err != nil {
			return err
		}
		res := tx.Model(&domain.Idempotency{}).
			Where("scope = ? AND key = ?", scope, key).
			Updates(map[string]any{"entry_id": entryID, "status": status, "expires_at": rec.ExpiresAt})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			var bound domain.Idempotency
			if err := tx.Where("scope = ? AND key = ?", scope, key).Take(&bound).Error; err != nil {
				return err
			}
			rec = bound
			return nil
		}
		return tx.Create(&rec).Error
	})
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// PurgeExpiredIdempotency deletes every record expired at now and reports
// how many rows went.
func PurgeExpiredIdempotency(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.Idempotency{})
	return res.RowsAffected, res.Error
}

// isUniqueViolation matches gorm's translated error as well as the plain
// text the pure-Go sqlite driver returns.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") || strings.Contains(msg, "constraint failed: unique")
}
