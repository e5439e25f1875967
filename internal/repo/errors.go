package repo

import "gorm.io/gorm"

// ErrNotFound is returned when a requested record does not exist.
// Alias of gorm.ErrRecordNotFound so callers may use either with errors.Is.
var ErrNotFound = gorm.ErrRecordNotFound
