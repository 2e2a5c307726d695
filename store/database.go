package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StorageEntry represents a row in the database
type StorageEntry struct {
	Origin string `gorm:"primaryKey"`
	Key    string `gorm:"primaryKey"`
	Value  string
	Size   int
}

func (StorageEntry) TableName() string {
	return "storage_entries"
}

// PostgreSQL error classes that mean the server has no room left.
var quotaSQLStates = map[string]bool{
	"53100": true, // disk_full
	"53200": true, // out_of_memory
	"54000": true, // program_limit_exceeded
}

type DatabaseStore struct {
	db     *gorm.DB
	origin string
	quota  int
}

// NewDatabaseStore opens the database and scopes all keys to origin.
// A quota > 0 caps the characters an origin may hold.
func NewDatabaseStore(dsn, origin string, quota int) (*DatabaseStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-create table if needed
	if err := db.AutoMigrate(&StorageEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &DatabaseStore{db: db, origin: origin, quota: quota}, nil
}

// Get retrieves a value from database
func (ds *DatabaseStore) Get(key string) (string, error) {
	var entry StorageEntry

	result := ds.db.Where("origin = ? AND key = ?", ds.origin, key).First(&entry)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	if result.Error != nil {
		return "", result.Error
	}

	return entry.Value, nil
}

// Set upserts a value. With a quota configured, the origin's usage is
// checked and written in one transaction holding a per-origin lock.
func (ds *DatabaseStore) Set(key, value string) error {
	entry := StorageEntry{
		Origin: ds.origin,
		Key:    key,
		Value:  value,
		Size:   Len(key) + Len(value),
	}

	err := ds.db.Transaction(func(tx *gorm.DB) error {
		if ds.quota > 0 {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", ds.origin).Error; err != nil {
				return err
			}

			var used int
			err := tx.Model(&StorageEntry{}).
				Where("origin = ? AND key <> ?", ds.origin, key).
				Select("COALESCE(SUM(size), 0)::bigint").
				Scan(&used).Error
			if err != nil {
				return err
			}
			if used+entry.Size > ds.quota {
				return fmt.Errorf("%w: setting %q needs %d of %d characters", ErrQuotaExceeded, key, used+entry.Size, ds.quota)
			}
		}

		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&entry).Error
	})
	if isPostgresQuota(err) {
		return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
	}
	return err
}

// Delete removes a key from database
func (ds *DatabaseStore) Delete(key string) error {
	result := ds.db.Delete(&StorageEntry{}, "origin = ? AND key = ?", ds.origin, key)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return nil
}

// Exists checks if a key exists in database
func (ds *DatabaseStore) Exists(key string) bool {
	var count int64
	ds.db.Model(&StorageEntry{}).
		Where("origin = ? AND key = ?", ds.origin, key).
		Count(&count)

	return count > 0
}

// Close closes the database connection
func (ds *DatabaseStore) Close() error {
	sqlDB, err := ds.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func isPostgresQuota(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return quotaSQLStates[pgErr.Code]
}
