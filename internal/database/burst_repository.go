package database

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// BurstRepository provides database operations for burst records
type BurstRepository struct {
	db *gorm.DB
}

// NewBurstRepository creates a new repository instance
func NewBurstRepository(db *gorm.DB) *BurstRepository {
	return &BurstRepository{db: db}
}

// GetByID finds a burst by its ID
func (r *BurstRepository) GetByID(id string) (*Burst, error) {
	var burst Burst
	err := r.db.Where("id = ?", id).First(&burst).Error
	if err != nil {
		return nil, err
	}
	return &burst, nil
}

// FindByPayloadHash returns every burst carrying the payload with the given SHA-256
func (r *BurstRepository) FindByPayloadHash(hash string) ([]Burst, error) {
	var bursts []Burst
	err := r.db.Where("payload_sha256 = ?", hash).
		Order("created_at ASC").
		Find(&bursts).Error
	return bursts, err
}

// ListByFile returns the bursts written to file in stream order
func (r *BurstRepository) ListByFile(file string) ([]Burst, error) {
	var bursts []Burst
	err := r.db.Where("file = ?", file).
		Order("sample_offset ASC").
		Find(&bursts).Error
	return bursts, err
}

// Create stores a single burst record
func (r *BurstRepository) Create(burst *Burst) error {
	if burst == nil {
		return fmt.Errorf("burst cannot be nil")
	}

	burst.SanitizeFields()
	if !burst.IsValid() {
		return fmt.Errorf("burst is not valid: id=%s, samples=%d", burst.ID, burst.Samples)
	}
	if burst.CreatedAt.IsZero() {
		burst.CreatedAt = time.Now()
	}

	return r.db.Create(burst).Error
}

// CreateBatch stores multiple burst records in a transaction
func (r *BurstRepository) CreateBatch(bursts []Burst) error {
	if len(bursts) == 0 {
		return nil
	}

	// Process in batches to avoid memory issues
	const batchSize = 1000

	for i := 0; i < len(bursts); i += batchSize {
		end := min(i+batchSize, len(bursts))
		batch := bursts[i:end]

		for j := range batch {
			batch[j].SanitizeFields()
			if !batch[j].IsValid() {
				return fmt.Errorf("burst %d is not valid: id=%s", i+j, batch[j].ID)
			}
			if batch[j].CreatedAt.IsZero() {
				batch[j].CreatedAt = time.Now()
			}
		}

		err := r.db.Transaction(func(tx *gorm.DB) error {
			return tx.Create(&batch).Error
		})
		if err != nil {
			return fmt.Errorf("batch insert failed at batch starting at index %d: %w", i, err)
		}
	}

	return nil
}

// Count returns the total number of bursts in the archive
func (r *BurstRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&Burst{}).Count(&count).Error
	return count, err
}

// DeleteByFile removes the records of every burst written to file
func (r *BurstRepository) DeleteByFile(file string) (int64, error) {
	result := r.db.Where("file = ?", file).Delete(&Burst{})
	return result.RowsAffected, result.Error
}

// GetStatistics returns basic archive statistics
func (r *BurstRepository) GetStatistics() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	// Total count
	count, err := r.Count()
	if err != nil {
		return nil, err
	}
	stats["total_bursts"] = count

	var totals struct {
		Samples int64
	}
	err = r.db.Model(&Burst{}).Select("COALESCE(SUM(samples), 0) as samples").Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	stats["total_samples"] = totals.Samples

	// Most recent burst
	var latest Burst
	err = r.db.Order("created_at DESC").First(&latest).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err == nil {
		stats["last_created"] = latest.CreatedAt
	}

	// Files by burst count
	var fileStats []struct {
		File  string `json:"file"`
		Count int    `json:"count"`
	}
	err = r.db.Model(&Burst{}).
		Select("file, COUNT(*) as count").
		Where("file != ''").
		Group("file").
		Order("count DESC").
		Limit(10).
		Find(&fileStats).Error
	if err != nil {
		return nil, err
	}
	stats["files"] = fileStats

	return stats, nil
}

// HealthCheck verifies the repository is working correctly
func (r *BurstRepository) HealthCheck() error {
	var count int64
	return r.db.Model(&Burst{}).Count(&count).Error
}
