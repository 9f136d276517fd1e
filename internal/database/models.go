package database

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Burst represents one generated burst and where its samples were written
type Burst struct {
	ID                string    `gorm:"primarykey;size:36" json:"id"`
	Sequence          int       `gorm:"index" json:"sequence"`
	Header            string    `gorm:"index;size:16" json:"header"`
	PayloadSHA256     string    `gorm:"column:payload_sha256;index;size:64" json:"payload_sha256"`
	FilterDelay       int       `json:"filter_delay"`
	ExcessBandwidth   float64   `json:"excess_bandwidth"`
	Prototype         string    `gorm:"size:16" json:"prototype"`
	Samples           int       `json:"samples"`
	File              string    `gorm:"index;size:255" json:"file"`
	SampleOffset      int64     `gorm:"column:sample_offset" json:"sample_offset"`
	MeanPower         float64   `json:"mean_power"`
	PAPR              float64   `gorm:"column:papr" json:"papr"`
	OccupiedBandwidth float64   `json:"occupied_bandwidth"`
	CreatedAt         time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Burst) TableName() string {
	return "bursts"
}

// NewBurst creates a record for a burst built from header and payload
func NewBurst(sequence int, header, payload []byte) *Burst {
	sum := sha256.Sum256(payload)
	return &Burst{
		ID:            uuid.New().String(),
		Sequence:      sequence,
		Header:        hex.EncodeToString(header),
		PayloadSHA256: hex.EncodeToString(sum[:]),
	}
}

// String returns a formatted string representation
func (b Burst) String() string {
	result := fmt.Sprintf("#%d %s header=%s", b.Sequence, b.ID, b.Header)

	if b.File != "" {
		result += fmt.Sprintf(" [%s@%d]", b.File, b.SampleOffset)
	}

	return result
}

// IsValid checks if the burst record has required fields
func (b Burst) IsValid() bool {
	if _, err := uuid.Parse(b.ID); err != nil {
		return false
	}
	return b.Samples > 0 && len(b.PayloadSHA256) == 2*sha256.Size
}

// SanitizeFields normalizes hex fields
func (b *Burst) SanitizeFields() {
	b.Header = strings.ToLower(strings.TrimSpace(b.Header))
	b.PayloadSHA256 = strings.ToLower(strings.TrimSpace(b.PayloadSHA256))
	b.File = strings.TrimSpace(b.File)
}
