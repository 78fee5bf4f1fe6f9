package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BlockedIP is a persistent (hard) blocklist entry. ExpiresAt of nil means
// a permanent block; a non-nil ExpiresAt in the past must be treated as
// non-blocking by readers (enforced at read time, per design).
type BlockedIP struct {
	ID        string     `json:"id" gorm:"primaryKey;type:uuid"`
	IPAddress string     `json:"ip_address" gorm:"column:ip_address;type:varchar(45);uniqueIndex;not null"`
	Reason    *string    `json:"reason,omitempty" gorm:"column:reason;type:text"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" gorm:"column:expires_at"`
	CreatedAt time.Time  `json:"created_at" gorm:"column:created_at"`
}

func (BlockedIP) TableName() string { return "blocked_ips" }

// BeforeCreate assigns a UUID primary key when one hasn't been set.
func (b *BlockedIP) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// Expired reports whether the block has a past expiry.
func (b *BlockedIP) Expired(now time.Time) bool {
	return b.ExpiresAt != nil && b.ExpiresAt.Before(now)
}
