package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AttackLog is an immutable record of a single request decision: every
// forwarded or rejected request gets exactly one row, written before the
// response is sent.
type AttackLog struct {
	ID           string     `json:"id" gorm:"primaryKey;type:uuid"`
	IPAddress    string     `json:"ip_address" gorm:"column:ip_address;type:varchar(45);not null"`
	Method       string     `json:"method" gorm:"column:method;type:varchar(10);not null"`
	Endpoint     string     `json:"endpoint" gorm:"column:endpoint;type:text;not null"`
	Headers      JSONMap    `json:"headers" gorm:"column:headers;type:text"`
	RequestBody  *string    `json:"request_body,omitempty" gorm:"column:request_body;type:text"`
	ThreatScore  int        `json:"threat_score" gorm:"column:threat_score;not null;default:0"`
	ActionTaken  string     `json:"action_taken" gorm:"column:action_taken;type:varchar(20);not null"`
	ThreatTypes  StringList `json:"threat_types" gorm:"column:threat_types;type:text"`
	CreatedAt    time.Time  `json:"created_at" gorm:"column:created_at;index"`
}

func (AttackLog) TableName() string { return "attack_logs" }

// BeforeCreate assigns a UUID primary key when one hasn't been set.
func (a *AttackLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Decision outcomes recorded in ActionTaken.
const (
	ActionAllow = "allow"
)

// IPBlockedCategory is the synthetic threat type recorded when a request is
// rejected purely by blocklist membership rather than rule matching.
const IPBlockedCategory = "IP_BLOCKED"
