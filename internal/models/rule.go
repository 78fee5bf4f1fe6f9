package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Rule is a single pattern rule evaluated by the inspection engine. Pattern
// is matched case-insensitively against the request corpus; Action is
// advisory only (see inspect.Inspect) and is never consulted to make the
// block/allow decision — the threshold is.
type Rule struct {
	ID        string `json:"id" gorm:"primaryKey;type:uuid"`
	Name      string `json:"name" gorm:"column:name;not null"`
	Type      string `json:"type" gorm:"column:type;index;not null"`
	Pattern   string `json:"pattern" gorm:"column:pattern;type:text;not null"`
	Score     int    `json:"score" gorm:"column:score;not null;default:0"`
	Action    string `json:"action" gorm:"column:action;not null"`
	Enabled   bool   `json:"enabled" gorm:"column:enabled;not null;default:true"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;index"`
}

func (Rule) TableName() string { return "waf_rules" }

// BeforeCreate assigns a UUID primary key when one hasn't been set.
func (r *Rule) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Advisory rule action labels (parsed, never enforced by the engine).
const (
	ActionBlock = "block"
	ActionLog   = "log"
)
