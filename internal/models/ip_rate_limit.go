package models

import "time"

// IPRateLimit is reserved schema for future per-IP rate limiting. No
// component in this repository reads or writes it; see DESIGN.md.
type IPRateLimit struct {
	IPAddress    string    `json:"ip_address" gorm:"column:ip_address;type:varchar(45);primaryKey"`
	RequestCount int       `json:"request_count" gorm:"column:request_count;not null;default:0"`
	WindowStart  time.Time `json:"window_start" gorm:"column:window_start"`
}

func (IPRateLimit) TableName() string { return "ip_rate_limits" }
