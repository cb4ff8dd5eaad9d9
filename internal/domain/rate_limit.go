package domain

import "time"

// RateLimitCounter is a fixed window per (key, endpoint).
type RateLimitCounter struct {
	Key         string    `gorm:"column:key;primaryKey;size:191" json:"key"`
	Endpoint    string    `gorm:"column:endpoint;primaryKey;size:64" json:"endpoint"`
	Count       int       `gorm:"column:count;not null" json:"count"`
	WindowStart time.Time `gorm:"column:window_start;not null" json:"window_start"`
}

func (RateLimitCounter) TableName() string { return "rate_limits" }
