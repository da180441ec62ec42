package models

import (
	"time"
)

// Represents one accepted request attempt. Rows are append-only; the
// gateway never updates or deletes them (retention is handled externally).
type QuotaRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	IPAddress string    `gorm:"index" json:"ip_address"`
	Action    string    `json:"action"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (QuotaRecord) TableName() string {
	return "request_logs"
}
