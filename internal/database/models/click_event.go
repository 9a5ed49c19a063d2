package models

import (
	"time"
)

// ClickEvent is one enriched record of a single redirect click.
// Rows are append-only: enrichment fields are derived from the raw signal
// exactly once at write time and are never recomputed or back-filled.
type ClickEvent struct {
	ID     uint `gorm:"primaryKey;autoIncrement" json:"id"`
	URLID  uint `gorm:"not null;index:idx_click_url" json:"url_id"`
	UserID uint `gorm:"not null;index:idx_click_user" json:"user_id"`
	TeamID uint `gorm:"not null;index:idx_click_team" json:"team_id"`

	// Raw signal as received on the redirect path
	IPAddress  string `gorm:"not null;size:45" json:"ip_address"`
	UserAgent  string `gorm:"type:text" json:"user_agent,omitempty"`
	RefererURL string `gorm:"size:2048" json:"referer_url,omitempty"`

	// Enriched at write time; empty string means unresolved
	Country        string `gorm:"size:2;index:idx_click_country" json:"country,omitempty"`
	City           string `gorm:"size:100" json:"city,omitempty"`
	ReferrerSource string `gorm:"size:255;index:idx_click_referrer" json:"referrer_source"`

	// Parsed User-Agent fields
	Browser    string `gorm:"size:50" json:"browser,omitempty"`
	OS         string `gorm:"size:50" json:"os,omitempty"`
	DeviceType string `gorm:"size:10" json:"device_type,omitempty"` // desktop, mobile, bot, unknown

	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_click_created" json:"created_at"`
}

func (ClickEvent) TableName() string {
	return "click_events"
}
