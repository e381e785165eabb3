package model

import "time"

// ClickEvent records one successful redirect through a shortlink. The
// Shortlink field always holds the normalized key handed back by the
// resolver, so counts line up no matter how the user spelled the link.
type ClickEvent struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Shortlink string    `json:"shortlink" gorm:"size:64;not null;index"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	Referrer  string    `json:"referrer"`
	Timestamp time.Time `json:"timestamp" gorm:"index"`
}

const (
	ClickStreamName     = "CLICKS"
	ClickStreamSubject  = "clicks.events"
	ClickConsumerName   = "click-logger"
	ClickStreamMaxBytes = 1024 * 1024 * 100 // 100MB
)
