package model

import "time"

// Link is one stored golink: a normalized shortlink mapped to the long value
// it expands to. LongValue may be a plain URL, an opaque string, or text
// carrying template directives understood by the resolver.
type Link struct {
	Short       string     `db:"short" gorm:"primaryKey;size:64"`
	LongValue   string     `db:"long_value" gorm:"type:text;not null"`
	Description string     `db:"description" gorm:"type:text"`
	Disabled    bool       `db:"disabled" gorm:"not null;default:false"`
	ExpiresAt   *time.Time `db:"expires_at" gorm:"index"`
	CreatedAt   time.Time  `db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `db:"updated_at" gorm:"autoUpdateTime"`
}

// Resolvable reports whether the link should still answer lookups at the
// given instant. Disabled and expired links read as absent to the resolver.
func (l *Link) Resolvable(now time.Time) bool {
	if l.Disabled {
		return false
	}
	if l.ExpiresAt != nil && now.After(*l.ExpiresAt) {
		return false
	}
	return true
}
