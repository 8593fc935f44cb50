package model

import (
	"strings"
	"time"
)

type Actor struct {
	ID           int64   `gorm:"primaryKey;autoIncrement:false"`
	Handle       *string `gorm:"index"`
	FirstName    *string
	LastName     *string
	RegisteredAt time.Time `gorm:"not null"`
	UpdatedAt    time.Time
}

// DisplayName joins the first and last name, skipping the empty parts.
func (a Actor) DisplayName() string {
	parts := make([]string, 0, 2)
	if a.FirstName != nil && strings.TrimSpace(*a.FirstName) != "" {
		parts = append(parts, strings.TrimSpace(*a.FirstName))
	}
	if a.LastName != nil && strings.TrimSpace(*a.LastName) != "" {
		parts = append(parts, strings.TrimSpace(*a.LastName))
	}
	return strings.Join(parts, " ")
}

func (a Actor) HandleOrEmpty() string {
	if a.Handle == nil {
		return ""
	}
	return *a.Handle
}
