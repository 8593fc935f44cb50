package model

import "time"

type Vote struct {
	ID          uint      `gorm:"primarykey"`
	FromActorID int64     `gorm:"not null;index;uniqueIndex:idx_votes_pair_day,priority:1"`
	ToActorID   int64     `gorm:"not null;index;uniqueIndex:idx_votes_pair_day,priority:2"`
	VoteDay     string    `gorm:"not null;size:10;uniqueIndex:idx_votes_pair_day,priority:3"`
	Polarity    Polarity  `gorm:"not null;size:8"`
	Comment     string    `gorm:"not null;default:''"`
	EvidenceRef string    `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`

	Voter  Actor `gorm:"foreignKey:FromActorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Target Actor `gorm:"foreignKey:ToActorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// CalendarDay is the rate-limit window key: the calendar date of t in loc.
func CalendarDay(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(time.DateOnly)
}
