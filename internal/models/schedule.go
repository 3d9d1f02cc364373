package models

import (
	"time"

	"gorm.io/gorm"
)

type ScheduleType string

const (
	ScheduleNone   ScheduleType = "none"
	ScheduleDaily  ScheduleType = "daily"
	ScheduleWeekly ScheduleType = "weekly"
)

// Schedule is a recurring trigger definition, at most one per Profile.
// daily requires Hour; weekly requires DayOfWeek (1=Monday..7=Sunday) and
// Hour; none requires neither and is never evaluated.
type Schedule struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	ProfileID    uint           `gorm:"not null;uniqueIndex" json:"profile_id"`
	ScheduleType ScheduleType   `gorm:"size:20;not null;default:'none'" json:"schedule_type"`
	Hour         *int           `json:"hour"`
	DayOfWeek    *int           `json:"day_of_week"`
	Enabled      bool           `gorm:"default:false" json:"enabled"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at"`

	Profile Profile `gorm:"foreignKey:ProfileID" json:"profile"`
}
