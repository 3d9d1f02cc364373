package models

import (
	"time"

	"gorm.io/gorm"
)

type JobStatus string

const (
	JobStatusRunning JobStatus = "running"
	JobStatusSuccess JobStatus = "success"
	JobStatusFailed  JobStatus = "failed"
)

type TriggerType string

const (
	TriggerManual    TriggerType = "manual"
	TriggerScheduler TriggerType = "scheduler"
)

// Job is one pipeline execution. Exactly one JobItem per Job.
type Job struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	ProfileID    uint           `gorm:"not null;index" json:"profile_id"`
	TriggerType  TriggerType    `gorm:"size:20;not null" json:"trigger_type"`
	Status       JobStatus      `gorm:"size:20;not null;default:'running'" json:"status"`
	ErrorMessage string         `gorm:"type:text" json:"error_message"`
	StartedAt    time.Time      `gorm:"autoCreateTime" json:"started_at"`
	FinishedAt   *time.Time     `json:"finished_at"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at"`

	Items []JobItem `gorm:"foreignKey:JobID" json:"items"`
}

// JobItem is the unit-of-work result for a Job. It is created with status
// failed and flipped to success only once the CMS post exists.
type JobItem struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	JobID         uint           `gorm:"not null;index" json:"job_id"`
	ProfileID     uint           `gorm:"not null;index" json:"profile_id"`
	ContentTypeID uint           `gorm:"not null;index" json:"content_type_id"`
	Keyword       string         `gorm:"size:255" json:"keyword"`
	Title         string         `gorm:"size:500" json:"title"`
	CMSPostID     *int64         `json:"cms_post_id"`
	CMSPostURL    string         `gorm:"size:1000" json:"cms_post_url"`
	CMSMediaID    *int64         `json:"cms_media_id"`
	Status        JobStatus      `gorm:"size:20;not null;default:'failed'" json:"status"`
	ErrorMessage  string         `gorm:"type:text" json:"error_message"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}
