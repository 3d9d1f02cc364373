package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yufyaj/seo-writer/internal/models"
)

// ConfigStore reads the profile/content-type/schedule configuration owned by
// the management layer. The pipeline never writes through it.
type ConfigStore interface {
	GetProfile(ctx context.Context, id uint) (*models.Profile, error)
	GetContentType(ctx context.Context, id, profileID uint) (*models.ContentType, error)
	GetEnabledContentTypes(ctx context.Context, profileID uint) ([]models.ContentType, error)
	// GetEnabledSchedules returns enabled non-none schedules joined with the
	// owning profile and its enabled content types.
	GetEnabledSchedules(ctx context.Context) ([]models.Schedule, error)
	GetCompanyConfig(ctx context.Context, profileID uint) (*models.Company, error)
}

// JobStore owns Job/JobItem persistence for the orchestrator.
type JobStore interface {
	CreateJob(ctx context.Context, profileID uint, trigger models.TriggerType) (*models.Job, error)
	CreateJobItem(ctx context.Context, jobID, profileID, contentTypeID uint) (*models.JobItem, error)
	UpdateJob(ctx context.Context, id uint, patch map[string]any) error
	UpdateJobItem(ctx context.Context, id uint, patch map[string]any) error
	GetJob(ctx context.Context, id uint) (*models.Job, error)
	ListJobs(ctx context.Context, limit int) ([]models.Job, error)
}

type gormConfigStore struct {
	db *gorm.DB
}

func NewConfigStore(db *gorm.DB) ConfigStore {
	return &gormConfigStore{db: db}
}

func (s *gormConfigStore) GetProfile(ctx context.Context, id uint) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.WithContext(ctx).First(&profile, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

func (s *gormConfigStore) GetContentType(ctx context.Context, id, profileID uint) (*models.ContentType, error) {
	var contentType models.ContentType
	err := s.db.WithContext(ctx).
		Where("id = ? AND profile_id = ?", id, profileID).
		First(&contentType).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get content type: %w", err)
	}
	return &contentType, nil
}

func (s *gormConfigStore) GetEnabledContentTypes(ctx context.Context, profileID uint) ([]models.ContentType, error) {
	var contentTypes []models.ContentType
	err := s.db.WithContext(ctx).
		Where("profile_id = ? AND enabled = ?", profileID, true).
		Find(&contentTypes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get enabled content types: %w", err)
	}
	return contentTypes, nil
}

func (s *gormConfigStore) GetEnabledSchedules(ctx context.Context) ([]models.Schedule, error) {
	var schedules []models.Schedule
	err := s.db.WithContext(ctx).
		Where("enabled = ? AND schedule_type <> ?", true, models.ScheduleNone).
		Preload("Profile").
		Preload("Profile.ContentTypes", "enabled = ?", true).
		Find(&schedules).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get enabled schedules: %w", err)
	}
	return schedules, nil
}

func (s *gormConfigStore) GetCompanyConfig(ctx context.Context, profileID uint) (*models.Company, error) {
	var profile models.Profile
	err := s.db.WithContext(ctx).Preload("Company").First(&profile, profileID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get company config: %w", err)
	}
	if profile.Company.ID == 0 {
		return nil, nil
	}
	return &profile.Company, nil
}

type gormJobStore struct {
	db *gorm.DB
}

func NewJobStore(db *gorm.DB) JobStore {
	return &gormJobStore{db: db}
}

func (s *gormJobStore) CreateJob(ctx context.Context, profileID uint, trigger models.TriggerType) (*models.Job, error) {
	job := models.Job{
		ProfileID:   profileID,
		TriggerType: trigger,
		Status:      models.JobStatusRunning,
	}
	if err := s.db.WithContext(ctx).Create(&job).Error; err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return &job, nil
}

func (s *gormJobStore) CreateJobItem(ctx context.Context, jobID, profileID, contentTypeID uint) (*models.JobItem, error) {
	// Pessimistic default: the item stays failed until the CMS post exists.
	item := models.JobItem{
		JobID:         jobID,
		ProfileID:     profileID,
		ContentTypeID: contentTypeID,
		Status:        models.JobStatusFailed,
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to create job item: %w", err)
	}
	return &item, nil
}

func (s *gormJobStore) UpdateJob(ctx context.Context, id uint, patch map[string]any) error {
	if err := s.db.WithContext(ctx).Model(&models.Job{}).Where("id = ?", id).Updates(patch).Error; err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	return nil
}

func (s *gormJobStore) UpdateJobItem(ctx context.Context, id uint, patch map[string]any) error {
	if err := s.db.WithContext(ctx).Model(&models.JobItem{}).Where("id = ?", id).Updates(patch).Error; err != nil {
		return fmt.Errorf("failed to update job item: %w", err)
	}
	return nil
}

func (s *gormJobStore) GetJob(ctx context.Context, id uint) (*models.Job, error) {
	var job models.Job
	err := s.db.WithContext(ctx).Preload("Items").First(&job, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

func (s *gormJobStore) ListJobs(ctx context.Context, limit int) ([]models.Job, error) {
	if limit <= 0 {
		limit = 50
	}
	var jobs []models.Job
	err := s.db.WithContext(ctx).
		Preload("Items").
		Order("id DESC").
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}
