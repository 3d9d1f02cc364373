package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yufyaj/seo-writer/internal/cms"
	"github.com/yufyaj/seo-writer/internal/content"
	"github.com/yufyaj/seo-writer/internal/generation"
	"github.com/yufyaj/seo-writer/internal/models"
	"github.com/yufyaj/seo-writer/pkg/util"
)

// Configuration errors, surfaced before any Job row exists.
var (
	ErrProfileNotFound     = errors.New("post profile not found")
	ErrContentTypeNotFound = errors.New("content type not found")
	ErrContentTypeDisabled = errors.New("content type is disabled")
	ErrCompanyNotFound     = errors.New("company settings not found")
)

// ContentGenerator produces keywords, article text and images.
type ContentGenerator interface {
	SelectKeyword(strategy models.KeywordStrategy) string
	GenerateArticle(ctx context.Context, params generation.ArticleParams) (*generation.Article, error)
	GenerateImage(ctx context.Context, params generation.ImageParams) (*generation.Image, error)
}

// CMSPublisher is the per-company destination CMS client.
type CMSPublisher interface {
	TestConnection(ctx context.Context) bool
	CreatePost(ctx context.Context, params cms.CreatePostParams) (*cms.Post, error)
	UploadMedia(ctx context.Context, data []byte, filename, mimeType, altText string) (*cms.Media, error)
}

// CMSClientFactory builds a publisher from company connection settings.
// Clients are stateless, so one is built per job.
type CMSClientFactory func(cfg cms.Config) CMSPublisher

// SectionIllustrator generates and uploads one image per heading, returning
// the uploaded URLs in heading order. The default runs sequentially; a
// bounded-parallel implementation can be injected without changing the
// pipeline.
type SectionIllustrator interface {
	Illustrate(ctx context.Context, jobID uint, article *generation.Article, headings []content.Heading, keyword string, publisher CMSPublisher) ([]string, error)
}

// JobRequest identifies one pipeline execution.
type JobRequest struct {
	AccountID     uint
	ProfileID     uint
	ContentTypeID uint
	Trigger       models.TriggerType
}

// JobExecutionResult is the structured outcome of one pipeline execution.
// Callers branch on Success; pipeline failures after job creation are data,
// not errors.
type JobExecutionResult struct {
	JobID        uint                `json:"job_id"`
	JobItemID    uint                `json:"job_item_id"`
	Success      bool                `json:"success"`
	Article      *generation.Article `json:"article,omitempty"`
	CMSPostID    *int64              `json:"cms_post_id,omitempty"`
	CMSPostURL   string              `json:"cms_post_url,omitempty"`
	CMSMediaID   *int64              `json:"cms_media_id,omitempty"`
	ErrorMessage string              `json:"error_message,omitempty"`
}

// JobService drives the generation pipeline: keyword selection, article and
// image generation, CMS publishing, and job bookkeeping. It is the single
// source of truth for a Job's outcome.
type JobService struct {
	store     ConfigStore
	jobs      JobStore
	creds     CredentialResolver
	generator ContentGenerator
	newCMS    CMSClientFactory
	sections  SectionIllustrator
	logger    *zap.Logger
}

func NewJobService(
	store ConfigStore,
	jobs JobStore,
	creds CredentialResolver,
	generator ContentGenerator,
	newCMS CMSClientFactory,
	logger *zap.Logger,
) *JobService {
	return &JobService{
		store:     store,
		jobs:      jobs,
		creds:     creds,
		generator: generator,
		newCMS:    newCMS,
		sections:  &sequentialIllustrator{generator: generator, logger: logger},
		logger:    logger,
	}
}

// SetSectionIllustrator swaps the per-heading generation strategy.
func (s *JobService) SetSectionIllustrator(illustrator SectionIllustrator) {
	s.sections = illustrator
}

// ExecuteJob runs one pipeline execution: 1 job = 1 article. Configuration
// problems are returned as plain errors before any Job row is created; once
// the Job exists, every failure is recorded on the Job/JobItem rows and
// returned inside the result.
func (s *JobService) ExecuteJob(ctx context.Context, req JobRequest) (*JobExecutionResult, error) {
	profile, err := s.store.GetProfile(ctx, req.ProfileID)
	if err != nil {
		return nil, err
	}
	if profile == nil || profile.AccountID != req.AccountID {
		return nil, ErrProfileNotFound
	}

	contentType, err := s.store.GetContentType(ctx, req.ContentTypeID, req.ProfileID)
	if err != nil {
		return nil, err
	}
	if contentType == nil {
		return nil, ErrContentTypeNotFound
	}
	if req.Trigger == models.TriggerScheduler && !contentType.Enabled {
		return nil, ErrContentTypeDisabled
	}

	company, err := s.store.GetCompanyConfig(ctx, req.ProfileID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, ErrCompanyNotFound
	}

	job, err := s.jobs.CreateJob(ctx, req.ProfileID, req.Trigger)
	if err != nil {
		return nil, err
	}
	item, err := s.jobs.CreateJobItem(ctx, job.ID, req.ProfileID, req.ContentTypeID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Job started",
		zap.Uint("job_id", job.ID),
		zap.Uint("profile_id", req.ProfileID),
		zap.String("trigger", string(req.Trigger)))

	result, err := s.run(ctx, job, item, profile, contentType, company)
	if err != nil {
		s.recordFailure(ctx, job.ID, item.ID, err)
		return &JobExecutionResult{
			JobID:        job.ID,
			JobItemID:    item.ID,
			Success:      false,
			ErrorMessage: err.Error(),
		}, nil
	}

	s.logger.Info("Job finished",
		zap.Uint("job_id", job.ID),
		zap.String("post_url", result.CMSPostURL))

	return result, nil
}

func (s *JobService) run(
	ctx context.Context,
	job *models.Job,
	item *models.JobItem,
	profile *models.Profile,
	contentType *models.ContentType,
	company *models.Company,
) (*JobExecutionResult, error) {
	keyword := s.generator.SelectKeyword(profile.KeywordStrategy)
	if err := s.jobs.UpdateJobItem(ctx, item.ID, map[string]any{"keyword": keyword}); err != nil {
		return nil, err
	}

	article, err := s.generator.GenerateArticle(ctx, generation.ArticleParams{
		Company: generation.CompanyInfo{
			Name:      company.CompanyName,
			BrandName: company.BrandName,
			AboutText: company.AboutText,
			SiteURL:   company.SiteURL,
		},
		Profile: generation.ProfileInfo{
			Name:        profile.Name,
			Description: profile.Description,
		},
		Strategy:       profile.KeywordStrategy,
		Keyword:        keyword,
		PromptTemplate: contentType.PromptTemplate,
	})
	if err != nil {
		return nil, err
	}

	if err := s.jobs.UpdateJobItem(ctx, item.ID, map[string]any{"title": article.Title}); err != nil {
		return nil, err
	}

	publisher, err := s.publisherFor(company)
	if err != nil {
		return nil, err
	}

	featured, err := s.generator.GenerateImage(ctx, generation.ImageParams{
		Title:   article.Title,
		Content: article.Content,
		Keyword: keyword,
	})
	if err != nil {
		return nil, err
	}

	featuredMedia, err := publisher.UploadMedia(ctx, featured.Data,
		util.FeaturedImageFilename(job.ID), featured.MimeType, article.Title)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Featured image uploaded",
		zap.Uint("job_id", job.ID),
		zap.Int64("media_id", featuredMedia.ID))

	headings := content.ExtractHeadings(article.Content)

	sectionURLs, err := s.sections.Illustrate(ctx, job.ID, article, headings, keyword, publisher)
	if err != nil {
		return nil, err
	}

	body := content.InsertImages(article.Content, headings, sectionURLs)

	var categories []int
	if profile.CMSCategoryID != nil {
		categories = []int{*profile.CMSCategoryID}
	}

	post, err := publisher.CreatePost(ctx, cms.CreatePostParams{
		Title:         article.Title,
		Content:       body,
		Status:        company.CMSDefaultStatus,
		Slug:          util.GenerateSlug(article.Title),
		Categories:    categories,
		FeaturedMedia: &featuredMedia.ID,
		Excerpt:       article.MetaDescription,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.jobs.UpdateJobItem(ctx, item.ID, map[string]any{
		"status":       models.JobStatusSuccess,
		"cms_post_id":  post.ID,
		"cms_post_url": post.Link,
		"cms_media_id": featuredMedia.ID,
	}); err != nil {
		return nil, err
	}
	if err := s.jobs.UpdateJob(ctx, job.ID, map[string]any{
		"status":      models.JobStatusSuccess,
		"finished_at": now,
	}); err != nil {
		return nil, err
	}

	postID := post.ID
	mediaID := featuredMedia.ID
	return &JobExecutionResult{
		JobID:      job.ID,
		JobItemID:  item.ID,
		Success:    true,
		Article:    article,
		CMSPostID:  &postID,
		CMSPostURL: post.Link,
		CMSMediaID: &mediaID,
	}, nil
}

// recordFailure marks both rows failed so no job is ever left running.
// Uploaded-but-unpublished media is intentionally not cleaned up.
func (s *JobService) recordFailure(ctx context.Context, jobID, itemID uint, cause error) {
	// Recording must survive a cancelled pipeline context
	ctx = context.WithoutCancel(ctx)

	s.logger.Error("Job failed",
		zap.Uint("job_id", jobID),
		zap.Error(cause))

	if err := s.jobs.UpdateJobItem(ctx, itemID, map[string]any{
		"status":        models.JobStatusFailed,
		"error_message": cause.Error(),
	}); err != nil {
		s.logger.Error("Failed to record job item failure", zap.Uint("job_item_id", itemID), zap.Error(err))
	}
	if err := s.jobs.UpdateJob(ctx, jobID, map[string]any{
		"status":        models.JobStatusFailed,
		"finished_at":   time.Now(),
		"error_message": cause.Error(),
	}); err != nil {
		s.logger.Error("Failed to record job failure", zap.Uint("job_id", jobID), zap.Error(err))
	}
}

func (s *JobService) publisherFor(company *models.Company) (CMSPublisher, error) {
	appPassword, err := s.creds.Resolve(company.CMSAppPasswordEnc)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve CMS credential: %w", err)
	}

	return s.newCMS(cms.Config{
		BaseURL:     company.CMSBaseURL,
		Username:    company.CMSUsername,
		AppPassword: appPassword,
	}), nil
}

// TestCMSConnection resolves the profile's company connection and probes the
// CMS. Reachability problems read as false; configuration problems are
// errors.
func (s *JobService) TestCMSConnection(ctx context.Context, accountID, profileID uint) (bool, error) {
	profile, err := s.store.GetProfile(ctx, profileID)
	if err != nil {
		return false, err
	}
	if profile == nil || profile.AccountID != accountID {
		return false, ErrProfileNotFound
	}

	company, err := s.store.GetCompanyConfig(ctx, profileID)
	if err != nil {
		return false, err
	}
	if company == nil {
		return false, ErrCompanyNotFound
	}

	publisher, err := s.publisherFor(company)
	if err != nil {
		return false, err
	}

	return publisher.TestConnection(ctx), nil
}

// sequentialIllustrator generates and uploads section images one at a time,
// keeping provider cost and rate usage predictable.
type sequentialIllustrator struct {
	generator ContentGenerator
	logger    *zap.Logger
}

func (s *sequentialIllustrator) Illustrate(
	ctx context.Context,
	jobID uint,
	article *generation.Article,
	headings []content.Heading,
	keyword string,
	publisher CMSPublisher,
) ([]string, error) {
	urls := make([]string, 0, len(headings))

	for i, heading := range headings {
		image, err := s.generator.GenerateImage(ctx, generation.ImageParams{
			Title:   heading.Text,
			Content: article.Content,
			Keyword: keyword,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to generate image for section %d: %w", i+1, err)
		}

		media, err := publisher.UploadMedia(ctx, image.Data,
			util.SectionImageFilename(jobID, i+1), image.MimeType, heading.Text)
		if err != nil {
			return nil, fmt.Errorf("failed to upload image for section %d: %w", i+1, err)
		}

		s.logger.Debug("Section image uploaded",
			zap.Uint("job_id", jobID),
			zap.Int("section", i+1),
			zap.Int64("media_id", media.ID))

		urls = append(urls, media.SourceURL)
	}

	return urls, nil
}
