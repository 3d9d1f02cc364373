package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/yufyaj/seo-writer/internal/config"
	"github.com/yufyaj/seo-writer/internal/models"
)

// SchedulerExecutionResult aggregates one evaluator pass. Executed counts
// only schedules that reached orchestrator invocation.
type SchedulerExecutionResult struct {
	Executed  int      `json:"executed"`
	Succeeded int      `json:"successful"`
	Failed    int      `json:"failed"`
	Errors    []string `json:"errors"`
}

// JobExecutor is the slice of JobService the evaluator needs.
type JobExecutor interface {
	ExecuteJob(ctx context.Context, req JobRequest) (*JobExecutionResult, error)
}

// ScheduleEvaluator scans enabled schedules, decides which are due at the
// current hour in a fixed reference time zone, and runs one job per due
// schedule.
type ScheduleEvaluator struct {
	store    ConfigStore
	executor JobExecutor
	logger   *zap.Logger
	location *time.Location
	now      func() time.Time
	rng      *rand.Rand
}

func NewScheduleEvaluator(store ConfigStore, executor JobExecutor, timezone string, logger *zap.Logger) (*ScheduleEvaluator, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler timezone %q: %w", timezone, err)
	}
	return &ScheduleEvaluator{
		store:    store,
		executor: executor,
		logger:   logger,
		location: loc,
		now:      time.Now,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// SetNow replaces the clock, used by tests.
func (e *ScheduleEvaluator) SetNow(now func() time.Time) {
	e.now = now
}

// SetRand replaces the content-type draw source, used by tests.
func (e *ScheduleEvaluator) SetRand(rng *rand.Rand) {
	e.rng = rng
}

// ExecuteScheduledJobs runs a single evaluation pass. It never fails itself:
// every per-schedule problem becomes a collected error entry and evaluation
// moves on to the next schedule.
func (e *ScheduleEvaluator) ExecuteScheduledJobs(ctx context.Context) *SchedulerExecutionResult {
	result := &SchedulerExecutionResult{Errors: []string{}}

	now := e.now().In(e.location)
	currentHour := now.Hour()
	currentDay := isoWeekday(now)

	schedules, err := e.store.GetEnabledSchedules(ctx)
	if err != nil {
		e.logger.Error("Failed to load schedules", zap.Error(err))
		result.Errors = append(result.Errors, fmt.Sprintf("failed to load schedules: %v", err))
		return result
	}

	e.logger.Info("Evaluating schedules",
		zap.Int("count", len(schedules)),
		zap.Int("hour", currentHour),
		zap.Int("day_of_week", currentDay))

	for _, schedule := range schedules {
		if !isDue(&schedule, currentHour, currentDay) {
			continue
		}

		enabledTypes := schedule.Profile.ContentTypes
		if len(enabledTypes) == 0 {
			result.Errors = append(result.Errors,
				fmt.Sprintf("profile %d: no enabled content types", schedule.ProfileID))
			continue
		}

		selected := enabledTypes[e.rng.Intn(len(enabledTypes))]

		result.Executed++
		e.runOne(ctx, &schedule, selected.ID, result)
	}

	e.logger.Info("Scheduler pass completed",
		zap.Int("executed", result.Executed),
		zap.Int("successful", result.Succeeded),
		zap.Int("failed", result.Failed))

	return result
}

func (e *ScheduleEvaluator) runOne(ctx context.Context, schedule *models.Schedule, contentTypeID uint, result *SchedulerExecutionResult) {
	defer func() {
		if r := recover(); r != nil {
			result.Failed++
			result.Errors = append(result.Errors,
				fmt.Sprintf("profile %d: panic: %v", schedule.ProfileID, r))
			e.logger.Error("Job execution panicked",
				zap.Uint("profile_id", schedule.ProfileID),
				zap.Any("panic", r))
		}
	}()

	jobResult, err := e.executor.ExecuteJob(ctx, JobRequest{
		AccountID:     schedule.Profile.AccountID,
		ProfileID:     schedule.ProfileID,
		ContentTypeID: contentTypeID,
		Trigger:       models.TriggerScheduler,
	})
	if err != nil {
		result.Failed++
		result.Errors = append(result.Errors,
			fmt.Sprintf("profile %d: %v", schedule.ProfileID, err))
		return
	}

	if jobResult.Success {
		result.Succeeded++
	} else {
		result.Failed++
		result.Errors = append(result.Errors,
			fmt.Sprintf("profile %d: %s", schedule.ProfileID, jobResult.ErrorMessage))
	}
}

// isDue matches wall-clock hour equality in the evaluator's zone. A schedule
// whose hour passes without an evaluator pass is skipped, not caught up.
func isDue(schedule *models.Schedule, currentHour, currentDay int) bool {
	switch schedule.ScheduleType {
	case models.ScheduleDaily:
		return schedule.Hour != nil && *schedule.Hour == currentHour
	case models.ScheduleWeekly:
		return schedule.Hour != nil && schedule.DayOfWeek != nil &&
			*schedule.DayOfWeek == currentDay && *schedule.Hour == currentHour
	default:
		return false
	}
}

// isoWeekday maps time.Weekday to 1=Monday..7=Sunday.
func isoWeekday(t time.Time) int {
	d := int(t.Weekday())
	if d == 0 {
		return 7
	}
	return d
}

// Scheduler invokes the evaluator on a fixed cadence for deployments without
// an external cron caller. The evaluator stays independently invocable over
// HTTP.
type Scheduler struct {
	config    *config.SchedulerConfig
	logger    *zap.Logger
	evaluator *ScheduleEvaluator
	ticker    *time.Ticker
	stopCh    chan struct{}
}

func NewScheduler(cfg *config.SchedulerConfig, logger *zap.Logger, evaluator *ScheduleEvaluator) *Scheduler {
	return &Scheduler{
		config:    cfg,
		logger:    logger,
		evaluator: evaluator,
		stopCh:    make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("Scheduler is disabled")
		return nil
	}

	interval, err := time.ParseDuration(s.config.Interval)
	if err != nil {
		s.logger.Error("Invalid scheduler interval", zap.String("interval", s.config.Interval), zap.Error(err))
		return err
	}

	s.logger.Info("Starting scheduler", zap.String("interval", s.config.Interval))

	s.ticker = time.NewTicker(interval)

	go func() {
		for {
			select {
			case <-s.ticker.C:
				s.runPass(ctx)
			case <-s.stopCh:
				s.logger.Info("Scheduler stopped")
				return
			case <-ctx.Done():
				s.logger.Info("Scheduler context cancelled")
				return
			}
		}
	}()

	return nil
}

func (s *Scheduler) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopCh)
	s.logger.Info("Scheduler shutdown completed")
}

func (s *Scheduler) runPass(ctx context.Context) {
	start := time.Now()
	result := s.evaluator.ExecuteScheduledJobs(ctx)
	duration := time.Since(start)

	s.logger.Info("Scheduled pass finished",
		zap.Int("executed", result.Executed),
		zap.Int("successful", result.Succeeded),
		zap.Int("failed", result.Failed),
		zap.Strings("errors", result.Errors),
		zap.Duration("duration", duration))
}
