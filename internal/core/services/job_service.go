package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/snapexpense/snap_expense_app/internal/core/domain"
	portsrepo "github.com/snapexpense/snap_expense_app/internal/core/ports/repositories"
	portssvc "github.com/snapexpense/snap_expense_app/internal/core/ports/services"
	"github.com/snapexpense/snap_expense_app/internal/middleware"
)

// defaultPollInterval is how often an idle worker looks for due jobs.
const defaultPollInterval = 5 * time.Second

// jobService is the durable job queue worker. Claims go through
// ClaimNextDue, whose row lock makes concurrent workers safe; execution
// outcomes are written back to the claimed row.
type jobService struct {
	jobRepo      portsrepo.JobRepositoryFacade
	checker      portssvc.BatchCheckerSvc
	exporter     portssvc.ExportRunnerSvc
	pollInterval time.Duration
	now          func() time.Time
}

// NewJobService creates a new JobService. A non-positive pollInterval falls
// back to the default.
func NewJobService(
	jobRepo portsrepo.JobRepositoryFacade,
	checker portssvc.BatchCheckerSvc,
	exporter portssvc.ExportRunnerSvc,
	pollInterval time.Duration,
) portssvc.JobQueueSvc {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &jobService{
		jobRepo:      jobRepo,
		checker:      checker,
		exporter:     exporter,
		pollInterval: pollInterval,
		now:          time.Now,
	}
}

var _ portssvc.JobQueueSvc = (*jobService)(nil)

// Enqueue records a new pending job, due immediately.
func (s *jobService) Enqueue(ctx context.Context, jobType domain.JobType, payload domain.JobPayload) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal job payload: %w", err)
	}

	now := s.now()
	job := domain.Job{
		JobID:       uuid.NewString(),
		Type:        jobType,
		Payload:     raw,
		Status:      domain.JobPending,
		ScheduledAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.jobRepo.SaveJob(ctx, job); err != nil {
		return "", fmt.Errorf("failed to save job: %w", err)
	}

	middleware.GetLoggerFromCtx(ctx).Info("Job enqueued",
		slog.String("job_id", job.JobID), slog.String("job_type", string(jobType)))
	return job.JobID, nil
}

// RunOnce claims and executes at most one due job. The error return covers
// claim failures only; an execution failure is recorded on the job row and
// the job retries after the fixed backoff until the attempt ceiling.
func (s *jobService) RunOnce(ctx context.Context) (bool, error) {
	job, err := s.jobRepo.ClaimNextDue(ctx, s.now(), domain.MaxJobAttempts)
	if err != nil {
		return false, fmt.Errorf("failed to claim job: %w", err)
	}
	if job == nil {
		return false, nil
	}

	logger := middleware.GetLoggerFromCtx(ctx).With(
		slog.String("job_id", job.JobID),
		slog.String("job_type", string(job.Type)),
		slog.Int("attempt", job.Attempts),
	)
	ctx = middleware.WithLogger(ctx, logger)

	execErr := s.execute(ctx, *job)
	if execErr != nil {
		logger.Error("Job failed", slog.String("error", execErr.Error()))
		retryAt := s.now().Add(domain.JobRetryBackoff)
		if err := s.jobRepo.MarkJobFailed(ctx, job.JobID, execErr.Error(), retryAt); err != nil {
			return true, fmt.Errorf("failed to mark job failed: %w", err)
		}
		return true, nil
	}

	if err := s.jobRepo.MarkJobCompleted(ctx, job.JobID, s.now()); err != nil {
		return true, fmt.Errorf("failed to mark job completed: %w", err)
	}
	logger.Info("Job completed")
	return true, nil
}

// execute dispatches the claimed job to its worker. A panic in a worker is
// converted to a job failure so one poisoned payload cannot kill the poller.
func (s *jobService) execute(ctx context.Context, job domain.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()

	var payload domain.JobPayload
	if uerr := json.Unmarshal(job.Payload, &payload); uerr != nil {
		return fmt.Errorf("invalid job payload: %w", uerr)
	}

	switch job.Type {
	case domain.JobTypeBatchCheck:
		return s.checker.Check(ctx, payload.BatchID, payload.UserID)
	case domain.JobTypeExport:
		return s.exporter.Run(ctx, payload.ExportID, payload.UserID)
	default:
		return fmt.Errorf("unknown job type %q", job.Type)
	}
}

// Start polls for due jobs until the context is cancelled. After executing a
// job it immediately tries again, so a backlog drains at full speed; the
// interval only paces the idle case. Claim errors are logged and the loop
// keeps going, since a transient database error must not stop the worker.
func (s *jobService) Start(ctx context.Context) {
	logger := middleware.GetLoggerFromCtx(ctx)
	logger.Info("Job worker started", slog.Duration("poll_interval", s.pollInterval))

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		claimed, err := s.RunOnce(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("Job worker stopped")
				return
			}
			logger.Error("Job poll failed", slog.String("error", err.Error()))
		}
		if claimed {
			continue
		}

		select {
		case <-ctx.Done():
			logger.Info("Job worker stopped")
			return
		case <-ticker.C:
		}
	}
}
