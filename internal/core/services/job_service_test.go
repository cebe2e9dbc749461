package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/snapexpense/snap_expense_app/internal/core/domain"
	portssvc "github.com/snapexpense/snap_expense_app/internal/core/ports/services"
	"github.com/snapexpense/snap_expense_app/internal/core/services"
)

type JobServiceTestSuite struct {
	suite.Suite
	jobRepo  *MockJobRepository
	checker  *MockBatchChecker
	exporter *MockExportRunner
	service  portssvc.JobQueueSvc
}

func (s *JobServiceTestSuite) SetupTest() {
	s.jobRepo = new(MockJobRepository)
	s.checker = new(MockBatchChecker)
	s.exporter = new(MockExportRunner)
	s.service = services.NewJobService(s.jobRepo, s.checker, s.exporter, time.Second)
}

func mustPayload(p domain.JobPayload) json.RawMessage {
	raw, err := json.Marshal(p)
	if err != nil {
		panic(err)
	}
	return raw
}

func claimedJob(jobType domain.JobType, payload domain.JobPayload, attempts int) *domain.Job {
	return &domain.Job{
		JobID:    "job-1",
		Type:     jobType,
		Payload:  mustPayload(payload),
		Status:   domain.JobProcessing,
		Attempts: attempts,
	}
}

func (s *JobServiceTestSuite) TestEnqueue_SavesPendingJob() {
	var saved domain.Job
	s.jobRepo.On("SaveJob", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(domain.Job)
		}).Return(nil).Once()

	jobID, err := s.service.Enqueue(context.Background(), domain.JobTypeBatchCheck, domain.JobPayload{
		BatchID: "batch-1",
		UserID:  "user-1",
	})
	s.Require().NoError(err)
	s.Equal(jobID, saved.JobID)
	s.Equal(domain.JobPending, saved.Status)
	s.Equal(0, saved.Attempts)
	s.False(saved.ScheduledAt.IsZero())

	var payload domain.JobPayload
	s.Require().NoError(json.Unmarshal(saved.Payload, &payload))
	s.Equal("batch-1", payload.BatchID)
}

func (s *JobServiceTestSuite) TestRunOnce_NoDueJobIsIdle() {
	s.jobRepo.On("ClaimNextDue", mock.Anything, mock.Anything, domain.MaxJobAttempts).Return(nil, nil).Once()

	claimed, err := s.service.RunOnce(context.Background())
	s.Require().NoError(err)
	s.False(claimed)
}

func (s *JobServiceTestSuite) TestRunOnce_DispatchesBatchCheck() {
	job := claimedJob(domain.JobTypeBatchCheck, domain.JobPayload{BatchID: "batch-1", UserID: "user-1"}, 1)
	s.jobRepo.On("ClaimNextDue", mock.Anything, mock.Anything, domain.MaxJobAttempts).Return(job, nil).Once()
	s.checker.On("Check", mock.Anything, "batch-1", "user-1").Return(nil).Once()
	s.jobRepo.On("MarkJobCompleted", mock.Anything, "job-1", mock.Anything).Return(nil).Once()

	claimed, err := s.service.RunOnce(context.Background())
	s.Require().NoError(err)
	s.True(claimed)
	s.checker.AssertExpectations(s.T())
	s.jobRepo.AssertExpectations(s.T())
}

func (s *JobServiceTestSuite) TestRunOnce_DispatchesExport() {
	job := claimedJob(domain.JobTypeExport, domain.JobPayload{ExportID: "exp-1", UserID: "user-1"}, 1)
	s.jobRepo.On("ClaimNextDue", mock.Anything, mock.Anything, domain.MaxJobAttempts).Return(job, nil).Once()
	s.exporter.On("Run", mock.Anything, "exp-1", "user-1").Return(nil).Once()
	s.jobRepo.On("MarkJobCompleted", mock.Anything, "job-1", mock.Anything).Return(nil).Once()

	claimed, err := s.service.RunOnce(context.Background())
	s.Require().NoError(err)
	s.True(claimed)
	s.exporter.AssertExpectations(s.T())
}

func (s *JobServiceTestSuite) TestRunOnce_FailureReschedulesWithBackoff() {
	job := claimedJob(domain.JobTypeBatchCheck, domain.JobPayload{BatchID: "batch-1", UserID: "user-1"}, 1)
	s.jobRepo.On("ClaimNextDue", mock.Anything, mock.Anything, domain.MaxJobAttempts).Return(job, nil).Once()
	s.checker.On("Check", mock.Anything, "batch-1", "user-1").Return(errors.New("db timeout")).Once()

	var gotRetryAt time.Time
	s.jobRepo.On("MarkJobFailed", mock.Anything, "job-1", "db timeout", mock.Anything).
		Run(func(args mock.Arguments) {
			gotRetryAt = args.Get(3).(time.Time)
		}).Return(nil).Once()

	before := time.Now()
	claimed, err := s.service.RunOnce(context.Background())
	// Execution failures land on the job row, not in the return value.
	s.Require().NoError(err)
	s.True(claimed)
	s.WithinRange(gotRetryAt, before.Add(domain.JobRetryBackoff), time.Now().Add(domain.JobRetryBackoff))
}

func (s *JobServiceTestSuite) TestRunOnce_PanicInWorkerBecomesJobFailure() {
	job := claimedJob(domain.JobTypeBatchCheck, domain.JobPayload{BatchID: "batch-1", UserID: "user-1"}, 1)
	s.jobRepo.On("ClaimNextDue", mock.Anything, mock.Anything, domain.MaxJobAttempts).Return(job, nil).Once()
	s.checker.On("Check", mock.Anything, "batch-1", "user-1").
		Run(func(mock.Arguments) { panic("poisoned payload") }).Return(nil).Once()
	s.jobRepo.On("MarkJobFailed", mock.Anything, "job-1", mock.MatchedBy(func(msg string) bool {
		return msg != ""
	}), mock.Anything).Return(nil).Once()

	claimed, err := s.service.RunOnce(context.Background())
	s.Require().NoError(err)
	s.True(claimed)
	s.jobRepo.AssertExpectations(s.T())
}

func (s *JobServiceTestSuite) TestRunOnce_UnknownJobTypeFails() {
	job := claimedJob(domain.JobType("mystery"), domain.JobPayload{UserID: "user-1"}, 1)
	s.jobRepo.On("ClaimNextDue", mock.Anything, mock.Anything, domain.MaxJobAttempts).Return(job, nil).Once()
	s.jobRepo.On("MarkJobFailed", mock.Anything, "job-1", mock.Anything, mock.Anything).Return(nil).Once()

	claimed, err := s.service.RunOnce(context.Background())
	s.Require().NoError(err)
	s.True(claimed)
	s.checker.AssertNotCalled(s.T(), "Check", mock.Anything, mock.Anything, mock.Anything)
	s.exporter.AssertNotCalled(s.T(), "Run", mock.Anything, mock.Anything, mock.Anything)
}

func (s *JobServiceTestSuite) TestRunOnce_ClaimErrorIsReturned() {
	s.jobRepo.On("ClaimNextDue", mock.Anything, mock.Anything, domain.MaxJobAttempts).
		Return(nil, errors.New("connection refused")).Once()

	claimed, err := s.service.RunOnce(context.Background())
	s.Error(err)
	s.False(claimed)
}

// The claim query enforces the attempt ceiling; the service just passes the
// constant through. This pins the contract value.
func (s *JobServiceTestSuite) TestRunOnce_UsesAttemptCeiling() {
	s.jobRepo.On("ClaimNextDue", mock.Anything, mock.Anything, 3).Return(nil, nil).Once()

	_, err := s.service.RunOnce(context.Background())
	s.Require().NoError(err)
	s.jobRepo.AssertExpectations(s.T())
}

func (s *JobServiceTestSuite) TestStart_StopsOnContextCancel() {
	s.jobRepo.On("ClaimNextDue", mock.Anything, mock.Anything, domain.MaxJobAttempts).Return(nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.service.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		s.Fail("worker did not stop after context cancellation")
	}
}

func TestJobServiceTestSuite(t *testing.T) {
	suite.Run(t, new(JobServiceTestSuite))
}
