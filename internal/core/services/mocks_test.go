package services_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/snapexpense/snap_expense_app/internal/core/domain"
)

// --- Repository mocks ---

type MockBatchRepository struct {
	mock.Mock
}

func (m *MockBatchRepository) FindBatchByID(ctx context.Context, batchID string) (*domain.Batch, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Batch), args.Error(1)
}

func (m *MockBatchRepository) ListBatchesByProject(ctx context.Context, projectID, userID string) ([]domain.Batch, error) {
	args := m.Called(ctx, projectID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Batch), args.Error(1)
}

func (m *MockBatchRepository) ListIssuesByBatch(ctx context.Context, batchID string) ([]domain.BatchIssue, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BatchIssue), args.Error(1)
}

func (m *MockBatchRepository) SaveBatch(ctx context.Context, batch domain.Batch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *MockBatchRepository) UpdateBatch(ctx context.Context, batch domain.Batch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *MockBatchRepository) DeleteBatch(ctx context.Context, batchID string) error {
	args := m.Called(ctx, batchID)
	return args.Error(0)
}

func (m *MockBatchRepository) ReplaceIssues(ctx context.Context, batchID string, issues []domain.BatchIssue, summary domain.IssueSummary, checkedAt time.Time) error {
	args := m.Called(ctx, batchID, issues, summary, checkedAt)
	return args.Error(0)
}

type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) FindExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	args := m.Called(ctx, expenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}

func (m *MockExpenseRepository) ListExpenses(ctx context.Context, filter domain.ExpenseFilter) ([]domain.Expense, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Expense), args.Error(1)
}

func (m *MockExpenseRepository) SaveExpense(ctx context.Context, expense domain.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockExpenseRepository) UpdateExpense(ctx context.Context, expense domain.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockExpenseRepository) UpdateExpenseStatus(ctx context.Context, expenseID string, status domain.ExpenseStatus, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, expenseID, status, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockExpenseRepository) DeleteExpense(ctx context.Context, expenseID string) error {
	args := m.Called(ctx, expenseID)
	return args.Error(0)
}

type MockReceiptRepository struct {
	mock.Mock
}

func (m *MockReceiptRepository) FindReceiptByID(ctx context.Context, receiptID string) (*domain.Receipt, error) {
	args := m.Called(ctx, receiptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) ListReceiptsByProject(ctx context.Context, projectID, userID string) ([]domain.Receipt, error) {
	args := m.Called(ctx, projectID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) SaveReceipt(ctx context.Context, receipt domain.Receipt) error {
	args := m.Called(ctx, receipt)
	return args.Error(0)
}

func (m *MockReceiptRepository) UpdateReceipt(ctx context.Context, receipt domain.Receipt) error {
	args := m.Called(ctx, receipt)
	return args.Error(0)
}

func (m *MockReceiptRepository) SetMatchedExpense(ctx context.Context, receiptID string, expenseID *string, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, receiptID, expenseID, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockReceiptRepository) SoftDeleteReceipt(ctx context.Context, receiptID string, deletedBy string, deletedAt time.Time) error {
	args := m.Called(ctx, receiptID, deletedBy, deletedAt)
	return args.Error(0)
}

type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) FindProjectByID(ctx context.Context, projectID string) (*domain.Project, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}

func (m *MockProjectRepository) ListProjectsByUser(ctx context.Context, userID string) ([]domain.Project, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Project), args.Error(1)
}

func (m *MockProjectRepository) SaveProject(ctx context.Context, project domain.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) UpdateProject(ctx context.Context, project domain.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) DeleteProject(ctx context.Context, projectID string) error {
	args := m.Called(ctx, projectID)
	return args.Error(0)
}

type MockExportRepository struct {
	mock.Mock
}

func (m *MockExportRepository) FindExportByID(ctx context.Context, exportID string) (*domain.ExportRecord, error) {
	args := m.Called(ctx, exportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExportRecord), args.Error(1)
}

func (m *MockExportRepository) FindActiveExport(ctx context.Context, batchID string, exportType domain.ExportType) (*domain.ExportRecord, error) {
	args := m.Called(ctx, batchID, exportType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExportRecord), args.Error(1)
}

func (m *MockExportRepository) ListExportsByUser(ctx context.Context, userID string) ([]domain.ExportRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExportRecord), args.Error(1)
}

func (m *MockExportRepository) SaveExport(ctx context.Context, record domain.ExportRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockExportRepository) MarkExportRunning(ctx context.Context, exportID string, updatedAt time.Time) error {
	args := m.Called(ctx, exportID, updatedAt)
	return args.Error(0)
}

func (m *MockExportRepository) MarkExportCompleted(ctx context.Context, exportID string, storageKey string, fileSize int64, updatedAt time.Time) error {
	args := m.Called(ctx, exportID, storageKey, fileSize, updatedAt)
	return args.Error(0)
}

func (m *MockExportRepository) MarkExportFailed(ctx context.Context, exportID string, errMsg string, updatedAt time.Time) error {
	args := m.Called(ctx, exportID, errMsg, updatedAt)
	return args.Error(0)
}

type MockJobRepository struct {
	mock.Mock
}

func (m *MockJobRepository) FindJobByID(ctx context.Context, jobID string) (*domain.Job, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobRepository) SaveJob(ctx context.Context, job domain.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobRepository) ClaimNextDue(ctx context.Context, now time.Time, maxAttempts int) (*domain.Job, error) {
	args := m.Called(ctx, now, maxAttempts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobRepository) MarkJobCompleted(ctx context.Context, jobID string, completedAt time.Time) error {
	args := m.Called(ctx, jobID, completedAt)
	return args.Error(0)
}

func (m *MockJobRepository) MarkJobFailed(ctx context.Context, jobID string, errMsg string, retryAt time.Time) error {
	args := m.Called(ctx, jobID, errMsg, retryAt)
	return args.Error(0)
}

// --- Service mocks ---

type MockUserReaderSvc struct {
	mock.Mock
}

func (m *MockUserReaderSvc) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserReaderSvc) GetSettings(ctx context.Context, userID string) (*domain.UserSettings, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserSettings), args.Error(1)
}

type MockBatchChecker struct {
	mock.Mock
}

func (m *MockBatchChecker) Check(ctx context.Context, batchID, userID string) error {
	args := m.Called(ctx, batchID, userID)
	return args.Error(0)
}

type MockExportRunner struct {
	mock.Mock
}

func (m *MockExportRunner) Run(ctx context.Context, exportID, userID string) error {
	args := m.Called(ctx, exportID, userID)
	return args.Error(0)
}

// fakeObjectStore is an in-memory object store for export tests.
type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (s *fakeObjectStore) Upload(_ context.Context, key string, data []byte, _ string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.objects[key] = cp
	return int64(len(data)), nil
}

func (s *fakeObjectStore) Download(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return data, nil
}
