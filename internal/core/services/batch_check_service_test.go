package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/snapexpense/snap_expense_app/internal/apperrors"
	"github.com/snapexpense/snap_expense_app/internal/core/domain"
	portssvc "github.com/snapexpense/snap_expense_app/internal/core/ports/services"
	"github.com/snapexpense/snap_expense_app/internal/core/services"
)

type BatchCheckServiceTestSuite struct {
	suite.Suite
	batchRepo   *MockBatchRepository
	expenseRepo *MockExpenseRepository
	receiptRepo *MockReceiptRepository
	service     portssvc.BatchCheckerSvc
}

func (s *BatchCheckServiceTestSuite) SetupTest() {
	s.batchRepo = new(MockBatchRepository)
	s.expenseRepo = new(MockExpenseRepository)
	s.receiptRepo = new(MockReceiptRepository)
	s.service = services.NewBatchCheckService(s.batchRepo, s.expenseRepo, s.receiptRepo)
}

func (s *BatchCheckServiceTestSuite) batch() *domain.Batch {
	return &domain.Batch{
		BatchID:   "batch-1",
		UserID:    "user-1",
		ProjectID: "project-1",
		Name:      "March submission",
	}
}

func linkedReceipt(id, expenseID, hash, amount string) domain.Receipt {
	r := domain.Receipt{
		ReceiptID:        id,
		UserID:           "user-1",
		ProjectID:        "project-1",
		FileName:         id + ".pdf",
		MatchedExpenseID: &expenseID,
	}
	if hash != "" {
		r.Hash = &hash
	}
	if amount != "" {
		d := dec(amount)
		r.Amount = &d
	}
	return r
}

func (s *BatchCheckServiceTestSuite) TestCheck_DetectsMissingAndMismatch() {
	batch := s.batch()
	expenses := []domain.Expense{
		{ExpenseID: "e1", UserID: "user-1", ProjectID: "project-1", Amount: dec("10.00"), Date: day("2025-03-01"), Status: domain.ExpenseMatched},
		{ExpenseID: "e2", UserID: "user-1", ProjectID: "project-1", Amount: dec("20.00"), Date: day("2025-03-02"), Status: domain.ExpenseMissingReceipt},
		{ExpenseID: "e3", UserID: "user-1", ProjectID: "project-1", Amount: dec("30.00"), Date: day("2025-03-03"), Status: domain.ExpenseMatched},
	}
	receipts := []domain.Receipt{
		linkedReceipt("r1", "e1", "h1", "10.00"),
		linkedReceipt("r3", "e3", "h3", "35.00"), // differs from e3's amount
	}

	s.batchRepo.On("FindBatchByID", mock.Anything, "batch-1").Return(batch, nil).Once()
	s.expenseRepo.On("ListExpenses", mock.Anything, batch.Filter()).Return(expenses, nil).Once()
	s.receiptRepo.On("ListReceiptsByProject", mock.Anything, "project-1", "user-1").Return(receipts, nil).Once()

	var gotIssues []domain.BatchIssue
	var gotSummary domain.IssueSummary
	s.batchRepo.On("ReplaceIssues", mock.Anything, "batch-1", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotIssues = args.Get(2).([]domain.BatchIssue)
			gotSummary = args.Get(3).(domain.IssueSummary)
		}).Return(nil).Once()

	err := s.service.Check(context.Background(), "batch-1", "user-1")
	s.Require().NoError(err)

	s.Equal(domain.IssueSummary{MissingReceipt: 1, DuplicateReceipt: 0, AmountMismatch: 1}, gotSummary)
	s.Require().Len(gotIssues, 2)

	byType := map[domain.IssueType]domain.BatchIssue{}
	for _, iss := range gotIssues {
		byType[iss.Type] = iss
	}

	missing := byType[domain.IssueMissingReceipt]
	s.Equal(domain.SeverityWarning, missing.Severity)
	s.Require().NotNil(missing.ExpenseID)
	s.Equal("e2", *missing.ExpenseID)

	mismatch := byType[domain.IssueAmountMismatch]
	s.Equal(domain.SeverityError, mismatch.Severity)
	s.Require().NotNil(mismatch.ReceiptID)
	s.Equal("r3", *mismatch.ReceiptID)
	s.batchRepo.AssertExpectations(s.T())
}

func (s *BatchCheckServiceTestSuite) TestCheck_FlagsEveryMemberOfDuplicateGroup() {
	batch := s.batch()
	expenses := []domain.Expense{
		{ExpenseID: "e1", UserID: "user-1", ProjectID: "project-1", Amount: dec("10.00"), Date: day("2025-03-01"), Status: domain.ExpenseMatched},
		{ExpenseID: "e2", UserID: "user-1", ProjectID: "project-1", Amount: dec("10.00"), Date: day("2025-03-02"), Status: domain.ExpenseMatched},
	}
	receipts := []domain.Receipt{
		linkedReceipt("r1", "e1", "same-hash", "10.00"),
		linkedReceipt("r2", "e2", "same-hash", "10.00"),
	}

	s.batchRepo.On("FindBatchByID", mock.Anything, "batch-1").Return(batch, nil).Once()
	s.expenseRepo.On("ListExpenses", mock.Anything, batch.Filter()).Return(expenses, nil).Once()
	s.receiptRepo.On("ListReceiptsByProject", mock.Anything, "project-1", "user-1").Return(receipts, nil).Once()

	var gotIssues []domain.BatchIssue
	s.batchRepo.On("ReplaceIssues", mock.Anything, "batch-1", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotIssues = args.Get(2).([]domain.BatchIssue)
		}).Return(nil).Once()

	err := s.service.Check(context.Background(), "batch-1", "user-1")
	s.Require().NoError(err)

	// Both colliding receipts are flagged, not just the second one.
	s.Require().Len(gotIssues, 2)
	flagged := map[string]bool{}
	for _, iss := range gotIssues {
		s.Equal(domain.IssueDuplicateReceipt, iss.Type)
		s.Require().NotNil(iss.ReceiptID)
		flagged[*iss.ReceiptID] = true
	}
	s.True(flagged["r1"])
	s.True(flagged["r2"])
}

func (s *BatchCheckServiceTestSuite) TestCheck_RepeatRunProducesSameIssueSet() {
	batch := s.batch()
	expenses := []domain.Expense{
		{ExpenseID: "e1", UserID: "user-1", ProjectID: "project-1", Amount: dec("10.00"), Date: day("2025-03-01"), Status: domain.ExpenseMissingReceipt},
	}

	s.batchRepo.On("FindBatchByID", mock.Anything, "batch-1").Return(batch, nil).Twice()
	s.expenseRepo.On("ListExpenses", mock.Anything, batch.Filter()).Return(expenses, nil).Twice()
	s.receiptRepo.On("ListReceiptsByProject", mock.Anything, "project-1", "user-1").Return([]domain.Receipt{}, nil).Twice()

	var runs [][]domain.BatchIssue
	s.batchRepo.On("ReplaceIssues", mock.Anything, "batch-1", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			runs = append(runs, args.Get(2).([]domain.BatchIssue))
		}).Return(nil).Twice()

	s.Require().NoError(s.service.Check(context.Background(), "batch-1", "user-1"))
	s.Require().NoError(s.service.Check(context.Background(), "batch-1", "user-1"))

	s.Require().Len(runs, 2)
	s.Require().Len(runs[0], 1)
	s.Require().Len(runs[1], 1)
	// Same issue modulo the generated ID and timestamp.
	s.Equal(runs[0][0].Type, runs[1][0].Type)
	s.Equal(runs[0][0].ExpenseID, runs[1][0].ExpenseID)
	s.Equal(runs[0][0].Message, runs[1][0].Message)
}

func (s *BatchCheckServiceTestSuite) TestCheck_MissingBatchIsVacuousSuccess() {
	s.batchRepo.On("FindBatchByID", mock.Anything, "gone").Return(nil, apperrors.ErrNotFound).Once()

	err := s.service.Check(context.Background(), "gone", "user-1")
	s.NoError(err)
	s.batchRepo.AssertNotCalled(s.T(), "ReplaceIssues", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *BatchCheckServiceTestSuite) TestCheck_ForeignBatchIsForbidden() {
	batch := s.batch()
	s.batchRepo.On("FindBatchByID", mock.Anything, "batch-1").Return(batch, nil).Once()

	err := s.service.Check(context.Background(), "batch-1", "intruder")
	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *BatchCheckServiceTestSuite) TestCheck_WritesCheckedAt() {
	batch := s.batch()
	s.batchRepo.On("FindBatchByID", mock.Anything, "batch-1").Return(batch, nil).Once()
	s.expenseRepo.On("ListExpenses", mock.Anything, batch.Filter()).Return([]domain.Expense{}, nil).Once()
	s.receiptRepo.On("ListReceiptsByProject", mock.Anything, "project-1", "user-1").Return([]domain.Receipt{}, nil).Once()

	var gotCheckedAt time.Time
	s.batchRepo.On("ReplaceIssues", mock.Anything, "batch-1", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotCheckedAt = args.Get(4).(time.Time)
		}).Return(nil).Once()

	before := time.Now()
	s.Require().NoError(s.service.Check(context.Background(), "batch-1", "user-1"))
	s.WithinRange(gotCheckedAt, before, time.Now())
}

func TestBatchCheckServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BatchCheckServiceTestSuite))
}
