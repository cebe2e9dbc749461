package services_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"

	"github.com/snapexpense/snap_expense_app/internal/apperrors"
	"github.com/snapexpense/snap_expense_app/internal/core/domain"
	portssvc "github.com/snapexpense/snap_expense_app/internal/core/ports/services"
	"github.com/snapexpense/snap_expense_app/internal/core/services"
	"github.com/snapexpense/snap_expense_app/internal/dto"
)

type ExportServiceTestSuite struct {
	suite.Suite
	exportRepo  *MockExportRepository
	batchRepo   *MockBatchRepository
	projectRepo *MockProjectRepository
	expenseRepo *MockExpenseRepository
	receiptRepo *MockReceiptRepository
	userSvc     *MockUserReaderSvc
	store       *fakeObjectStore
	service     portssvc.ExportSvcFacade
}

func (s *ExportServiceTestSuite) SetupTest() {
	s.exportRepo = new(MockExportRepository)
	s.batchRepo = new(MockBatchRepository)
	s.projectRepo = new(MockProjectRepository)
	s.expenseRepo = new(MockExpenseRepository)
	s.receiptRepo = new(MockReceiptRepository)
	s.userSvc = new(MockUserReaderSvc)
	s.store = newFakeObjectStore()
	s.service = services.NewExportService(
		s.exportRepo, s.batchRepo, s.projectRepo, s.expenseRepo, s.receiptRepo, s.userSvc, s.store,
	)
}

func (s *ExportServiceTestSuite) record(exportType domain.ExportType) *domain.ExportRecord {
	batchID := "batch-1"
	return &domain.ExportRecord{
		ExportID:   "exp-1",
		BatchID:    &batchID,
		UserID:     "user-1",
		ProjectIDs: []string{"project-1"},
		Type:       exportType,
		Status:     domain.ExportPending,
	}
}

func (s *ExportServiceTestSuite) expectBatchData(expenses []domain.Expense, receipts []domain.Receipt) {
	batch := &domain.Batch{
		BatchID:   "batch-1",
		UserID:    "user-1",
		ProjectID: "project-1",
		Name:      "March submission",
	}
	s.batchRepo.On("FindBatchByID", mock.Anything, "batch-1").Return(batch, nil)
	s.expenseRepo.On("ListExpenses", mock.Anything, batch.Filter()).Return(expenses, nil)
	s.receiptRepo.On("ListReceiptsByProject", mock.Anything, "project-1", "user-1").Return(receipts, nil)
	s.projectRepo.On("FindProjectByID", mock.Anything, "project-1").
		Return(&domain.Project{ProjectID: "project-1", UserID: "user-1", Name: "Berlin office"}, nil)
	settings := domain.DefaultUserSettings("user-1")
	s.userSvc.On("GetSettings", mock.Anything, "user-1").Return(&settings, nil)
}

func (s *ExportServiceTestSuite) sampleExpenses() []domain.Expense {
	return []domain.Expense{
		{ExpenseID: "e2", UserID: "user-1", ProjectID: "project-1", Amount: dec("20.00"), Date: day("2025-03-05"), Category: "meals", Note: "team lunch", Status: domain.ExpenseMatched},
		{ExpenseID: "e1", UserID: "user-1", ProjectID: "project-1", Amount: dec("10.00"), Date: day("2025-03-01"), Category: "travel", Note: "taxi", Status: domain.ExpenseMissingReceipt},
	}
}

func (s *ExportServiceTestSuite) TestRun_CSVExport() {
	record := s.record(domain.ExportCSV)
	s.exportRepo.On("FindExportByID", mock.Anything, "exp-1").Return(record, nil).Once()
	s.exportRepo.On("MarkExportRunning", mock.Anything, "exp-1", mock.Anything).Return(nil).Once()
	s.expectBatchData(s.sampleExpenses(), nil)
	s.exportRepo.On("MarkExportCompleted", mock.Anything, "exp-1", "exports/exp-1.csv", mock.Anything, mock.Anything).Return(nil).Once()

	err := s.service.Run(context.Background(), "exp-1", "user-1")
	s.Require().NoError(err)

	data, err := s.store.Download(context.Background(), "exports/exp-1.csv")
	s.Require().NoError(err)

	// Spreadsheet-friendly encoding marker.
	s.True(bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))

	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})))
	rows, err := reader.ReadAll()
	s.Require().NoError(err)
	s.Require().Len(rows, 3)

	s.Equal([]string{"Seq", "Project", "Date", "Amount", "Category", "Note", "Status", "Receipts", "Files"}, rows[0])
	// Default sort is date ascending regardless of input order.
	s.Equal("2025-03-01", rows[1][2])
	s.Equal("10.00", rows[1][3])
	s.Equal("2025-03-05", rows[2][2])
	s.Equal("Berlin office", rows[1][1])

	s.exportRepo.AssertExpectations(s.T())
}

func (s *ExportServiceTestSuite) TestRun_ProducesIdenticalBytesOnRerun() {
	expenses := s.sampleExpenses()
	for _, id := range []string{"exp-1", "exp-2"} {
		batchID := "batch-1"
		record := &domain.ExportRecord{
			ExportID: id, BatchID: &batchID, UserID: "user-1",
			ProjectIDs: []string{"project-1"}, Type: domain.ExportCSV, Status: domain.ExportPending,
		}
		s.exportRepo.On("FindExportByID", mock.Anything, id).Return(record, nil).Once()
		s.exportRepo.On("MarkExportRunning", mock.Anything, id, mock.Anything).Return(nil).Once()
		s.exportRepo.On("MarkExportCompleted", mock.Anything, id, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	}
	s.expectBatchData(expenses, nil)

	s.Require().NoError(s.service.Run(context.Background(), "exp-1", "user-1"))
	s.Require().NoError(s.service.Run(context.Background(), "exp-2", "user-1"))

	first, err := s.store.Download(context.Background(), "exports/exp-1.csv")
	s.Require().NoError(err)
	second, err := s.store.Download(context.Background(), "exports/exp-2.csv")
	s.Require().NoError(err)
	s.Equal(first, second)
}

func (s *ExportServiceTestSuite) TestRun_YAMLIndex() {
	record := s.record(domain.ExportYAML)
	s.exportRepo.On("FindExportByID", mock.Anything, "exp-1").Return(record, nil).Once()
	s.exportRepo.On("MarkExportRunning", mock.Anything, "exp-1", mock.Anything).Return(nil).Once()
	s.expectBatchData(s.sampleExpenses(), nil)
	s.exportRepo.On("MarkExportCompleted", mock.Anything, "exp-1", "exports/exp-1.yaml", mock.Anything, mock.Anything).Return(nil).Once()

	err := s.service.Run(context.Background(), "exp-1", "user-1")
	s.Require().NoError(err)

	data, err := s.store.Download(context.Background(), "exports/exp-1.yaml")
	s.Require().NoError(err)

	var index struct {
		Batch   string `yaml:"batch"`
		Entries []struct {
			Sequence int    `yaml:"sequence"`
			Date     string `yaml:"date"`
			Amount   string `yaml:"amount"`
		} `yaml:"entries"`
	}
	s.Require().NoError(yaml.Unmarshal(data, &index))
	s.Equal("March submission", index.Batch)
	s.Require().Len(index.Entries, 2)
	s.Equal(1, index.Entries[0].Sequence)
	s.Equal("2025-03-01", index.Entries[0].Date)
}

func (s *ExportServiceTestSuite) TestRun_ZipBundlesReceipts() {
	storageKey := "receipts/r1"
	expenseID := "e1"
	receipts := []domain.Receipt{{
		ReceiptID:        "r1",
		UserID:           "user-1",
		ProjectID:        "project-1",
		FileName:         "taxi.pdf",
		StorageKey:       &storageKey,
		MatchedExpenseID: &expenseID,
	}}
	_, err := s.store.Upload(context.Background(), storageKey, []byte("%PDF-fake"), "application/pdf")
	s.Require().NoError(err)

	record := s.record(domain.ExportZip)
	s.exportRepo.On("FindExportByID", mock.Anything, "exp-1").Return(record, nil).Once()
	s.exportRepo.On("MarkExportRunning", mock.Anything, "exp-1", mock.Anything).Return(nil).Once()
	s.expectBatchData(s.sampleExpenses(), receipts)
	s.exportRepo.On("MarkExportCompleted", mock.Anything, "exp-1", "exports/exp-1.zip", mock.Anything, mock.Anything).Return(nil).Once()

	s.Require().NoError(s.service.Run(context.Background(), "exp-1", "user-1"))

	data, err := s.store.Download(context.Background(), "exports/exp-1.zip")
	s.Require().NoError(err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	s.Require().NoError(err)

	names := map[string]*zip.File{}
	for _, f := range zr.File {
		names[f.Name] = f
	}
	s.Contains(names, "report.csv")
	s.Contains(names, "index.yaml")

	var receiptEntry *zip.File
	for name, f := range names {
		if strings.HasPrefix(name, "receipts/") {
			receiptEntry = f
		}
	}
	s.Require().NotNil(receiptEntry, "archive should contain the linked receipt")
	s.True(strings.HasSuffix(receiptEntry.Name, ".pdf"))

	rc, err := receiptEntry.Open()
	s.Require().NoError(err)
	defer rc.Close()
	content, err := io.ReadAll(rc)
	s.Require().NoError(err)
	s.Equal([]byte("%PDF-fake"), content)
}

func (s *ExportServiceTestSuite) TestRun_FailureMarksRecordAndReturnsError() {
	record := s.record(domain.ExportCSV)
	s.exportRepo.On("FindExportByID", mock.Anything, "exp-1").Return(record, nil).Once()
	s.exportRepo.On("MarkExportRunning", mock.Anything, "exp-1", mock.Anything).Return(nil).Once()
	s.batchRepo.On("FindBatchByID", mock.Anything, "batch-1").
		Return(nil, errors.New("connection refused")).Once()
	s.exportRepo.On("MarkExportFailed", mock.Anything, "exp-1", mock.Anything, mock.Anything).Return(nil).Once()

	err := s.service.Run(context.Background(), "exp-1", "user-1")
	s.Error(err)
	s.exportRepo.AssertExpectations(s.T())
}

func (s *ExportServiceTestSuite) TestRun_MissingRecordIsVacuousSuccess() {
	s.exportRepo.On("FindExportByID", mock.Anything, "gone").Return(nil, apperrors.ErrNotFound).Once()

	err := s.service.Run(context.Background(), "gone", "user-1")
	s.NoError(err)
	s.exportRepo.AssertNotCalled(s.T(), "MarkExportRunning", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ExportServiceTestSuite) TestRequestExport_ReusesActiveExport() {
	batchID := "batch-1"
	batch := &domain.Batch{BatchID: batchID, UserID: "user-1", ProjectID: "project-1"}
	existing := s.record(domain.ExportCSV)
	existing.Status = domain.ExportRunning

	s.batchRepo.On("FindBatchByID", mock.Anything, batchID).Return(batch, nil).Once()
	s.exportRepo.On("FindActiveExport", mock.Anything, batchID, domain.ExportCSV).Return(existing, nil).Once()

	record, reused, err := s.service.RequestExport(context.Background(), dto.CreateExportRequest{
		BatchID: &batchID,
		Type:    domain.ExportCSV,
	}, "user-1")
	s.Require().NoError(err)
	s.True(reused)
	s.Equal("exp-1", record.ExportID)
	s.exportRepo.AssertNotCalled(s.T(), "SaveExport", mock.Anything, mock.Anything)
}

func (s *ExportServiceTestSuite) TestRequestExport_RequiresScope() {
	_, _, err := s.service.RequestExport(context.Background(), dto.CreateExportRequest{
		Type: domain.ExportCSV,
	}, "user-1")
	s.ErrorIs(err, apperrors.ErrValidation)
}

func TestExportServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExportServiceTestSuite))
}
