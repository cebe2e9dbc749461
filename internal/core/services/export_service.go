package services

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/snapexpense/snap_expense_app/internal/apperrors"
	"github.com/snapexpense/snap_expense_app/internal/core/domain"
	portsrepo "github.com/snapexpense/snap_expense_app/internal/core/ports/repositories"
	portssvc "github.com/snapexpense/snap_expense_app/internal/core/ports/services"
	"github.com/snapexpense/snap_expense_app/internal/core/ports/storage"
	"github.com/snapexpense/snap_expense_app/internal/dto"
	"github.com/snapexpense/snap_expense_app/internal/middleware"
	"github.com/snapexpense/snap_expense_app/internal/utils/reconcile"
)

// utf8BOM is prepended to the report so spreadsheet applications detect the
// encoding correctly.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// exportService materializes export records into downloadable artifacts.
// It holds no process-wide mutable state: every run is a pure function of
// the record plus the store collaborators, so the synchronous and queued
// paths produce identical bytes.
type exportService struct {
	exportRepo  portsrepo.ExportRepositoryFacade
	batchRepo   portsrepo.BatchReader
	projectRepo portsrepo.ProjectReader
	expenseRepo portsrepo.ExpenseReader
	receiptRepo portsrepo.ReceiptReader
	userSvc     portssvc.UserReaderSvc
	store       storage.ObjectStore
	now         func() time.Time
}

// NewExportService creates a new ExportService.
func NewExportService(
	exportRepo portsrepo.ExportRepositoryFacade,
	batchRepo portsrepo.BatchReader,
	projectRepo portsrepo.ProjectReader,
	expenseRepo portsrepo.ExpenseReader,
	receiptRepo portsrepo.ReceiptReader,
	userSvc portssvc.UserReaderSvc,
	store storage.ObjectStore,
) portssvc.ExportSvcFacade {
	return &exportService{
		exportRepo:  exportRepo,
		batchRepo:   batchRepo,
		projectRepo: projectRepo,
		expenseRepo: expenseRepo,
		receiptRepo: receiptRepo,
		userSvc:     userSvc,
		store:       store,
		now:         time.Now,
	}
}

var _ portssvc.ExportSvcFacade = (*exportService)(nil)

// RequestExport creates a new pending export record. A pending or running
// export for the same batch and type is reused instead of creating a second
// one; the bool reports whether an existing record was returned.
func (s *exportService) RequestExport(ctx context.Context, req dto.CreateExportRequest, userID string) (*domain.ExportRecord, bool, error) {
	if req.BatchID == nil && len(req.ProjectIDs) == 0 {
		return nil, false, fmt.Errorf("%w: either batchID or projectIDs is required", apperrors.ErrValidation)
	}

	projectIDs := req.ProjectIDs
	if req.BatchID != nil {
		batch, err := s.batchRepo.FindBatchByID(ctx, *req.BatchID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to find batch %s: %w", *req.BatchID, err)
		}
		if batch.UserID != userID {
			return nil, false, apperrors.ErrForbidden
		}
		projectIDs = []string{batch.ProjectID}

		existing, err := s.exportRepo.FindActiveExport(ctx, *req.BatchID, req.Type)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, false, fmt.Errorf("failed to check active exports: %w", err)
		}
		if existing != nil {
			return existing, true, nil
		}
	}

	for _, pid := range projectIDs {
		project, err := s.projectRepo.FindProjectByID(ctx, pid)
		if err != nil {
			return nil, false, fmt.Errorf("failed to find project %s: %w", pid, err)
		}
		if project.UserID != userID {
			return nil, false, apperrors.ErrForbidden
		}
	}

	now := s.now()
	record := domain.ExportRecord{
		ExportID:   uuid.NewString(),
		BatchID:    req.BatchID,
		UserID:     userID,
		ProjectIDs: projectIDs,
		Type:       req.Type,
		Status:     domain.ExportPending,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.exportRepo.SaveExport(ctx, record); err != nil {
		return nil, false, fmt.Errorf("failed to save export record: %w", err)
	}
	return &record, false, nil
}

func (s *exportService) GetExportByID(ctx context.Context, exportID, userID string) (*domain.ExportRecord, error) {
	record, err := s.exportRepo.FindExportByID(ctx, exportID)
	if err != nil {
		return nil, err
	}
	if record.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return record, nil
}

func (s *exportService) ListExports(ctx context.Context, userID string) ([]domain.ExportRecord, error) {
	return s.exportRepo.ListExportsByUser(ctx, userID)
}

// Run materializes the export. A missing record is a vacuous success since
// the triggering entity may have been deleted while the job sat queued. The
// record is marked failed on any error; the error is still returned so the
// job queue can apply its own retry policy.
func (s *exportService) Run(ctx context.Context, exportID, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx).With(slog.String("export_id", exportID))

	record, err := s.exportRepo.FindExportByID(ctx, exportID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Info("Export record no longer exists, skipping")
			return nil
		}
		return fmt.Errorf("failed to load export %s: %w", exportID, err)
	}
	if record.UserID != userID {
		return apperrors.ErrForbidden
	}

	// The running transition must be externally visible before work begins
	// so a polling client never observes a stuck pending record.
	if err := s.exportRepo.MarkExportRunning(ctx, exportID, s.now()); err != nil {
		return fmt.Errorf("failed to mark export running: %w", err)
	}

	data, contentType, err := s.build(ctx, *record)
	if err == nil {
		key := fmt.Sprintf("exports/%s.%s", record.ExportID, record.Type.Extension())
		var size int64
		size, err = s.store.Upload(ctx, key, data, contentType)
		if err == nil {
			if err := s.exportRepo.MarkExportCompleted(ctx, exportID, key, size, s.now()); err != nil {
				return fmt.Errorf("failed to mark export completed: %w", err)
			}
			logger.Info("Export completed", slog.String("storage_key", key), slog.Int64("size", size))
			return nil
		}
	}

	logger.Error("Export failed", slog.String("error", err.Error()))
	if markErr := s.exportRepo.MarkExportFailed(ctx, exportID, err.Error(), s.now()); markErr != nil {
		logger.Error("Failed to mark export failed", slog.String("error", markErr.Error()))
	}
	return err
}

// exportRow is one assembled line of the tabular report together with the
// receipts it references.
type exportRow struct {
	expense   domain.Expense
	project   string
	fileNames []string
	receipts  []domain.Receipt
}

func (s *exportService) build(ctx context.Context, record domain.ExportRecord) ([]byte, string, error) {
	var (
		batchName string
		expenses  []domain.Expense
		receipts  []domain.Receipt
	)

	if record.BatchID != nil {
		batch, err := s.batchRepo.FindBatchByID(ctx, *record.BatchID)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load batch %s: %w", *record.BatchID, err)
		}
		batchName = batch.Name
		// Batch-scoped exports apply the identical filter semantics the
		// checker uses.
		expenses, err = s.expenseRepo.ListExpenses(ctx, batch.Filter())
		if err != nil {
			return nil, "", fmt.Errorf("failed to list expenses: %w", err)
		}
		receipts, err = s.receiptRepo.ListReceiptsByProject(ctx, batch.ProjectID, batch.UserID)
		if err != nil {
			return nil, "", fmt.Errorf("failed to list receipts: %w", err)
		}
	} else {
		for _, pid := range record.ProjectIDs {
			exp, err := s.expenseRepo.ListExpenses(ctx, domain.ExpenseFilter{ProjectID: pid, UserID: record.UserID})
			if err != nil {
				return nil, "", fmt.Errorf("failed to list expenses for project %s: %w", pid, err)
			}
			expenses = append(expenses, exp...)

			rec, err := s.receiptRepo.ListReceiptsByProject(ctx, pid, record.UserID)
			if err != nil {
				return nil, "", fmt.Errorf("failed to list receipts for project %s: %w", pid, err)
			}
			receipts = append(receipts, rec...)
		}
	}

	settings, err := s.userSvc.GetSettings(ctx, record.UserID)
	if err != nil {
		return nil, "", err
	}

	projectNames := make(map[string]string, len(record.ProjectIDs))
	for _, pid := range record.ProjectIDs {
		project, err := s.projectRepo.FindProjectByID(ctx, pid)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load project %s: %w", pid, err)
		}
		projectNames[pid] = project.Name
	}

	rows := s.assembleRows(expenses, receipts, projectNames, *settings)

	report := s.renderCSV(rows, *settings)

	switch record.Type {
	case domain.ExportCSV:
		return report, "text/csv; charset=utf-8", nil
	case domain.ExportYAML:
		index, err := s.renderIndex(batchName, rows, projectNames)
		if err != nil {
			return nil, "", err
		}
		return index, "application/x-yaml", nil
	case domain.ExportZip:
		index, err := s.renderIndex(batchName, rows, projectNames)
		if err != nil {
			return nil, "", err
		}
		archive, err := s.renderArchive(ctx, report, index, rows)
		if err != nil {
			return nil, "", err
		}
		return archive, "application/zip", nil
	default:
		return nil, "", fmt.Errorf("%w: unknown export type %q", apperrors.ErrValidation, record.Type)
	}
}

// assembleRows sorts the expenses and derives one report row per expense,
// including the deterministic receipt filenames.
func (s *exportService) assembleRows(expenses []domain.Expense, receipts []domain.Receipt, projectNames map[string]string, settings domain.UserSettings) []exportRow {
	// Same grouping implementation as the batch checker, by construction.
	grouped := reconcile.GroupReceiptsByExpense(receipts)

	sorted := make([]domain.Expense, len(expenses))
	copy(sorted, expenses)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].ExpenseID < sorted[j].ExpenseID
		}
		if settings.SortDescending {
			return sorted[i].Date.After(sorted[j].Date)
		}
		return sorted[i].Date.Before(sorted[j].Date)
	})

	rows := make([]exportRow, 0, len(sorted))
	for i, e := range sorted {
		linked := grouped[e.ExpenseID]
		fileNames := make([]string, len(linked))
		for j, r := range linked {
			fileNames[j] = deriveReceiptFileName(i+1, j, len(linked) > 1, e, r)
		}
		rows = append(rows, exportRow{
			expense:   e,
			project:   projectNames[e.ProjectID],
			fileNames: fileNames,
			receipts:  linked,
		})
	}
	return rows
}

// deriveReceiptFileName produces a stable, human-legible filename for one
// linked receipt: sequence, expense date, amount, category, note fragment
// and a short receipt id, disambiguated with a sub-index when an expense
// has multiple receipts.
func deriveReceiptFileName(sequence, subIndex int, multi bool, e domain.Expense, r domain.Receipt) string {
	parts := []string{
		fmt.Sprintf("%03d", sequence),
		e.Date.Format("2006-01-02"),
		e.Amount.StringFixed(2),
	}
	if slug := slugify(e.Category); slug != "" {
		parts = append(parts, slug)
	}
	if slug := slugify(e.Note); slug != "" {
		parts = append(parts, slug)
	}
	short := r.ReceiptID
	if len(short) > 8 {
		short = short[:8]
	}
	parts = append(parts, short)

	name := strings.Join(parts, "_")
	if multi {
		name += "-" + strconv.Itoa(subIndex+1)
	}
	return name + "." + r.Extension()
}

// slugify reduces free text to a filesystem-safe lowercase fragment.
func slugify(text string) string {
	const maxLen = 24
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
		if b.Len() >= maxLen {
			break
		}
	}
	return strings.Trim(b.String(), "-")
}

// renderCSV serializes the rows into the BOM-prefixed delimited report.
func (s *exportService) renderCSV(rows []exportRow, settings domain.UserSettings) []byte {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)

	header := []string{"Seq", "Project", "Date", "Amount", "Category", "Note", "Status", "Receipts", "Files"}
	if settings.IncludeMerchantKeywords {
		header = append(header, "Merchant Keywords")
	}
	if settings.IncludeExpenseID {
		header = append(header, "Expense ID")
	}
	if settings.IncludeReceiptIDs {
		header = append(header, "Receipt IDs")
	}
	_ = w.Write(header)

	for i, row := range rows {
		e := row.expense
		fields := []string{
			strconv.Itoa(i + 1),
			row.project,
			e.Date.Format("2006-01-02"),
			e.Amount.StringFixed(2),
			e.Category,
			e.Note,
			string(e.Status),
			strconv.Itoa(len(row.receipts)),
			strings.Join(row.fileNames, "; "),
		}
		if settings.IncludeMerchantKeywords {
			fields = append(fields, merchantKeywords(e.Note))
		}
		if settings.IncludeExpenseID {
			fields = append(fields, e.ExpenseID)
		}
		if settings.IncludeReceiptIDs {
			ids := make([]string, len(row.receipts))
			for j, r := range row.receipts {
				ids[j] = r.ReceiptID
			}
			fields = append(fields, strings.Join(ids, "; "))
		}
		_ = w.Write(fields)
	}

	w.Flush()
	return buf.Bytes()
}

// merchantKeywords extracts the first few substantial words of the note as a
// crude merchant hint for reimbursement reviewers.
func merchantKeywords(note string) string {
	var keywords []string
	for _, word := range strings.Fields(strings.ToLower(note)) {
		if len(word) < 3 {
			continue
		}
		keywords = append(keywords, word)
		if len(keywords) == 3 {
			break
		}
	}
	return strings.Join(keywords, " ")
}

// exportIndex is the structured document accompanying richer export types.
type exportIndex struct {
	Batch    string             `yaml:"batch,omitempty"`
	Projects []string           `yaml:"projects"`
	Entries  []exportIndexEntry `yaml:"entries"`
}

type exportIndexEntry struct {
	Sequence int                  `yaml:"sequence"`
	Project  string               `yaml:"project"`
	Date     string               `yaml:"date"`
	Amount   string               `yaml:"amount"`
	Category string               `yaml:"category,omitempty"`
	Note     string               `yaml:"note,omitempty"`
	Status   string               `yaml:"status"`
	Receipts []exportIndexReceipt `yaml:"receipts,omitempty"`
}

type exportIndexReceipt struct {
	ReceiptID string `yaml:"receiptId"`
	File      string `yaml:"file"`
	Amount    string `yaml:"amount,omitempty"`
}

func (s *exportService) renderIndex(batchName string, rows []exportRow, projectNames map[string]string) ([]byte, error) {
	projects := make([]string, 0, len(projectNames))
	for _, name := range projectNames {
		projects = append(projects, name)
	}
	sort.Strings(projects)

	index := exportIndex{
		Batch:    batchName,
		Projects: projects,
		Entries:  make([]exportIndexEntry, 0, len(rows)),
	}

	for i, row := range rows {
		e := row.expense
		entry := exportIndexEntry{
			Sequence: i + 1,
			Project:  row.project,
			Date:     e.Date.Format("2006-01-02"),
			Amount:   e.Amount.StringFixed(2),
			Category: e.Category,
			Note:     e.Note,
			Status:   string(e.Status),
		}
		for j, r := range row.receipts {
			rec := exportIndexReceipt{
				ReceiptID: r.ReceiptID,
				File:      row.fileNames[j],
			}
			if r.Amount != nil {
				rec.Amount = r.Amount.StringFixed(2)
			}
			entry.Receipts = append(entry.Receipts, rec)
		}
		index.Entries = append(index.Entries, entry)
	}

	data, err := yaml.Marshal(index)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export index: %w", err)
	}
	return data, nil
}

// renderArchive bundles the report, the index and every linked receipt's
// original bytes. Receipts are fetched and appended one at a time to bound
// peak memory for large batches.
func (s *exportService) renderArchive(ctx context.Context, report, index []byte, rows []exportRow) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.Create("report.csv")
	if err != nil {
		return nil, fmt.Errorf("failed to create archive entry: %w", err)
	}
	if _, err := w.Write(report); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}

	w, err = zw.Create("index.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to create archive entry: %w", err)
	}
	if _, err := w.Write(index); err != nil {
		return nil, fmt.Errorf("failed to write index: %w", err)
	}

	logger := middleware.GetLoggerFromCtx(ctx)
	for _, row := range rows {
		for j, r := range row.receipts {
			if r.StorageKey == nil {
				logger.Warn("Receipt has no stored file, skipping in archive", slog.String("receipt_id", r.ReceiptID))
				continue
			}
			data, err := s.store.Download(ctx, *r.StorageKey)
			if err != nil {
				return nil, fmt.Errorf("failed to download receipt %s: %w", r.ReceiptID, err)
			}
			w, err := zw.Create("receipts/" + row.fileNames[j])
			if err != nil {
				return nil, fmt.Errorf("failed to create archive entry: %w", err)
			}
			if _, err := w.Write(data); err != nil {
				return nil, fmt.Errorf("failed to write receipt %s: %w", r.ReceiptID, err)
			}
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
