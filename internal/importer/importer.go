// Package importer reconciles bank statement files against recorded
// transactions and persists confirmed imports atomically.
package importer

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/rodsouza/minhasfinancas/internal/common"
	"github.com/rodsouza/minhasfinancas/internal/ledger"
	"github.com/rodsouza/minhasfinancas/internal/model"
	"github.com/rodsouza/minhasfinancas/internal/service"
	"github.com/rodsouza/minhasfinancas/internal/statement"
)

// Importer runs the two-phase statement import: a read-only preview for user
// review, then an atomic commit of the confirmed records.
type Importer struct {
	storage  service.Storage
	registry *statement.Registry
}

// New creates an importer backed by the given storage and parser registry.
func New(storage service.Storage, registry *statement.Registry) *Importer {
	return &Importer{storage: storage, registry: registry}
}

// PreviewRequest describes one statement file to preview.
type PreviewRequest struct {
	Reader    io.Reader
	Format    string
	AccountID int64
	StartDate time.Time
	EndDate   time.Time
}

// CommitRequest carries the user-confirmed records and the bulk
// categorization parameters applied to every record in the batch.
type CommitRequest struct {
	AccrualDate              time.Time
	DueDate                  time.Time
	Records                  []model.StatementRecord
	AccountID                int64
	PersonID                 int64
	DefaultIncomeCategoryID  int64
	DefaultExpenseCategoryID int64
}

// Preview parses a statement, keeps records inside the inclusive calendar
// date window, flags those already recorded for the user, and returns the
// batch sorted by date descending. It performs no writes.
func (im *Importer) Preview(ctx context.Context, req PreviewRequest, userID int64) ([]model.StatementRecord, error) {
	if userID <= 0 {
		return nil, common.ErrUnauthorized
	}

	parser, err := im.registry.Lookup(req.Format)
	if err != nil {
		return nil, err
	}

	records, err := parser.Parse(ctx, req.Reader)
	if err != nil {
		return nil, err
	}

	filtered := make([]model.StatementRecord, 0, len(records))
	ids := make([]string, 0, len(records))
	for _, record := range records {
		if !withinWindow(record.Date, req.StartDate, req.EndDate) {
			continue
		}
		filtered = append(filtered, record)
		ids = append(ids, record.ExternalID)
	}

	recorded, err := im.storage.GetRecordedExternalIDs(ctx, userID, ids)
	if err != nil {
		return nil, err
	}
	for i := range filtered {
		filtered[i].AlreadyImported = recorded[filtered[i].ExternalID]
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Date.After(filtered[j].Date)
	})

	common.LogInfo("Statement preview ready", common.Fields{
		"parsed":    len(records),
		"in_window": len(filtered),
	})

	return filtered, nil
}

// Commit persists the confirmed records. Each surviving record becomes a
// paid transaction paired with a ledger entry; the account balance is
// adjusted once by the batch's summed delta. Records already recorded for
// the user are skipped silently. All writes share one database transaction:
// any failure rolls the whole import back.
func (im *Importer) Commit(ctx context.Context, req CommitRequest, userID int64) (int, error) {
	if userID <= 0 {
		return 0, common.ErrUnauthorized
	}

	if err := im.validateCategorization(ctx, req, userID); err != nil {
		return 0, err
	}
	if _, err := im.storage.GetAccount(ctx, req.AccountID, userID); err != nil {
		return 0, err
	}
	if _, err := im.storage.GetPerson(ctx, req.PersonID, userID); err != nil {
		return 0, err
	}

	tx, err := im.storage.BeginTx(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	// Authoritative duplicate re-check against the database, spanning the
	// user's full history rather than the preview window.
	ids := make([]string, 0, len(req.Records))
	for _, record := range req.Records {
		ids = append(ids, record.ExternalID)
	}
	recorded, err := tx.GetRecordedExternalIDs(ctx, userID, ids)
	if err != nil {
		return 0, err
	}

	batchID := uuid.NewString()
	var delta float64
	imported := 0

	for _, record := range req.Records {
		if recorded[record.ExternalID] {
			continue
		}

		txn := im.buildTransaction(record, req, batchID, userID)
		if err := tx.SaveTransaction(ctx, &txn); err != nil {
			return 0, err
		}

		movement, err := ledger.MovementFor(&txn, "PGTO: "+record.Description)
		if err != nil {
			return 0, err
		}
		if err := tx.SaveMovement(ctx, movement); err != nil {
			return 0, err
		}

		delta += txn.SignedAmount()
		imported++
	}

	if imported == 0 {
		// Nothing survived dedup; leave no trace.
		return 0, nil
	}

	if err := tx.AdjustAccountBalance(ctx, req.AccountID, userID, delta); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}

	common.LogInfo("Statement import committed", common.Fields{
		"imported":      imported,
		"skipped":       len(req.Records) - imported,
		"balance_delta": delta,
		"batch":         batchID,
	})

	return imported, nil
}

// validateCategorization ensures every record will have a category at commit
// time: records without one fall back to the default for their amount sign,
// and a missing default fails the whole batch.
func (im *Importer) validateCategorization(ctx context.Context, req CommitRequest, userID int64) error {
	var needsIncome, needsExpense bool
	for _, record := range req.Records {
		if record.CategoryID > 0 {
			continue
		}
		if record.Amount >= 0 {
			needsIncome = true
		} else {
			needsExpense = true
		}
	}

	if needsIncome && req.DefaultIncomeCategoryID <= 0 {
		return common.NewValidationError("a default income category is required for uncategorized income records")
	}
	if needsExpense && req.DefaultExpenseCategoryID <= 0 {
		return common.NewValidationError("a default expense category is required for uncategorized expense records")
	}

	if needsIncome {
		if _, err := im.storage.GetCategory(ctx, req.DefaultIncomeCategoryID, userID); err != nil {
			return err
		}
	}
	if needsExpense {
		if _, err := im.storage.GetCategory(ctx, req.DefaultExpenseCategoryID, userID); err != nil {
			return err
		}
	}
	return nil
}

// buildTransaction converts one surviving statement record into a paid
// transaction row.
func (im *Importer) buildTransaction(record model.StatementRecord, req CommitRequest, batchID string, userID int64) model.Transaction {
	amount := record.Amount
	if amount < 0 {
		amount = -amount
	}

	categoryID := record.CategoryID
	if categoryID <= 0 {
		if record.Kind() == model.KindExpense {
			categoryID = req.DefaultExpenseCategoryID
		} else {
			categoryID = req.DefaultIncomeCategoryID
		}
	}

	paymentDate := record.Date
	return model.Transaction{
		Kind:          record.Kind(),
		Amount:        amount,
		Description:   record.Description,
		AccrualDate:   req.AccrualDate,
		DueDate:       req.DueDate,
		PaymentDate:   &paymentDate,
		Paid:          true,
		ExternalID:    record.ExternalID,
		ImportBatchID: batchID,
		AccountID:     req.AccountID,
		CategoryID:    categoryID,
		PersonID:      req.PersonID,
		UserID:        userID,
	}
}

// withinWindow compares calendar dates, not timestamps; both bounds are
// inclusive.
func withinWindow(date, start, end time.Time) bool {
	d := toDate(date)
	return !d.Before(toDate(start)) && !d.After(toDate(end))
}

func toDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
