// Package engine implements transaction (lançamento) creation, including
// installment-plan expansion and ledger posting for paid transactions.
package engine

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rodsouza/minhasfinancas/internal/common"
	"github.com/rodsouza/minhasfinancas/internal/ledger"
	"github.com/rodsouza/minhasfinancas/internal/model"
	"github.com/rodsouza/minhasfinancas/internal/service"
)

// sumTolerance is the currency rounding slack allowed between the requested
// total and the sum of its installment amounts.
const sumTolerance = 0.01

// Engine creates transactions against the persistence layer. All validation
// happens before a database transaction opens; once open, the only exits are
// full commit or full rollback.
type Engine struct {
	storage service.Storage
}

// New creates a transaction engine backed by the given storage.
func New(storage service.Storage) *Engine {
	return &Engine{storage: storage}
}

// Create validates and persists a transaction request for the given user.
// Installment requests expand into one row per installment, the first acting
// as the group parent; a paid single transaction is ledger-posted in the same
// atomic unit as its insert. The returned transaction is the parent row.
func (e *Engine) Create(ctx context.Context, req model.Transaction, userID int64) (*model.Transaction, error) {
	if userID <= 0 {
		return nil, common.ErrUnauthorized
	}
	req.UserID = userID

	// Leaf-only posting rule: a category with children cannot receive
	// postings directly.
	if _, err := e.storage.GetCategory(ctx, req.CategoryID, userID); err != nil {
		return nil, err
	}
	children, err := e.storage.CountChildCategories(ctx, req.CategoryID, userID)
	if err != nil {
		return nil, err
	}
	if children > 0 {
		return nil, common.NewValidationError("cannot post to a parent category")
	}

	if req.Parcelado() && req.Paid {
		return nil, common.NewValidationError("an installment transaction cannot be created as paid")
	}

	if !req.Parcelado() && req.Paid {
		if req.AccountID <= 0 {
			return nil, common.NewValidationError("a paid transaction requires a bank account")
		}
		if req.PaymentDate == nil {
			return nil, common.NewValidationError("a paid transaction requires a payment date")
		}
	}

	if req.Parcelado() {
		if err := validateInstallments(&req); err != nil {
			return nil, err
		}
	}

	if _, err := e.storage.GetPerson(ctx, req.PersonID, userID); err != nil {
		return nil, err
	}
	if req.AccountID > 0 {
		if _, err := e.storage.GetAccount(ctx, req.AccountID, userID); err != nil {
			return nil, err
		}
	}

	if req.Parcelado() {
		return e.createInstallments(ctx, req)
	}
	return e.createSingle(ctx, req)
}

// validateInstallments checks the installment set of a request.
func validateInstallments(req *model.Transaction) error {
	if len(req.Installments) < 2 {
		return common.NewValidationError("an installment plan requires at least 2 installments")
	}

	var sum float64
	for i := range req.Installments {
		inst := &req.Installments[i]
		if inst.Amount <= 0 {
			return common.NewValidationError("installment %d must have a positive amount", i+1)
		}
		if inst.AccrualDate.IsZero() {
			return common.NewValidationError("installment %d is missing its accrual date", i+1)
		}
		if inst.DueDate.IsZero() {
			return common.NewValidationError("installment %d is missing its due date", i+1)
		}
		sum += inst.Amount
	}

	if math.Abs(sum-req.Amount) > sumTolerance {
		return common.NewValidationError(
			"installment amounts sum to %.2f, expected %.2f", sum, req.Amount)
	}
	return nil
}

// createSingle inserts one transaction and, when paid, its paired ledger
// entry inside the same unit of work.
func (e *Engine) createSingle(ctx context.Context, req model.Transaction) (*model.Transaction, error) {
	tx, err := e.storage.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.SaveTransaction(ctx, &req); err != nil {
		return nil, err
	}

	if req.Paid {
		if _, err := ledger.PostPayment(ctx, tx, &req); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &req, nil
}

// createInstallments expands the request into one row per installment. The
// first installment (in sequence order) becomes the group parent; the rest
// reference it. All rows persist atomically.
func (e *Engine) createInstallments(ctx context.Context, req model.Transaction) (*model.Transaction, error) {
	rows := expandInstallments(&req)

	tx, err := e.storage.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	parent := &rows[0]
	if err := tx.SaveTransaction(ctx, parent); err != nil {
		return nil, err
	}
	if parent.Paid {
		if _, err := ledger.PostPayment(ctx, tx, parent); err != nil {
			return nil, err
		}
	}

	for i := 1; i < len(rows); i++ {
		rows[i].ParentID = parent.ID
		if err := tx.SaveTransaction(ctx, &rows[i]); err != nil {
			return nil, err
		}
		if rows[i].Paid {
			if _, err := ledger.PostPayment(ctx, tx, &rows[i]); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit installments: %w", err)
	}
	return parent, nil
}

// expandInstallments synthesizes the transaction rows for an installment
// request, ordered by sequence number (zero sorts last) with due date as the
// tie-break.
func expandInstallments(req *model.Transaction) []model.Transaction {
	installments := make([]model.Installment, len(req.Installments))
	copy(installments, req.Installments)

	sort.SliceStable(installments, func(i, j int) bool {
		ni, nj := installments[i].Number, installments[j].Number
		if ni != nj {
			// Unnumbered installments sort after numbered ones
			if ni == 0 {
				return false
			}
			if nj == 0 {
				return true
			}
			return ni < nj
		}
		return installments[i].DueDate.Before(installments[j].DueDate)
	})

	total := len(installments)
	base := strings.TrimSpace(req.Description)

	rows := make([]model.Transaction, total)
	for i, inst := range installments {
		description := fmt.Sprintf("Parcela %d/%d", i+1, total)
		if base != "" {
			description = fmt.Sprintf("%s (%d/%d)", base, i+1, total)
		}

		// An installment is paid only once it carries a payment date and the
		// group has a bank account to post against.
		paid := inst.PaymentDate != nil && req.AccountID > 0

		rows[i] = model.Transaction{
			Kind:        req.Kind,
			Amount:      inst.Amount,
			Description: description,
			AccrualDate: inst.AccrualDate,
			DueDate:     inst.DueDate,
			PaymentDate: inst.PaymentDate,
			Paid:        paid,
			AccountID:   req.AccountID,
			CategoryID:  req.CategoryID,
			PersonID:    req.PersonID,
			UserID:      req.UserID,
		}
	}
	return rows
}
