// Package storage provides the data persistence layer for minhasfinancas.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rodsouza/minhasfinancas/internal/model"
)

// Validation errors.
var (
	ErrNilContext      = errors.New("context cannot be nil")
	ErrEmptyString     = errors.New("string parameter cannot be empty")
	ErrNilParameter    = errors.New("parameter cannot be nil")
	ErrInvalidAccount  = errors.New("invalid account")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidPerson   = errors.New("invalid person")
	ErrInvalidEntry    = errors.New("invalid transaction")
	ErrInvalidMovement = errors.New("invalid movement")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateAccount validates an account before persistence.
func validateAccount(account *model.Account) error {
	if account == nil {
		return fmt.Errorf("%w: account", ErrNilParameter)
	}
	if strings.TrimSpace(account.Description) == "" {
		return fmt.Errorf("%w: missing description", ErrInvalidAccount)
	}
	if !model.ValidAccountType(account.Type) {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidAccount, account.Type)
	}
	if account.UserID <= 0 {
		return fmt.Errorf("%w: missing user", ErrInvalidAccount)
	}
	return nil
}

// validateCategory validates a category before persistence.
func validateCategory(category *model.Category) error {
	if category == nil {
		return fmt.Errorf("%w: category", ErrNilParameter)
	}
	if strings.TrimSpace(category.Description) == "" {
		return fmt.Errorf("%w: missing description", ErrInvalidCategory)
	}
	switch category.Kind {
	case model.CategoryKindIncome, model.CategoryKindExpense:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidCategory, category.Kind)
	}
	if category.UserID <= 0 {
		return fmt.Errorf("%w: missing user", ErrInvalidCategory)
	}
	return nil
}

// validatePerson validates a person before persistence.
func validatePerson(person *model.Person) error {
	if person == nil {
		return fmt.Errorf("%w: person", ErrNilParameter)
	}
	if strings.TrimSpace(person.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidPerson)
	}
	if person.UserID <= 0 {
		return fmt.Errorf("%w: missing user", ErrInvalidPerson)
	}
	return nil
}

// validateTransaction validates a transaction row before persistence.
// Business rules (leaf categories, installment sums) are the engine's job;
// this guards structural integrity only.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	switch txn.Kind {
	case model.KindIncome, model.KindExpense:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEntry, txn.Kind)
	}
	if txn.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidEntry)
	}
	if txn.AccrualDate.IsZero() {
		return fmt.Errorf("%w: missing accrual date", ErrInvalidEntry)
	}
	if txn.DueDate.IsZero() {
		return fmt.Errorf("%w: missing due date", ErrInvalidEntry)
	}
	if txn.CategoryID <= 0 {
		return fmt.Errorf("%w: missing category", ErrInvalidEntry)
	}
	if txn.PersonID <= 0 {
		return fmt.Errorf("%w: missing person", ErrInvalidEntry)
	}
	if txn.UserID <= 0 {
		return fmt.Errorf("%w: missing user", ErrInvalidEntry)
	}
	if txn.Paid && (txn.PaymentDate == nil || txn.AccountID <= 0) {
		return fmt.Errorf("%w: paid requires payment date and account", ErrInvalidEntry)
	}
	return nil
}

// validateMovement validates a ledger entry before persistence.
func validateMovement(movement *model.BankMovement) error {
	if movement == nil {
		return fmt.Errorf("%w: movement", ErrNilParameter)
	}
	switch movement.Direction {
	case model.DirectionCredit, model.DirectionDebit:
	default:
		return fmt.Errorf("%w: unknown direction %q", ErrInvalidMovement, movement.Direction)
	}
	if movement.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidMovement)
	}
	if movement.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidMovement)
	}
	if movement.AccountID <= 0 {
		return fmt.Errorf("%w: missing account", ErrInvalidMovement)
	}
	if movement.UserID <= 0 {
		return fmt.Errorf("%w: missing user", ErrInvalidMovement)
	}
	return nil
}
