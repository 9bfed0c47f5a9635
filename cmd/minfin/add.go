package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rodsouza/minhasfinancas/internal/engine"
	"github.com/rodsouza/minhasfinancas/internal/model"
)

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a transaction (lançamento)",
		Long: `Create an income or expense transaction, optionally split into
installments.

Examples:
  # Paid expense
  minfin add --kind expense --amount 120.50 --description "Mercado" \
    --category 3 --person 1 --account 1 --accrual 2024-03-01 --due 2024-03-10 \
    --paid --payment-date 2024-03-10

  # 3 installments of 100.00
  minfin add --kind expense --amount 300 --description "Notebook" \
    --category 3 --person 1 --accrual 2024-03-01 --due 2024-03-10 \
    --installment 1:100:2024-03-01:2024-03-10 \
    --installment 2:100:2024-04-01:2024-04-10 \
    --installment 3:100:2024-05-01:2024-05-10`,
		RunE: runAdd,
	}

	cmd.Flags().String("kind", "expense", "transaction kind (income, expense)")
	cmd.Flags().Float64("amount", 0, "total amount")
	cmd.Flags().String("description", "", "description")
	cmd.Flags().Int64("category", 0, "category id (must be a leaf)")
	cmd.Flags().Int64("person", 0, "person id")
	cmd.Flags().Int64("account", 0, "bank account id")
	cmd.Flags().String("accrual", "", "accrual date (YYYY-MM-DD)")
	cmd.Flags().String("due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().Bool("paid", false, "mark as paid")
	cmd.Flags().String("payment-date", "", "payment date (YYYY-MM-DD)")
	cmd.Flags().StringArray("installment", nil, "installment as n:amount:accrual:due[:payment]")

	return cmd
}

func runAdd(cmd *cobra.Command, _ []string) error {
	userID, err := resolveUserID()
	if err != nil {
		return err
	}

	req, err := transactionFromFlags(cmd)
	if err != nil {
		return err
	}

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	created, err := engine.New(store).Create(cmd.Context(), *req, userID)
	if err != nil {
		return err
	}

	if len(req.Installments) > 0 {
		fmt.Printf("created transaction %d (%s) with %d installments\n",
			created.ID, created.Description, len(req.Installments))
	} else {
		fmt.Printf("created transaction %d (%s)\n", created.ID, created.Description)
	}
	return nil
}

func transactionFromFlags(cmd *cobra.Command) (*model.Transaction, error) {
	kind, _ := cmd.Flags().GetString("kind")
	amount, _ := cmd.Flags().GetFloat64("amount")
	description, _ := cmd.Flags().GetString("description")
	categoryID, _ := cmd.Flags().GetInt64("category")
	personID, _ := cmd.Flags().GetInt64("person")
	accountID, _ := cmd.Flags().GetInt64("account")
	accrual, _ := cmd.Flags().GetString("accrual")
	due, _ := cmd.Flags().GetString("due")
	paid, _ := cmd.Flags().GetBool("paid")
	paymentDate, _ := cmd.Flags().GetString("payment-date")
	installmentFlags, _ := cmd.Flags().GetStringArray("installment")

	req := &model.Transaction{
		Kind:        model.TransactionKind(kind),
		Amount:      amount,
		Description: description,
		CategoryID:  categoryID,
		PersonID:    personID,
		AccountID:   accountID,
		Paid:        paid,
	}

	var err error
	if accrual != "" {
		if req.AccrualDate, err = parseDate(accrual, "accrual"); err != nil {
			return nil, err
		}
	}
	if due != "" {
		if req.DueDate, err = parseDate(due, "due"); err != nil {
			return nil, err
		}
	}
	if paymentDate != "" {
		t, err := parseDate(paymentDate, "payment-date")
		if err != nil {
			return nil, err
		}
		req.PaymentDate = &t
	}

	for _, raw := range installmentFlags {
		installment, err := parseInstallment(raw)
		if err != nil {
			return nil, err
		}
		req.Installments = append(req.Installments, *installment)
	}

	return req, nil
}

// parseInstallment decodes one --installment flag value of the form
// n:amount:accrual:due[:payment].
func parseInstallment(raw string) (*model.Installment, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 4 || len(parts) > 5 {
		return nil, fmt.Errorf("invalid --installment %q: expected n:amount:accrual:due[:payment]", raw)
	}

	number, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid installment number %q: %w", parts[0], err)
	}
	amount, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid installment amount %q: %w", parts[1], err)
	}
	accrual, err := parseDate(parts[2], "installment")
	if err != nil {
		return nil, err
	}
	due, err := parseDate(parts[3], "installment")
	if err != nil {
		return nil, err
	}

	installment := &model.Installment{
		Number:      number,
		Amount:      amount,
		AccrualDate: accrual,
		DueDate:     due,
	}
	if len(parts) == 5 {
		payment, err := parseDate(parts[4], "installment")
		if err != nil {
			return nil, err
		}
		installment.PaymentDate = &payment
	}
	return installment, nil
}
