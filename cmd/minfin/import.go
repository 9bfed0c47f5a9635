package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/rodsouza/minhasfinancas/internal/cli"
	"github.com/rodsouza/minhasfinancas/internal/importer"
	"github.com/rodsouza/minhasfinancas/internal/statement"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import bank statements",
	}

	previewCmd := &cobra.Command{
		Use:   "preview FILE",
		Short: "Parse a statement and show what a commit would import",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportPreview,
	}
	addImportWindowFlags(previewCmd)

	commitCmd := &cobra.Command{
		Use:   "commit FILE",
		Short: "Import the statement's new records into an account",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCommit,
	}
	addImportWindowFlags(commitCmd)
	commitCmd.Flags().Int64("person", 0, "person id applied to all imported records")
	commitCmd.Flags().String("accrual", "", "accrual date applied to all records (YYYY-MM-DD)")
	commitCmd.Flags().String("due", "", "due date applied to all records (YYYY-MM-DD)")
	commitCmd.Flags().Int64("default-income-category", 0, "category for uncategorized income records")
	commitCmd.Flags().Int64("default-expense-category", 0, "category for uncategorized expense records")
	commitCmd.Flags().StringArray("category", nil, "per-record category as EXTERNALID=CATEGORYID")
	_ = commitCmd.MarkFlagRequired("accrual")
	_ = commitCmd.MarkFlagRequired("due")

	cmd.AddCommand(previewCmd)
	cmd.AddCommand(commitCmd)
	return cmd
}

func addImportWindowFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", "ofx", "statement format")
	cmd.Flags().Int64("account", 0, "target bank account id")
	cmd.Flags().String("start", "", "window start date (YYYY-MM-DD)")
	cmd.Flags().String("end", "", "window end date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
}

func previewRequestFromFlags(cmd *cobra.Command, path string) (*importer.PreviewRequest, *os.File, error) {
	format, _ := cmd.Flags().GetString("format")
	accountID, _ := cmd.Flags().GetInt64("account")
	start, _ := cmd.Flags().GetString("start")
	end, _ := cmd.Flags().GetString("end")

	startDate, err := parseDate(start, "start")
	if err != nil {
		return nil, nil, err
	}
	endDate, err := parseDate(end, "end")
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open statement file: %w", err)
	}

	return &importer.PreviewRequest{
		Reader:    f,
		Format:    format,
		AccountID: accountID,
		StartDate: startDate,
		EndDate:   endDate,
	}, f, nil
}

func runImportPreview(cmd *cobra.Command, args []string) error {
	userID, err := resolveUserID()
	if err != nil {
		return err
	}

	req, f, err := previewRequestFromFlags(cmd, args[0])
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	im := importer.New(store, statement.NewRegistry())
	records, err := im.Preview(cmd.Context(), *req, userID)
	if err != nil {
		return err
	}

	fmt.Print(cli.RenderPreview(records))
	return nil
}

func runImportCommit(cmd *cobra.Command, args []string) error {
	userID, err := resolveUserID()
	if err != nil {
		return err
	}

	previewReq, f, err := previewRequestFromFlags(cmd, args[0])
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	personID, _ := cmd.Flags().GetInt64("person")
	accrual, _ := cmd.Flags().GetString("accrual")
	due, _ := cmd.Flags().GetString("due")
	incomeCategory, _ := cmd.Flags().GetInt64("default-income-category")
	expenseCategory, _ := cmd.Flags().GetInt64("default-expense-category")
	categoryFlags, _ := cmd.Flags().GetStringArray("category")

	var accrualDate, dueDate time.Time
	if accrualDate, err = parseDate(accrual, "accrual"); err != nil {
		return err
	}
	if dueDate, err = parseDate(due, "due"); err != nil {
		return err
	}

	categories, err := parseCategoryAssignments(categoryFlags)
	if err != nil {
		return err
	}

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	im := importer.New(store, statement.NewRegistry())

	records, err := im.Preview(cmd.Context(), *previewReq, userID)
	if err != nil {
		return err
	}

	// Apply the user's per-record categorization before committing
	bar := progressbar.Default(int64(len(records)), "categorizing")
	for i := range records {
		if categoryID, ok := categories[records[i].ExternalID]; ok {
			records[i].CategoryID = categoryID
		}
		_ = bar.Add(1)
	}

	imported, err := im.Commit(cmd.Context(), importer.CommitRequest{
		Records:                  records,
		AccountID:                previewReq.AccountID,
		PersonID:                 personID,
		AccrualDate:              accrualDate,
		DueDate:                  dueDate,
		DefaultIncomeCategoryID:  incomeCategory,
		DefaultExpenseCategoryID: expenseCategory,
	}, userID)
	if err != nil {
		return err
	}

	fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("imported %d new transactions", imported)))
	return nil
}

// parseCategoryAssignments decodes repeated --category EXTERNALID=CATEGORYID
// flags into a lookup map.
func parseCategoryAssignments(flags []string) (map[string]int64, error) {
	assignments := make(map[string]int64, len(flags))
	for _, raw := range flags {
		externalID, categoryValue, found := strings.Cut(raw, "=")
		if !found || externalID == "" {
			return nil, fmt.Errorf("invalid --category %q: expected EXTERNALID=CATEGORYID", raw)
		}
		categoryID, err := strconv.ParseInt(categoryValue, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid category id in %q: %w", raw, err)
		}
		assignments[externalID] = categoryID
	}
	return assignments, nil
}
