package importer

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodsouza/minhasfinancas/internal/common"
	"github.com/rodsouza/minhasfinancas/internal/model"
	"github.com/rodsouza/minhasfinancas/internal/service"
	"github.com/rodsouza/minhasfinancas/internal/statement"
	"github.com/rodsouza/minhasfinancas/internal/testutil"
)

const testUser = int64(1)

// Two-record statement: A1 is a 50.00 expense, A2 a 100.00 income, both
// inside January 2024. Amounts are integer minor units.
const sampleOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>POR
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>BRL
<BANKACCTFROM>
<BANKID>341
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-5000
<FITID>A1
<NAME>SUPERMERCADO
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>10000
<FITID>A2
<NAME>TED RECEBIDA
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>5000
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// stubParser serves canned records for registry-driven tests.
type stubParser struct {
	records []model.StatementRecord
}

func (p *stubParser) Parse(_ context.Context, _ io.Reader) ([]model.StatementRecord, error) {
	return p.records, nil
}

func setup(t *testing.T) (*testutil.TestDB, *testutil.Fixture, *Importer) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	f := db.SeedFixture(testUser)
	return db, f, New(db.Storage, statement.NewRegistry())
}

func previewRequest(f *testutil.Fixture) PreviewRequest {
	return PreviewRequest{
		Reader:    strings.NewReader(sampleOFX),
		Format:    "ofx",
		AccountID: f.Account.ID,
		StartDate: date(2024, 1, 1),
		EndDate:   date(2024, 1, 31),
	}
}

func commitRequest(f *testutil.Fixture, records []model.StatementRecord) CommitRequest {
	return CommitRequest{
		Records:                  records,
		AccountID:                f.Account.ID,
		PersonID:                 f.Person.ID,
		AccrualDate:              date(2024, 2, 1),
		DueDate:                  date(2024, 2, 1),
		DefaultIncomeCategoryID:  f.IncomeCategory.ID,
		DefaultExpenseCategoryID: f.ExpenseCategory.ID,
	}
}

func TestPreview_FiltersAndSorts(t *testing.T) {
	db, f, _ := setup(t)

	registry := statement.NewRegistry()
	registry.Register("stub", &stubParser{records: []model.StatementRecord{
		{ExternalID: "X1", Date: date(2024, 1, 5), Amount: -10.00, Description: "inside"},
		{ExternalID: "X2", Date: date(2023, 12, 31), Amount: -10.00, Description: "before window"},
		{ExternalID: "X3", Date: date(2024, 1, 31), Amount: 20.00, Description: "on end boundary"},
		{ExternalID: "X4", Date: date(2024, 2, 1), Amount: 20.00, Description: "after window"},
	}})
	im := New(db.Storage, registry)

	records, err := im.Preview(context.Background(), PreviewRequest{
		Reader:    strings.NewReader(""),
		Format:    "stub",
		AccountID: f.Account.ID,
		StartDate: date(2024, 1, 1),
		EndDate:   date(2024, 1, 31),
	}, testUser)
	require.NoError(t, err)

	// Both boundaries inclusive, out-of-window records dropped, newest first
	require.Len(t, records, 2)
	assert.Equal(t, "X3", records[0].ExternalID)
	assert.Equal(t, "X1", records[1].ExternalID)
}

func TestPreview_FlagsAlreadyImported(t *testing.T) {
	db, f, im := setup(t)
	ctx := context.Background()

	// A1 is already on record for this user
	payment := date(2024, 1, 15)
	require.NoError(t, db.Storage.SaveTransaction(ctx, &model.Transaction{
		Kind:        model.KindExpense,
		Amount:      50.00,
		Description: "SUPERMERCADO",
		AccrualDate: date(2024, 1, 15),
		DueDate:     date(2024, 1, 15),
		PaymentDate: &payment,
		Paid:        true,
		ExternalID:  "A1",
		AccountID:   f.Account.ID,
		CategoryID:  f.ExpenseCategory.ID,
		PersonID:    f.Person.ID,
		UserID:      testUser,
	}))

	records, err := im.Preview(ctx, previewRequest(f), testUser)
	require.NoError(t, err)
	require.Len(t, records, 2)

	byID := map[string]model.StatementRecord{}
	for _, record := range records {
		byID[record.ExternalID] = record
	}
	assert.True(t, byID["A1"].AlreadyImported)
	assert.False(t, byID["A2"].AlreadyImported)
}

func TestPreview_UnsupportedFormat(t *testing.T) {
	_, f, im := setup(t)

	req := previewRequest(f)
	req.Format = "csv"

	_, err := im.Preview(context.Background(), req, testUser)
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
}

func TestPreview_UnresolvedUser(t *testing.T) {
	_, f, im := setup(t)

	_, err := im.Preview(context.Background(), previewRequest(f), 0)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestCommit_TwoRecordScenario(t *testing.T) {
	db, f, im := setup(t)
	ctx := context.Background()

	records, err := im.Preview(ctx, previewRequest(f), testUser)
	require.NoError(t, err)

	imported, err := im.Commit(ctx, commitRequest(f, records), testUser)
	require.NoError(t, err)
	assert.Equal(t, 2, imported)

	listed, err := db.Storage.ListTransactions(ctx, testUser, listAll())
	require.NoError(t, err)
	require.Len(t, listed, 2)

	byID := map[string]model.Transaction{}
	for _, txn := range listed {
		byID[txn.ExternalID] = txn
	}

	expense := byID["A1"]
	assert.Equal(t, model.KindExpense, expense.Kind)
	assert.InDelta(t, 50.00, expense.Amount, 0.001)
	assert.Equal(t, f.ExpenseCategory.ID, expense.CategoryID)
	assert.True(t, expense.Paid)
	require.NotNil(t, expense.PaymentDate)
	assert.Equal(t, 15, expense.PaymentDate.Day())
	assert.NotEmpty(t, expense.ImportBatchID)

	income := byID["A2"]
	assert.Equal(t, model.KindIncome, income.Kind)
	assert.InDelta(t, 100.00, income.Amount, 0.001)
	assert.Equal(t, f.IncomeCategory.ID, income.CategoryID)
	assert.True(t, income.Paid)
	assert.Equal(t, expense.ImportBatchID, income.ImportBatchID)

	movements, err := db.Storage.ListMovements(ctx, f.Account.ID, testUser)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	for _, movement := range movements {
		assert.True(t, strings.HasPrefix(movement.Memo, "PGTO: "), "memo %q", movement.Memo)
	}

	account := db.MustGetAccount(f.Account.ID, testUser)
	assert.InDelta(t, 50.00, account.Balance, 0.001)
}

func TestCommit_Idempotent(t *testing.T) {
	db, f, im := setup(t)
	ctx := context.Background()

	records, err := im.Preview(ctx, previewRequest(f), testUser)
	require.NoError(t, err)
	imported, err := im.Commit(ctx, commitRequest(f, records), testUser)
	require.NoError(t, err)
	require.Equal(t, 2, imported)

	// Same statement again: everything flags as imported, nothing is written
	again, err := im.Preview(ctx, PreviewRequest{
		Reader:    strings.NewReader(sampleOFX),
		Format:    "ofx",
		AccountID: f.Account.ID,
		StartDate: date(2024, 1, 1),
		EndDate:   date(2024, 1, 31),
	}, testUser)
	require.NoError(t, err)
	for _, record := range again {
		assert.True(t, record.AlreadyImported)
	}

	imported, err = im.Commit(ctx, commitRequest(f, again), testUser)
	require.NoError(t, err)
	assert.Equal(t, 0, imported)

	listed, err := db.Storage.ListTransactions(ctx, testUser, listAll())
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	account := db.MustGetAccount(f.Account.ID, testUser)
	assert.InDelta(t, 50.00, account.Balance, 0.001)
}

func TestCommit_MissingDefaultCategories(t *testing.T) {
	_, f, im := setup(t)
	ctx := context.Background()

	records := []model.StatementRecord{
		{ExternalID: "B1", Date: date(2024, 1, 10), Amount: 80.00, Description: "deposito"},
		{ExternalID: "B2", Date: date(2024, 1, 11), Amount: -30.00, Description: "compra"},
	}

	req := commitRequest(f, records)
	req.DefaultIncomeCategoryID = 0
	_, err := im.Commit(ctx, req, testUser)
	require.Error(t, err)
	assert.True(t, common.IsValidation(err))
	assert.Contains(t, err.Error(), "default income category")

	req = commitRequest(f, records)
	req.DefaultExpenseCategoryID = 0
	_, err = im.Commit(ctx, req, testUser)
	require.Error(t, err)
	assert.True(t, common.IsValidation(err))
	assert.Contains(t, err.Error(), "default expense category")

	// Pre-categorized records don't need defaults
	records[0].CategoryID = f.IncomeCategory.ID
	records[1].CategoryID = f.ExpenseCategory.ID
	req = commitRequest(f, records)
	req.DefaultIncomeCategoryID = 0
	req.DefaultExpenseCategoryID = 0
	imported, err := im.Commit(ctx, req, testUser)
	require.NoError(t, err)
	assert.Equal(t, 2, imported)
}

func TestCommit_ZeroSurvivors(t *testing.T) {
	db, f, im := setup(t)
	ctx := context.Background()

	records, err := im.Preview(ctx, previewRequest(f), testUser)
	require.NoError(t, err)
	_, err = im.Commit(ctx, commitRequest(f, records), testUser)
	require.NoError(t, err)

	// Re-commit the same batch: zero survivors, zero imported, no error
	imported, err := im.Commit(ctx, commitRequest(f, records), testUser)
	require.NoError(t, err)
	assert.Equal(t, 0, imported)

	account := db.MustGetAccount(f.Account.ID, testUser)
	assert.InDelta(t, 50.00, account.Balance, 0.001)
}

func TestCommit_RollsBackOnFailure(t *testing.T) {
	db, f, im := setup(t)
	ctx := context.Background()

	records := []model.StatementRecord{
		{ExternalID: "C1", Date: date(2024, 1, 10), Amount: -40.00, Description: "ok"},
		// References a category that doesn't exist; the insert must fail
		{ExternalID: "C2", Date: date(2024, 1, 11), Amount: -60.00, Description: "broken", CategoryID: 9999},
	}

	_, err := im.Commit(ctx, commitRequest(f, records), testUser)
	require.Error(t, err)

	// Nothing from the batch may be visible
	listed, err := db.Storage.ListTransactions(ctx, testUser, listAll())
	require.NoError(t, err)
	assert.Empty(t, listed)

	movements, err := db.Storage.ListMovements(ctx, f.Account.ID, testUser)
	require.NoError(t, err)
	assert.Empty(t, movements)

	account := db.MustGetAccount(f.Account.ID, testUser)
	assert.InDelta(t, 0.00, account.Balance, 0.001)
}

func TestWithinWindow(t *testing.T) {
	start := date(2024, 1, 1)
	end := date(2024, 1, 31)

	// Timestamps collapse to calendar dates before comparison
	assert.True(t, withinWindow(time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC), start, end))
	assert.True(t, withinWindow(time.Date(2024, 1, 1, 0, 0, 1, 0, time.UTC), start, end))
	assert.False(t, withinWindow(time.Date(2023, 12, 31, 23, 59, 0, 0, time.UTC), start, end))
	assert.False(t, withinWindow(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), start, end))
}

func listAll() service.TransactionFilter {
	return service.TransactionFilter{}
}
