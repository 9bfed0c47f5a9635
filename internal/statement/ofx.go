package statement

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/rodsouza/minhasfinancas/internal/common"
	"github.com/rodsouza/minhasfinancas/internal/model"
)

// minorUnitScale converts statement amounts, carried as integer minor units,
// to decimal currency.
const minorUnitScale = 100

// OFXParser implements OFX/QFX statement parsing.
type OFXParser struct{}

// NewOFXParser creates a new OFX parser.
func NewOFXParser() *OFXParser {
	return &OFXParser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *OFXParser) preprocessOFX(content string) string {
	// Trim any leading whitespace or blank lines before the header
	content = strings.TrimLeft(content, " \t\r\n")

	// Fix mixed-case SEVERITY values (should be INFO, WARN, or ERROR).
	// SGML statements leave the tag unclosed, XML ones close it.
	severityRegex := regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)(</SEVERITY>)?`)
	content = severityRegex.ReplaceAllStringFunc(content, func(match string) string {
		return strings.ToUpper(match)
	})

	// Fix missing closing angle brackets in SGML-style OFX files
	tagFixRegex := regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// Parse decodes an OFX/QFX statement into normalized records. Failure to
// decode the stream surfaces as a MalformedInputError carrying the decoder's
// diagnostic.
func (p *OFXParser) Parse(ctx context.Context, reader io.Reader) ([]model.StatementRecord, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	processedContent := p.preprocessOFX(string(content))

	resp, err := ofxgo.ParseResponse(strings.NewReader(processedContent))
	if err != nil {
		return nil, common.NewMalformedInputError(err)
	}

	var records []model.StatementRecord
	var bankStmts, ccStmts int

	// Process bank messages
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			records = append(records, p.processTranList(stmt.BankTranList)...)
		}
	}

	// Process credit card messages
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			records = append(records, p.processTranList(stmt.BankTranList)...)
		}
	}

	slog.Info("Parsed OFX statement",
		"records", len(records),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return records, nil
}

func (p *OFXParser) processTranList(list *ofxgo.TransactionList) []model.StatementRecord {
	if list == nil {
		return nil
	}

	records := make([]model.StatementRecord, 0, len(list.Transactions))
	for _, ofxTx := range list.Transactions {
		records = append(records, p.convertTransaction(ofxTx))
	}
	return records
}

// convertTransaction normalizes one OFX transaction.
func (p *OFXParser) convertTransaction(ofxTx ofxgo.Transaction) model.StatementRecord {
	// Statement amounts arrive in integer minor units (centavos)
	rawAmount, _ := ofxTx.TrnAmt.Float64()

	return model.StatementRecord{
		ExternalID:  string(ofxTx.FiTID),
		Date:        ofxTx.DtPosted.Time,
		Amount:      rawAmount / minorUnitScale,
		Description: joinNameMemo(string(ofxTx.Name), string(ofxTx.Memo)),
		Type:        fmt.Sprintf("%v", ofxTx.TrnType),
	}
}

// joinNameMemo builds a human description from the statement's NAME and MEMO
// fields: both joined by " - ", or whichever is non-empty.
func joinNameMemo(name, memo string) string {
	name = strings.TrimSpace(name)
	memo = strings.TrimSpace(memo)

	switch {
	case name != "" && memo != "":
		return name + " - " + memo
	case name != "":
		return name
	default:
		return memo
	}
}
