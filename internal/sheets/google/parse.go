package google

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"begroting/internal/core"
)

// Sheet column layout:
//
//	A date | B description | C person | D category | E account |
//	F amount | G payment method | H notes | I self amount | J spouse amount
//
// The amount carries the feed's sign convention: positive is an expense,
// negative an income. When both I and J are filled they define the split.
const (
	colDate = iota
	colDescription
	colPerson
	colCategory
	colAccount
	colAmount
	colPaymentMethod
	colNotes
	colSelfAmount
	colSpouseAmount
)

var errSkipRow = errors.New("row skipped")

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"2 Jan 2006",
}

// RowParser turns raw sheet rows into transactions. Person names are
// matched case-insensitively against the two configured member names.
type RowParser struct {
	selfName   string
	spouseName string
}

// NewRowParser creates a parser bound to the household's member names.
func NewRowParser(selfName, spouseName string) *RowParser {
	return &RowParser{
		selfName:   strings.ToLower(strings.TrimSpace(selfName)),
		spouseName: strings.ToLower(strings.TrimSpace(spouseName)),
	}
}

// Parse converts one sheet row. The row index seeds a stable transaction ID
// so a re-fetch yields the same IDs for unchanged rows.
func (p *RowParser) Parse(row []any, index int) (core.Transaction, error) {
	cols := toStrings(row)
	if len(cols) <= colAmount {
		return core.Transaction{}, errSkipRow
	}

	date, err := parseDate(cols[colDate])
	if err != nil {
		return core.Transaction{}, err
	}

	desc := strings.TrimSpace(cols[colDescription])
	if desc == "" {
		return core.Transaction{}, errSkipRow
	}

	rawCents, err := core.ParseDecimalToCents(cols[colAmount])
	if err != nil {
		return core.Transaction{}, err
	}
	txType := core.Expense
	if rawCents < 0 {
		txType = core.Income
		rawCents = -rawCents
	}

	tx := core.Transaction{
		ID:          fmt.Sprintf("sheet:%d", index+2), // range starts at row 2
		Date:        date,
		Description: desc,
		Category:    strings.TrimSpace(cols[colCategory]),
		Amount:      core.Money{Cents: rawCents},
		Type:        txType,
		AssignedTo:  p.assignment(cols[colPerson]),
	}
	if len(cols) > colAccount {
		tx.Account = strings.TrimSpace(cols[colAccount])
	}
	if len(cols) > colPaymentMethod {
		tx.PaymentMethod = paymentMethod(cols[colPaymentMethod])
	}
	if split, ok := p.split(cols); ok {
		tx.SplitPercent = &split
	}
	return tx, nil
}

// assignment maps the person column onto the structural member labels.
// Unknown names fall through to shared, matching the ingestion default.
func (p *RowParser) assignment(raw string) core.Assignment {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch v {
	case "", "both", "shared", "joint":
		return core.AssignedShared
	case "self", p.selfName:
		return core.AssignedSelf
	case "spouse", p.spouseName:
		return core.AssignedSpouse
	default:
		return core.AssignedShared
	}
}

// split derives the explicit split percentage from the per-person amount
// columns when both are present.
func (p *RowParser) split(cols []string) (float64, bool) {
	if len(cols) <= colSpouseAmount {
		return 0, false
	}
	selfCents, err := core.ParseDecimalToCents(cols[colSelfAmount])
	if err != nil {
		return 0, false
	}
	spouseCents, err := core.ParseDecimalToCents(cols[colSpouseAmount])
	if err != nil {
		return 0, false
	}
	total := selfCents + spouseCents
	if total <= 0 || selfCents < 0 || spouseCents < 0 {
		return 0, false
	}
	return float64(selfCents) / float64(total) * 100, true
}

func paymentMethod(raw string) core.PaymentMethod {
	if strings.Contains(strings.ToLower(raw), "credit") {
		return core.CreditCard
	}
	return core.Cash
}

func parseDate(raw string) (time.Time, error) {
	v := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", v)
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
