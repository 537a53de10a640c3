// Package google reads the household transaction sheet through the Google
// Sheets API using an API key. The sheet is the system of record; this
// adapter only ever reads it.
package google

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"begroting/internal/core"
	"begroting/internal/log"
	ports "begroting/internal/sheets"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	readRange     string
	parser        *RowParser
	logger        *log.Logger
}

// Ensure interface conformance
var _ ports.TransactionSource = (*Client)(nil)

// Config holds what the adapter needs to reach one sheet.
type Config struct {
	SpreadsheetID string
	ReadRange     string
	APIKey        string
	SelfName      string
	SpouseName    string
}

// New creates a Sheets client for a read-only transaction feed.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("missing API key")
	}
	readRange := strings.TrimSpace(cfg.ReadRange)
	if readRange == "" {
		readRange = "Transactions!A2:J"
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithAPIKey(cfg.APIKey),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		readRange:     readRange,
		parser:        NewRowParser(cfg.SelfName, cfg.SpouseName),
		logger:        logger.WithComponent(log.ComponentSheets),
	}, nil
}

// Fetch reads the configured range and returns normalized transactions.
// Rows that fail to parse are dropped, not fatal: the sheet is hand-edited
// and a bad row must not take the refresh down.
func (c *Client) Fetch(ctx context.Context) ([]core.Transaction, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}

	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.readRange, err)
	}

	txs := make([]core.Transaction, 0, len(resp.Values))
	dropped := 0
	for i, row := range resp.Values {
		tx, err := c.parser.Parse(row, i)
		if err != nil {
			dropped++
			continue
		}
		txs = append(txs, tx)
	}

	out := core.NormalizeAll(txs)
	c.logger.InfoContext(ctx, "sheet fetched",
		log.FieldOperation, log.OpFetch,
		log.FieldSheetsRef, c.readRange,
		log.FieldTxCount, len(out),
		"rows_dropped", dropped+len(txs)-len(out))
	return out, nil
}
