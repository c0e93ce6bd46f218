package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	ports "fintrack/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Config selects the spreadsheet and how to authenticate against it.
type Config struct {
	SpreadsheetID      string
	TransactionsSheet  string
	BudgetsSheet       string
	ServiceAccountJSON string
	ServiceAccountFile string
}

const (
	rowCacheSize = 1024
	rowCacheTTL  = 24 * time.Hour
)

type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsSheet string
	budgetsSheet      string
	logger            *applog.Logger

	// rows remembers where appended transactions landed so deletes can
	// skip scanning the id column.
	rows *cache.LRUCache[int]
}

// Ensure interface conformance
var _ ports.LedgerWriter = (*Client)(nil)

// New creates a Sheets client. Without extra opts it authenticates with the
// service account from cfg; tests pass an endpoint and HTTP client instead.
func New(ctx context.Context, cfg Config, logger *applog.Logger, opts ...goption.ClientOption) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if cfg.TransactionsSheet == "" {
		cfg.TransactionsSheet = "Transactions"
	}
	if cfg.BudgetsSheet == "" {
		cfg.BudgetsSheet = "Budgets"
	}
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentSheets)

	if len(opts) == 0 {
		creds, err := serviceAccountOption(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		opts = []goption.ClientOption{creds, goption.WithScopes(gsheet.SpreadsheetsScope)}
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:               svc,
		spreadsheetID:     cfg.SpreadsheetID,
		transactionsSheet: cfg.TransactionsSheet,
		budgetsSheet:      cfg.BudgetsSheet,
		logger:            logger,
		rows:              cache.NewLRUCache[int](rowCacheSize, rowCacheTTL),
	}, nil
}

// serviceAccountOption prefers inline JSON over a credentials file.
func serviceAccountOption(ctx context.Context, cfg Config, logger *applog.Logger) (goption.ClientOption, error) {
	inline := strings.TrimSpace(cfg.ServiceAccountJSON)
	file := strings.TrimSpace(cfg.ServiceAccountFile)

	switch {
	case inline != "":
		logger.InfoContext(ctx, "Using inline service account credentials")
		return goption.WithCredentialsJSON([]byte(inline)), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		logger.InfoContext(ctx, "Read service account credentials", "path", file, "size", len(data))
		return goption.WithCredentialsJSON(data), nil
	}
	return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
}

// AppendTransaction adds one row at the end of the transactions sheet.
func (c *Client) AppendTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	rng := fmt.Sprintf("%s!A:F", c.transactionsSheet)
	vr := &gsheet.ValueRange{Values: [][]any{transactionRow(t)}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", c.transactionsSheet, err)
	}

	row := 0
	if resp.Updates != nil {
		row = rowFromRange(resp.Updates.UpdatedRange)
	}
	if row > 0 {
		c.rows.Set(t.ID, row)
	}

	c.logger.DebugContext(ctx, "Appended transaction row", applog.FieldTransactionID, t.ID, "row", row)
	return nil
}

// DeleteTransaction clears the row whose first column equals id.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	row, err := c.locateRow(ctx, id)
	if err != nil {
		return err
	}
	if row == 0 {
		c.logger.WarnContext(ctx, "Transaction row not found in ledger", applog.FieldTransactionID, id)
		return nil
	}

	target := fmt.Sprintf("%s!A%d:F%d", c.transactionsSheet, row, row)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, target, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", target, err)
	}

	c.rows.Delete(id)

	c.logger.DebugContext(ctx, "Cleared transaction row", applog.FieldTransactionID, id, "row", row)
	return nil
}

// locateRow finds id's row, trusting the cached position only after the
// cell there still holds id. Returns 0 when id is not in the sheet.
func (c *Client) locateRow(ctx context.Context, id string) (int, error) {
	if row, ok := c.rows.Get(id); ok {
		cell := fmt.Sprintf("%s!A%d", c.transactionsSheet, row)
		resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, cell).Context(ctx).Do()
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", cell, err)
		}
		if findRow(resp.Values, id) == 1 {
			return row, nil
		}
		c.rows.Delete(id)
		c.logger.DebugContext(ctx, "Cached ledger row is stale", applog.FieldTransactionID, id, "row", row)
	}

	rng := fmt.Sprintf("%s!A:A", c.transactionsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", rng, err)
	}
	return findRow(resp.Values, id), nil
}

// WriteBudget overwrites the budget sheet with one row per category.
func (c *Client) WriteBudget(ctx context.Context, b core.Budget) error {
	rows := budgetRows(b)
	rng := fmt.Sprintf("%s!A1:B%d", c.budgetsSheet, len(rows))
	vr := &gsheet.ValueRange{Values: rows}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}
