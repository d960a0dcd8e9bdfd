package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"expenseminimizer/internal/core"
	"expenseminimizer/internal/log"
	ports "expenseminimizer/internal/sheets"
)

const defaultSheetName = "Expenses"

var ErrMissingSpreadsheetID = errors.New("missing GOOGLE_SPREADSHEET_ID")

// Config selects the target spreadsheet and how to authenticate.
// CredentialsJSON wins over CredentialsFile.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	// Base name without year (e.g. "Expenses"); the exported month's year is prefixed.
	sheetBase string
	logger    *log.Logger
}

var _ ports.Exporter = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, ErrMissingSpreadsheetID
	}
	creds, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewWithService(svc, cfg, logger), nil
}

// NewWithService wraps an already configured service.
func NewWithService(svc *gsheet.Service, cfg Config, logger *log.Logger) *Client {
	base := strings.TrimSpace(cfg.SheetName)
	if base == "" {
		base = defaultSheetName
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Client{
		svc:           svc,
		spreadsheetID: strings.TrimSpace(cfg.SpreadsheetID),
		sheetBase:     base,
		logger:        logger.WithComponent(log.ComponentSheets),
	}
}

func loadCredentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	}
	return nil, errors.New("missing service account credentials (set GOOGLE_CREDENTIALS_JSON or GOOGLE_CREDENTIALS_FILE)")
}

// ExportMonth appends every entry of snap to the year sheet. The header row
// is written first when the sheet has no data yet.
func (c *Client) ExportMonth(ctx context.Context, snap core.Snapshot) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	rows := ports.BuildRows(snap)
	if len(rows) == 0 {
		return "", fmt.Errorf("%w: nothing to export for %s", core.ErrValidation, snap.Month().Label())
	}

	sheet := yearPrefixedName(c.sheetBase, snap.Month().Year)
	empty, err := c.sheetEmpty(ctx, sheet)
	if err != nil {
		return "", err
	}
	if empty {
		rows = append([][]any{ports.Header}, rows...)
	}

	rng := fmt.Sprintf("%s!A:E", quoteSheet(sheet))
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", sheet, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	c.logger.InfoContext(ctx, "Month exported",
		log.FieldOperation, log.OpExport,
		log.FieldMonth, snap.Month().String(),
		"rows", len(rows),
		"range", ref)
	return ref, nil
}

func (c *Client) sheetEmpty(ctx context.Context, sheet string) (bool, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, quoteSheet(sheet)+"!A1:A1").Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return len(resp.Values) == 0, nil
}

// quoteSheet wraps names containing spaces in single quotes for A1 notation.
func quoteSheet(name string) string {
	if strings.ContainsAny(name, " '!") {
		return "'" + strings.ReplaceAll(name, "'", "''") + "'"
	}
	return name
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
