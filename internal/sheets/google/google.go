package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/xiaofeng1coin/jizhangxt/internal/core"
	ports "github.com/xiaofeng1coin/jizhangxt/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client mirrors ledger records to one sheet of a Google spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.RecordMirror = (*Client)(nil)

// Config carries what the client needs. Exactly one of CredentialsFile
// and CredentialsJSON must be set.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	CredentialsJSON string
}

// New creates a Sheets client using service account credentials.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.SpreadsheetID == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if cfg.SheetName == "" {
		return nil, errors.New("missing sheet name")
	}

	credentialsJSON := []byte(cfg.CredentialsJSON)
	if len(credentialsJSON) == 0 {
		if cfg.CredentialsFile == "" {
			return nil, errors.New("missing service account credentials")
		}
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
	}, nil
}

// Mirror clears the target sheet and rewrites it with a header row
// followed by one row per record.
func (c *Client) Mirror(ctx context.Context, records []core.Record) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	clearRange := fmt.Sprintf("%s!A:F", c.sheetName)
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear sheet %s: %w", c.sheetName, err)
	}

	values := mirrorRows(records)
	writeRange := fmt.Sprintf("%s!A1", c.sheetName)
	vr := &gsheet.ValueRange{Values: values}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write sheet %s: %w", c.sheetName, err)
	}
	return nil
}

// mirrorRows builds the sheet contents: the localized header followed by
// one row per record, amounts as decimal yuan.
func mirrorRows(records []core.Record) [][]any {
	rows := make([][]any, 0, len(records)+1)
	rows = append(rows, []any{"ID", "类型", "类别", "金额", "备注", "日期"})
	for _, r := range records {
		yuan, _ := strconv.ParseFloat(r.Amount.String(), 64)
		rows = append(rows, []any{r.ID, r.Type.Label(), r.Category, yuan, r.Description, r.Date})
	}
	return rows
}
