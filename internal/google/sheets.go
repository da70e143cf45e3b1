// Package google wraps the Google Sheets API for the ration spreadsheet.
//
// The bookings sheet carries one row per (week_start, date, name) in columns
// B..K; column A is an auto-computed booking id formula owned by the sheet
// itself and is never written here. The namelist sheet lists valid submitter
// names in column A.
package google

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	writeColsStart = "B"
	writeColsEnd   = "K"
	// Data rows start at 2; row 1 is the header.
	firstDataRow = 2
)

type SheetsService struct {
	service       *sheets.Service
	spreadsheetID string
	bookingsSheet string
	namelistSheet string
}

// NewSheetsService authenticates with a service-account credentials file and
// returns a client bound to one spreadsheet.
func NewSheetsService(ctx context.Context, credentialsFile, spreadsheetID, bookingsSheet, namelistSheet string) (*SheetsService, error) {
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	client := config.Client(ctx)

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}

	return &SheetsService{
		service:       srv,
		spreadsheetID: spreadsheetID,
		bookingsSheet: bookingsSheet,
		namelistSheet: namelistSheet,
	}, nil
}

// TestConnection reads the first namelist cell to verify access.
func (s *SheetsService) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.
		Get(s.spreadsheetID, fmt.Sprintf("%s!A1", s.namelistSheet)).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// ReadBookingRows returns all booking data rows, columns B..K. Row i of the
// result is sheet row i+2.
func (s *SheetsService) ReadBookingRows(ctx context.Context) ([][]interface{}, error) {
	res, err := s.service.Spreadsheets.Values.
		Get(s.spreadsheetID, fmt.Sprintf("%s!%s%d:%s", s.bookingsSheet, writeColsStart, firstDataRow, writeColsEnd)).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read booking rows: %w", err)
	}
	return res.Values, nil
}

// RowUpdate rewrites one existing booking row in place. Row is the
// 1-indexed sheet row number.
type RowUpdate struct {
	Row    int
	Values []interface{}
}

// BatchUpdateRows applies all updates in a single batched write.
func (s *SheetsService) BatchUpdateRows(ctx context.Context, updates []RowUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	data := make([]*sheets.ValueRange, 0, len(updates))
	for _, u := range updates {
		data = append(data, &sheets.ValueRange{
			Range:  fmt.Sprintf("%s!%s%d:%s%d", s.bookingsSheet, writeColsStart, u.Row, writeColsEnd, u.Row),
			Values: [][]interface{}{u.Values},
		})
	}

	_, err := s.service.Spreadsheets.Values.
		BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateValuesRequest{
			ValueInputOption: "USER_ENTERED",
			Data:             data,
		}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("batch update rows: %w", err)
	}
	return nil
}

// AppendRows writes new rows after the existing ones. The append position is
// the first empty row of the key column (B), not the row count of any
// filtered set; a concurrent appender can race this read.
func (s *SheetsService) AppendRows(ctx context.Context, rows [][]interface{}) error {
	if len(rows) == 0 {
		return nil
	}

	colB, err := s.service.Spreadsheets.Values.
		Get(s.spreadsheetID, fmt.Sprintf("%s!%s%d:%s", s.bookingsSheet, writeColsStart, firstDataRow, writeColsStart)).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read key column: %w", err)
	}

	startRow := len(colB.Values) + firstDataRow

	updates := make([]RowUpdate, 0, len(rows))
	for i, row := range rows {
		updates = append(updates, RowUpdate{Row: startRow + i, Values: row})
	}
	return s.BatchUpdateRows(ctx, updates)
}

// ReadNamelist returns the namelist sheet's column A data rows.
func (s *SheetsService) ReadNamelist(ctx context.Context) ([][]string, error) {
	res, err := s.service.Spreadsheets.Values.
		Get(s.spreadsheetID, fmt.Sprintf("%s!A%d:A", s.namelistSheet, firstDataRow)).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read namelist: %w", err)
	}

	rows := make([][]string, 0, len(res.Values))
	for _, r := range res.Values {
		row := make([]string, 0, len(r))
		for _, cell := range r {
			row = append(row, fmt.Sprint(cell))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// NamelistCacheKey identifies the cached namelist range for this sheet.
func (s *SheetsService) NamelistCacheKey() string {
	return fmt.Sprintf("%s:%s:A%d:A", s.spreadsheetID, s.namelistSheet, firstDataRow)
}
