package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/claims-triage/internal/analysis"
	"github.com/Veraticus/claims-triage/internal/common"
	"github.com/Veraticus/claims-triage/internal/model"
	"github.com/Veraticus/claims-triage/internal/service"
)

var _ service.WorkQueueWriter = (*Writer)(nil)

// headerRows is the number of rows above the first claim.
const headerRows = 8

// Writer publishes a work queue to one tab of a Google spreadsheet.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	now     func() time.Time
	config  Config
}

// NewWriter creates a new Google Sheets work-queue writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if config.SheetTitle == "" {
		config.SheetTitle = DefaultConfig().SheetTitle
	}

	service, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		config:  config,
		service: service,
		logger:  common.OrDefault(logger),
		now:     time.Now,
	}, nil
}

// Write replaces the tab's contents with the metrics and the given claims, in order.
func (w *Writer) Write(ctx context.Context, claims []model.ProcessedClaim, metrics model.Metrics) error {
	w.logger.Info("starting work queue export", "claims", len(claims), "total_claims", metrics.TotalClaims)

	retryOpts := common.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	spreadsheetID, err := w.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return common.NewUserError("Could not open the work queue spreadsheet", err)
	}

	sheetID, err := w.ensureSheet(ctx, spreadsheetID)
	if err != nil {
		return fmt.Errorf("failed to prepare sheet: %w", err)
	}

	if clearErr := w.clearSheet(ctx, spreadsheetID); clearErr != nil {
		return fmt.Errorf("failed to clear sheet: %w", clearErr)
	}

	values := queueValues(claims, metrics, w.now())

	err = common.WithRetry(ctx, func() error {
		return retryClass(w.writeData(ctx, spreadsheetID, values))
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}

	if w.config.EnableFormatting {
		err = common.WithRetry(ctx, func() error {
			return retryClass(w.applyFormatting(ctx, spreadsheetID, sheetID, len(values)))
		}, retryOpts)
		if err != nil {
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("work queue export completed",
		"spreadsheet_id", spreadsheetID,
		"rows_written", len(values))

	return nil
}

// retryClass marks Google API failures for WithRetry: 429 waits out the
// quota window, 5xx retries, other HTTP errors are permanent.
func retryClass(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
	case apiErr.Code >= http.StatusInternalServerError:
		return &common.RetryableError{Err: err, Retryable: true}
	default:
		return common.Permanent(err)
	}
}

func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.AuthMethod() == AuthServiceAccount {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := oauthConfig(config.ClientID, config.ClientSecret, "")
		tokenSource = client.TokenSource(ctx, &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		})
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (string, error) {
	if w.config.SpreadsheetID != "" {
		_, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
		}
		return w.config.SpreadsheetID, nil
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: w.config.SheetTitle}},
		},
	}

	created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	// Later runs reuse it.
	w.config.SpreadsheetID = created.SpreadsheetId
	return created.SpreadsheetId, nil
}

// ensureSheet returns the ID of the work-queue tab, adding the tab when missing.
func (w *Writer) ensureSheet(ctx context.Context, spreadsheetID string) (int64, error) {
	ss, err := w.service.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, err
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == w.config.SheetTitle {
			return s.Properties.SheetId, nil
		}
	}

	resp, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: w.config.SheetTitle},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("unable to add sheet %q: %w", w.config.SheetTitle, err)
	}
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}

func (w *Writer) clearSheet(ctx context.Context, spreadsheetID string) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, w.cellRange("A:Z"), &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func (w *Writer) cellRange(r string) string {
	return fmt.Sprintf("'%s'!%s", w.config.SheetTitle, r)
}

// queueValues lays out the summary block followed by one row per claim.
func queueValues(claims []model.ProcessedClaim, metrics model.Metrics, generated time.Time) [][]any {
	values := make([][]any, 0, headerRows+len(claims))

	headers := analysis.QueueHeaders()
	headerRow := make([]any, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}

	values = append(values,
		[]any{"Claims Work Queue", generated.Format("Jan 2, 2006 3:04 PM")},
		[]any{},
		[]any{"Summary"},
		[]any{"Total Claims", metrics.TotalClaims},
		[]any{"Total Net Payment", metrics.TotalNetPayment},
		[]any{"Claims In Queue", len(claims)},
		[]any{},
		headerRow,
	)

	for _, c := range claims {
		values = append(values, analysis.QueueRow(c))
	}

	return values
}

func (w *Writer) writeData(ctx context.Context, spreadsheetID string, values [][]any) error {
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))

		batch := values[i:end]
		valueRange := &sheets.ValueRange{
			Values: batch,
		}

		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, w.cellRange(fmt.Sprintf("A%d", i+1)), valueRange).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()

		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "start_row", i+1, "rows", len(batch))
	}

	return nil
}

func netPaymentColumn() int64 {
	for i, col := range analysis.QueueColumns {
		if col.Key == analysis.SortByNetPayment {
			return int64(i)
		}
	}
	return -1
}

// repeatCell applies format to rows [r0,r1) and columns [c0,c1).
func repeatCell(sheetID, r0, r1, c0, c1 int64, format *sheets.CellFormat, fields string) *sheets.Request {
	return &sheets.Request{RepeatCell: &sheets.RepeatCellRequest{
		Range: &sheets.GridRange{
			SheetId:          sheetID,
			StartRowIndex:    r0,
			EndRowIndex:      r1,
			StartColumnIndex: c0,
			EndColumnIndex:   c1,
		},
		Cell:   &sheets.CellData{UserEnteredFormat: format},
		Fields: fields,
	}}
}

func formattingRequests(sheetID int64, totalRows int) []*sheets.Request {
	cols := int64(len(analysis.QueueColumns))
	requests := []*sheets.Request{
		repeatCell(sheetID, 0, 1, 0, 2,
			&sheets.CellFormat{TextFormat: &sheets.TextFormat{Bold: true, FontSize: 16}},
			"userEnteredFormat.textFormat"),
		repeatCell(sheetID, headerRows-1, headerRows, 0, cols,
			&sheets.CellFormat{
				TextFormat:      &sheets.TextFormat{Bold: true},
				BackgroundColor: &sheets.Color{Red: 0.9, Green: 0.9, Blue: 0.95},
			},
			"userEnteredFormat(textFormat,backgroundColor)"),
		{AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
			Dimensions: &sheets.DimensionRange{SheetId: sheetID, Dimension: "COLUMNS", EndIndex: cols},
		}},
		{UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
			Properties: &sheets.SheetProperties{
				SheetId:        sheetID,
				GridProperties: &sheets.GridProperties{FrozenRowCount: headerRows},
			},
			Fields: "gridProperties.frozenRowCount",
		}},
	}

	if col := netPaymentColumn(); col >= 0 && totalRows > headerRows {
		requests = append(requests, repeatCell(sheetID, headerRows, int64(totalRows), col, col+1,
			&sheets.CellFormat{NumberFormat: &sheets.NumberFormat{Type: "CURRENCY", Pattern: "$#,##0.00"}},
			"userEnteredFormat.numberFormat"))
	}
	return requests
}

func (w *Writer) applyFormatting(ctx context.Context, spreadsheetID string, sheetID int64, totalRows int) error {
	_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: formattingRequests(sheetID, totalRows),
	}).Context(ctx).Do()
	return err
}
