// Package export renders the claims work queue as an XLSX workbook.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Veraticus/claims-triage/internal/analysis"
	"github.com/Veraticus/claims-triage/internal/common"
	"github.com/Veraticus/claims-triage/internal/model"
	"github.com/Veraticus/claims-triage/internal/service"
)

// Sheet names in the exported workbook.
const (
	QueueSheet   = "Work Queue"
	SummarySheet = "Summary"
)

// WorkQueueXLSX returns a workbook with the claims on the work-queue sheet,
// in the given order, and per-category counts on the summary sheet.
func WorkQueueXLSX(claims []model.ProcessedClaim, summary analysis.Summary) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// NewFile starts with Sheet1.
	if err := f.SetSheetName("Sheet1", QueueSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return nil, err
	}

	if err := writeQueue(f, claims); err != nil {
		return nil, fmt.Errorf("work queue sheet: %w", err)
	}
	if err := writeSummary(f, summary); err != nil {
		return nil, fmt.Errorf("summary sheet: %w", err)
	}

	idx, _ := f.GetSheetIndex(QueueSheet)
	f.SetActiveSheet(idx)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeQueue(f *excelize.File, claims []model.ProcessedClaim) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return err
	}

	for i, h := range analysis.QueueHeaders() {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(QueueSheet, cell, h); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(analysis.QueueColumns), 1)
	if err := f.SetCellStyle(QueueSheet, "A1", last, bold); err != nil {
		return err
	}

	for r, c := range claims {
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		row := analysis.QueueRow(c)
		if err := f.SetSheetRow(QueueSheet, cell, &row); err != nil {
			return err
		}
	}

	for i, col := range analysis.QueueColumns {
		name, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(QueueSheet, name, name, col.Width)
		if col.Key == analysis.SortByNetPayment && len(claims) > 0 {
			end, _ := excelize.CoordinatesToCellName(i+1, len(claims)+1)
			_ = f.SetCellStyle(QueueSheet, name+"2", end, money)
		}
	}

	return f.SetPanes(QueueSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeSummary(f *excelize.File, s analysis.Summary) error {
	rows := [][]any{
		{"Run ID", s.RunID},
		{"Generated", s.GeneratedAt.Format(time.RFC3339)},
		{"Total Claims", s.Metrics.TotalClaims},
		{"Total Net Payment", s.Metrics.TotalNetPayment},
		{"Actionable", s.Actionable},
		{"Not Actionable", s.NonActionable},
		{},
		{"Category", "Team", "Claims", "Top Priority", "L1 Monitor"},
	}
	for _, c := range s.Categories {
		l1 := "No"
		if c.SendToL1Monitor {
			l1 = "Yes"
		}
		rows = append(rows, []any{c.Category, c.TeamName, c.Claims, c.TopPriority, l1})
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(SummarySheet, "A", "A", 24)
	_ = f.SetColWidth(SummarySheet, "B", "B", 38)
	return nil
}

// FileWriter writes the work queue to an XLSX file.
type FileWriter struct {
	logger *slog.Logger
	path   string
}

var _ service.WorkQueueWriter = (*FileWriter)(nil)

// NewFileWriter returns a writer targeting path.
func NewFileWriter(path string, logger *slog.Logger) *FileWriter {
	return &FileWriter{path: path, logger: common.OrDefault(logger)}
}

// Write renders the workbook and replaces the file.
func (w *FileWriter) Write(_ context.Context, claims []model.ProcessedClaim, metrics model.Metrics) error {
	start := time.Now()

	summary := analysis.Summarize(analysis.Result{Claims: claims, Metrics: metrics})
	data, err := WorkQueueXLSX(claims, summary)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(w.path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	if err := os.WriteFile(w.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", w.path, err)
	}

	w.logger.Info("exported work queue",
		"path", w.path,
		"rows", len(claims),
		"elapsed_ms", time.Since(start).Milliseconds())
	return nil
}
