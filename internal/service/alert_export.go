package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"custody-tracker/internal/model"
)

// ═══════════════════════════════════════════════════════════
// ExportActive renders active alerts as an Excel workbook
// ═══════════════════════════════════════════════════════════
//
// Layout:
//   - one sheet, title row merged across all columns
//   - header: Date | Category | Person | Process | Description | Status
//   - one row per fired event, ordered by event_at, times in the scheduler timezone

const exportSheet = "Active alerts"

var exportHeaders = []string{"Date", "Category", "Person", "Process", "Description", "Status"}

func (s *alertService) ExportActive(ctx context.Context) (*bytes.Buffer, string, error) {
	if err := s.refresh(ctx); err != nil {
		return nil, "", err
	}
	now := s.clock.Now()
	events, total, err := s.repo.Alert.ListActive(ctx, now, 0, maxFeedRows)
	if err != nil {
		s.logger.Error("list active alerts for export failed", zap.Error(err))
		return nil, "", err
	}
	if total > int64(len(events)) {
		s.logger.Warn("active alert export truncated",
			zap.Int64("total", total),
			zap.Int("exported", len(events)),
		)
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(exportSheet)
	if err != nil {
		s.logger.Error("create sheet failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	// column widths
	widths := []float64{20, 26, 30, 28, 50, 12}
	for i, w := range widths {
		f.SetColWidth(exportSheet, colName(i), colName(i), w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// title row
	title := fmt.Sprintf("Active alerts as of %s", now.In(s.location).Format("2006-01-02 15:04"))
	f.SetCellValue(exportSheet, "A1", title)
	f.MergeCell(exportSheet, "A1", cell(colName(len(exportHeaders)-1), 1))
	f.SetCellStyle(exportSheet, "A1", "A1", headerStyle)

	// header
	for i, h := range exportHeaders {
		f.SetCellValue(exportSheet, cell(colName(i), 2), h)
	}
	f.SetCellStyle(exportSheet, "A2", cell(colName(len(exportHeaders)-1), 2), headerStyle)

	// data rows
	row := 3
	for i := range events {
		ev := &events[i]
		values := []interface{}{
			ev.EventAt.In(s.location).Format("2006-01-02 15:04"),
			ev.Category.Label(),
			personName(ev),
			processNumber(ev),
			derefOr(ev.Description, "-"),
			string(ev.AlertStatus),
		}
		for col, v := range values {
			f.SetCellValue(exportSheet, cell(colName(col), row), v)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write workbook failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("active_alerts_%s.xlsx", now.In(s.location).Format("20060102"))
	return buf, filename, nil
}

// ── helpers ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func personName(ev *model.Event) string {
	if ev.Process != nil && ev.Process.Person != nil {
		return ev.Process.Person.FullName
	}
	return "-"
}

func processNumber(ev *model.Event) string {
	if ev.Process != nil {
		return ev.Process.ProcessNumber
	}
	return "-"
}

func derefOr(s *string, def string) string {
	if s == nil || *s == "" {
		return def
	}
	return *s
}
