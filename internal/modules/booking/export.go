package booking

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Bookings"

var exportColumns = []string{
	"ID", "Room", "Requester", "Title", "Start", "End", "Status", "Created",
}

// ExportXLSX writes the bookings matching f as a spreadsheet, times in the
// configured timezone.
func (s *Service) ExportXLSX(ctx context.Context, f ListFilter, w io.Writer) error {
	rows, err := s.ListAll(ctx, f)
	if err != nil {
		return err
	}

	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	if err := file.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, col := range exportColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := file.SetCellValue(exportSheet, cell, col); err != nil {
			return err
		}
	}
	if style, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
		_ = file.SetCellStyle(exportSheet, "A1", last, style)
	}

	const layout = "2006-01-02 15:04"
	for r, b := range rows {
		values := []any{
			b.ID,
			b.RoomName,
			b.UserName,
			b.Title,
			b.StartTime.In(s.cfg.Location).Format(layout),
			b.EndTime.In(s.cfg.Location).Format(layout),
			b.Status.String(),
			b.CreatedAt.In(s.cfg.Location).Format(layout),
		}
		for c, v := range values {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := file.SetCellValue(exportSheet, cell, v); err != nil {
				return err
			}
		}
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
