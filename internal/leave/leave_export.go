package leave

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const exportSheet = "Leave Requests"

var exportHeaders = []string{
	"ID", "Employee", "Email", "Department", "Type", "Half Day",
	"Dates", "Days", "Reason", "Status", "Approver", "Submitted At",
}

// Export renders every leave request into an xlsx workbook.
func (s *service) Export(ctx context.Context) ([]byte, error) {
	leaves, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return nil, err
		}
	}

	for idx, l := range leaves {
		row := idx + 2

		var name, email, department, halfDay, approver string
		if l.User != nil {
			name, email, department = l.User.Name, l.User.Email, l.User.Department
		}
		if l.HalfDayType != nil {
			halfDay = *l.HalfDayType
		}
		if l.Approver != nil {
			approver = l.Approver.Name
		}

		values := []any{
			l.ID.String(),
			name,
			email,
			department,
			l.LeaveType,
			halfDay,
			strings.Join(l.Dates, ", "),
			len(l.Dates),
			l.Reason,
			l.Status,
			approver,
			l.CreatedAt.Format("2006-01-02 15:04"),
		}
		if err := f.SetSheetRow(exportSheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return nil, err
		}
	}

	_ = f.SetColWidth(exportSheet, "A", "A", 38)
	_ = f.SetColWidth(exportSheet, "B", "D", 20)
	_ = f.SetColWidth(exportSheet, "G", "G", 30)
	_ = f.SetColWidth(exportSheet, "I", "I", 30)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}

	s.logger.Info("leave export generated", zap.Int("rows", len(leaves)))
	return buf.Bytes(), nil
}
