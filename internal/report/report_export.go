package report

import (
	"fmt"

	"go-leave/internal/leave"

	"github.com/xuri/excelize/v2"
)

const (
	SheetRequests = "Leave Requests"
	SheetSummary  = "Summary"
)

var requestHeaders = []any{
	"ID", "Employee ID", "Employee Name", "Department", "Position", "Leave Type",
	"Start Date", "End Date", "Total Days", "Status", "Request Date", "Reviewed By", "Comments",
}

// BuildWorkbook writes requests and their status summary into an xlsx file.
func BuildWorkbook(requests []leave.LeaveRequest) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetRequests); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(SheetRequests, "A1", &requestHeaders); err != nil {
		return nil, err
	}
	for i, r := range requests {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{
			r.ID, r.EmployeeID, r.EmployeeName, r.Department, r.Position, r.LeaveType,
			r.StartDate.Format(leave.DateLayout), r.EndDate.Format(leave.DateLayout), r.TotalDays,
			string(r.Status), r.RequestDate.UTC().Format("2006-01-02 15:04:05"),
			deref(r.ReviewedBy), deref(r.Comments),
		}
		if err := f.SetSheetRow(SheetRequests, cell, &row); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(SheetSummary); err != nil {
		return nil, err
	}
	summary := leave.Summarize(requests)
	if err := f.SetSheetRow(SheetSummary, "A1", &[]any{"Status", "Count", "Percentage"}); err != nil {
		return nil, err
	}
	for i, st := range leave.Statuses {
		row := []any{string(st), summary.Counts[st], fmt.Sprintf("%d%%", summary.Percentages[st])}
		if err := f.SetSheetRow(SheetSummary, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, err
		}
	}
	totalRow := []any{"Total", summary.Total}
	if err := f.SetSheetRow(SheetSummary, fmt.Sprintf("A%d", len(leave.Statuses)+2), &totalRow); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
