package report

import (
	"math"
	"time"

	"go-leave/internal/leave"
)

const upcomingWindowDays = 30

// ComputeStats derives department figures from requests already narrowed to
// the department and date range. used and total are the summed balances of
// the department's employees.
func ComputeStats(department string, requests []leave.LeaveRequest, today time.Time, used, total int) DepartmentStats {
	summary := leave.Summarize(requests)
	stats := DepartmentStats{
		Department:       department,
		Total:            summary.Total,
		Counts:           summary.Counts,
		Percentages:      summary.Percentages,
		LeaveUtilization: leave.Percentage(used, total),
		ByLeaveType:      make(map[string]int),
		AsOf:             today.Format(leave.DateLayout),
	}

	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	horizon := day.AddDate(0, 0, upcomingWindowDays)
	approvedDays, approved := 0, 0
	for _, r := range requests {
		stats.ByLeaveType[r.LeaveType]++
		if r.Status != leave.StatusApproved {
			continue
		}
		approved++
		approvedDays += r.TotalDays
		if r.Covers(day) {
			stats.OnLeaveToday++
		}
		if r.StartDate.After(day) && !r.StartDate.After(horizon) {
			stats.UpcomingLeaves++
		}
	}
	if approved > 0 {
		stats.AverageApprovedDuration = math.Round(float64(approvedDays)/float64(approved)*10) / 10
	}
	return stats
}

func employeeIDs(requests []leave.LeaveRequest) []string {
	seen := make(map[string]struct{}, len(requests))
	ids := make([]string, 0, len(requests))
	for _, r := range requests {
		if _, ok := seen[r.EmployeeID]; ok {
			continue
		}
		seen[r.EmployeeID] = struct{}{}
		ids = append(ids, r.EmployeeID)
	}
	return ids
}
