package leave

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"time"
)

const (
	SortByRequestDate  = "request_date"
	SortByStartDate    = "start_date"
	SortByEmployeeName = "employee_name"
	SortByTotalDays    = "total_days"
)

// FilterSpec narrows a request list. Empty fields match everything; all set
// fields must match. From and To bound the leave interval and may be zero.
type FilterSpec struct {
	Department string
	LeaveType  string
	Status     Status
	From       time.Time
	To         time.Time
	Search     string
	SortBy     string
	SortDesc   bool
}

// Filter returns the matching requests without touching the input slice.
// Input order is kept unless SortBy names a known key.
func Filter(requests []LeaveRequest, spec FilterSpec) []LeaveRequest {
	search := strings.ToLower(strings.TrimSpace(spec.Search))
	out := make([]LeaveRequest, 0, len(requests))
	for _, r := range requests {
		if spec.Department != "" && r.Department != spec.Department {
			continue
		}
		if spec.LeaveType != "" && !strings.EqualFold(r.LeaveType, spec.LeaveType) {
			continue
		}
		if spec.Status != "" && r.Status != spec.Status {
			continue
		}
		if !r.Overlaps(spec.From, spec.To) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(r.EmployeeName), search) &&
			!strings.Contains(strings.ToLower(r.EmployeeID), search) {
			continue
		}
		out = append(out, r)
	}

	if less := sortKey(spec.SortBy); less != nil {
		slices.SortStableFunc(out, func(a, b LeaveRequest) int {
			if spec.SortDesc {
				return less(b, a)
			}
			return less(a, b)
		})
	}
	return out
}

func sortKey(key string) func(a, b LeaveRequest) int {
	switch key {
	case SortByRequestDate:
		return func(a, b LeaveRequest) int { return a.RequestDate.Compare(b.RequestDate) }
	case SortByStartDate:
		return func(a, b LeaveRequest) int { return a.StartDate.Compare(b.StartDate) }
	case SortByEmployeeName:
		return func(a, b LeaveRequest) int {
			return cmp.Compare(strings.ToLower(a.EmployeeName), strings.ToLower(b.EmployeeName))
		}
	case SortByTotalDays:
		return func(a, b LeaveRequest) int { return cmp.Compare(a.TotalDays, b.TotalDays) }
	default:
		return nil
	}
}

// CountByStatus only has keys for statuses that occur.
func CountByStatus(requests []LeaveRequest) map[Status]int {
	counts := make(map[Status]int)
	for _, r := range requests {
		counts[r.Status]++
	}
	return counts
}

// Percentage is round(100*count/total), or 0 for an empty total.
func Percentage(count, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(count) / float64(total)))
}

type Summary struct {
	Total       int            `json:"total"`
	Counts      map[Status]int `json:"counts"`
	Percentages map[Status]int `json:"percentages"`
}

// Summarize reports every known status, zero counts included.
func Summarize(requests []LeaveRequest) Summary {
	counts := CountByStatus(requests)
	s := Summary{
		Total:       len(requests),
		Counts:      make(map[Status]int, len(Statuses)),
		Percentages: make(map[Status]int, len(Statuses)),
	}
	for _, st := range Statuses {
		s.Counts[st] = counts[st]
		s.Percentages[st] = Percentage(counts[st], s.Total)
	}
	return s
}

// OnDate returns the requests whose interval covers day.
func OnDate(requests []LeaveRequest, day time.Time) []LeaveRequest {
	out := make([]LeaveRequest, 0)
	for _, r := range requests {
		if r.Covers(day) {
			out = append(out, r)
		}
	}
	return out
}
