// Package dashboard derives per-status statistics from an already
// access-filtered task collection. It holds no state of its own.
package dashboard

import (
	"math"

	"github.com/taskflow/taskflow/internal/tasks"
)

// Summary holds per-status task counts.
type Summary struct {
	Todo       int `json:"todo"`
	InProgress int `json:"in_progress"`
	Done       int `json:"done"`
}

// Total returns the number of counted tasks.
func (s Summary) Total() int {
	return s.Todo + s.InProgress + s.Done
}

// Summarize counts tasks by status. Unknown status values cannot occur given
// the store invariant, but if one slips through it is excluded from all
// counts rather than causing a failure.
func Summarize(list []tasks.TaskWithAssignee) Summary {
	var summary Summary
	for _, t := range list {
		switch t.Status {
		case tasks.StatusTodo:
			summary.Todo++
		case tasks.StatusInProgress:
			summary.InProgress++
		case tasks.StatusDone:
			summary.Done++
		}
	}
	return summary
}

// PercentageOf returns count as a percentage of total, rounded to two
// decimal places. A zero total yields 0 rather than dividing by zero.
func PercentageOf(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*100*100) / 100
}
