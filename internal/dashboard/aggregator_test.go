package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taskflow/taskflow/internal/tasks"
)

func withStatus(status tasks.Status) tasks.TaskWithAssignee {
	return tasks.TaskWithAssignee{Task: tasks.Task{Status: status}}
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)

	assert.Equal(t, Summary{}, summary)
	assert.Equal(t, 0, summary.Total())
}

func TestSummarizeCountsPerStatus(t *testing.T) {
	list := []tasks.TaskWithAssignee{
		withStatus(tasks.StatusTodo),
		withStatus(tasks.StatusTodo),
		withStatus(tasks.StatusInProgress),
		withStatus(tasks.StatusDone),
		withStatus(tasks.StatusDone),
		withStatus(tasks.StatusDone),
	}

	summary := Summarize(list)
	assert.Equal(t, Summary{Todo: 2, InProgress: 1, Done: 3}, summary)
	assert.Equal(t, 6, summary.Total())
}

func TestSummarizeExcludesUnknownStatus(t *testing.T) {
	list := []tasks.TaskWithAssignee{
		withStatus(tasks.StatusTodo),
		withStatus(tasks.Status("archived")),
	}

	summary := Summarize(list)
	assert.Equal(t, Summary{Todo: 1}, summary)
	assert.Equal(t, 1, summary.Total())
}

func TestPercentageOf(t *testing.T) {
	assert.Equal(t, 0.0, PercentageOf(0, 0))
	assert.Equal(t, 0.0, PercentageOf(5, 0))
	assert.Equal(t, 50.0, PercentageOf(1, 2))
	assert.Equal(t, 100.0, PercentageOf(3, 3))
	assert.Equal(t, 33.33, PercentageOf(1, 3))
	assert.Equal(t, 66.67, PercentageOf(2, 3))
	assert.Equal(t, 16.67, PercentageOf(1, 6))
}
