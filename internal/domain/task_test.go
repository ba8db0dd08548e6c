package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryStatusIsHandled(t *testing.T) {
	for _, s := range TaskStatuses {
		assert.True(t, s.Valid(), s)
		assert.NotPanics(t, func() { _ = s.IsTerminal() }, s)
	}
	assert.False(t, TaskStatus("ARCHIVED").Valid())
	for _, p := range TaskPriorities {
		assert.True(t, p.Valid(), p)
	}
}

func TestUnknownStatusIsNotTerminal(t *testing.T) {
	for _, s := range []TaskStatus{"", "ARCHIVED", "done"} {
		assert.NotPanics(t, func() { assert.False(t, s.IsTerminal(), s) }, s)
	}
	assert.True(t, TaskStatusDone.IsTerminal())
	assert.False(t, TaskStatusTodo.IsTerminal())
	assert.False(t, TaskStatusInProgress.IsTerminal())
}

func TestParseEnums(t *testing.T) {
	s, err := ParseTaskStatus(" in_progress ")
	require.NoError(t, err)
	assert.Equal(t, TaskStatusInProgress, s)

	_, err = ParseTaskStatus("later")
	assert.Error(t, err)

	p, err := ParseTaskPriority("high")
	require.NoError(t, err)
	assert.Equal(t, TaskPriorityHigh, p)

	_, err = ParseTaskPriority("")
	assert.Error(t, err)
}

func TestTransitionTo(t *testing.T) {
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	done := created.Add(90 * time.Minute)
	later := done.Add(time.Hour)

	task := &Task{Status: TaskStatusTodo, CreatedAt: created}

	task.TransitionTo(TaskStatusDone, done)
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, done, *task.CompletedAt)

	// staying in DONE keeps the original stamp
	task.TransitionTo(TaskStatusDone, later)
	assert.Equal(t, done, *task.CompletedAt)

	d, ok := task.CompletionDuration()
	require.True(t, ok)
	assert.Equal(t, 90*time.Minute, d)

	task.TransitionTo(TaskStatusTodo, later)
	assert.Nil(t, task.CompletedAt)
	assert.Equal(t, TaskStatusTodo, task.Status)

	_, ok = task.CompletionDuration()
	assert.False(t, ok)
}

func TestTransitionFromEmptyStatus(t *testing.T) {
	now := time.Now()
	task := &Task{}
	task.TransitionTo(TaskStatusDone, now)
	require.NotNil(t, task.CompletedAt)

	fresh := &Task{}
	fresh.TransitionTo(TaskStatusInProgress, now)
	assert.Nil(t, fresh.CompletedAt)
}
