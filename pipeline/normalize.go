package pipeline

import (
	"github.com/Tsinling0525/synapse/model"
	"github.com/Tsinling0525/synapse/tasks/set"
)

// Default task injected into documents that declare none.
const (
	DefaultTaskName = "greet"
	DefaultVariable = "greeting"
	DefaultGreeting = "Hello World!"
)

// DefaultTasks returns a fresh copy of the default task list.
func DefaultTasks() model.TaskList {
	return model.TaskList{{
		Name: DefaultTaskName,
		Task: set.New(map[string]any{DefaultVariable: DefaultGreeting}),
	}}
}

// Normalize gives wf the default task list when its own is empty or absent
// and reports whether it did. A populated list is left untouched.
func Normalize(wf *model.Workflow) bool {
	if wf == nil || wf.Do.Len() > 0 {
		return false
	}
	wf.Do = DefaultTasks()
	return true
}
