package model

import (
	"sort"
	"sync"
)

// TaskFactory returns a zero task ready to be decoded into.
type TaskFactory func() Task

var (
	mu       sync.RWMutex
	registry = map[string]TaskFactory{}
)

// RegisterTask binds a task keyword to a concrete task type.
func RegisterTask(kind string, f TaskFactory) {
	mu.Lock()
	defer mu.Unlock()
	registry[kind] = f
}

// RegisteredKinds returns the registered task keywords in sorted order.
func RegisteredKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	kinds := make([]string, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

func newTask(kind string) (Task, bool) {
	mu.RLock()
	defer mu.RUnlock()
	f, ok := registry[kind]
	if !ok {
		return nil, false
	}
	return f(), true
}
