package api

import (
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Tsinling0525/synapse/model"
)

// ErrExists is returned when a workflow with the same namespace and name is
// already stored.
var ErrExists = errors.New("workflow already exists")

// StoredVersion is a workflow version as received over the wire.
type StoredVersion struct {
	Name     string          `json:"name"`
	Document json.RawMessage `json:"document"`
}

// StoredWorkflow is a workflow resource held by the store.
type StoredWorkflow struct {
	UID       string          `json:"uid"`
	Metadata  model.Metadata  `json:"metadata"`
	Versions  []StoredVersion `json:"versions"`
	CreatedAt time.Time       `json:"createdAt"`
}

// WorkflowStore is a simple in-memory store for workflows.
type WorkflowStore struct {
	mu sync.RWMutex
	m  map[string]StoredWorkflow
}

func NewWorkflowStore() *WorkflowStore { return &WorkflowStore{m: make(map[string]StoredWorkflow)} }

func key(namespace, name string) string { return namespace + "/" + name }

// Create stores wf, assigning its UID and creation time.
func (s *WorkflowStore) Create(wf StoredWorkflow) (StoredWorkflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(wf.Metadata.Namespace, wf.Metadata.Name)
	if _, ok := s.m[k]; ok {
		return StoredWorkflow{}, ErrExists
	}
	wf.UID = uuid.NewString()
	wf.CreatedAt = time.Now().UTC()
	s.m[k] = wf
	return wf, nil
}

func (s *WorkflowStore) Get(namespace, name string) (StoredWorkflow, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wf, ok := s.m[key(namespace, name)]
	return wf, ok
}

// List returns all workflows ordered by namespace then name.
func (s *WorkflowStore) List() []StoredWorkflow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]StoredWorkflow, 0, len(s.m))
	for _, wf := range s.m {
		out = append(out, wf)
	}
	sort.Slice(out, func(i, j int) bool {
		return key(out[i].Metadata.Namespace, out[i].Metadata.Name) < key(out[j].Metadata.Namespace, out[j].Metadata.Name)
	})
	return out
}

// Delete removes a workflow and reports whether it existed.
func (s *WorkflowStore) Delete(namespace, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(namespace, name)
	_, ok := s.m[k]
	delete(s.m, k)
	return ok
}
