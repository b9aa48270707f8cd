package model

import (
	"encoding/json"
)

// Document identifies a workflow definition and the DSL version it targets.
type Document struct {
	DSL       string            `yaml:"dsl" json:"dsl,omitempty"`
	Namespace string            `yaml:"namespace" json:"namespace,omitempty"`
	Name      string            `yaml:"name" json:"name,omitempty"`
	Version   string            `yaml:"version" json:"version,omitempty"`
	Title     string            `yaml:"title,omitempty" json:"title,omitempty"`
	Summary   string            `yaml:"summary,omitempty" json:"summary,omitempty"`
	Tags      map[string]string `yaml:"tags,omitempty" json:"tags,omitempty"`
	Metadata  map[string]any    `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// IsZero reports whether no identification field is set.
func (d Document) IsZero() bool {
	return d.DSL == "" && d.Namespace == "" && d.Name == "" && d.Version == "" &&
		d.Title == "" && d.Summary == "" && len(d.Tags) == 0 && len(d.Metadata) == 0
}

// Workflow is a workflow definition document: identification plus the
// ordered tasks it executes. Top-level keys this package does not model are
// kept in Extra and written back unchanged.
type Workflow struct {
	Document Document       `yaml:"document"`
	Do       TaskList       `yaml:"do"`
	Extra    map[string]any `yaml:",inline"`
}

// MarshalJSON renders the workflow with Extra keys at the top level.
func (w Workflow) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(w.Extra)+2)
	for k, v := range w.Extra {
		out[k] = v
	}
	if !w.Document.IsZero() {
		out["document"] = w.Document
	}
	if w.Do == nil {
		out["do"] = TaskList{}
	} else {
		out["do"] = w.Do
	}
	return json.Marshal(out)
}
