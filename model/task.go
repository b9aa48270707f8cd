package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Task is one unit of work inside a workflow's task list. Concrete kinds are
// registered with RegisterTask; kinds nobody registered decode as RawTask.
type Task interface {
	Kind() string
}

// TaskBase carries the flow-control fields every task kind accepts.
type TaskBase struct {
	If       string         `yaml:"if,omitempty" json:"if,omitempty"`
	Then     string         `yaml:"then,omitempty" json:"then,omitempty"`
	Input    map[string]any `yaml:"input,omitempty" json:"input,omitempty"`
	Output   map[string]any `yaml:"output,omitempty" json:"output,omitempty"`
	Export   map[string]any `yaml:"export,omitempty" json:"export,omitempty"`
	Timeout  any            `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Metadata map[string]any `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// RawTask keeps the body of a task whose kind has no registered type.
type RawTask struct {
	TaskKind string
	Body     map[string]any
}

func (t *RawTask) Kind() string { return t.TaskKind }

func (t *RawTask) MarshalJSON() ([]byte, error) { return json.Marshal(t.Body) }

// TaskItem is a named task.
type TaskItem struct {
	Name string
	Task Task
}

// TaskList is the ordered task collection of a workflow.
//
// YAML input may use the DSL sequence form (a list of single-key mappings)
// or a plain mapping; null, {} and [] all yield an empty list. JSON output
// always uses the sequence form.
type TaskList []TaskItem

// Len returns the number of tasks. Safe on a nil list.
func (l TaskList) Len() int { return len(l) }

// Get returns the first task with the given name.
func (l TaskList) Get(name string) (Task, bool) {
	for _, it := range l {
		if it.Name == name {
			return it.Task, true
		}
	}
	return nil, false
}

// UnmarshalYAML decodes either task list form.
func (l *TaskList) UnmarshalYAML(value *yaml.Node) error {
	value = resolveAlias(value)
	out := TaskList{}
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag != "!!null" {
			return fmt.Errorf("line %d: task list must be a sequence or mapping, got %s", value.Line, value.Tag)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(value.Content); i += 2 {
			it, err := decodeTaskItem(value.Content[i], value.Content[i+1])
			if err != nil {
				return err
			}
			out = append(out, it)
		}
	case yaml.SequenceNode:
		for _, entry := range value.Content {
			entry = resolveAlias(entry)
			if entry.Kind != yaml.MappingNode || len(entry.Content) != 2 {
				return fmt.Errorf("line %d: task list entry must be a mapping with exactly one task", entry.Line)
			}
			it, err := decodeTaskItem(entry.Content[0], entry.Content[1])
			if err != nil {
				return err
			}
			out = append(out, it)
		}
	default:
		return fmt.Errorf("line %d: task list must be a sequence or mapping", value.Line)
	}
	*l = out
	return nil
}

// MarshalJSON renders the list as [{"name": {...}}, ...].
func (l TaskList) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, it := range l {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(it.Name)
		if err != nil {
			return nil, err
		}
		body, err := json.Marshal(it.Task)
		if err != nil {
			return nil, fmt.Errorf("task %q: %w", it.Name, err)
		}
		buf.WriteByte('{')
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(body)
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func decodeTaskItem(key, body *yaml.Node) (TaskItem, error) {
	var name string
	if err := key.Decode(&name); err != nil {
		return TaskItem{}, fmt.Errorf("line %d: task name: %w", key.Line, err)
	}
	body = resolveAlias(body)
	if body.Kind != yaml.MappingNode {
		return TaskItem{}, fmt.Errorf("line %d: task %q must be a mapping", body.Line, name)
	}
	kind := detectKind(body)
	if kind == "" {
		return TaskItem{}, fmt.Errorf("line %d: task %q has no recognised task keyword", body.Line, name)
	}
	task, ok := newTask(kind)
	if !ok {
		raw := &RawTask{TaskKind: kind}
		if err := body.Decode(&raw.Body); err != nil {
			return TaskItem{}, fmt.Errorf("task %q: %w", name, err)
		}
		return TaskItem{Name: name, Task: raw}, nil
	}
	if err := body.Decode(task); err != nil {
		return TaskItem{}, fmt.Errorf("task %q: %w", name, err)
	}
	return TaskItem{Name: name, Task: task}, nil
}

// kindKeywords lists the DSL task keywords in detection order. "for" tasks
// also carry "do", so "do" comes last.
var kindKeywords = []string{
	"call", "emit", "for", "fork", "listen", "raise", "run", "set", "switch", "try", "wait", "do",
}

func detectKind(body *yaml.Node) string {
	keys := make(map[string]bool, len(body.Content)/2)
	for i := 0; i+1 < len(body.Content); i += 2 {
		keys[body.Content[i].Value] = true
	}
	for _, k := range kindKeywords {
		if keys[k] {
			return k
		}
	}
	return ""
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}
