package model_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Tsinling0525/synapse/model"
	"github.com/Tsinling0525/synapse/tasks/call"
	"github.com/Tsinling0525/synapse/tasks/set"
)

func decodeWorkflow(t *testing.T, src string) model.Workflow {
	t.Helper()
	var wf model.Workflow
	require.NoError(t, yaml.Unmarshal([]byte(src), &wf))
	return wf
}

func TestTaskListSequenceForm(t *testing.T) {
	wf := decodeWorkflow(t, `
document:
  dsl: '1.0.0'
  namespace: examples
  name: call-http
  version: '0.1.0'
do:
  - getPet:
      call: http
      with:
        method: get
        endpoint: https://petstore.swagger.io/v2/pet/1
  - remember:
      set:
        pet: ${ .name }
      then: end
`)
	assert.Equal(t, "1.0.0", wf.Document.DSL)
	assert.Equal(t, "call-http", wf.Document.Name)
	require.Equal(t, 2, wf.Do.Len())

	assert.Equal(t, "getPet", wf.Do[0].Name)
	c, ok := wf.Do[0].Task.(*call.Call)
	require.True(t, ok, "expected *call.Call, got %T", wf.Do[0].Task)
	assert.Equal(t, "http", c.Call)
	assert.Equal(t, "get", c.With["method"])

	s, ok := wf.Do[1].Task.(*set.Set)
	require.True(t, ok, "expected *set.Set, got %T", wf.Do[1].Task)
	assert.Equal(t, "${ .name }", s.Set["pet"])
	assert.Equal(t, "end", s.Then)
}

func TestTaskListMappingForm(t *testing.T) {
	wf := decodeWorkflow(t, `
do:
  first:
    set:
      a: 1
  second:
    wait:
      seconds: 5
`)
	require.Equal(t, 2, wf.Do.Len())
	assert.Equal(t, "first", wf.Do[0].Name)
	assert.Equal(t, "second", wf.Do[1].Name)

	raw, ok := wf.Do[1].Task.(*model.RawTask)
	require.True(t, ok)
	assert.Equal(t, "wait", raw.Kind())
	assert.Equal(t, map[string]any{"wait": map[string]any{"seconds": 5}}, raw.Body)
}

func TestTaskListEmptyForms(t *testing.T) {
	for name, src := range map[string]string{
		"empty mapping":  "do: {}\n",
		"empty sequence": "do: []\n",
		"null":           "do:\n",
	} {
		t.Run(name, func(t *testing.T) {
			wf := decodeWorkflow(t, src)
			assert.Equal(t, 0, wf.Do.Len())
		})
	}

	wf := decodeWorkflow(t, "document:\n  name: x\n")
	assert.Nil(t, wf.Do)
}

func TestForTaskDetectedBeforeDo(t *testing.T) {
	wf := decodeWorkflow(t, `
do:
  - loop:
      for:
        each: item
        in: ${ .items }
      do:
        - inner:
            set:
              seen: true
`)
	require.Equal(t, 1, wf.Do.Len())
	assert.Equal(t, "for", wf.Do[0].Task.Kind())
}

func TestTaskListRejectsMalformedEntries(t *testing.T) {
	cases := map[string]string{
		"scalar list":        "do: nope\n",
		"scalar task":        "do:\n  - greet: hello\n",
		"two keys per entry": "do:\n  - a:\n      set: {x: 1}\n    b:\n      set: {y: 2}\n",
		"unknown keyword":    "do:\n  - a:\n      frobnicate: {}\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			var wf model.Workflow
			assert.Error(t, yaml.Unmarshal([]byte(src), &wf))
		})
	}
}

func TestWorkflowJSONKeepsExtraKeys(t *testing.T) {
	wf := decodeWorkflow(t, `
dsl: "1.0"
name: test
input:
  schema:
    format: json
do:
  - greet:
      set:
        greeting: hi
`)
	b, err := json.Marshal(wf)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"dsl": "1.0",
		"name": "test",
		"input": {"schema": {"format": "json"}},
		"do": [{"greet": {"set": {"greeting": "hi"}}}]
	}`, string(b))
}

func TestWorkflowJSONRendersEmptyTaskList(t *testing.T) {
	b, err := json.Marshal(model.Workflow{Document: model.Document{DSL: "1.0.0", Name: "n"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"document": {"dsl": "1.0.0", "name": "n"}, "do": []}`, string(b))
}

func TestTaskListGet(t *testing.T) {
	l := model.TaskList{{Name: "greet", Task: set.New(map[string]any{"greeting": "x"})}}
	task, ok := l.Get("greet")
	require.True(t, ok)
	assert.Equal(t, "set", task.Kind())
	_, ok = l.Get("missing")
	assert.False(t, ok)
}

func TestRegisteredKinds(t *testing.T) {
	kinds := model.RegisteredKinds()
	assert.Contains(t, kinds, "set")
	assert.Contains(t, kinds, "call")
}
