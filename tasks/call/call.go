package call

import (
	"github.com/Tsinling0525/synapse/model"
)

// Call invokes a function or protocol (http, grpc, openapi, asyncapi) with
// the given arguments.
type Call struct {
	model.TaskBase `yaml:",inline"`
	Call           string         `yaml:"call" json:"call"`
	With           map[string]any `yaml:"with,omitempty" json:"with,omitempty"`
}

func (t *Call) Kind() string { return "call" }

func init() { model.RegisterTask("call", func() model.Task { return &Call{} }) }
