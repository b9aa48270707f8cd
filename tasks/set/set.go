package set

import (
	"github.com/Tsinling0525/synapse/model"
)

// Set assigns literal or expression values to workflow variables.
type Set struct {
	model.TaskBase `yaml:",inline"`
	Set            map[string]any `yaml:"set" json:"set"`
}

func (t *Set) Kind() string { return "set" }

// New returns a set task assigning vars.
func New(vars map[string]any) *Set { return &Set{Set: vars} }

func init() { model.RegisterTask("set", func() model.Task { return &Set{} }) }
