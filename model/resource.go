package model

// WorkflowResource is the envelope a workflow is submitted in.
type WorkflowResource struct {
	APIVersion string   `yaml:"apiVersion" json:"apiVersion,omitempty"`
	Kind       string   `yaml:"kind" json:"kind,omitempty"`
	Metadata   Metadata `yaml:"metadata" json:"metadata"`
	Spec       Spec     `yaml:"spec" json:"spec"`
}

// Metadata names a resource.
type Metadata struct {
	Name      string `yaml:"name" json:"name"`
	Namespace string `yaml:"namespace" json:"namespace"`
}

// Spec holds the resource's workflow versions. Only the first is consumed.
type Spec struct {
	Versions []VersionSpec `yaml:"versions" json:"versions"`
}

// VersionSpec is one named version of a workflow document.
type VersionSpec struct {
	Name     string    `yaml:"name" json:"name"`
	Document *Workflow `yaml:"document" json:"document"`
}
