package pipeline

import (
	"github.com/Tsinling0525/synapse/model"
)

// Placeholders used for the outbound resource identity.
const (
	PlaceholderName    = "unnamed-workflow"
	PlaceholderVersion = "v1"
	DefaultNamespace   = "default"
)

// BuildOptions controls how the outbound resource is named.
type BuildOptions struct {
	// UseDocumentIdentity names the resource and its version after the
	// document's declared name and version instead of the placeholders.
	// Empty declarations still fall back to the placeholders.
	UseDocumentIdentity bool
}

// Build wraps wf in a single-version resource in the default namespace.
func Build(wf *model.Workflow, opts BuildOptions) *model.WorkflowResource {
	name, version := PlaceholderName, PlaceholderVersion
	if opts.UseDocumentIdentity && wf != nil {
		if wf.Document.Name != "" {
			name = wf.Document.Name
		}
		if wf.Document.Version != "" {
			version = wf.Document.Version
		}
	}
	return &model.WorkflowResource{
		Metadata: model.Metadata{Name: name, Namespace: DefaultNamespace},
		Spec: model.Spec{Versions: []model.VersionSpec{{
			Name:     version,
			Document: wf,
		}}},
	}
}
