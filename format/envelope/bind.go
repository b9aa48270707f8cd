package envelope

import (
	"gopkg.in/yaml.v3"

	apperrors "github.com/Tsinling0525/synapse/errors"
	"github.com/Tsinling0525/synapse/model"
)

// Bind decodes the whole envelope into the typed resource. Unknown keys are
// ignored.
func Bind(raw []byte) (*model.WorkflowResource, error) {
	var res model.WorkflowResource
	if err := yaml.Unmarshal(raw, &res); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeBinding, "bind workflow resource", err)
	}
	if len(res.Spec.Versions) == 0 {
		return nil, apperrors.WithMetadata(apperrors.CodeBinding,
			"bind workflow resource: no spec.versions",
			map[string]string{apperrors.MetaPath: pathVersions})
	}
	return &res, nil
}

// FirstDocument returns the document of the resource's first version.
// A nil document after a successful bind means the document sub-schema did
// not bind, which is reported apart from shape failures.
func FirstDocument(res *model.WorkflowResource) (*model.Workflow, error) {
	if res == nil || len(res.Spec.Versions) == 0 || res.Spec.Versions[0].Document == nil {
		return nil, apperrors.WithMetadata(apperrors.CodeMissingDocument,
			"workflow definition document is null",
			map[string]string{apperrors.MetaPath: pathDocument})
	}
	return res.Spec.Versions[0].Document, nil
}

// BindDocument decodes a standalone document fragment, as produced by
// ExtractText, into the typed workflow model.
func BindDocument(text string) (*model.Workflow, error) {
	var wf *model.Workflow
	if err := yaml.Unmarshal([]byte(text), &wf); err != nil {
		return nil, apperrors.WrapWithMetadata(apperrors.CodeBinding, "bind workflow document",
			map[string]string{apperrors.MetaPath: pathDocument}, err)
	}
	if wf == nil {
		return nil, apperrors.WithMetadata(apperrors.CodeMissingDocument,
			"workflow definition document is null",
			map[string]string{apperrors.MetaPath: pathDocument})
	}
	return wf, nil
}
