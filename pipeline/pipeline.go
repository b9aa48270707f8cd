// Package pipeline turns a workflow envelope file into a submitted workflow
// resource: read, extract, bind, normalize, build, submit.
package pipeline

import (
	"context"
	"encoding/json"

	apperrors "github.com/Tsinling0525/synapse/errors"
	"github.com/Tsinling0525/synapse/format/envelope"
	"github.com/Tsinling0525/synapse/infra"
	"github.com/Tsinling0525/synapse/infra/api"
	"github.com/Tsinling0525/synapse/model"
)

// Submitter sends a built resource to the workflows API.
type Submitter interface {
	CreateWorkflow(ctx context.Context, res *model.WorkflowResource) (*api.Response, error)
}

// Options tune a pipeline run.
type Options struct {
	Build BuildOptions
}

// Pipeline runs the create stages in order. Any failure stops the run
// before anything is submitted.
type Pipeline struct {
	sub  Submitter
	bus  infra.EventBus
	opts Options
}

// Outcome describes a run that reached the submission stage.
type Outcome struct {
	Name      string
	Namespace string
	Version   string

	Document model.Document
	Tasks    int
	Injected bool
	Checksum string

	// Response is set once the API answered, including on rejection.
	Response *api.Response
}

func New(sub Submitter, bus infra.EventBus, opts Options) *Pipeline {
	if bus == nil {
		bus = infra.NullBus{}
	}
	return &Pipeline{sub: sub, bus: bus, opts: opts}
}

// CreateFromFile reads the envelope at path and submits its document.
func (p *Pipeline) CreateFromFile(ctx context.Context, path string) (*Outcome, error) {
	raw, err := envelope.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p.bus.Emit(ctx, "envelope_read", map[string]any{"path": path, "bytes": len(raw), "raw": string(raw)})
	return p.Create(ctx, raw)
}

// Create submits the document of an envelope already in memory.
func (p *Pipeline) Create(ctx context.Context, raw []byte) (*Outcome, error) {
	loc, err := envelope.Locate(raw)
	if err != nil {
		return nil, err
	}
	p.bus.Emit(ctx, "document_extracted", map[string]any{"yaml": loc.Text, "checksum": loc.Checksum})

	res, err := envelope.Bind(raw)
	if err != nil {
		return nil, err
	}
	wf, err := envelope.FirstDocument(res)
	if err != nil {
		return nil, err
	}
	if err := p.crossCheck(wf, loc); err != nil {
		return nil, err
	}
	p.bus.Emit(ctx, "document_bound", boundFields(wf))

	injected := Normalize(wf)
	p.bus.Emit(ctx, "document_normalized", map[string]any{
		"dsl": wf.Document.DSL, "name": wf.Document.Name, "version": wf.Document.Version,
		"tasks": wf.Do.Len(), "injected": injected,
	})

	out := Build(wf, p.opts.Build)
	v := out.Spec.Versions[0]
	p.bus.Emit(ctx, "resource_built", map[string]any{
		"name": out.Metadata.Name, "namespace": out.Metadata.Namespace, "version": v.Name,
	})

	outcome := &Outcome{
		Name:      out.Metadata.Name,
		Namespace: out.Metadata.Namespace,
		Version:   v.Name,
		Document:  wf.Document,
		Tasks:     wf.Do.Len(),
		Injected:  injected,
		Checksum:  loc.Checksum,
	}
	resp, err := p.sub.CreateWorkflow(ctx, out)
	outcome.Response = resp
	if err != nil {
		return outcome, err
	}
	p.bus.Emit(ctx, "resource_submitted", map[string]any{"name": outcome.Name, "status": resp.StatusCode})
	return outcome, nil
}

// crossCheck binds the re-indented document on its own and requires it to
// match the document bound through the envelope.
func (p *Pipeline) crossCheck(wf *model.Workflow, loc *envelope.Located) error {
	standalone, err := envelope.BindDocument(loc.Text)
	if err != nil {
		return apperrors.WrapWithMetadata(apperrors.CodeDocumentExtractionMismatch,
			"re-indented document does not bind", map[string]string{apperrors.MetaPath: "spec.versions[0].document"}, err)
	}
	a, errA := json.Marshal(wf)
	b, errB := json.Marshal(standalone)
	if errA != nil || errB != nil {
		return apperrors.Wrap(apperrors.CodeBinding, "encode workflow document", firstErr(errA, errB))
	}
	if string(a) != string(b) {
		return apperrors.WithMetadata(apperrors.CodeDocumentExtractionMismatch,
			"envelope-bound and standalone-bound documents differ",
			map[string]string{apperrors.MetaPath: "spec.versions[0].document", "structural": string(a), "textual": string(b)})
	}
	return nil
}

// boundFields renders the bound document for the document_bound event, or
// the encoding error when it cannot be rendered.
func boundFields(wf *model.Workflow) map[string]any {
	b, err := json.MarshalIndent(wf, "", "  ")
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	return map[string]any{"json": string(b) + "\n"}
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
