package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"

	apperrors "github.com/Tsinling0525/synapse/errors"
	"github.com/Tsinling0525/synapse/infra"
	"github.com/Tsinling0525/synapse/infra/api"
	"github.com/Tsinling0525/synapse/pipeline"
)

func workflowCreate(ctx context.Context, args []string, stdout, stderr io.Writer, environ map[string]string) int {
	fs := flag.NewFlagSet("workflow create", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var file string
	fs.StringVar(&file, "file", "", "Path to workflow YAML file")
	fs.StringVar(&file, "f", "", "Path to workflow YAML file (shorthand)")
	serverURL := fs.String("server", "", "API base address (overrides SYNAPSE_API_SERVER and the config file)")
	timeout := fs.Duration("timeout", 0, "Submission timeout (default SYNAPSE_API_TIMEOUT)")
	useDocName := fs.Bool("use-document-name", false, "Name the resource and version after the document's declared name and version")
	verbose := fs.Bool("v", false, "Echo the raw envelope, the extracted document and the bound document")
	if err := fs.Parse(args); err != nil {
		return apperrors.CodeUsage.ExitCode()
	}
	if file == "" {
		fmt.Fprintln(stdout, "--file is required")
		return apperrors.CodeUsage.ExitCode()
	}

	settings, err := infra.Load(environ, infra.Overrides{Server: *serverURL, Timeout: *timeout})
	if err != nil {
		return report(stdout, err)
	}
	client, err := api.NewClient(api.ClientConfig{BaseURL: settings.Server, Token: settings.Token})
	if err != nil {
		return report(stdout, err)
	}

	var bus infra.EventBus = infra.NullBus{}
	if *verbose {
		bus = infra.LogBus{L: log.New(stderr, "", 0)}
		fmt.Fprintf(stderr, "🔑 token source: %s, server: %s\n", settings.TokenSource, settings.Server)
	}
	if settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, settings.Timeout)
		defer cancel()
	}

	p := pipeline.New(client, bus, pipeline.Options{Build: pipeline.BuildOptions{UseDocumentIdentity: *useDocName}})
	out, err := p.CreateFromFile(ctx, file)
	if out != nil {
		fmt.Fprintf(stdout, "✅ DSL: %s, Name: %s, Version: %s, Do Count: %d\n",
			out.Document.DSL, out.Document.Name, out.Document.Version, out.Tasks)
	}
	if err != nil {
		return report(stdout, err)
	}
	fmt.Fprintf(stdout, "✅ Workflow '%s' created successfully.\n", out.Name)
	return 0
}

// report prints err with its distinguishing marker and returns the exit code
// for its class.
func report(w io.Writer, err error) int {
	code := apperrors.CodeOf(err)
	if code == apperrors.CodeAPIRejection {
		fmt.Fprintf(w, "❌ API returned %s:\n", apperrors.Meta(err, apperrors.MetaStatus))
		fmt.Fprintln(w, apperrors.Meta(err, apperrors.MetaBody))
		return code.ExitCode()
	}
	fmt.Fprintf(w, "[ERROR] %v\n", err)
	if path := apperrors.Meta(err, apperrors.MetaPath); path != "" && code != apperrors.CodeFileNotFound {
		fmt.Fprintf(w, "[ERROR] at %s\n", path)
	}
	return code.ExitCode()
}
