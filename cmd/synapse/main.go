package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tsinling0525/synapse/cmd/api/server"
	apperrors "github.com/Tsinling0525/synapse/errors"
	"github.com/Tsinling0525/synapse/infra"
	apiinfra "github.com/Tsinling0525/synapse/infra/api"
	_ "github.com/Tsinling0525/synapse/tasks/call"
	_ "github.com/Tsinling0525/synapse/tasks/set"
)

const version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, nil)
	stop()
	os.Exit(code)
}

// run dispatches a subcommand and returns the process exit code. A nil
// environ reads the process environment.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, environ map[string]string) int {
	if len(args) < 1 {
		usage(stdout)
		return apperrors.CodeUsage.ExitCode()
	}
	switch args[0] {
	case "workflow", "workflows":
		if len(args) < 2 || args[1] != "create" {
			usage(stdout)
			return apperrors.CodeUsage.ExitCode()
		}
		return workflowCreate(ctx, args[2:], stdout, stderr, environ)
	case "server":
		return runServer(ctx, args[1:], stdout, stderr, environ)
	case "version":
		fmt.Fprintln(stdout, "synapse", version)
		return 0
	default:
		usage(stdout)
		return apperrors.CodeUsage.ExitCode()
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  synapse workflow create --file path   # submit a workflow YAML definition")
	fmt.Fprintln(w, "  synapse server                        # start the development workflows API")
	fmt.Fprintln(w, "  synapse version                       # print the CLI version")
}

func runServer(ctx context.Context, args []string, stdout, stderr io.Writer, environ map[string]string) int {
	e, err := infra.LoadEnv(environ)
	if err != nil {
		return report(stdout, err)
	}
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(stderr)
	port := fs.Int("port", e.DevPort, "Listen port")
	token := fs.String("token", e.Token, "Bearer token required on /api routes (empty disables auth)")
	if err := fs.Parse(args); err != nil {
		return apperrors.CodeUsage.ExitCode()
	}

	r := server.NewRouter(apiinfra.NewWorkflowStore(), server.Options{Token: *token})
	fmt.Fprintf(stdout, "🚀 Starting Synapse development API on :%d\n", *port)
	fmt.Fprintf(stdout, "📡 Endpoints:\n")
	fmt.Fprintf(stdout, "   GET    /health                              - Health check\n")
	fmt.Fprintf(stdout, "   POST   %s                    - Create workflow\n", apiinfra.WorkflowsPath)
	fmt.Fprintf(stdout, "   GET    %s                    - List workflows\n", apiinfra.WorkflowsPath)
	fmt.Fprintf(stdout, "   GET    %s/:namespace/:name   - Get workflow\n", apiinfra.WorkflowsPath)
	fmt.Fprintf(stdout, "   DELETE %s/:namespace/:name   - Delete workflow\n", apiinfra.WorkflowsPath)

	srv := &http.Server{Addr: fmt.Sprintf(":%d", *port), Handler: r}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return report(stdout, apperrors.Wrap(apperrors.CodeTransport, "server error", err))
		}
		return 0
	case <-ctx.Done():
	}
	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(stderr, "shutdown: %v\n", err)
	}
	return 0
}
