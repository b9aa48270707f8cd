package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Tsinling0525/synapse/errors"
	"github.com/Tsinling0525/synapse/model"
)

// WorkflowsPath is the collection endpoint workflows are created at.
const WorkflowsPath = "/api/v1/workflows"

// RequestIDHeader correlates a submission with server logs.
const RequestIDHeader = "X-Request-Id"

// ClientConfig configures a Client. Token is optional; without it requests
// are sent unauthenticated.
type ClientConfig struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client submits workflow resources to the workflows API.
type Client struct {
	base  string
	token string
	cl    *http.Client
}

// Response is the API's answer to a submission.
type Response struct {
	StatusCode int
	Status     string
	Body       []byte
}

// NewClient validates cfg and returns a client.
func NewClient(cfg ClientConfig) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, apperrors.WrapWithMetadata(apperrors.CodeConfig,
			fmt.Sprintf("invalid API base address %q", cfg.BaseURL),
			map[string]string{"server": cfg.BaseURL}, err)
	}
	cl := cfg.HTTPClient
	if cl == nil {
		cl = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		base:  strings.TrimRight(u.String(), "/"),
		token: cfg.Token,
		cl:    cl,
	}, nil
}

// Authenticated reports whether requests carry a bearer token.
func (c *Client) Authenticated() bool { return c.token != "" }

// CreateWorkflow POSTs res as JSON. A non-2xx answer returns the response
// together with an API_REJECTION error. It never retries.
func (c *Client) CreateWorkflow(ctx context.Context, res *model.WorkflowResource) (*Response, error) {
	payload, err := json.Marshal(res)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeBinding, "encode workflow resource", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+WorkflowsPath, bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeTransport, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.cl.Do(req)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(ctx, err)
	}

	out := &Response{StatusCode: resp.StatusCode, Status: resp.Status, Body: body}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, apperrors.WithMetadata(apperrors.CodeAPIRejection,
			"API returned "+resp.Status,
			map[string]string{
				apperrors.MetaStatus: strconv.Itoa(resp.StatusCode),
				apperrors.MetaBody:   string(body),
			})
	}
	return out, nil
}

func transportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) || errors.Is(err, context.Canceled) {
		return apperrors.Wrap(apperrors.CodeTimeout, "workflow submission cancelled", err)
	}
	var ne net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return apperrors.Wrap(apperrors.CodeTimeout, "workflow submission timed out", err)
	}
	return apperrors.Wrap(apperrors.CodeTransport, "workflow submission failed", err)
}
