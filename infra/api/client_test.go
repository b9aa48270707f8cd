package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Tsinling0525/synapse/errors"
	"github.com/Tsinling0525/synapse/model"
)

func sampleResource() *model.WorkflowResource {
	return &model.WorkflowResource{
		Metadata: model.Metadata{Name: "unnamed-workflow", Namespace: "default"},
		Spec: model.Spec{Versions: []model.VersionSpec{{
			Name:     "v1",
			Document: &model.Workflow{Document: model.Document{DSL: "1.0.0", Name: "test"}},
		}}},
	}
}

func TestCreateWorkflowPostsJSON(t *testing.T) {
	var got *http.Request
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c, err := NewClient(ClientConfig{BaseURL: srv.URL + "/", Token: "secret", Timeout: time.Second})
	require.NoError(t, err)
	assert.True(t, c.Authenticated())

	resp, err := c.CreateWorkflow(context.Background(), sampleResource())
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, `{"ok":true}`, string(resp.Body))

	require.NotNil(t, got)
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, WorkflowsPath, got.URL.Path)
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Equal(t, "Bearer secret", got.Header.Get("Authorization"))
	assert.NotEmpty(t, got.Header.Get(RequestIDHeader))
	assert.JSONEq(t, `{
		"metadata": {"name": "unnamed-workflow", "namespace": "default"},
		"spec": {"versions": [{"name": "v1", "document": {"document": {"dsl": "1.0.0", "name": "test"}, "do": []}}]}
	}`, string(body))
}

func TestCreateWorkflowWithoutToken(t *testing.T) {
	var auth []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Values("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := NewClient(ClientConfig{BaseURL: srv.URL})
	require.NoError(t, err)
	assert.False(t, c.Authenticated())
	_, err = c.CreateWorkflow(context.Background(), sampleResource())
	require.NoError(t, err)
	assert.Empty(t, auth)
}

func TestCreateWorkflowRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid"}`))
	}))
	defer srv.Close()

	c, err := NewClient(ClientConfig{BaseURL: srv.URL})
	require.NoError(t, err)
	resp, err := c.CreateWorkflow(context.Background(), sampleResource())
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, apperrors.CodeAPIRejection, apperrors.CodeOf(err))
	assert.Equal(t, "400", apperrors.Meta(err, apperrors.MetaStatus))
	assert.Equal(t, `{"error":"invalid"}`, apperrors.Meta(err, apperrors.MetaBody))
}

func TestCreateWorkflowDoesNotRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, err := NewClient(ClientConfig{BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = c.CreateWorkflow(context.Background(), sampleResource())
	assert.Equal(t, apperrors.CodeAPIRejection, apperrors.CodeOf(err))
	assert.Equal(t, 1, calls)
}

func TestCreateWorkflowTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := NewClient(ClientConfig{BaseURL: url})
	require.NoError(t, err)
	_, err = c.CreateWorkflow(context.Background(), sampleResource())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeTransport, apperrors.CodeOf(err))
}

func TestCreateWorkflowDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, err := NewClient(ClientConfig{BaseURL: srv.URL})
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.CreateWorkflow(ctx, sampleResource())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeTimeout, apperrors.CodeOf(err))
}

func TestCreateWorkflowCancelled(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		select {
		case <-time.After(5 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c, err := NewClient(ClientConfig{BaseURL: srv.URL})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()
	_, err = c.CreateWorkflow(ctx, sampleResource())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeTimeout, apperrors.CodeOf(err))
	assert.Equal(t, 124, apperrors.ExitCode(err))
}

func TestNewClientRejectsBadBase(t *testing.T) {
	for _, base := range []string{"", "localhost:8080", "ftp://host", "http://"} {
		_, err := NewClient(ClientConfig{BaseURL: base})
		require.Error(t, err, base)
		assert.Equal(t, apperrors.CodeConfig, apperrors.CodeOf(err))
	}
}

func TestWorkflowStore(t *testing.T) {
	s := NewWorkflowStore()
	doc := json.RawMessage(`{"do":[]}`)
	created, err := s.Create(StoredWorkflow{
		Metadata: model.Metadata{Name: "b", Namespace: "default"},
		Versions: []StoredVersion{{Name: "v1", Document: doc}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.UID)
	assert.False(t, created.CreatedAt.IsZero())

	_, err = s.Create(StoredWorkflow{Metadata: model.Metadata{Name: "b", Namespace: "default"}})
	assert.ErrorIs(t, err, ErrExists)

	_, err = s.Create(StoredWorkflow{Metadata: model.Metadata{Name: "a", Namespace: "default"}})
	require.NoError(t, err)

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Metadata.Name)

	got, ok := s.Get("default", "b")
	require.True(t, ok)
	assert.JSONEq(t, string(doc), string(got.Versions[0].Document))

	assert.True(t, s.Delete("default", "b"))
	assert.False(t, s.Delete("default", "b"))
	_, ok = s.Get("default", "b")
	assert.False(t, ok)
}
