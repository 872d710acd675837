package api

import (
	"adminctl/app/util/telemetry"
	"adminctl/app/util/testkit"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokens struct {
	mu          sync.Mutex
	token       string
	invalidated int
}

func (f *fakeTokens) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.token
}

func (f *fakeTokens) Invalidate() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.token = ""
	f.invalidated++

	return nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc, tokens *fakeTokens) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := testkit.Config(t, server.URL+"/api/v1")
	tel := telemetry.NewNoop()
	metrics, err := telemetry.NewMetrics(cfg, tel.Meter)
	require.NoError(t, err)

	client, err := NewClient(cfg, tokens, telemetry.NewTracing(cfg, tel.Tracer), metrics)
	require.NoError(t, err)

	return client
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestClient_BearerAndEnvelope(t *testing.T) {
	tokens := &fakeTokens{token: "tok-1"}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/users", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.True(t, strings.HasPrefix(r.Header.Get("User-Agent"), "adminctl/"))

		writeJSON(w, http.StatusOK, map[string]any{
			"statusCode": 200,
			"message":    "ok",
			"data":       []map[string]any{{"id": 1, "name": "Alice"}},
			"total":      1,
		})
	}, tokens)

	env, err := client.Get(context.Background(), "users", url.Values{"page": {"2"}})
	require.NoError(t, err)
	assert.Equal(t, 200, env.StatusCode)
	assert.Equal(t, 1, env.Total)

	type row struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	rows, err := Decode[[]row](env)
	require.NoError(t, err)
	assert.Equal(t, []row{{ID: 1, Name: "Alice"}}, rows)
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"statusCode": 200, "data": nil})
	}, &fakeTokens{})

	_, err := client.Post(context.Background(), "auth/login", map[string]string{"email": "a@b.c"})
	require.NoError(t, err)
}

func TestClient_JSONAndMultipartBodies(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/roles":
			assert.Equal(t, "application/json;charset=utf-8", r.Header.Get("Content-Type"))
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Editor", body["name"])
		case "/api/v1/users":
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, []string{"Admin", "Editor"}, r.MultipartForm.Value["roles[]"])
			file, header, err := r.FormFile("avatar")
			require.NoError(t, err)
			defer file.Close()
			assert.Equal(t, "me.png", header.Filename)
			data, _ := io.ReadAll(file)
			assert.Equal(t, "png-bytes", string(data))
		}
		writeJSON(w, http.StatusCreated, map[string]any{"statusCode": 201, "message": "created"})
	}, &fakeTokens{token: "tok"})

	_, err := client.Post(context.Background(), "roles", map[string]string{"name": "Editor"})
	require.NoError(t, err)

	_, err = client.PostForm(context.Background(), "users", &Form{
		Fields: url.Values{"roles[]": {"Admin", "Editor"}},
		Files:  []File{{Field: "avatar", Name: "me.png", Reader: bytes.NewReader([]byte("png-bytes"))}},
	})
	require.NoError(t, err)
}

func TestClient_Unauthorized(t *testing.T) {
	tokens := &fakeTokens{token: "expired"}

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"statusCode": 401, "message": ""})
	}, tokens)

	_, err := client.Get(context.Background(), "me", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
	assert.Equal(t, MsgUnauthorized, Message(err))
	assert.Equal(t, 1, tokens.invalidated)
	assert.Empty(t, tokens.Token())
}

func TestClient_EnvelopeUnauthorizedKeepsSession(t *testing.T) {
	tokens := &fakeTokens{token: "valid"}

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"statusCode": 401, "message": "Token scope mismatch"})
	}, tokens)

	_, err := client.Get(context.Background(), "me", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAPI))
	assert.False(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, "Token scope mismatch", Message(err))
	assert.Equal(t, 0, tokens.invalidated)
	assert.Equal(t, "valid", tokens.Token())
}

func TestClient_EnvelopeFailures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
		wantFields map[string][]string
	}{
		{
			name:       "envelope status not success",
			status:     http.StatusOK,
			body:       `{"statusCode": 409, "message": "Email already taken"}`,
			wantStatus: 409,
			wantMsg:    "Email already taken",
		},
		{
			name:       "envelope without message",
			status:     http.StatusOK,
			body:       `{"statusCode": 400}`,
			wantStatus: 400,
			wantMsg:    MsgUnknownAPIError,
		},
		{
			name:       "empty body",
			status:     http.StatusOK,
			body:       ``,
			wantStatus: 200,
			wantMsg:    MsgErrorInResponse,
		},
		{
			name:       "validation errors",
			status:     http.StatusUnprocessableEntity,
			body:       `{"statusCode": 422, "message": "The email field is required.", "errors": {"email": ["The email field is required."]}}`,
			wantStatus: 422,
			wantMsg:    "The email field is required.",
			wantFields: map[string][]string{"email": {"The email field is required."}},
		},
		{
			name:       "forbidden without body",
			status:     http.StatusForbidden,
			body:       ``,
			wantStatus: 403,
			wantMsg:    MsgForbidden,
		},
		{
			name:       "not found html",
			status:     http.StatusNotFound,
			body:       `<html>nope</html>`,
			wantStatus: 404,
			wantMsg:    MsgNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, &fakeTokens{})

			_, err := client.Post(context.Background(), "users", map[string]string{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrAPI))
			assert.Equal(t, tt.wantStatus, StatusCode(err))
			assert.Equal(t, tt.wantMsg, Message(err))
			assert.Equal(t, tt.wantFields, FieldErrors(err))
		})
	}
}

func TestClient_RetriesIdempotentGets(t *testing.T) {
	var calls atomic.Int32

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if r.Method == http.MethodGet && n < 3 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"statusCode": 503})
			return
		}
		if r.Method != http.MethodGet {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"statusCode": 500})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"statusCode": 200, "data": "ok"})
	}, &fakeTokens{})

	env, err := client.Get(context.Background(), "roles/all", nil)
	require.NoError(t, err)
	data, err := Decode[string](env)
	require.NoError(t, err)
	assert.Equal(t, "ok", data)
	assert.Equal(t, int32(3), calls.Load())

	calls.Store(10)
	_, err = client.Delete(context.Background(), "roles/7")
	require.Error(t, err)
	assert.Equal(t, MsgServerError, Message(err))
	assert.Equal(t, int32(11), calls.Load())
}

func TestClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	cfg := testkit.Config(t, baseURL+"/api/v1/")
	cfg.HTTP.RetryAttempts = 1
	tel := telemetry.NewNoop()
	metrics, err := telemetry.NewMetrics(cfg, tel.Meter)
	require.NoError(t, err)

	client, err := NewClient(cfg, &fakeTokens{}, telemetry.NewTracing(cfg, tel.Tracer), metrics)
	require.NoError(t, err)

	_, err = client.Get(context.Background(), "me", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))
	assert.Equal(t, MsgNetwork, Message(err))
}

func TestClient_Download(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/users/export", r.URL.Path)
		assert.Equal(t, "csv", r.URL.Query().Get("format"))
		assert.Equal(t, "text/csv", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("id,name\n1,Alice\n"))
	}, &fakeTokens{token: "tok"})

	buf := &bytes.Buffer{}
	contentType, err := client.Download(context.Background(), "users/export", url.Values{"format": {"csv"}}, "text/csv", buf)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
	assert.Equal(t, "id,name\n1,Alice\n", buf.String())
}
