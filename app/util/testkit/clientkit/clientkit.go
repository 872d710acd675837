// Package clientkit wires the client stack (storage, session, api client,
// query cache, auth) against a fake backend for package tests.
package clientkit

import (
	"adminctl/app/client/api"
	"adminctl/app/service/auth"
	"adminctl/app/service/pubsub"
	"adminctl/app/service/query"
	"adminctl/app/service/session"
	"adminctl/app/storage"
	"adminctl/app/util/testkit"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/samber/do"
)

// NewInjector starts handler as the backend and returns a container with
// the client services registered.
func NewInjector(t *testing.T, handler http.Handler) *do.Injector {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewInjectorFor(t, server.URL+"/api/v1/")
}

func NewInjectorFor(t *testing.T, baseURL string) *do.Injector {
	t.Helper()

	cfg := testkit.Config(t, baseURL)
	cfg.HTTP.RetryAttempts = 1

	di := testkit.NewInjector(t, cfg)
	do.Provide(di, storage.New)
	do.Provide(di, pubsub.New)
	do.Provide(di, session.New)
	do.Provide(di, api.New)
	do.Provide(di, query.New)
	do.Provide(di, auth.New)

	return di
}

// Envelope writes a success envelope around data.
func Envelope(w http.ResponseWriter, data any, extra map[string]any) {
	body := map[string]any{
		"statusCode": http.StatusOK,
		"message":    "ok",
		"data":       data,
	}
	for key, value := range extra {
		body[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}
